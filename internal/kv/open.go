package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saitap-dev/saitap/backend/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open 根据配置创建键值存储，返回的 close 函数用于释放连接
func Open(cfg *config.Config) (Store, func(), error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		return NewMemory(), func() {}, nil
	case "redis":
		return openRedis(cfg)
	case "postgres":
		return openPostgres(cfg)
	default:
		return nil, nil, fmt.Errorf("未知的存储后端 %q", cfg.Storage.Backend)
	}
}

func openRedis(cfg *config.Config) (Store, func(), error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("无法连接到 redis: %w", err)
	}

	return NewRedis(rdb), func() { _ = rdb.Close() }, nil
}

func openPostgres(cfg *config.Config) (Store, func(), error) {
	if cfg.Database.DSN == "" {
		return nil, nil, errors.New("使用 postgres 存储时必须设置 DATABASE_DSN")
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("无法创建数据库连接池: %w", err)
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		_ = dbpool.Close()
		return nil, nil, fmt.Errorf("无法连接到数据库: %w", err)
	}

	store := NewPostgres(dbpool, time.Duration(cfg.Database.QueryTimeout)*time.Second)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = dbpool.Close()
		return nil, nil, fmt.Errorf("无法创建 kv_entries 表: %w", err)
	}

	return store, func() { _ = dbpool.Close() }, nil
}

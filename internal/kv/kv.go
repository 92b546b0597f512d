// Package kv 提供会话与语言状态持久化所依赖的键值存储
package kv

import (
	"context"
	"errors"
)

// ErrNotFound 表示键不存在
var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// 删除不存在的键不视为错误
	Delete(ctx context.Context, key string) error
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/saitap-dev/saitap/backend/internal/config"
	"github.com/saitap-dev/saitap/backend/internal/events"
	"github.com/saitap-dev/saitap/backend/internal/handler"
	"github.com/saitap-dev/saitap/backend/internal/i18n"
	"github.com/saitap-dev/saitap/backend/internal/kv"
	"github.com/saitap-dev/saitap/backend/internal/session"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 连接键值存储
	 **********************************************/
	store, closeStore, err := kv.Open(cfg)
	if err != nil {
		logger.Error("无法打开键值存储", "backend", cfg.Storage.Backend, "error", err)
		return
	}
	defer closeStore()

	/**********************************************
	 * 创建 session store 与 language store
	 **********************************************/
	sessions := session.New(store, logger.With("component", "session"))
	defer sessions.Close()

	languages, err := i18n.New(store, logger.With("component", "i18n"))
	if err != nil {
		logger.Error("无法创建翻译表", "error", err)
		return
	}
	defer languages.Close()

	/**********************************************
	 * 连接 rabbitmq（可选）
	 **********************************************/
	if cfg.RabbitMQ.DSN != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("无法连接到 rabbitmq", "error", err)
			return
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			logger.Error("无法建立通道", "error", err)
			return
		}
		defer ch.Close()

		_, err = ch.QueueDeclare(
			cfg.RabbitMQ.Queue,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			logger.Error("无法声明队列", "error", err)
			return
		}

		publisher := events.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second, logger.With("component", "events"))
		detach := publisher.Attach(sessions, languages)
		defer detach()
	}

	/**********************************************
	 * 恢复持久化的状态
	 **********************************************/
	// 在此之前 store 处于 loading 状态，HTTP 服务器启动后也可以观察到这一点
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Storage.LoadTimeout)*time.Second)
		defer cancel()

		languages.Load(ctx)
		sessions.Load(ctx)
		logger.Info("已恢复持久化状态", "language", languages.CurrentLanguage(), "authenticated", sessions.IsAuthenticated())
	}()

	/**********************************************
	 * 创建 handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, sessions, languages)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}

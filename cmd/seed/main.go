package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/saitap-dev/saitap/backend/internal/config"
	"github.com/saitap-dev/saitap/backend/internal/i18n"
	"github.com/saitap-dev/saitap/backend/internal/kv"
	"github.com/saitap-dev/saitap/backend/internal/session"
)

func main() {
	var op int
	var employeeID string
	var companyCode string
	var language string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 写入演示用户, 2: 写入语言设置, 3: 清除持久化状态)")
	flag.StringVar(&employeeID, "employee-id", "worker001", "演示用户的员工编号")
	flag.StringVar(&companyCode, "company-code", "DEMO001", "演示用户的公司代码")
	flag.StringVar(&language, "language", i18n.DefaultLanguage, "要写入的语言代码")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, closeStore, err := kv.Open(cfg)
	if err != nil {
		logger.Error("无法打开键值存储", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Storage.OperationTimeout)*time.Second)
	defer cancel()

	switch op {
	case 1:
		// 与登录时走同一条路径，保证写入的数据格式一致
		sessions := session.New(store, logger)
		if ok := sessions.Login(ctx, session.Credentials{EmployeeID: employeeID, CompanyCode: companyCode}); !ok {
			logger.Error("写入演示用户失败", "employeeId", employeeID)
			return
		}
		logger.Info("已写入演示用户", "employeeId", employeeID, "backend", cfg.Storage.Backend)
	case 2:
		if !i18n.IsSupported(language) {
			logger.Warn("语言不在支持列表中，界面会回退到英文", "language", language)
		}
		languages, err := i18n.New(store, logger)
		if err != nil {
			logger.Error("无法创建翻译表", "error", err)
			return
		}
		languages.ChangeLanguage(ctx, language)
		logger.Info("已写入语言设置", "language", language)
	case 3:
		for _, key := range []string{session.UserKey, i18n.LanguageKey} {
			if err := store.Delete(ctx, key); err != nil {
				logger.Error("清除失败", "key", key, "error", err)
				return
			}
		}
		logger.Info("已清除持久化状态")
	default:
		logger.Error("未知操作", "op", op)
	}
}

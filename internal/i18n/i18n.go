// Package i18n 维护当前界面语言，并把点分隔的翻译键解析为文本
package i18n

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/saitap-dev/saitap/backend/internal/kv"
	"github.com/saitap-dev/saitap/backend/internal/notify"
)

// LanguageKey 是持久化语言代码所用的键
const LanguageKey = "saitap_language"

const DefaultLanguage = "en"

type Change struct {
	Language string
}

type Store struct {
	kv     kv.Store
	logger *slog.Logger

	translators map[string]ut.Translator

	opMu    sync.Mutex
	mu      sync.RWMutex
	current string
	loaded  bool

	hub notify.Hub[Change]
}

func New(store kv.Store, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	translators, err := newTranslators(catalog)
	if err != nil {
		return nil, err
	}

	return &Store{
		kv:          store,
		logger:      logger,
		translators: translators,
		current:     DefaultLanguage,
	}, nil
}

func newTranslators(table map[string]map[string]string) (map[string]ut.Translator, error) {
	english := en.New()
	uni := ut.New(english, english, es.New())

	if _, ok := table[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("缺少默认语言 %s 的翻译", DefaultLanguage)
	}

	translators := make(map[string]ut.Translator, len(table))
	for code, entries := range table {
		trans, found := uni.GetTranslator(code)
		if !found {
			return nil, fmt.Errorf("不支持的语言 %s", code)
		}
		for key, text := range entries {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("无法添加翻译 %s.%s: %w", code, key, err)
			}
		}
		translators[code] = trans
	}

	return translators, nil
}

// Load 读取持久化的语言代码，不存在、为空或读取失败时保持默认语言
func (s *Store) Load(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	code := ""
	data, err := s.kv.Get(ctx, LanguageKey)
	switch {
	case err == nil:
		code = string(data)
	case errors.Is(err, kv.ErrNotFound):
	default:
		s.logger.Error("无法读取语言设置", "error", err)
	}

	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return
	}
	if code != "" {
		s.current = code
	}
	s.loaded = true
	current := s.current
	s.mu.Unlock()

	s.hub.Publish(Change{Language: current})
}

// ChangeLanguage 不校验语言代码是否受支持。写入失败只记录日志，内存中的语言仍然会切换。
func (s *Store) ChangeLanguage(ctx context.Context, code string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.kv.Set(ctx, LanguageKey, []byte(code)); err != nil {
		s.logger.Error("无法保存语言设置", "language", code, "error", err)
	}

	s.mu.Lock()
	s.current = code
	s.loaded = true
	s.mu.Unlock()

	s.hub.Publish(Change{Language: code})
}

// Translate 按当前语言解析 key，找不到时回退到默认语言，仍然找不到则原样返回 key
func (s *Store) Translate(key string) string {
	return s.TranslateIn(s.CurrentLanguage(), key)
}

func (s *Store) TranslateIn(code, key string) string {
	if trans, ok := s.translators[code]; ok {
		if text, err := trans.T(key); err == nil {
			return text
		}
	}
	if text, err := s.translators[DefaultLanguage].T(key); err == nil {
		return text
	}
	return key
}

func (s *Store) CurrentLanguage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loaded
}

func (s *Store) SupportedLanguages() []Language {
	return slices.Clone(supportedLanguages)
}

func IsSupported(code string) bool {
	return slices.ContainsFunc(supportedLanguages, func(l Language) bool {
		return l.Code == code
	})
}

func (s *Store) Subscribe(fn func(Change)) func() {
	return s.hub.Subscribe(fn)
}

func (s *Store) Close() {
	s.hub.Close()
}

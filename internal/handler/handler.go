package handler

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/saitap-dev/saitap/backend/internal/config"
	"github.com/saitap-dev/saitap/backend/internal/i18n"
	"github.com/saitap-dev/saitap/backend/internal/session"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	sessions    *session.Store
	languages   *i18n.Store
	translators map[string]ut.Translator // 校验错误信息的翻译器，按语言代码索引
	now         func() time.Time         // 用于问候语

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, sessions *session.Store, languages *i18n.Store) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息中使用 json 字段名，与客户端提交的字段保持一致
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english, es.New())
	enTrans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}
	esTrans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, esTrans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:  validate,
		config:    cfg,
		sessions:  sessions,
		languages: languages,
		translators: map[string]ut.Translator{
			"en": enTrans,
			"es": esTrans,
		},
		now: time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/session", h.GetSession)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/biometric", h.BiometricLogin)
		r.Post("/logout", h.Logout)
	})

	// 语言相关，未登录时也可以切换语言
	h.Mux.Route("/language", func(r chi.Router) {
		r.Get("/", h.GetLanguage)
		r.Put("/", h.ChangeLanguage)
	})
	h.Mux.Get("/translations/{key}", h.Translate)

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/me", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Get("/dashboard", h.GetDashboard)
			r.Post("/progress", h.UpdateMyProgress)
			r.Post("/safety-check", h.CompleteSafetyCheck)
		})
	})
}

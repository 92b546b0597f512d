package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, h.t("api.languages"), map[string]any{
		"current":   h.languages.CurrentLanguage(),
		"loaded":    h.languages.Loaded(),
		"supported": h.languages.SupportedLanguages(),
	})
}

func (h *Handler) ChangeLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ctx, cancel := h.storageContext(r)
	defer cancel()

	// 与客户端行为一致，不检查语言是否在支持列表中，未支持的语言会回退到英文
	h.languages.ChangeLanguage(ctx, req.Code)

	h.successResponse(w, r, h.t("api.languageChanged"), map[string]any{
		"current": h.languages.CurrentLanguage(),
	})
}

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	h.successResponse(w, r, h.t("api.translation"), map[string]string{
		"key":   key,
		"value": h.t(key),
	})
}

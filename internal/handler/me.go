package handler

import (
	"net/http"

	"github.com/saitap-dev/saitap/backend/internal/domain"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, h.t("api.profile"), myInfo)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	h.successResponse(w, r, h.t("api.dashboard"), map[string]any{
		"greeting": h.t(domain.GreetingKey(h.now().Hour())),
		"name":     myInfo.Name,
		"progress": domain.ProgressOf(myInfo),
		"badges":   myInfo.Badges,
	})
}

func (h *Handler) UpdateMyProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		XPGained int `json:"xpGained" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.addProgress(w, r, req.XPGained, h.t("api.progressUpdated"))
}

// CompleteSafetyCheck 完成安全检查后奖励固定经验值
func (h *Handler) CompleteSafetyCheck(w http.ResponseWriter, r *http.Request) {
	h.addProgress(w, r, domain.SafetyCheckXP, h.t("api.safetyCheckPassed"))
}

func (h *Handler) addProgress(w http.ResponseWriter, r *http.Request, xpGained int, msg string) {
	ctx, cancel := h.storageContext(r)
	defer cancel()

	updated := h.sessions.UpdateUserProgress(ctx, xpGained)
	if updated == nil {
		// 在鉴权之后、更新之前已经登出
		h.errorResponse(w, r, h.t("api.notAuthenticated"))
		return
	}

	h.successResponse(w, r, msg, updated)
}

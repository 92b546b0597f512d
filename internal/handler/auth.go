package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/saitap-dev/saitap/backend/internal/domain"
	"github.com/saitap-dev/saitap/backend/internal/session"
)

const tokenCookieName = "__saitap_token"

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.State()

	h.successResponse(w, r, h.t("api.sessionState"), map[string]any{
		"status":          state.Status,
		"isAuthenticated": state.IsAuthenticated(),
		"user":            state.User,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID  string `json:"employeeId" validate:"required"`
		CompanyCode string `json:"companyCode" validate:"required"`
		Biometric   bool   `json:"biometric"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.CompanyCode = strings.TrimSpace(req.CompanyCode)
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.login(w, r, session.Credentials{
		EmployeeID:  req.EmployeeID,
		CompanyCode: req.CompanyCode,
		Biometric:   req.Biometric,
	})
}

// BiometricLogin 模拟指纹识别成功后的登录
func (h *Handler) BiometricLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, session.BiometricCredentials())
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, creds session.Credentials) {
	ctx, cancel := h.storageContext(r)
	defer cancel()

	if ok := h.sessions.Login(ctx, creds); !ok {
		h.errorResponse(w, r, h.t("auth.invalidCredentials"))
		return
	}

	user := h.sessions.CurrentUser()
	if user == nil {
		h.errorResponse(w, r, h.t("auth.invalidCredentials"))
		return
	}

	cookie, err := h.issueToken(user)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	http.SetCookie(w, cookie)

	h.successResponse(w, r, h.t("api.loginSuccess"), user)
}

func (h *Handler) issueToken(user *domain.User) (*http.Cookie, error) {
	now := time.Now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.EmployeeID,
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		return nil, err
	}

	// 通过 http-only 的 cookie 返回给客户端
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	return cookie, nil
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storageContext(r)
	defer cancel()

	h.sessions.Logout(ctx)

	http.SetCookie(w, &http.Cookie{
		Name:    tokenCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, h.t("api.logoutSuccess"), nil)
}

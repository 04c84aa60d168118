package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
)

// Handler exposes the login endpoints.
type Handler struct {
	Service          *Service
	Logger           zerolog.Logger
	AccessCookieName string
	CookieSecure     bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	result, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	h.setCookie(w, result.AccessToken, result.AccessExpiry)
	common.OK(w, http.StatusOK, "Đăng nhập thành công", result)
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless so only the
// cookie is cleared.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.setCookie(w, "", time.Unix(0, 0))
	common.OK(w, http.StatusOK, "Đăng xuất thành công", nil)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, common.MsgUnauthorized)
		return
	}
	u, err := h.Service.Me(r.Context(), userID)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Thông tin tài khoản", u)
}

func (h *Handler) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	if h.AccessCookieName == "" {
		return
	}
	c := &http.Cookie{
		Name:     h.AccessCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

// Handler exposes the admin account endpoints.
type Handler struct {
	Service *Service
	Logger  zerolog.Logger
}

// List handles GET /api/v1/admin/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	page, perPage := common.ParsePagination(r, 20, 100)
	users, total, err := h.Service.List(r.Context(), domain.ListFilter{
		Text:   r.URL.Query().Get("q"),
		Offset: int64((page - 1) * perPage),
		Limit:  int64(perPage),
	})
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Danh sách tài khoản", common.Page[domain.User]{
		Items:      users,
		Pagination: common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	})
}

// Get handles GET /api/v1/admin/users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	u, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Chi tiết tài khoản", u)
}

// Create handles POST /api/v1/admin/users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	u, err := h.Service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusCreated, "Tạo tài khoản thành công", u)
}

// Update handles PUT /api/v1/admin/users/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	u, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Cập nhật tài khoản thành công", u)
}

// Delete handles DELETE /api/v1/admin/users/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Xóa tài khoản thành công", nil)
}

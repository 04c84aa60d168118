package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
)

// Handler exposes the client order endpoints.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// Create books a new pending order.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	if userID, ok := common.UserID(r.Context()); ok {
		req.UserID = userID
	}
	o, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusCreated, "Đặt đơn hàng thành công", o)
}

// Get returns an order by its code.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	o, err := h.Svc.GetByCode(r.Context(), chi.URLParam(r, "orderCode"))
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Chi tiết đơn hàng", o)
}

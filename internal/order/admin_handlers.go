package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/analytics"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

// AdminHandler provides administrative order management endpoints.
type AdminHandler struct {
	Svc      *Service
	Location *time.Location
	Logger   zerolog.Logger
}

type patchStatusRequest struct {
	Status string `json:"status"`
}

// List returns a filtered page of orders.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	f, err := analytics.ParseFilter(r.URL.Query(), h.Location)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	page, perPage := common.ParsePagination(r, 20, 100)
	result, err := h.Svc.List(r.Context(), f, page, perPage)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Danh sách đơn hàng", result)
}

// Get returns a single order.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
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

// PatchStatus updates the order status with state-machine validation.
func (h *AdminHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var req patchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	target, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "Trạng thái đơn hàng không hợp lệ")
		return
	}
	o, err := h.Svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderCode"), target)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Cập nhật trạng thái thành công", o)
}

// Delete removes an order.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "orderCode")); err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Xóa đơn hàng thành công", nil)
}

// Export streams the filtered orders as a CSV attachment.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	f, err := analytics.ParseFilter(r.URL.Query(), h.Location)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	orders, err := h.Svc.Export(r.Context(), f)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, orders, h.Location); err != nil {
		common.WriteError(w, h.Logger, common.Internal(err))
		return
	}
	name := fmt.Sprintf("orders-%s.csv", h.Svc.now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

package voucher

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/obs"
)

// Handler exposes the public voucher check and the admin voucher endpoints.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

type checkResponse struct {
	Code           int             `json:"code"`
	Message        string          `json:"message"`
	Data           *domain.Voucher `json:"data,omitempty"`
	MinOrderAmount *int64          `json:"minOrderAmount,omitempty"`
}

// Check evaluates GET /vouchers/{code}/check?orderAmount=.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var orderAmount *string
	if q := r.URL.Query(); q.Has("orderAmount") {
		v := q.Get("orderAmount")
		orderAmount = &v
	}
	res, err := h.Svc.Check(r.Context(), chi.URLParam(r, "code"), orderAmount)
	if err != nil {
		obs.IncCounter(obs.VoucherCheckTotal, "ERROR")
		common.WriteError(w, h.Logger, common.Internal(err))
		return
	}
	obs.IncCounter(obs.VoucherCheckTotal, string(res.Outcome))
	body := checkResponse{Code: res.Status(), Message: res.Message(), Data: res.Voucher}
	if res.Outcome == OutcomeBelowMinimum {
		minAmount := res.MinOrderAmount
		body.MinOrderAmount = &minAmount
	}
	common.JSON(w, res.Status(), body)
}

// List returns a page of vouchers for the back office.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	page, perPage := common.ParsePagination(r, 20, 100)
	items, total, err := h.Svc.List(r.Context(), domain.ListFilter{
		Text:   r.URL.Query().Get("q"),
		Offset: int64((page - 1) * perPage),
		Limit:  int64(perPage),
	})
	if err != nil {
		common.WriteError(w, h.Logger, common.Internal(err))
		return
	}
	common.OK(w, http.StatusOK, "Danh sách mã giảm giá", common.Page[domain.Voucher]{
		Items:      items,
		Pagination: common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	})
}

// Create inserts a new voucher.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	v, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusCreated, "Tạo mã giảm giá thành công", v)
}

// Update mutates the voucher identified by the {code} path segment.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	v, err := h.Svc.Update(r.Context(), chi.URLParam(r, "code"), in)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Cập nhật mã giảm giá thành công", v)
}

// Delete soft-deletes the voucher.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Xóa mã giảm giá thành công", nil)
}

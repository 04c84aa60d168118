package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
)

// Handler exposes public catalog endpoints and the admin catalog CRUD.
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	Logger  zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, logger: cfg.Logger}
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return false
	}
	return true
}

// Tours handles GET /api/v1/tours.
func (h *Handler) Tours(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	params, err := h.service.ParseListParams(r.URL.Query())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	page, err := h.service.ListTours(r.Context(), params)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.Pagination.TotalItems, 10))
	common.OK(w, http.StatusOK, "Danh sách tour", page)
}

// Tour handles GET /api/v1/tours/{slug}.
func (h *Handler) Tour(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	t, err := h.service.TourBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Chi tiết tour", t)
}

// Hotels handles GET /api/v1/hotels.
func (h *Handler) Hotels(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	params, err := h.service.ParseListParams(r.URL.Query())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	page, err := h.service.ListHotels(r.Context(), params)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(page.Pagination.TotalItems, 10))
	common.OK(w, http.StatusOK, "Danh sách khách sạn", page)
}

// Hotel handles GET /api/v1/hotels/{slug}.
func (h *Handler) Hotel(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	hotel, err := h.service.HotelBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Chi tiết khách sạn", hotel)
}

// CreateTour handles POST /api/v1/admin/tours.
func (h *Handler) CreateTour(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in TourInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	t, err := h.service.CreateTour(r.Context(), in)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.OK(w, http.StatusCreated, "Tạo tour thành công", t)
}

// UpdateTour handles PUT /api/v1/admin/tours/{id}.
func (h *Handler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in TourInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	t, err := h.service.UpdateTour(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Cập nhật tour thành công", t)
}

// DeleteTour handles DELETE /api/v1/admin/tours/{id}.
func (h *Handler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.DeleteTour(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Xóa tour thành công", nil)
}

// CreateHotel handles POST /api/v1/admin/hotels.
func (h *Handler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in HotelInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	hotel, err := h.service.CreateHotel(r.Context(), in)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.OK(w, http.StatusCreated, "Tạo khách sạn thành công", hotel)
}

// UpdateHotel handles PUT /api/v1/admin/hotels/{id}.
func (h *Handler) UpdateHotel(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in HotelInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.MsgBadPayload)
		return
	}
	hotel, err := h.service.UpdateHotel(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Cập nhật khách sạn thành công", hotel)
}

// DeleteHotel handles DELETE /api/v1/admin/hotels/{id}.
func (h *Handler) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.DeleteHotel(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Xóa khách sạn thành công", nil)
}

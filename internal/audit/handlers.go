package audit

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

// Handler exposes the audit trail to administrators.
type Handler struct {
	Service *Service
	Logger  zerolog.Logger
}

// List handles GET /api/v1/admin/audit-logs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil || h.Service.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	page, perPage := common.ParsePagination(r, 50, 200)
	q := r.URL.Query()
	entries, total, err := h.Service.List(r.Context(), domain.AuditFilter{
		ActorID:  q.Get("actor_id"),
		Resource: q.Get("resource"),
		Offset:   int64((page - 1) * perPage),
		Limit:    int64(perPage),
	})
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.OK(w, http.StatusOK, "Nhật ký quản trị", common.Page[domain.AuditEntry]{
		Items:      entries,
		Pagination: common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	})
}

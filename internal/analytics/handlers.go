package analytics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

const dateLayout = "2006-01-02"

// Handler exposes the admin statistics endpoint.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// ParseFilter translates statistics query parameters into an order filter.
// startDate and endDate are calendar days in loc; the end day is included,
// so the exclusive bound is the following midnight. year, optionally with
// month, narrows the range further. q searches order code and customer.
func ParseFilter(q url.Values, loc *time.Location) (domain.OrderFilter, error) {
	var f domain.OrderFilter
	if loc == nil {
		loc = time.Local
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, ok := domain.ParseOrderStatus(raw)
		if !ok {
			return f, common.Validation("Trạng thái đơn hàng không hợp lệ")
		}
		f = f.WithStatus(status)
	}
	f.Text = strings.TrimSpace(q.Get("q"))
	if raw := strings.TrimSpace(q.Get("startDate")); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return f, common.Validation("Ngày bắt đầu không hợp lệ")
		}
		f.From = &from
	}
	if raw := strings.TrimSpace(q.Get("endDate")); raw != "" {
		end, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return f, common.Validation("Ngày kết thúc không hợp lệ")
		}
		to := end.AddDate(0, 0, 1)
		f.To = &to
	}

	rawYear := strings.TrimSpace(q.Get("year"))
	rawMonth := strings.TrimSpace(q.Get("month"))
	if rawMonth != "" && rawYear == "" {
		return f, common.Validation("Vui lòng chọn năm khi lọc theo tháng")
	}
	if rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil || year < 1 {
			return f, common.Validation("Năm không hợp lệ")
		}
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		to := from.AddDate(1, 0, 0)
		if rawMonth != "" {
			month, err := strconv.Atoi(rawMonth)
			if err != nil || month < 1 || month > 12 {
				return f, common.Validation("Tháng không hợp lệ")
			}
			from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
			to = from.AddDate(0, 1, 0)
		}
		if f.From == nil || from.After(*f.From) {
			f.From = &from
		}
		if f.To == nil || to.Before(*f.To) {
			f.To = &to
		}
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, common.Validation("Khoảng thời gian không hợp lệ")
	}
	return f, nil
}

// Statistics returns monthly revenue buckets for the filtered orders.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
		return
	}
	f, err := ParseFilter(r.URL.Query(), h.Svc.location())
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	buckets, err := h.Svc.Statistics(r.Context(), f)
	if err != nil {
		common.WriteError(w, h.Logger, common.Internal(err))
		return
	}
	common.OK(w, http.StatusOK, "Thống kê doanh thu", buckets)
}

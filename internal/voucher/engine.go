package voucher

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/pricing"
)

var (
	// ErrVoucherNotFound is returned for unknown or soft-deleted codes.
	ErrVoucherNotFound = errors.New("voucher not found")
	// ErrVoucherInactive is returned when the voucher window has not opened yet.
	ErrVoucherInactive = errors.New("voucher not active")
	// ErrVoucherExpired is returned when the voucher has already expired.
	ErrVoucherExpired = errors.New("voucher expired")
	// ErrVoucherExhausted indicates no redemptions remain.
	ErrVoucherExhausted = errors.New("voucher exhausted")
	// ErrMinimumSpendUnmet indicates the order total did not meet the voucher requirement.
	ErrMinimumSpendUnmet = errors.New("voucher minimum order amount not met")
	// ErrInvalidCode is returned when the code cannot be decoded or is blank.
	ErrInvalidCode = errors.New("voucher code invalid")
)

// Outcome is the verdict of a single voucher evaluation.
type Outcome string

const (
	OutcomeValid        Outcome = "VALID"
	OutcomeNotFound     Outcome = "NOT_FOUND"
	OutcomeNotYetActive Outcome = "NOT_YET_ACTIVE"
	OutcomeExpired      Outcome = "EXPIRED"
	OutcomeExhausted    Outcome = "EXHAUSTED"
	OutcomeBelowMinimum Outcome = "BELOW_MINIMUM"
)

// Result carries the outcome and, depending on it, the voucher or the
// minimum order amount the caller failed to reach.
type Result struct {
	Outcome        Outcome
	Voucher        *domain.Voucher
	MinOrderAmount int64
}

// Valid reports whether the voucher may be applied.
func (r Result) Valid() bool { return r.Outcome == OutcomeValid }

// Err returns the sentinel error matching the outcome, or nil when valid.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeValid:
		return nil
	case OutcomeNotYetActive:
		return ErrVoucherInactive
	case OutcomeExpired:
		return ErrVoucherExpired
	case OutcomeExhausted:
		return ErrVoucherExhausted
	case OutcomeBelowMinimum:
		return ErrMinimumSpendUnmet
	default:
		return ErrVoucherNotFound
	}
}

// Status is the HTTP status reported for the outcome.
func (r Result) Status() int {
	switch r.Outcome {
	case OutcomeValid:
		return http.StatusOK
	case OutcomeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Message is the user-facing text for the outcome.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeValid:
		return "Mã giảm giá hợp lệ"
	case OutcomeNotYetActive:
		return "Mã giảm giá chưa đến thời gian sử dụng"
	case OutcomeExpired:
		return "Mã giảm giá đã hết hạn"
	case OutcomeExhausted:
		return "Mã giảm giá đã hết lượt sử dụng"
	case OutcomeBelowMinimum:
		return "Đơn hàng chưa đạt giá trị tối thiểu để áp dụng mã giảm giá"
	default:
		return "Mã giảm giá không tồn tại"
	}
}

// AppError converts a failed result into an AppError for handlers.
func (r Result) AppError() *common.AppError {
	if r.Valid() {
		return nil
	}
	appErr := common.NewAppError(string(r.Outcome), r.Message(), r.Status(), r.Err())
	if r.Outcome == OutcomeBelowMinimum {
		appErr.Details = map[string]int64{"minOrderAmount": r.MinOrderAmount}
	}
	return appErr
}

// Discount returns the pricing view of a valid voucher.
func (r Result) Discount() *pricing.VoucherDiscount {
	if !r.Valid() || r.Voucher == nil {
		return nil
	}
	return &pricing.VoucherDiscount{Code: r.Voucher.Code, Percent: r.Voucher.Discount}
}

// NormalizeCode URL-decodes, trims and upper-cases a voucher code.
func NormalizeCode(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", ErrInvalidCode
	}
	code := strings.ToUpper(strings.TrimSpace(decoded))
	if code == "" {
		return "", ErrInvalidCode
	}
	return code, nil
}

// Validate evaluates v at now. The first failing check wins:
// not found, not yet active, expired, exhausted, below minimum.
// orderAmount is the raw caller-supplied amount; nil or blank skips the
// minimum check.
func Validate(v *domain.Voucher, now time.Time, orderAmount *string) Result {
	if v == nil || v.Deleted {
		return Result{Outcome: OutcomeNotFound}
	}
	if v.StartDate != nil && v.StartDate.After(now) {
		return Result{Outcome: OutcomeNotYetActive}
	}
	// A window that closes at or before it opens can never validate.
	if v.EndDate.Before(now) || (v.StartDate != nil && !v.EndDate.After(*v.StartDate)) {
		return Result{Outcome: OutcomeExpired}
	}
	if v.Quantity <= 0 {
		return Result{Outcome: OutcomeExhausted}
	}
	if orderAmount != nil && strings.TrimSpace(*orderAmount) != "" && v.MinOrderAmount > 0 {
		amount, ok := common.ParseAmount(*orderAmount)
		if !ok || amount < v.MinOrderAmount {
			return Result{Outcome: OutcomeBelowMinimum, MinOrderAmount: v.MinOrderAmount}
		}
	}
	return Result{Outcome: OutcomeValid, Voucher: v}
}

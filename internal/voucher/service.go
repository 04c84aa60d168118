package voucher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/pricing"
)

// Store captures the persistence methods required by the voucher service.
type Store interface {
	GetVoucherByCode(ctx context.Context, code string) (domain.Voucher, error)
	ListVouchers(ctx context.Context, f domain.ListFilter) ([]domain.Voucher, int64, error)
	CreateVoucher(ctx context.Context, v domain.Voucher) error
	UpdateVoucher(ctx context.Context, v domain.Voucher) error
	SoftDeleteVoucher(ctx context.Context, code string) error
	// RedeemVoucher decrements quantity iff it is positive and records the
	// redemption for orderCode. Replays for the same order are no-ops.
	RedeemVoucher(ctx context.Context, code, orderCode string, now time.Time) error
}

// Service encapsulates voucher evaluation and administration.
type Service struct {
	Store Store
	Now   func() time.Time
}

// Input is the admin payload for creating or updating a voucher.
type Input struct {
	Code           string     `json:"code" validate:"required,max=32"`
	Discount       float64    `json:"discount" validate:"gte=0,lte=100"`
	Quantity       int        `json:"quantity" validate:"gte=0"`
	MinOrderAmount int64      `json:"minOrderAmount" validate:"gte=0"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        time.Time  `json:"endDate" validate:"required"`
}

// Check looks up the code and evaluates it against orderAmount.
func (s *Service) Check(ctx context.Context, rawCode string, orderAmount *string) (Result, error) {
	if s == nil || s.Store == nil {
		return Result{}, errors.New("voucher service not configured")
	}
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return Result{Outcome: OutcomeNotFound}, nil
	}
	v, err := s.Store.GetVoucherByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Result{Outcome: OutcomeNotFound}, nil
		}
		return Result{}, fmt.Errorf("load voucher %s: %w", code, err)
	}
	return Validate(&v, s.now(), orderAmount), nil
}

// Quote validates the code against total and prices the discount. An empty
// code yields the identity quote.
func (s *Service) Quote(ctx context.Context, rawCode string, total int64) (pricing.Quote, string, error) {
	if rawCode == "" {
		return pricing.ApplyVoucherDiscount(total, nil), "", nil
	}
	amount := strconv.FormatInt(total, 10)
	res, err := s.Check(ctx, rawCode, &amount)
	if err != nil {
		return pricing.Quote{}, "", err
	}
	if !res.Valid() {
		return pricing.Quote{}, "", res.AppError()
	}
	return pricing.ApplyVoucherDiscount(total, res.Discount()), res.Voucher.Code, nil
}

// Redeem consumes one unit of the voucher for orderCode.
func (s *Service) Redeem(ctx context.Context, code, orderCode string) error {
	if s == nil || s.Store == nil {
		return errors.New("voucher service not configured")
	}
	if code == "" || orderCode == "" {
		return nil
	}
	if err := s.Store.RedeemVoucher(ctx, code, orderCode, s.now()); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return ErrVoucherExhausted
		}
		return fmt.Errorf("redeem voucher %s: %w", code, err)
	}
	return nil
}

// List returns a page of active vouchers.
func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]domain.Voucher, int64, error) {
	return s.Store.ListVouchers(ctx, f)
}

// Create stores a new voucher after normalising its code.
func (s *Service) Create(ctx context.Context, in Input) (domain.Voucher, error) {
	v, err := s.fromInput(in)
	if err != nil {
		return domain.Voucher{}, err
	}
	now := s.now()
	v.ID = uuid.NewString()
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := s.Store.CreateVoucher(ctx, v); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Voucher{}, common.Conflict("Mã giảm giá đã tồn tại", err)
		}
		return domain.Voucher{}, common.Internal(err)
	}
	return v, nil
}

// Update replaces the mutable fields of the voucher identified by code.
func (s *Service) Update(ctx context.Context, rawCode string, in Input) (domain.Voucher, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return domain.Voucher{}, common.Validation("Mã giảm giá không hợp lệ")
	}
	existing, err := s.Store.GetVoucherByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Voucher{}, common.NotFound("Mã giảm giá không tồn tại")
		}
		return domain.Voucher{}, common.Internal(err)
	}
	in.Code = existing.Code
	v, err := s.fromInput(in)
	if err != nil {
		return domain.Voucher{}, err
	}
	v.ID = existing.ID
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = s.now()
	if err := s.Store.UpdateVoucher(ctx, v); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Voucher{}, common.NotFound("Mã giảm giá không tồn tại")
		}
		return domain.Voucher{}, common.Internal(err)
	}
	return v, nil
}

// Delete soft-deletes the voucher.
func (s *Service) Delete(ctx context.Context, rawCode string) error {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return common.Validation("Mã giảm giá không hợp lệ")
	}
	if err := s.Store.SoftDeleteVoucher(ctx, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return common.NotFound("Mã giảm giá không tồn tại")
		}
		return common.Internal(err)
	}
	return nil
}

func (s *Service) fromInput(in Input) (domain.Voucher, error) {
	if err := common.ValidateStruct(in); err != nil {
		return domain.Voucher{}, err
	}
	code, err := NormalizeCode(in.Code)
	if err != nil {
		return domain.Voucher{}, common.Validation("Mã giảm giá không hợp lệ")
	}
	if in.StartDate != nil && !in.EndDate.After(*in.StartDate) {
		return domain.Voucher{}, common.Validation("Ngày kết thúc phải sau ngày bắt đầu")
	}
	return domain.Voucher{
		Code:           code,
		Discount:       in.Discount,
		Quantity:       in.Quantity,
		MinOrderAmount: in.MinOrderAmount,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
	}, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

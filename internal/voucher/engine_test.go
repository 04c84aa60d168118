package voucher

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/pricing"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func sale10() *domain.Voucher {
	start := now.Add(-24 * time.Hour)
	return &domain.Voucher{
		Code:           "SALE10",
		Discount:       10,
		Quantity:       5,
		MinOrderAmount: 100_000,
		StartDate:      &start,
		EndDate:        now.Add(24 * time.Hour),
	}
}

func amount(v string) *string { return &v }

func TestValidateOrder(t *testing.T) {
	future := now.Add(time.Hour)
	cases := []struct {
		name   string
		mutate func(v *domain.Voucher) *domain.Voucher
		amount *string
		want   Outcome
	}{
		{"missing", func(*domain.Voucher) *domain.Voucher { return nil }, nil, OutcomeNotFound},
		{"soft deleted", func(v *domain.Voucher) *domain.Voucher { v.Deleted = true; return v }, nil, OutcomeNotFound},
		{"not yet active", func(v *domain.Voucher) *domain.Voucher {
			v.StartDate = &future
			v.EndDate = future.Add(time.Hour)
			return v
		}, nil, OutcomeNotYetActive},
		{"expired", func(v *domain.Voucher) *domain.Voucher { v.EndDate = now.Add(-time.Minute); return v }, nil, OutcomeExpired},
		{"expired and exhausted reports expired", func(v *domain.Voucher) *domain.Voucher {
			v.EndDate = now.Add(-time.Minute)
			v.Quantity = 0
			return v
		}, nil, OutcomeExpired},
		{"exhausted", func(v *domain.Voucher) *domain.Voucher { v.Quantity = 0; return v }, nil, OutcomeExhausted},
		{"negative quantity", func(v *domain.Voucher) *domain.Voucher { v.Quantity = -1; return v }, nil, OutcomeExhausted},
		{"exhausted beats below minimum", func(v *domain.Voucher) *domain.Voucher { v.Quantity = 0; return v }, amount("1"), OutcomeExhausted},
		{"below minimum", func(v *domain.Voucher) *domain.Voucher { return v }, amount("50000"), OutcomeBelowMinimum},
		{"non numeric amount", func(v *domain.Voucher) *domain.Voucher { return v }, amount("abc"), OutcomeBelowMinimum},
		{"blank amount skips minimum", func(v *domain.Voucher) *domain.Voucher { return v }, amount("  "), OutcomeValid},
		{"no amount skips minimum", func(v *domain.Voucher) *domain.Voucher { return v }, nil, OutcomeValid},
		{"no minimum ignores garbage", func(v *domain.Voucher) *domain.Voucher { v.MinOrderAmount = 0; return v }, amount("abc"), OutcomeValid},
		{"exactly minimum", func(v *domain.Voucher) *domain.Voucher { return v }, amount("100000"), OutcomeValid},
		{"no start date", func(v *domain.Voucher) *domain.Voucher { v.StartDate = nil; return v }, nil, OutcomeValid},
		{"end equals start never validates", func(v *domain.Voucher) *domain.Voucher {
			start := now.Add(-time.Hour)
			v.StartDate = &start
			v.EndDate = start
			return v
		}, nil, OutcomeExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(tc.mutate(sale10()), now, tc.amount)
			require.Equal(t, tc.want, res.Outcome)
		})
	}
}

func TestValidateBelowMinimumCarriesAmount(t *testing.T) {
	res := Validate(sale10(), now, amount("50000"))
	require.Equal(t, OutcomeBelowMinimum, res.Outcome)
	require.Equal(t, int64(100_000), res.MinOrderAmount)
	require.ErrorIs(t, res.Err(), ErrMinimumSpendUnmet)
	require.Equal(t, http.StatusBadRequest, res.Status())

	appErr := res.AppError()
	require.NotNil(t, appErr)
	require.Equal(t, map[string]int64{"minOrderAmount": 100_000}, appErr.Details)
}

func TestValidateSale10Discount(t *testing.T) {
	res := Validate(sale10(), now, amount("200000"))
	require.True(t, res.Valid())
	require.NoError(t, res.Err())
	require.Nil(t, res.AppError())
	require.Equal(t, "SALE10", res.Voucher.Code)

	quote := pricing.ApplyVoucherDiscount(200_000, res.Discount())
	require.Equal(t, pricing.Quote{DiscountAmount: 20_000, FinalPrice: 180_000}, quote)
}

func TestResultStatus(t *testing.T) {
	require.Equal(t, http.StatusNotFound, Result{Outcome: OutcomeNotFound}.Status())
	require.Equal(t, http.StatusBadRequest, Result{Outcome: OutcomeExpired}.Status())
	require.Equal(t, http.StatusOK, Result{Outcome: OutcomeValid}.Status())
	require.Nil(t, Result{Outcome: OutcomeExpired}.Discount())
}

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode("%20sale10 ")
	require.NoError(t, err)
	require.Equal(t, "SALE10", code)

	code, err = NormalizeCode("t%E1%BA%BFt")
	require.NoError(t, err)
	require.Equal(t, "TẾT", code)

	_, err = NormalizeCode("   ")
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = NormalizeCode("%zz")
	require.ErrorIs(t, err, ErrInvalidCode)
}

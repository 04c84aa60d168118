package pricing

import (
	"errors"
	"math"
)

// Money represents a monetary value in whole dong; the currency has no minor unit.
type Money = int64

var (
	// ErrInvalidPrice is returned for negative prices.
	ErrInvalidPrice = errors.New("pricing: price must not be negative")
	// ErrInvalidDiscount is returned for percentages outside [0,100].
	ErrInvalidDiscount = errors.New("pricing: discount percent must be within [0,100]")
)

// VoucherDiscount is the slice of a voucher the pricing engine needs.
type VoucherDiscount struct {
	Code    string
	Percent float64
}

// Quote is the outcome of applying a voucher to an order total.
type Quote struct {
	DiscountAmount Money `json:"discountAmount"`
	FinalPrice     Money `json:"finalPrice"`
}

// DiscountedPrice returns price reduced by discountPercent, rounded to the
// nearest whole unit. Inputs are not clamped.
func DiscountedPrice(price Money, discountPercent float64) (Money, error) {
	if price < 0 {
		return 0, ErrInvalidPrice
	}
	if math.IsNaN(discountPercent) || discountPercent < 0 || discountPercent > 100 {
		return 0, ErrInvalidDiscount
	}
	return Money(math.Round(float64(price) * (100 - discountPercent) / 100)), nil
}

// ApplyVoucherDiscount applies a voucher percentage to total. A nil voucher
// leaves the total untouched. The payable amount never drops below zero, even
// for misconfigured vouchers above 100%.
func ApplyVoucherDiscount(total Money, v *VoucherDiscount) Quote {
	if v == nil {
		return Quote{DiscountAmount: 0, FinalPrice: total}
	}
	discount := Money(math.Round(float64(total) * v.Percent / 100))
	final := total - discount
	if final < 0 {
		final = 0
	}
	return Quote{DiscountAmount: discount, FinalPrice: final}
}

// TourItem describes a booked tour line for totals.
type TourItem struct {
	Price    Money
	Discount float64
	Seats    int
}

// RoomItem describes a booked hotel room line for totals. Nights below one
// count as a single night.
type RoomItem struct {
	Price    Money
	Quantity int
	Nights   int
}

// OrderTotal sums discounted tour seats and hotel room nights. Lines with a
// non-positive quantity are skipped.
func OrderTotal(tours []TourItem, rooms []RoomItem) (Money, error) {
	var total Money
	for _, t := range tours {
		if t.Seats <= 0 {
			continue
		}
		unit, err := DiscountedPrice(t.Price, t.Discount)
		if err != nil {
			return 0, err
		}
		total += unit * Money(t.Seats)
	}
	for _, r := range rooms {
		if r.Quantity <= 0 {
			continue
		}
		if r.Price < 0 {
			return 0, ErrInvalidPrice
		}
		nights := r.Nights
		if nights < 1 {
			nights = 1
		}
		total += r.Price * Money(r.Quantity) * Money(nights)
	}
	return total, nil
}

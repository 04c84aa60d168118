package domain

import "time"

// Voucher is a percentage discount code with a validity window and stock.
type Voucher struct {
	ID             string     `bson:"_id" json:"id"`
	Code           string     `bson:"code" json:"code"`
	Discount       float64    `bson:"discount" json:"discount"`
	Quantity       int        `bson:"quantity" json:"quantity"`
	MinOrderAmount int64      `bson:"minOrderAmount" json:"minOrderAmount"`
	StartDate      *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate        time.Time  `bson:"endDate" json:"endDate"`
	Deleted        bool       `bson:"deleted" json:"-"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// VoucherRedemption records that an order consumed one unit of a voucher.
type VoucherRedemption struct {
	ID        string    `bson:"_id" json:"id"`
	Code      string    `bson:"code" json:"code"`
	OrderCode string    `bson:"orderCode" json:"orderCode"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

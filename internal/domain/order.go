package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefund    OrderStatus = "refund"
)

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch s := OrderStatus(raw); s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefund:
		return s, true
	}
	return "", false
}

// CanTransition reports whether an order may move from one status to another.
// Refund is reachable only from cancelled.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusCancelled
	case OrderStatusPaid:
		return to == OrderStatusCancelled
	case OrderStatusCancelled:
		return to == OrderStatusRefund
	}
	return false
}

// Order is a booking document. Line items are embedded.
type Order struct {
	ID             string      `bson:"_id" json:"id"`
	OrderCode      string      `bson:"orderCode" json:"orderCode"`
	UserID         string      `bson:"userId,omitempty" json:"userId,omitempty"`
	FullName       string      `bson:"fullName" json:"fullName"`
	Email          string      `bson:"email" json:"email"`
	Phone          string      `bson:"phone" json:"phone"`
	Note           string      `bson:"note,omitempty" json:"note,omitempty"`
	Status         OrderStatus `bson:"status" json:"status"`
	Tours          []TourLine  `bson:"tours" json:"tours"`
	Hotels         []HotelLine `bson:"hotels" json:"hotels"`
	VoucherCode    string      `bson:"voucherCode,omitempty" json:"voucherCode,omitempty"`
	TotalPrice     int64       `bson:"totalPrice" json:"totalPrice"`
	DiscountAmount int64       `bson:"discountAmount" json:"discountAmount"`
	FinalPrice     int64       `bson:"finalPrice" json:"finalPrice"`
	PaymentMethod  string      `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	PaidAt         *time.Time  `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt      time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// TourLine is a booked tour with its scheduled departures.
type TourLine struct {
	TourID     string      `bson:"tourId" json:"tour_id"`
	Title      string      `bson:"title,omitempty" json:"title,omitempty"`
	Price      int64       `bson:"price" json:"price"`
	Discount   float64     `bson:"discount" json:"discount"`
	TimeStarts []TimeStart `bson:"timeStarts" json:"timeStarts"`
}

// Seats is the number of places booked across all departures.
func (l TourLine) Seats() int {
	var n int
	for _, ts := range l.TimeStarts {
		n += ts.Stock
	}
	return n
}

// TimeStart is one departure of a tour and the number of places booked on it.
type TimeStart struct {
	TimeDepart time.Time `bson:"timeDepart" json:"timeDepart"`
	Stock      int       `bson:"stock" json:"stock"`
}

// HotelLine is a booked hotel with its rooms.
type HotelLine struct {
	HotelID string     `bson:"hotelId" json:"hotel_id"`
	Name    string     `bson:"name,omitempty" json:"name,omitempty"`
	Rooms   []RoomLine `bson:"rooms" json:"rooms"`
}

// RoomLine is a booked room type within a hotel line.
type RoomLine struct {
	RoomID   string    `bson:"roomId" json:"room_id"`
	Quantity int       `bson:"quantity" json:"quantity"`
	Price    int64     `bson:"price" json:"price"`
	CheckIn  time.Time `bson:"checkIn" json:"checkIn"`
	CheckOut time.Time `bson:"checkOut" json:"checkOut"`
}

// OrderPatch carries the fields written alongside a status transition.
type OrderPatch struct {
	PaymentMethod string
	PaidAt        *time.Time
	UpdatedAt     time.Time
}

package domain

import "time"

// OrderFilter is a storage-agnostic order query. Zero-valued fields are ignored.
type OrderFilter struct {
	Status *OrderStatus
	// From is inclusive and To exclusive.
	From   *time.Time
	To     *time.Time
	Text   string
	UserID string
}

// WithStatus returns a copy of f restricted to status.
func (f OrderFilter) WithStatus(status OrderStatus) OrderFilter {
	f.Status = &status
	return f
}

// WithRange returns a copy of f restricted to [from, to).
func (f OrderFilter) WithRange(from, to time.Time) OrderFilter {
	f.From = &from
	f.To = &to
	return f
}

// ListFilter narrows catalog and voucher listings.
type ListFilter struct {
	Text   string
	Offset int64
	Limit  int64
}

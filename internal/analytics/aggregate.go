package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// Bucket is the revenue summary of one calendar month.
type Bucket struct {
	Month        string `json:"month"`
	Tours        int64  `json:"tours"`
	Hotels       int64  `json:"hotels"`
	TotalPrice   int64  `json:"totalPrice"`
	TourRevenue  int64  `json:"tourRevenue"`
	HotelRevenue int64  `json:"hotelRevenue"`

	year  int
	month time.Month
}

// Aggregate groups orders by the month of their creation time in loc and
// sums tour and hotel volumes. Only the first departure of a tour line is
// counted. Buckets are returned in calendar order.
func Aggregate(orders []domain.Order, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	byKey := make(map[string]*Bucket)
	for _, o := range orders {
		created := o.CreatedAt.In(loc)
		key := fmt.Sprintf("%d/%d", int(created.Month()), created.Year())
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Month: key, year: created.Year(), month: created.Month()}
			byKey[key] = b
		}
		for _, line := range o.Tours {
			var stock int64
			if len(line.TimeStarts) > 0 {
				stock = int64(line.TimeStarts[0].Stock)
			}
			b.Tours += stock
			b.TourRevenue += line.Price * stock
		}
		for _, line := range o.Hotels {
			for _, room := range line.Rooms {
				qty := int64(room.Quantity)
				b.Hotels += qty
				b.HotelRevenue += room.Price * qty
			}
		}
		b.TotalPrice = b.TourRevenue + b.HotelRevenue
	}

	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].year != out[j].year {
			return out[i].year < out[j].year
		}
		return out[i].month < out[j].month
	})
	return out
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
		OrderStatusPaid:      {OrderStatusCancelled},
		OrderStatusCancelled: {OrderStatusRefund},
		OrderStatusRefund:    nil,
	}
	all := []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefund}
	for from, targets := range allowed {
		for _, to := range all {
			want := false
			for _, target := range targets {
				if target == to {
					want = true
				}
			}
			require.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus("paid")
	require.True(t, ok)
	require.Equal(t, OrderStatusPaid, s)

	_, ok = ParseOrderStatus("PAID")
	require.False(t, ok)
}

func TestTourLineSeats(t *testing.T) {
	line := TourLine{TimeStarts: []TimeStart{{Stock: 2}, {Stock: 3}}}
	require.Equal(t, 5, line.Seats())
	require.Equal(t, 0, TourLine{}.Seats())
}

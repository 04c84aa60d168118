package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/noah-isme/backend-tour/internal/domain"
)

func TestOrderFilterEmpty(t *testing.T) {
	require.Equal(t, bson.M{}, orderFilter(domain.OrderFilter{}))
}

func TestOrderFilterAllFields(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	f := domain.OrderFilter{Text: " a.b ", UserID: "u1"}.
		WithStatus(domain.OrderStatusPaid).
		WithRange(from, to)

	got := orderFilter(f)
	require.Equal(t, "paid", got["status"])
	require.Equal(t, "u1", got["userId"])
	require.Equal(t, bson.M{"$gte": from, "$lt": to}, got["createdAt"])

	or, ok := got["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 4)
	require.Equal(t, bson.M{"orderCode": bson.M{"$regex": `a\.b`, "$options": "i"}}, or[0])
}

func TestOrderFilterOpenRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := orderFilter(domain.OrderFilter{From: &from})
	require.Equal(t, bson.M{"$gte": from}, got["createdAt"])
}

func TestLiveFilter(t *testing.T) {
	got := liveFilter("", "title")
	require.Equal(t, bson.M{"deleted": bson.M{"$ne": true}}, got)

	got = liveFilter("Đà Lạt", "title", "destination")
	require.Len(t, got["$or"], 2)
}

func TestPageOptions(t *testing.T) {
	opts := pageOptions(40, 20)
	require.EqualValues(t, 40, *opts.Skip)
	require.EqualValues(t, 20, *opts.Limit)

	opts = pageOptions(0, 0)
	require.Nil(t, opts.Skip)
	require.Nil(t, opts.Limit)
}

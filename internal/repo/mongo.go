package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// Collection names.
const (
	CollOrders      = "orders"
	CollVouchers    = "vouchers"
	CollRedemptions = "voucher_redemptions"
	CollTours       = "tours"
	CollHotels      = "hotels"
	CollUsers       = "users"
	CollAudit       = "audit_logs"
)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string, monitor *event.CommandMonitor) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri)
	if monitor != nil {
		opts.SetMonitor(monitor)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes every repository relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	plan := map[string][]mongo.IndexModel{
		CollOrders: {
			{Keys: bson.D{{Key: "orderCode", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		CollVouchers: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		},
		CollRedemptions: {
			{Keys: bson.D{{Key: "orderCode", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "code", Value: 1}}},
		},
		CollTours: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "deleted", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollHotels: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "deleted", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		CollAudit: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "actorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for coll, models := range plan {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// mapErr translates driver errors into domain sentinels.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func pageOptions(offset, limit int64) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if offset > 0 {
		opts.SetSkip(offset)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}

// findPage runs a filtered, paginated query and the matching count.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, offset, limit int64) ([]T, int64, error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", coll.Name(), err)
	}
	cur, err := coll.Find(ctx, filter, pageOptions(offset, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	items := make([]T, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return items, total, nil
}

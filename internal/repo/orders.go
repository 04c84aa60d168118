package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// OrderRepo persists orders in MongoDB.
type OrderRepo struct {
	coll *mongo.Collection
}

// NewOrderRepo binds the repository to the orders collection.
func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{coll: db.Collection(CollOrders)}
}

// InsertOrder stores a new order.
func (r *OrderRepo) InsertOrder(ctx context.Context, o domain.Order) error {
	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return mapErr("insert order", err)
	}
	return nil
}

// GetOrderByCode loads an order by its public code.
func (r *OrderRepo) GetOrderByCode(ctx context.Context, code string) (domain.Order, error) {
	var o domain.Order
	err := r.coll.FindOne(ctx, bson.M{"orderCode": code}).Decode(&o)
	return o, mapErr("get order "+code, err)
}

// ListOrders returns one page of orders, newest first, and the total match count.
func (r *OrderRepo) ListOrders(ctx context.Context, f domain.OrderFilter, offset, limit int64) ([]domain.Order, int64, error) {
	return findPage[domain.Order](ctx, r.coll, orderFilter(f), offset, limit)
}

// FindOrders returns every order matching f.
func (r *OrderRepo) FindOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.coll.Find(ctx, orderFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	orders := make([]domain.Order, 0)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// TransitionOrder applies a status change only while the stored status is still from.
func (r *OrderRepo) TransitionOrder(ctx context.Context, code string, from, to domain.OrderStatus, patch domain.OrderPatch) (domain.Order, error) {
	set := bson.M{"status": to, "updatedAt": patch.UpdatedAt}
	if patch.PaymentMethod != "" {
		set["paymentMethod"] = patch.PaymentMethod
	}
	if patch.PaidAt != nil {
		set["paidAt"] = *patch.PaidAt
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o domain.Order
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"orderCode": code, "status": from}, bson.M{"$set": set}, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.coll.CountDocuments(ctx, bson.M{"orderCode": code})
		if cerr != nil {
			return o, fmt.Errorf("failed to check order %s: %w", code, cerr)
		}
		if n == 0 {
			return o, domain.ErrNotFound
		}
		return o, domain.ErrConflict
	}
	return o, mapErr("transition order "+code, err)
}

// DeleteOrder removes an order permanently.
func (r *OrderRepo) DeleteOrder(ctx context.Context, code string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"orderCode": code})
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", code, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

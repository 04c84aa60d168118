package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// VoucherRepo persists vouchers and their redemptions.
type VoucherRepo struct {
	coll        *mongo.Collection
	redemptions *mongo.Collection
}

// NewVoucherRepo binds the repository to the voucher collections.
func NewVoucherRepo(db *mongo.Database) *VoucherRepo {
	return &VoucherRepo{
		coll:        db.Collection(CollVouchers),
		redemptions: db.Collection(CollRedemptions),
	}
}

// GetVoucherByCode returns the voucher including soft-deleted ones; callers
// decide how to treat the deleted flag.
func (r *VoucherRepo) GetVoucherByCode(ctx context.Context, code string) (domain.Voucher, error) {
	var v domain.Voucher
	err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&v)
	return v, mapErr("get voucher "+code, err)
}

// ListVouchers pages through live vouchers.
func (r *VoucherRepo) ListVouchers(ctx context.Context, f domain.ListFilter) ([]domain.Voucher, int64, error) {
	return findPage[domain.Voucher](ctx, r.coll, liveFilter(f.Text, "code"), f.Offset, f.Limit)
}

// CreateVoucher inserts a voucher. The code index is unique.
func (r *VoucherRepo) CreateVoucher(ctx context.Context, v domain.Voucher) error {
	if _, err := r.coll.InsertOne(ctx, v); err != nil {
		return mapErr("create voucher", err)
	}
	return nil
}

// UpdateVoucher replaces the mutable fields of a live voucher.
func (r *VoucherRepo) UpdateVoucher(ctx context.Context, v domain.Voucher) error {
	set := bson.M{
		"discount":       v.Discount,
		"quantity":       v.Quantity,
		"minOrderAmount": v.MinOrderAmount,
		"startDate":      v.StartDate,
		"endDate":        v.EndDate,
		"updatedAt":      v.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"code": v.Code, "deleted": bson.M{"$ne": true}}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update voucher %s: %w", v.Code, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDeleteVoucher flags the voucher as deleted.
func (r *VoucherRepo) SoftDeleteVoucher(ctx context.Context, code string) error {
	return softDelete(ctx, r.coll, bson.M{"code": code})
}

// RedeemVoucher consumes one unit for orderCode. A redemption already
// recorded for the order makes the call a no-op.
func (r *VoucherRepo) RedeemVoucher(ctx context.Context, code, orderCode string, now time.Time) error {
	err := r.redemptions.FindOne(ctx, bson.M{"orderCode": orderCode}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to look up redemption for %s: %w", orderCode, err)
	}

	live := bson.M{"code": code, "deleted": bson.M{"$ne": true}, "quantity": bson.M{"$gt": 0}}
	dec := bson.M{"$inc": bson.M{"quantity": -1}, "$set": bson.M{"updatedAt": now}}
	if err := r.coll.FindOneAndUpdate(ctx, live, dec).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to decrement voucher %s: %w", code, err)
	}

	rec := domain.VoucherRedemption{ID: uuid.NewString(), Code: code, OrderCode: orderCode, CreatedAt: now}
	if _, err := r.redemptions.InsertOne(ctx, rec); err != nil {
		// A concurrent redeem for the same order won; give the unit back.
		if _, uerr := r.coll.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$inc": bson.M{"quantity": 1}}); uerr != nil {
			return fmt.Errorf("failed to restore voucher %s: %w", code, uerr)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to record redemption for %s: %w", orderCode, err)
	}
	return nil
}

func softDelete(ctx context.Context, coll *mongo.Collection, filter bson.M) error {
	filter["deleted"] = bson.M{"$ne": true}
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"deleted": true, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

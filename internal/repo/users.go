package repo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// UserRepo persists back-office accounts.
type UserRepo struct {
	coll *mongo.Collection
}

// NewUserRepo binds the repository to the users collection.
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(CollUsers)}
}

// InsertUser stores a new account. Emails are unique.
func (r *UserRepo) InsertUser(ctx context.Context, u domain.User) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return mapErr("insert user", err)
	}
	return nil
}

// GetUserByID loads a live account.
func (r *UserRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return findOne[domain.User](ctx, r.coll, byID(id))
}

// GetUserByEmail loads a live account by its lower-cased email.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return findOne[domain.User](ctx, r.coll, bson.M{"email": email, "deleted": bson.M{"$ne": true}})
}

// ListUsers pages through live accounts.
func (r *UserRepo) ListUsers(ctx context.Context, f domain.ListFilter) ([]domain.User, int64, error) {
	return findPage[domain.User](ctx, r.coll, liveFilter(f.Text, "fullName", "email", "phone"), f.Offset, f.Limit)
}

// UpdateUser overwrites a live account.
func (r *UserRepo) UpdateUser(ctx context.Context, u domain.User) error {
	if err := replaceLive(ctx, r.coll, u.ID, u); err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

// SoftDeleteUser flags an account as deleted.
func (r *UserRepo) SoftDeleteUser(ctx context.Context, id string) error {
	return softDelete(ctx, r.coll, bson.M{"_id": id})
}

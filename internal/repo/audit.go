package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// AuditRepo appends and lists back-office audit entries.
type AuditRepo struct {
	coll *mongo.Collection
}

// NewAuditRepo binds the repository to the audit collection.
func NewAuditRepo(db *mongo.Database) *AuditRepo {
	return &AuditRepo{coll: db.Collection(CollAudit)}
}

// InsertAudit appends e.
func (r *AuditRepo) InsertAudit(ctx context.Context, e domain.AuditEntry) error {
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		return mapErr("insert audit entry", err)
	}
	return nil
}

// ListAudit returns the newest entries first.
func (r *AuditRepo) ListAudit(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	filter := bson.M{}
	if f.ActorID != "" {
		filter["actorId"] = f.ActorID
	}
	if f.Resource != "" {
		filter["resource"] = f.Resource
	}
	return findPage[domain.AuditEntry](ctx, r.coll, filter, f.Offset, f.Limit)
}

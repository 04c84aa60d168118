package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// Store persists audit entries.
type Store interface {
	InsertAudit(ctx context.Context, e domain.AuditEntry) error
	ListAudit(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, int64, error)
}

// Service records and lists back-office audit entries.
type Service struct {
	Store Store
	Now   func() time.Time
}

// Record stamps and stores e.
func (s *Service) Record(ctx context.Context, e domain.AuditEntry) error {
	if s == nil || s.Store == nil {
		return errors.New("audit store not configured")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	return s.Store.InsertAudit(ctx, e)
}

// List returns entries matching f, newest first.
func (s *Service) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return s.Store.ListAudit(ctx, f)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

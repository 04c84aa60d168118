package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-tour/internal/auth"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

const (
	msgDuplicateEmail = "Email đã được sử dụng"
	msgNotFound       = "Không tìm thấy tài khoản"
	msgBadPermission  = "Quyền không hợp lệ"
)

// Store captures the persistence methods required by the user service.
type Store interface {
	InsertUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	ListUsers(ctx context.Context, f domain.ListFilter) ([]domain.User, int64, error)
	UpdateUser(ctx context.Context, u domain.User) error
	SoftDeleteUser(ctx context.Context, id string) error
}

// Service manages back-office accounts.
type Service struct {
	Store Store
	Now   func() time.Time
}

// CreateInput is the payload for a new account.
type CreateInput struct {
	FullName    string   `json:"fullName" validate:"required,max=100"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required,vnphone"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Role        string   `json:"role" validate:"omitempty,oneof=admin staff"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateInput is the payload for editing an account. An empty password keeps
// the current one.
type UpdateInput struct {
	FullName    string   `json:"fullName" validate:"required,max=100"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required,vnphone"`
	Password    string   `json:"password" validate:"omitempty,min=8,max=72"`
	Role        string   `json:"role" validate:"omitempty,oneof=admin staff"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create validates and stores a new account. Duplicate emails are a conflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.User, error) {
	if err := common.ValidateStruct(in); err != nil {
		return domain.User{}, err
	}
	if err := checkPermissions(in.Permissions); err != nil {
		return domain.User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := domain.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        normalizeEmail(in.Email),
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         defaultString(in.Role, "staff"),
		Permissions:  permissionsOrEmpty(in.Permissions),
		Status:       defaultString(in.Status, domain.UserStatusActive),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.InsertUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.User{}, common.Conflict(msgDuplicateEmail, err)
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Get returns a live account.
func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, common.NotFound(msgNotFound)
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List pages through accounts.
func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]domain.User, int64, error) {
	return s.Store.ListUsers(ctx, f)
}

// Update edits an account.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (domain.User, error) {
	if err := common.ValidateStruct(in); err != nil {
		return domain.User{}, err
	}
	if err := checkPermissions(in.Permissions); err != nil {
		return domain.User{}, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	u.FullName = strings.TrimSpace(in.FullName)
	u.Email = normalizeEmail(in.Email)
	u.Phone = in.Phone
	u.Role = defaultString(in.Role, u.Role)
	u.Permissions = permissionsOrEmpty(in.Permissions)
	u.Status = defaultString(in.Status, u.Status)
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.Store.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return domain.User{}, common.Conflict(msgDuplicateEmail, err)
		case errors.Is(err, domain.ErrNotFound):
			return domain.User{}, common.NotFound(msgNotFound)
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete soft-deletes an account.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Store.SoftDeleteUser(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return common.NotFound(msgNotFound)
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func checkPermissions(perms []string) error {
	for _, p := range perms {
		if !auth.KnownPermission(p) {
			appErr := common.Validation(msgBadPermission)
			appErr.Details = map[string]any{"permission": p}
			return appErr
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func permissionsOrEmpty(perms []string) []string {
	if perms == nil {
		return []string{}
	}
	return perms
}

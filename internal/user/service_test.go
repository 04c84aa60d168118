package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/auth"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/user"
)

type memStore struct {
	users map[string]domain.User
}

func (m *memStore) emailTaken(email, exceptID string) bool {
	for _, u := range m.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *memStore) InsertUser(_ context.Context, u domain.User) error {
	if m.emailTaken(u.Email, "") {
		return domain.ErrDuplicate
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.users[id]
	if !ok || u.Deleted {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memStore) ListUsers(_ context.Context, _ domain.ListFilter) ([]domain.User, int64, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) UpdateUser(_ context.Context, u domain.User) error {
	if m.emailTaken(u.Email, u.ID) {
		return domain.ErrDuplicate
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) SoftDeleteUser(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok || u.Deleted {
		return domain.ErrNotFound
	}
	u.Deleted = true
	m.users[id] = u
	return nil
}

func newService() (*user.Service, *memStore) {
	store := &memStore{users: map[string]domain.User{}}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &user.Service{Store: store, Now: func() time.Time { return now }}, store
}

func validInput() user.CreateInput {
	return user.CreateInput{
		FullName:    "Nguyễn Văn A",
		Email:       "A@Tour.vn",
		Phone:       "0912345678",
		Password:    "password1",
		Permissions: []string{auth.PermOrdersView},
	}
}

func TestCreateUser(t *testing.T) {
	svc, _ := newService()
	u, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, "a@tour.vn", u.Email)
	require.Equal(t, "staff", u.Role)
	require.Equal(t, domain.UserStatusActive, u.Status)
	ok, err := argon2id.ComparePasswordAndHash("password1", u.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Create(context.Background(), validInput())
	require.True(t, common.HasKind(err, common.KindConflict))
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newService()
	cases := map[string]func(*user.CreateInput){
		"bad email":        func(in *user.CreateInput) { in.Email = "not-an-email" },
		"bad phone":        func(in *user.CreateInput) { in.Phone = "12345" },
		"short password":   func(in *user.CreateInput) { in.Password = "short" },
		"unknown role":     func(in *user.CreateInput) { in.Role = "root" },
		"unknown perm":     func(in *user.CreateInput) { in.Permissions = []string{"launch_rockets"} },
		"missing fullName": func(in *user.CreateInput) { in.FullName = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			require.True(t, common.HasKind(err, common.KindValidation), "%v", err)
		})
	}

	in := validInput()
	in.Phone = "+84912345678"
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	a, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	other := validInput()
	other.Email = "b@tour.vn"
	b, err := svc.Create(ctx, other)
	require.NoError(t, err)

	upd := user.UpdateInput{FullName: "B", Email: "b@tour.vn", Phone: "0912345678", Status: domain.UserStatusInactive}
	got, err := svc.Update(ctx, b.ID, upd)
	require.NoError(t, err)
	require.Equal(t, b.PasswordHash, got.PasswordHash)
	require.Equal(t, domain.UserStatusInactive, got.Status)

	upd.Email = a.Email
	_, err = svc.Update(ctx, b.ID, upd)
	require.True(t, common.HasKind(err, common.KindConflict))

	_, err = svc.Update(ctx, "missing", user.UpdateInput{FullName: "x", Email: "x@tour.vn", Phone: "0912345678"})
	require.True(t, common.HasKind(err, common.KindNotFound))

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.True(t, common.HasKind(svc.Delete(ctx, a.ID), common.KindNotFound))
}

func TestHandlers(t *testing.T) {
	svc, _ := newService()
	h := &user.Handler{Service: svc, Logger: zerolog.Nop()}

	rec := httptest.NewRecorder()
	body := `{"fullName":"C","email":"c@tour.vn","phone":"0987654321","password":"password1"}`
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotContains(t, rec.Body.String(), "passwordHash")

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users/nope", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	last    domain.AuditFilter
	err     error
}

func (m *memoryStore) InsertAudit(_ context.Context, e domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryStore) ListAudit(_ context.Context, f domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = f
	return m.entries, int64(len(m.entries)), m.err
}

func withPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := common.NewPrincipal("admin-1", "admin", []string{"orders_edit"})
		next.ServeHTTP(w, r.WithContext(common.WithPrincipal(r.Context(), p)))
	})
}

func newTestRouter(svc *Service) http.Handler {
	rec := Recorder{Service: svc, Logger: zerolog.Nop()}
	r := chi.NewRouter()
	r.Use(withPrincipal)
	r.With(rec.Middleware("order", "orderCode")).Patch("/orders/{orderCode}/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	r.With(rec.Middleware("order", "orderCode")).Get("/orders/{orderCode}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(rec.Middleware("tour", "")).Post("/tours", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})
	return r
}

func TestRecorderWritesMutations(t *testing.T) {
	store := &memoryStore{}
	fixed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	router := newTestRouter(&Service{Store: store, Now: func() time.Time { return fixed }})

	req := httptest.NewRequest(http.MethodPatch, "/orders/ORD1/status", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	router.ServeHTTP(httptest.NewRecorder(), req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/tours", nil))

	require.Len(t, store.entries, 2)
	first := store.entries[0]
	require.Equal(t, "update", first.Action)
	require.Equal(t, "order", first.Resource)
	require.Equal(t, "ORD1", first.ResourceID)
	require.Equal(t, "PATCH /orders/{orderCode}/status", first.Route)
	require.Equal(t, http.StatusConflict, first.Status)
	require.Equal(t, "admin-1", first.ActorID)
	require.Equal(t, "admin", first.ActorRole)
	require.Equal(t, "10.0.0.9", first.IP)
	require.Equal(t, fixed, first.CreatedAt)
	require.NotEmpty(t, first.ID)

	second := store.entries[1]
	require.Equal(t, "create", second.Action)
	require.Equal(t, http.StatusOK, second.Status)
	require.Empty(t, second.ResourceID)
}

func TestRecorderSkipsReads(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(&Service{Store: store})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders/ORD1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, store.entries)
}

func TestRecorderStoreFailureKeepsResponse(t *testing.T) {
	store := &memoryStore{err: errors.New("mongo down")}
	router := newTestRouter(&Service{Store: store})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tours", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, "{}", rr.Body.String())
}

func TestServiceRecordWithoutStore(t *testing.T) {
	var svc *Service
	require.Error(t, svc.Record(context.Background(), domain.AuditEntry{}))
}

func TestHandlerList(t *testing.T) {
	store := &memoryStore{entries: []domain.AuditEntry{{ID: "a1", Action: "delete", Resource: "voucher"}}}
	h := &Handler{Service: &Service{Store: store}, Logger: zerolog.Nop()}

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/admin/audit-logs?page=2&limit=10&resource=voucher&actor_id=u1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, domain.AuditFilter{ActorID: "u1", Resource: "voucher", Offset: 10, Limit: 10}, store.last)

	var env struct {
		Code int `json:"code"`
		Data struct {
			Items      []domain.AuditEntry `json:"items"`
			Pagination common.Pagination   `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, http.StatusOK, env.Code)
	require.Len(t, env.Data.Items, 1)
	require.Equal(t, int64(1), env.Data.Pagination.TotalItems)
}

func TestHandlerListWithoutService(t *testing.T) {
	rr := httptest.NewRecorder()
	(&Handler{}).List(rr, httptest.NewRequest(http.MethodGet, "/admin/audit-logs", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

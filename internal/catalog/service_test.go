package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/cache"
	"github.com/noah-isme/backend-tour/internal/catalog"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

type memStore struct {
	tours     map[string]domain.Tour
	hotels    map[string]domain.Hotel
	listCalls int
}

func newMemStore() *memStore {
	return &memStore{tours: map[string]domain.Tour{}, hotels: map[string]domain.Hotel{}}
}

func (m *memStore) GetTour(_ context.Context, id string) (domain.Tour, error) {
	t, ok := m.tours[id]
	if !ok || t.Deleted {
		return domain.Tour{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *memStore) GetTourBySlug(_ context.Context, slug string) (domain.Tour, error) {
	for _, t := range m.tours {
		if t.Slug == slug && !t.Deleted {
			return t, nil
		}
	}
	return domain.Tour{}, domain.ErrNotFound
}

func (m *memStore) ListTours(_ context.Context, f domain.ListFilter) ([]domain.Tour, int64, error) {
	m.listCalls++
	var out []domain.Tour
	for _, t := range m.tours {
		if !t.Deleted && strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Text)) {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memStore) InsertTour(_ context.Context, t domain.Tour) error {
	for _, existing := range m.tours {
		if existing.Slug == t.Slug {
			return domain.ErrDuplicate
		}
	}
	m.tours[t.ID] = t
	return nil
}

func (m *memStore) ReplaceTour(_ context.Context, t domain.Tour) error {
	if _, ok := m.tours[t.ID]; !ok {
		return domain.ErrNotFound
	}
	m.tours[t.ID] = t
	return nil
}

func (m *memStore) SoftDeleteTour(_ context.Context, id string) error {
	t, ok := m.tours[id]
	if !ok || t.Deleted {
		return domain.ErrNotFound
	}
	t.Deleted = true
	m.tours[id] = t
	return nil
}

func (m *memStore) GetHotel(_ context.Context, id string) (domain.Hotel, error) {
	h, ok := m.hotels[id]
	if !ok || h.Deleted {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (m *memStore) GetHotelBySlug(_ context.Context, slug string) (domain.Hotel, error) {
	for _, h := range m.hotels {
		if h.Slug == slug && !h.Deleted {
			return h, nil
		}
	}
	return domain.Hotel{}, domain.ErrNotFound
}

func (m *memStore) ListHotels(_ context.Context, _ domain.ListFilter) ([]domain.Hotel, int64, error) {
	var out []domain.Hotel
	for _, h := range m.hotels {
		if !h.Deleted {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memStore) InsertHotel(_ context.Context, h domain.Hotel) error {
	m.hotels[h.ID] = h
	return nil
}

func (m *memStore) ReplaceHotel(_ context.Context, h domain.Hotel) error {
	if _, ok := m.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	m.hotels[h.ID] = h
	return nil
}

func (m *memStore) SoftDeleteHotel(_ context.Context, id string) error {
	h, ok := m.hotels[id]
	if !ok {
		return domain.ErrNotFound
	}
	h.Deleted = true
	m.hotels[id] = h
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T, store *memStore) (*catalog.Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Store:        store,
		Cache:        cache.NewJSON(client, catalog.CachePrefix, time.Minute),
		DefaultLimit: 10,
		MaxLimit:     50,
		Now:          func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, mr
}

func tourInput(title string) catalog.TourInput {
	return catalog.TourInput{
		Title:       title,
		Destination: "Lâm Đồng",
		Price:       2_000_000,
		Discount:    10,
		TimeStarts:  []catalog.TimeStartInput{{TimeDepart: fixedNow.AddDate(0, 1, 0), Stock: 20}},
	}
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := catalog.NewService(catalog.ServiceConfig{})
	require.Error(t, err)
}

func TestParseListParams(t *testing.T) {
	svc, _ := newService(t, newMemStore())

	p, err := svc.ParseListParams(url.Values{"q": {" Đà Lạt "}, "page": {"2"}, "limit": {"500"}})
	require.NoError(t, err)
	require.Equal(t, catalog.ListParams{Query: "Đà Lạt", Page: 2, Limit: 50}, p)

	p, err = svc.ParseListParams(url.Values{})
	require.NoError(t, err)
	require.Equal(t, 10, p.Limit)

	_, err = svc.ParseListParams(url.Values{"page": {"0"}})
	require.True(t, common.HasKind(err, common.KindValidation))
	_, err = svc.ParseListParams(url.Values{"limit": {"abc"}})
	require.True(t, common.HasKind(err, common.KindValidation))
}

func TestCreateTourAssignsSlugAndFinalPrice(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(t, store)

	tour, err := svc.CreateTour(context.Background(), tourInput("Đà Lạt 3 ngày"))
	require.NoError(t, err)
	require.Equal(t, "da-lat-3-ngay", tour.Slug)
	require.EqualValues(t, 1_800_000, tour.FinalPrice)
	require.Equal(t, fixedNow, tour.CreatedAt)

	again, err := svc.CreateTour(context.Background(), tourInput("Đà Lạt 3 ngày"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(again.Slug, "da-lat-3-ngay-"))
	require.NotEqual(t, tour.Slug, again.Slug)
}

func TestCreateTourValidation(t *testing.T) {
	svc, _ := newService(t, newMemStore())
	in := tourInput("Sapa")
	in.Discount = 120
	_, err := svc.CreateTour(context.Background(), in)
	require.True(t, common.HasKind(err, common.KindValidation))

	in = tourInput("Sapa")
	in.TimeStarts = nil
	_, err = svc.CreateTour(context.Background(), in)
	require.True(t, common.HasKind(err, common.KindValidation))
}

func TestListToursIsCachedUntilMutation(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(t, store)
	ctx := context.Background()
	created, err := svc.CreateTour(ctx, tourInput("Hà Giang"))
	require.NoError(t, err)

	params := catalog.ListParams{Page: 1, Limit: 10}
	page, err := svc.ListTours(ctx, params)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.EqualValues(t, 1_800_000, page.Items[0].FinalPrice)

	_, err = svc.ListTours(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalls)

	in := tourInput("Hà Giang mùa hoa")
	in.Price = 3_000_000
	updated, err := svc.UpdateTour(ctx, created.ID, in)
	require.NoError(t, err)
	require.Equal(t, created.Slug, updated.Slug)

	page, err = svc.ListTours(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalls)
	require.EqualValues(t, 2_700_000, page.Items[0].FinalPrice)
}

func TestTourBySlugNotFoundAfterDelete(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(t, store)
	ctx := context.Background()
	created, err := svc.CreateTour(ctx, tourInput("Mộc Châu"))
	require.NoError(t, err)

	got, err := svc.TourBySlug(ctx, "moc-chau")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	require.NoError(t, svc.DeleteTour(ctx, created.ID))
	_, err = svc.TourBySlug(ctx, "moc-chau")
	require.True(t, common.HasKind(err, common.KindNotFound))

	err = svc.DeleteTour(ctx, created.ID)
	require.True(t, common.HasKind(err, common.KindNotFound))
}

func TestCreateHotelAssignsRoomIDs(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(t, store)
	h, err := svc.CreateHotel(context.Background(), catalog.HotelInput{
		Name:  "Mường Thanh Luxury",
		City:  "Đà Nẵng",
		Rooms: []catalog.RoomInput{{Name: "Deluxe", Price: 900_000, Available: 4}, {ID: "suite", Name: "Suite", Price: 2_000_000}},
	})
	require.NoError(t, err)
	require.Equal(t, "muong-thanh-luxury", h.Slug)
	require.NotEmpty(t, h.Rooms[0].ID)
	require.Equal(t, "suite", h.Rooms[1].ID)

	_, err = svc.UpdateHotel(context.Background(), "missing", catalog.HotelInput{
		Name: "x", City: "y", Rooms: []catalog.RoomInput{{Name: "r"}},
	})
	require.True(t, common.HasKind(err, common.KindNotFound))
}

func TestHandlers(t *testing.T) {
	store := newMemStore()
	svc, _ := newService(t, store)
	h := catalog.NewHandler(catalog.HandlerConfig{Service: svc, Logger: zerolog.Nop()})

	body := `{"title":"Côn Đảo","destination":"Bà Rịa","price":1000000,"discount":0,
		"timeStarts":[{"timeDepart":"2024-07-01T00:00:00Z","stock":5}]}`
	rec := httptest.NewRecorder()
	h.CreateTour(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/tours", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Tours(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tours?q=c%C3%B4n", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	var env struct {
		Code int                      `json:"code"`
		Data common.Page[domain.Tour] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, http.StatusOK, env.Code)
	require.Equal(t, "con-dao", env.Data.Items[0].Slug)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours/nope", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec = httptest.NewRecorder()
	h.Tour(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.CreateHotel(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/hotels", strings.NewReader("{")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

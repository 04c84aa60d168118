package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-tour/internal/cache"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/pricing"
)

// CachePrefix namespaces cached catalog responses in Redis.
const CachePrefix = "catalog"

// Store captures the persistence methods required by the catalog service.
type Store interface {
	GetTour(ctx context.Context, id string) (domain.Tour, error)
	GetTourBySlug(ctx context.Context, slug string) (domain.Tour, error)
	ListTours(ctx context.Context, f domain.ListFilter) ([]domain.Tour, int64, error)
	InsertTour(ctx context.Context, t domain.Tour) error
	ReplaceTour(ctx context.Context, t domain.Tour) error
	SoftDeleteTour(ctx context.Context, id string) error

	GetHotel(ctx context.Context, id string) (domain.Hotel, error)
	GetHotelBySlug(ctx context.Context, slug string) (domain.Hotel, error)
	ListHotels(ctx context.Context, f domain.ListFilter) ([]domain.Hotel, int64, error)
	InsertHotel(ctx context.Context, h domain.Hotel) error
	ReplaceHotel(ctx context.Context, h domain.Hotel) error
	SoftDeleteHotel(ctx context.Context, id string) error
}

// Service orchestrates catalog queries, admin mutations and caching.
type Service struct {
	store        Store
	cache        *cache.JSON
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        Store
	Cache        *cache.JSON
	DefaultLimit int
	MaxLimit     int
	Now          func() time.Time
}

// ListParams captures paging and search input for catalog listings.
type ListParams struct {
	Query string
	Page  int
	Limit int
}

func (p ListParams) filter() domain.ListFilter {
	return domain.ListFilter{
		Text:   p.Query,
		Offset: int64((p.Page - 1) * p.Limit),
		Limit:  int64(p.Limit),
	}
}

func (p ListParams) key() []string {
	return []string{strconv.Itoa(p.Page), strconv.Itoa(p.Limit), strings.ToLower(p.Query)}
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 12
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, defaultLimit: defaultLimit, maxLimit: maxLimit, now: now}, nil
}

// ParseListParams normalises raw query values into typed paging input.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Page: 1, Limit: s.defaultLimit, Query: strings.TrimSpace(values.Get("q"))}
	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "Số trang không hợp lệ", err)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return params, badRequest("limit", "Số lượng mỗi trang không hợp lệ", err)
		}
		params.Limit = min(limit, s.maxLimit)
	}
	return params, nil
}

// ListTours returns one page of live tours with their discounted price filled in.
func (s *Service) ListTours(ctx context.Context, params ListParams) (common.Page[domain.Tour], error) {
	key := s.cache.Key(append([]string{"tours"}, params.key()...)...)
	var page common.Page[domain.Tour]
	if ok, err := s.cache.Get(ctx, key, &page); err == nil && ok {
		return page, nil
	}
	items, total, err := s.store.ListTours(ctx, params.filter())
	if err != nil {
		return page, fmt.Errorf("list tours: %w", err)
	}
	for i := range items {
		withFinalPrice(&items[i])
	}
	page = common.Page[domain.Tour]{
		Items:      items,
		Pagination: common.Pagination{Page: params.Page, PerPage: params.Limit, TotalItems: total},
	}
	_ = s.cache.Set(ctx, key, page)
	return page, nil
}

// TourBySlug returns a single live tour.
func (s *Service) TourBySlug(ctx context.Context, slug string) (domain.Tour, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Tour{}, badRequest("slug", "Thiếu đường dẫn tour", nil)
	}
	key := s.cache.Key("tour", slug)
	var t domain.Tour
	if ok, err := s.cache.Get(ctx, key, &t); err == nil && ok {
		return t, nil
	}
	t, err := s.store.GetTourBySlug(ctx, slug)
	if err != nil {
		return t, lookupErr(err, "Không tìm thấy tour")
	}
	withFinalPrice(&t)
	_ = s.cache.Set(ctx, key, t)
	return t, nil
}

// ListHotels returns one page of live hotels.
func (s *Service) ListHotels(ctx context.Context, params ListParams) (common.Page[domain.Hotel], error) {
	key := s.cache.Key(append([]string{"hotels"}, params.key()...)...)
	var page common.Page[domain.Hotel]
	if ok, err := s.cache.Get(ctx, key, &page); err == nil && ok {
		return page, nil
	}
	items, total, err := s.store.ListHotels(ctx, params.filter())
	if err != nil {
		return page, fmt.Errorf("list hotels: %w", err)
	}
	page = common.Page[domain.Hotel]{
		Items:      items,
		Pagination: common.Pagination{Page: params.Page, PerPage: params.Limit, TotalItems: total},
	}
	_ = s.cache.Set(ctx, key, page)
	return page, nil
}

// HotelBySlug returns a single live hotel.
func (s *Service) HotelBySlug(ctx context.Context, slug string) (domain.Hotel, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Hotel{}, badRequest("slug", "Thiếu đường dẫn khách sạn", nil)
	}
	key := s.cache.Key("hotel", slug)
	var h domain.Hotel
	if ok, err := s.cache.Get(ctx, key, &h); err == nil && ok {
		return h, nil
	}
	h, err := s.store.GetHotelBySlug(ctx, slug)
	if err != nil {
		return h, lookupErr(err, "Không tìm thấy khách sạn")
	}
	_ = s.cache.Set(ctx, key, h)
	return h, nil
}

func withFinalPrice(t *domain.Tour) {
	if final, err := pricing.DiscountedPrice(t.Price, t.Discount); err == nil {
		t.FinalPrice = final
	}
}

func lookupErr(err error, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return common.NotFound(message)
	}
	return err
}

func badRequest(field, message string, err error) *common.AppError {
	appErr := common.Validation(message)
	appErr.Err = err
	appErr.Details = map[string]any{"field": field}
	return appErr
}

func newID() string {
	return uuid.NewString()
}

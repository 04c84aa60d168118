package order

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/obs"
	"github.com/noah-isme/backend-tour/internal/pricing"
)

// Store captures the order persistence used by the service.
type Store interface {
	InsertOrder(ctx context.Context, o domain.Order) error
	GetOrderByCode(ctx context.Context, code string) (domain.Order, error)
	ListOrders(ctx context.Context, f domain.OrderFilter, offset, limit int64) ([]domain.Order, int64, error)
	FindOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error)
	// TransitionOrder moves the order from one status to another and fails
	// with domain.ErrConflict when the stored status is no longer from.
	TransitionOrder(ctx context.Context, code string, from, to domain.OrderStatus, patch domain.OrderPatch) (domain.Order, error)
	DeleteOrder(ctx context.Context, code string) error
}

// Catalog resolves the live price of booked items.
type Catalog interface {
	GetTour(ctx context.Context, id string) (domain.Tour, error)
	GetHotel(ctx context.Context, id string) (domain.Hotel, error)
}

// Vouchers validates and prices a voucher code against an order total.
type Vouchers interface {
	Quote(ctx context.Context, code string, total int64) (pricing.Quote, string, error)
}

// Enqueuer schedules post-payment work.
type Enqueuer interface {
	EnqueueOrderPaid(ctx context.Context, o domain.Order) error
}

// StatsInvalidator drops cached statistics after orders change.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service implements order creation and the admin lifecycle.
type Service struct {
	Store    Store
	Catalog  Catalog
	Vouchers Vouchers
	Tasks    Enqueuer
	Stats    StatsInvalidator
	Logger   zerolog.Logger
	Now      func() time.Time
}

// CreateRequest is the client payload for a new booking.
type CreateRequest struct {
	FullName    string         `json:"fullName" validate:"required,max=100"`
	Email       string         `json:"email" validate:"required,email"`
	Phone       string         `json:"phone" validate:"required,vnphone"`
	Note        string         `json:"note" validate:"max=1000"`
	VoucherCode string         `json:"voucherCode" validate:"max=32"`
	Tours       []TourRequest  `json:"tours" validate:"dive"`
	Hotels      []HotelRequest `json:"hotels" validate:"dive"`
	UserID      string         `json:"-"`
}

// TourRequest books seats on one or more departures of a tour.
type TourRequest struct {
	TourID     string             `json:"tour_id" validate:"required"`
	TimeStarts []TimeStartRequest `json:"timeStarts" validate:"required,min=1,dive"`
}

// TimeStartRequest books seats on a single departure.
type TimeStartRequest struct {
	TimeDepart time.Time `json:"timeDepart" validate:"required"`
	Stock      int       `json:"stock" validate:"gte=1"`
}

// HotelRequest books rooms in a hotel.
type HotelRequest struct {
	HotelID string        `json:"hotel_id" validate:"required"`
	Rooms   []RoomRequest `json:"rooms" validate:"required,min=1,dive"`
}

// RoomRequest books a room type for a stay.
type RoomRequest struct {
	RoomID   string    `json:"room_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"gte=1"`
	CheckIn  time.Time `json:"checkIn" validate:"required"`
	CheckOut time.Time `json:"checkOut" validate:"required,gtfield=CheckIn"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var errNotConfigured = errors.New("order service not configured")

func notFound() *common.AppError {
	return common.NewAppError(common.KindNotFound, "Đơn hàng không tồn tại", http.StatusNotFound, domain.ErrNotFound)
}

// NewOrderCode returns a short unique, time-sortable order reference.
func NewOrderCode(now time.Time) string {
	id := uuid.New()
	return "ORD" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)+hex.EncodeToString(id[:2]))
}

// Create prices the requested lines from the catalog, applies the voucher
// and stores a pending order.
func (s *Service) Create(ctx context.Context, req CreateRequest) (domain.Order, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return domain.Order{}, errNotConfigured
	}
	if err := common.ValidateStruct(req); err != nil {
		return domain.Order{}, err
	}
	if len(req.Tours) == 0 && len(req.Hotels) == 0 {
		return domain.Order{}, common.Validation("Đơn hàng phải có ít nhất một tour hoặc khách sạn")
	}

	tours, tourItems, err := s.resolveTours(ctx, req.Tours)
	if err != nil {
		return domain.Order{}, err
	}
	hotels, roomItems, err := s.resolveHotels(ctx, req.Hotels)
	if err != nil {
		return domain.Order{}, err
	}
	total, err := pricing.OrderTotal(tourItems, roomItems)
	if err != nil {
		return domain.Order{}, common.Internal(fmt.Errorf("price order: %w", err))
	}

	quote := pricing.ApplyVoucherDiscount(total, nil)
	voucherCode := ""
	if code := strings.TrimSpace(req.VoucherCode); code != "" {
		if s.Vouchers == nil {
			return domain.Order{}, errNotConfigured
		}
		quote, voucherCode, err = s.Vouchers.Quote(ctx, code, total)
		if err != nil {
			return domain.Order{}, err
		}
	}

	now := s.now()
	o := domain.Order{
		ID:             uuid.NewString(),
		OrderCode:      NewOrderCode(now),
		UserID:         req.UserID,
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          strings.TrimSpace(req.Phone),
		Note:           strings.TrimSpace(req.Note),
		Status:         domain.OrderStatusPending,
		Tours:          tours,
		Hotels:         hotels,
		VoucherCode:    voucherCode,
		TotalPrice:     total,
		DiscountAmount: quote.DiscountAmount,
		FinalPrice:     quote.FinalPrice,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Store.InsertOrder(ctx, o); err != nil {
		return domain.Order{}, common.Internal(fmt.Errorf("insert order: %w", err))
	}
	s.invalidateStats(ctx)
	return o, nil
}

func (s *Service) resolveTours(ctx context.Context, reqs []TourRequest) ([]domain.TourLine, []pricing.TourItem, error) {
	lines := make([]domain.TourLine, 0, len(reqs))
	items := make([]pricing.TourItem, 0, len(reqs))
	for _, tr := range reqs {
		tour, err := s.Catalog.GetTour(ctx, tr.TourID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, common.NotFound("Tour không tồn tại")
			}
			return nil, nil, common.Internal(fmt.Errorf("load tour %s: %w", tr.TourID, err))
		}
		line := domain.TourLine{TourID: tour.ID, Title: tour.Title, Price: tour.Price, Discount: tour.Discount}
		for _, ts := range tr.TimeStarts {
			available, ok := departureStock(tour, ts.TimeDepart)
			if !ok {
				return nil, nil, common.Validation("Ngày khởi hành không hợp lệ")
			}
			if ts.Stock > available {
				return nil, nil, common.Conflict("Tour không đủ chỗ cho ngày khởi hành đã chọn", nil)
			}
			line.TimeStarts = append(line.TimeStarts, domain.TimeStart{TimeDepart: ts.TimeDepart, Stock: ts.Stock})
		}
		lines = append(lines, line)
		items = append(items, pricing.TourItem{Price: line.Price, Discount: line.Discount, Seats: line.Seats()})
	}
	return lines, items, nil
}

func departureStock(t domain.Tour, depart time.Time) (int, bool) {
	for _, ts := range t.TimeStarts {
		if ts.TimeDepart.Equal(depart) {
			return ts.Stock, true
		}
	}
	return 0, false
}

func (s *Service) resolveHotels(ctx context.Context, reqs []HotelRequest) ([]domain.HotelLine, []pricing.RoomItem, error) {
	lines := make([]domain.HotelLine, 0, len(reqs))
	var items []pricing.RoomItem
	for _, hr := range reqs {
		hotel, err := s.Catalog.GetHotel(ctx, hr.HotelID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, common.NotFound("Khách sạn không tồn tại")
			}
			return nil, nil, common.Internal(fmt.Errorf("load hotel %s: %w", hr.HotelID, err))
		}
		line := domain.HotelLine{HotelID: hotel.ID, Name: hotel.Name}
		for _, rr := range hr.Rooms {
			room, ok := hotel.FindRoom(rr.RoomID)
			if !ok {
				return nil, nil, common.NotFound("Phòng không tồn tại")
			}
			if rr.Quantity > room.Available {
				return nil, nil, common.Conflict("Khách sạn không đủ phòng trống", nil)
			}
			line.Rooms = append(line.Rooms, domain.RoomLine{
				RoomID:   room.ID,
				Quantity: rr.Quantity,
				Price:    room.Price,
				CheckIn:  rr.CheckIn,
				CheckOut: rr.CheckOut,
			})
			items = append(items, pricing.RoomItem{Price: room.Price, Quantity: rr.Quantity, Nights: nights(rr.CheckIn, rr.CheckOut)})
		}
		lines = append(lines, line)
	}
	return lines, items, nil
}

// nights counts calendar days between check-in and check-out.
func nights(in, out time.Time) int {
	y1, m1, d1 := in.Date()
	y2, m2, d2 := out.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// GetByCode loads an order by its public code.
func (s *Service) GetByCode(ctx context.Context, code string) (domain.Order, error) {
	if s == nil || s.Store == nil {
		return domain.Order{}, errNotConfigured
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Order{}, notFound()
	}
	o, err := s.Store.GetOrderByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, notFound()
		}
		return domain.Order{}, common.Internal(fmt.Errorf("load order %s: %w", code, err))
	}
	return o, nil
}

// List returns a page of orders matching f.
func (s *Service) List(ctx context.Context, f domain.OrderFilter, page, perPage int) (common.Page[domain.Order], error) {
	if s == nil || s.Store == nil {
		return common.Page[domain.Order]{}, errNotConfigured
	}
	items, total, err := s.Store.ListOrders(ctx, f, int64((page-1)*perPage), int64(perPage))
	if err != nil {
		return common.Page[domain.Order]{}, common.Internal(fmt.Errorf("list orders: %w", err))
	}
	return common.Page[domain.Order]{
		Items:      items,
		Pagination: common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	}, nil
}

// UpdateStatus applies an admin status change if the lifecycle allows it.
func (s *Service) UpdateStatus(ctx context.Context, code string, to domain.OrderStatus) (domain.Order, error) {
	current, err := s.GetByCode(ctx, code)
	if err != nil {
		return domain.Order{}, err
	}
	return s.transition(ctx, current, to, domain.OrderPatch{})
}

// MarkPaid settles a pending order after a verified payment.
func (s *Service) MarkPaid(ctx context.Context, code, method string) (domain.Order, error) {
	current, err := s.GetByCode(ctx, code)
	if err != nil {
		return domain.Order{}, err
	}
	paidAt := s.now()
	return s.transition(ctx, current, domain.OrderStatusPaid, domain.OrderPatch{PaymentMethod: method, PaidAt: &paidAt})
}

func (s *Service) transition(ctx context.Context, current domain.Order, to domain.OrderStatus, patch domain.OrderPatch) (domain.Order, error) {
	if !current.Status.CanTransition(to) {
		return domain.Order{}, common.Conflict(
			fmt.Sprintf("Không thể chuyển đơn hàng từ %s sang %s", current.Status, to), nil)
	}
	patch.UpdatedAt = s.now()
	updated, err := s.Store.TransitionOrder(ctx, current.OrderCode, current.Status, to, patch)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Order{}, common.Conflict("Trạng thái đơn hàng đã thay đổi, vui lòng tải lại", err)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, notFound()
		}
		return domain.Order{}, common.Internal(fmt.Errorf("update order %s: %w", current.OrderCode, err))
	}
	obs.IncCounter(obs.OrderStatusTotal, string(to))
	s.invalidateStats(ctx)
	if to == domain.OrderStatusPaid && s.Tasks != nil {
		if err := s.Tasks.EnqueueOrderPaid(ctx, updated); err != nil {
			s.Logger.Error().Err(err).Str("order_code", updated.OrderCode).Msg("enqueue order paid task failed")
		}
	}
	return updated, nil
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, code string) error {
	if s == nil || s.Store == nil {
		return errNotConfigured
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := s.Store.DeleteOrder(ctx, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return notFound()
		}
		return common.Internal(fmt.Errorf("delete order %s: %w", code, err))
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.Stats == nil {
		return
	}
	if err := s.Stats.Invalidate(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("invalidate statistics cache failed")
	}
}

// Export returns every order matching f for CSV rendering.
func (s *Service) Export(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	if s == nil || s.Store == nil {
		return nil, errNotConfigured
	}
	orders, err := s.Store.FindOrders(ctx, f)
	if err != nil {
		return nil, common.Internal(fmt.Errorf("export orders: %w", err))
	}
	return orders, nil
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

// TourInput is the admin payload for a tour.
type TourInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Destination string           `json:"destination" validate:"required"`
	Description string           `json:"description"`
	Price       int64            `json:"price" validate:"gte=0"`
	Discount    float64          `json:"discount" validate:"gte=0,lte=100"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
	TimeStarts  []TimeStartInput `json:"timeStarts" validate:"required,min=1,dive"`
}

// TimeStartInput is one departure and its remaining places.
type TimeStartInput struct {
	TimeDepart time.Time `json:"timeDepart" validate:"required"`
	Stock      int       `json:"stock" validate:"gte=0"`
}

// HotelInput is the admin payload for a hotel.
type HotelInput struct {
	Name        string      `json:"name" validate:"required,max=200"`
	City        string      `json:"city" validate:"required"`
	Address     string      `json:"address"`
	Description string      `json:"description"`
	Images      []string    `json:"images" validate:"omitempty,dive,url"`
	Rooms       []RoomInput `json:"rooms" validate:"required,min=1,dive"`
}

// RoomInput is a room type. An empty ID is assigned on save.
type RoomInput struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	Price     int64  `json:"price" validate:"gte=0"`
	Available int    `json:"available" validate:"gte=0"`
}

// CreateTour validates and stores a new tour.
func (s *Service) CreateTour(ctx context.Context, in TourInput) (domain.Tour, error) {
	if err := common.ValidateStruct(in); err != nil {
		return domain.Tour{}, err
	}
	now := s.now().UTC()
	t := applyTour(domain.Tour{ID: newID(), CreatedAt: now}, in, now)
	err := s.insertWithSlug(&t.Slug, func() error { return s.store.InsertTour(ctx, t) })
	if err != nil {
		return domain.Tour{}, saveErr(err, "tour")
	}
	s.purge(ctx)
	withFinalPrice(&t)
	return t, nil
}

// UpdateTour replaces the editable fields of a tour. The slug is kept.
func (s *Service) UpdateTour(ctx context.Context, id string, in TourInput) (domain.Tour, error) {
	if err := common.ValidateStruct(in); err != nil {
		return domain.Tour{}, err
	}
	current, err := s.store.GetTour(ctx, id)
	if err != nil {
		return domain.Tour{}, lookupErr(err, "Không tìm thấy tour")
	}
	t := applyTour(current, in, s.now().UTC())
	if err := s.store.ReplaceTour(ctx, t); err != nil {
		return domain.Tour{}, saveErr(err, "tour")
	}
	s.purge(ctx)
	withFinalPrice(&t)
	return t, nil
}

// DeleteTour soft-deletes a tour.
func (s *Service) DeleteTour(ctx context.Context, id string) error {
	if err := s.store.SoftDeleteTour(ctx, id); err != nil {
		return lookupErr(err, "Không tìm thấy tour")
	}
	s.purge(ctx)
	return nil
}

// CreateHotel validates and stores a new hotel.
func (s *Service) CreateHotel(ctx context.Context, in HotelInput) (domain.Hotel, error) {
	if err := common.ValidateStruct(in); err != nil {
		return domain.Hotel{}, err
	}
	now := s.now().UTC()
	h := applyHotel(domain.Hotel{ID: newID(), CreatedAt: now}, in, now)
	err := s.insertWithSlug(&h.Slug, func() error { return s.store.InsertHotel(ctx, h) })
	if err != nil {
		return domain.Hotel{}, saveErr(err, "khách sạn")
	}
	s.purge(ctx)
	return h, nil
}

// UpdateHotel replaces the editable fields of a hotel. The slug is kept.
func (s *Service) UpdateHotel(ctx context.Context, id string, in HotelInput) (domain.Hotel, error) {
	if err := common.ValidateStruct(in); err != nil {
		return domain.Hotel{}, err
	}
	current, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, lookupErr(err, "Không tìm thấy khách sạn")
	}
	h := applyHotel(current, in, s.now().UTC())
	if err := s.store.ReplaceHotel(ctx, h); err != nil {
		return domain.Hotel{}, saveErr(err, "khách sạn")
	}
	s.purge(ctx)
	return h, nil
}

// DeleteHotel soft-deletes a hotel.
func (s *Service) DeleteHotel(ctx context.Context, id string) error {
	if err := s.store.SoftDeleteHotel(ctx, id); err != nil {
		return lookupErr(err, "Không tìm thấy khách sạn")
	}
	s.purge(ctx)
	return nil
}

// insertWithSlug runs insert and, when the slug is taken, retries once with
// a short random suffix.
func (s *Service) insertWithSlug(slug *string, insert func() error) error {
	err := insert()
	if !errors.Is(err, domain.ErrDuplicate) {
		return err
	}
	*slug = fmt.Sprintf("%s-%s", *slug, newID()[:6])
	return insert()
}

func (s *Service) purge(ctx context.Context) {
	_ = s.cache.Purge(ctx)
}

func applyTour(t domain.Tour, in TourInput, now time.Time) domain.Tour {
	t.Title = in.Title
	if t.Slug == "" {
		t.Slug = Slugify(in.Title)
	}
	t.Destination = in.Destination
	t.Description = in.Description
	t.Price = in.Price
	t.Discount = in.Discount
	t.Images = in.Images
	t.TimeStarts = make([]domain.TimeStart, 0, len(in.TimeStarts))
	for _, ts := range in.TimeStarts {
		t.TimeStarts = append(t.TimeStarts, domain.TimeStart{TimeDepart: ts.TimeDepart.UTC(), Stock: ts.Stock})
	}
	t.UpdatedAt = now
	return t
}

func applyHotel(h domain.Hotel, in HotelInput, now time.Time) domain.Hotel {
	h.Name = in.Name
	if h.Slug == "" {
		h.Slug = Slugify(in.Name)
	}
	h.City = in.City
	h.Address = in.Address
	h.Description = in.Description
	h.Images = in.Images
	h.Rooms = make([]domain.Room, 0, len(in.Rooms))
	for _, r := range in.Rooms {
		id := r.ID
		if id == "" {
			id = newID()
		}
		h.Rooms = append(h.Rooms, domain.Room{ID: id, Name: r.Name, Price: r.Price, Available: r.Available})
	}
	h.UpdatedAt = now
	return h
}

func saveErr(err error, kind string) error {
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		return common.Conflict("Đường dẫn đã tồn tại", err)
	case errors.Is(err, domain.ErrNotFound):
		return common.NotFound("Không tìm thấy " + kind)
	}
	return fmt.Errorf("save catalog item: %w", err)
}

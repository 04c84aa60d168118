package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/auth"
	"github.com/noah-isme/backend-tour/internal/catalog"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
	"github.com/noah-isme/backend-tour/internal/obs"
	"github.com/noah-isme/backend-tour/internal/repo"
	"github.com/noah-isme/backend-tour/internal/user"
	"github.com/noah-isme/backend-tour/internal/voucher"
)

func main() {
	_ = godotenv.Load()
	var (
		mongoURI   = flag.String("mongo", os.Getenv("MONGO_URI"), "MongoDB connection string")
		database   = flag.String("db", envOr("MONGO_DATABASE", "booking_tour"), "database name")
		adminEmail = flag.String("admin-email", envOr("SEED_ADMIN_EMAIL", "admin@tour.local"), "administrator login")
		adminPass  = flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "administrator password (min 8 chars)")
	)
	flag.Parse()
	logger := obs.NewLogger("console", "info")

	if strings.TrimSpace(*mongoURI) == "" {
		logger.Fatal().Msg("MONGO_URI is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := repo.Connect(ctx, *mongoURI, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(*database)
	if err := repo.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("ensure indexes")
	}

	catalogRepo := repo.NewCatalogRepo(db)
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{Store: catalogRepo})
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog service")
	}
	s := seeder{ctx: ctx, log: logger}

	s.tours(catalogRepo, catalogSvc)
	s.hotels(catalogRepo, catalogSvc)
	s.vouchers(&voucher.Service{Store: repo.NewVoucherRepo(db)})
	if *adminPass != "" {
		s.admin(&user.Service{Store: repo.NewUserRepo(db)}, *adminEmail, *adminPass)
	} else {
		logger.Warn().Msg("SEED_ADMIN_PASSWORD empty, administrator not seeded")
	}
	logger.Info().Msg("seeding completed")
}

type seeder struct {
	ctx context.Context
	log zerolog.Logger
}

// settled reports whether the record now exists, either created or already present.
func (s seeder) settled(kind, key string, err error) bool {
	if err == nil {
		s.log.Info().Str("kind", kind).Str("key", key).Msg("seeded")
		return true
	}
	if common.HasKind(err, common.KindConflict) {
		s.log.Info().Str("kind", kind).Str("key", key).Msg("exists, skipped")
		return true
	}
	return false
}

func departures(days ...int) []catalog.TimeStartInput {
	base := time.Now().UTC().Truncate(24 * time.Hour)
	out := make([]catalog.TimeStartInput, 0, len(days))
	for _, d := range days {
		out = append(out, catalog.TimeStartInput{TimeDepart: base.AddDate(0, 0, d).Add(time.Hour), Stock: 20})
	}
	return out
}

func (s seeder) tours(store *repo.CatalogRepo, svc *catalog.Service) {
	inputs := []catalog.TourInput{
		{Title: "Hạ Long - Vịnh Lan Hạ 3N2Đ", Destination: "Quảng Ninh", Price: 3990000, Discount: 10, TimeStarts: departures(14, 28)},
		{Title: "Đà Nẵng - Hội An - Bà Nà Hills", Destination: "Đà Nẵng", Price: 5490000, Discount: 0, TimeStarts: departures(10, 24, 38)},
		{Title: "Phú Quốc nghỉ dưỡng 4N3Đ", Destination: "Kiên Giang", Price: 6990000, Discount: 15, TimeStarts: departures(21)},
		{Title: "Sa Pa - Fansipan", Destination: "Lào Cai", Price: 2890000, Discount: 5, TimeStarts: departures(7, 35)},
	}
	for _, in := range inputs {
		slug := catalog.Slugify(in.Title)
		if _, err := store.GetTourBySlug(s.ctx, slug); err == nil {
			s.log.Info().Str("kind", "tour").Str("key", slug).Msg("exists, skipped")
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.log.Fatal().Err(err).Str("slug", slug).Msg("lookup tour")
		}
		_, err := svc.CreateTour(s.ctx, in)
		if !s.settled("tour", slug, err) {
			s.log.Fatal().Err(err).Str("slug", slug).Msg("seed tour")
		}
	}
}

func (s seeder) hotels(store *repo.CatalogRepo, svc *catalog.Service) {
	inputs := []catalog.HotelInput{
		{Name: "Mường Thanh Luxury Đà Nẵng", City: "Đà Nẵng", Rooms: []catalog.RoomInput{
			{Name: "Deluxe", Price: 1200000, Available: 10},
			{Name: "Suite", Price: 2500000, Available: 4},
		}},
		{Name: "Vinpearl Resort Phú Quốc", City: "Kiên Giang", Rooms: []catalog.RoomInput{
			{Name: "Villa hướng biển", Price: 4500000, Available: 6},
		}},
	}
	for _, in := range inputs {
		slug := catalog.Slugify(in.Name)
		if _, err := store.GetHotelBySlug(s.ctx, slug); err == nil {
			s.log.Info().Str("kind", "hotel").Str("key", slug).Msg("exists, skipped")
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.log.Fatal().Err(err).Str("slug", slug).Msg("lookup hotel")
		}
		_, err := svc.CreateHotel(s.ctx, in)
		if !s.settled("hotel", slug, err) {
			s.log.Fatal().Err(err).Str("slug", slug).Msg("seed hotel")
		}
	}
}

func (s seeder) vouchers(svc *voucher.Service) {
	end := time.Now().UTC().AddDate(0, 3, 0)
	inputs := []voucher.Input{
		{Code: "SALE10", Discount: 10, Quantity: 100, EndDate: end},
		{Code: "SUMMER25", Discount: 25, Quantity: 20, MinOrderAmount: 5000000, EndDate: end},
	}
	for _, in := range inputs {
		_, err := svc.Create(s.ctx, in)
		if !s.settled("voucher", in.Code, err) {
			s.log.Fatal().Err(err).Str("code", in.Code).Msg("seed voucher")
		}
	}
}

func (s seeder) admin(svc *user.Service, email, password string) {
	_, err := svc.Create(s.ctx, user.CreateInput{
		FullName:    "Quản trị viên",
		Email:       email,
		Phone:       "0900000000",
		Password:    password,
		Role:        "admin",
		Permissions: auth.AllPermissions,
	})
	if !s.settled("user", email, err) {
		s.log.Fatal().Err(err).Str("email", email).Msg("seed administrator")
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

package repo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// CatalogRepo persists tours and hotels.
type CatalogRepo struct {
	tours  *mongo.Collection
	hotels *mongo.Collection
}

// NewCatalogRepo binds the repository to the tour and hotel collections.
func NewCatalogRepo(db *mongo.Database) *CatalogRepo {
	return &CatalogRepo{tours: db.Collection(CollTours), hotels: db.Collection(CollHotels)}
}

func byID(id string) bson.M { return bson.M{"_id": id, "deleted": bson.M{"$ne": true}} }
func bySlug(s string) bson.M { return bson.M{"slug": s, "deleted": bson.M{"$ne": true}} }

// GetTour loads a live tour by id.
func (r *CatalogRepo) GetTour(ctx context.Context, id string) (domain.Tour, error) {
	return findOne[domain.Tour](ctx, r.tours, byID(id))
}

// GetTourBySlug loads a live tour by slug.
func (r *CatalogRepo) GetTourBySlug(ctx context.Context, slug string) (domain.Tour, error) {
	return findOne[domain.Tour](ctx, r.tours, bySlug(slug))
}

// ListTours pages through live tours matching the title or destination.
func (r *CatalogRepo) ListTours(ctx context.Context, f domain.ListFilter) ([]domain.Tour, int64, error) {
	return findPage[domain.Tour](ctx, r.tours, liveFilter(f.Text, "title", "destination"), f.Offset, f.Limit)
}

// InsertTour stores a new tour. Slugs are unique.
func (r *CatalogRepo) InsertTour(ctx context.Context, t domain.Tour) error {
	if _, err := r.tours.InsertOne(ctx, t); err != nil {
		return mapErr("insert tour", err)
	}
	return nil
}

// ReplaceTour overwrites a live tour document.
func (r *CatalogRepo) ReplaceTour(ctx context.Context, t domain.Tour) error {
	return replaceLive(ctx, r.tours, t.ID, t)
}

// SoftDeleteTour flags a tour as deleted.
func (r *CatalogRepo) SoftDeleteTour(ctx context.Context, id string) error {
	return softDelete(ctx, r.tours, bson.M{"_id": id})
}

// GetHotel loads a live hotel by id.
func (r *CatalogRepo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	return findOne[domain.Hotel](ctx, r.hotels, byID(id))
}

// GetHotelBySlug loads a live hotel by slug.
func (r *CatalogRepo) GetHotelBySlug(ctx context.Context, slug string) (domain.Hotel, error) {
	return findOne[domain.Hotel](ctx, r.hotels, bySlug(slug))
}

// ListHotels pages through live hotels matching the name or city.
func (r *CatalogRepo) ListHotels(ctx context.Context, f domain.ListFilter) ([]domain.Hotel, int64, error) {
	return findPage[domain.Hotel](ctx, r.hotels, liveFilter(f.Text, "name", "city"), f.Offset, f.Limit)
}

// InsertHotel stores a new hotel. Slugs are unique.
func (r *CatalogRepo) InsertHotel(ctx context.Context, h domain.Hotel) error {
	if _, err := r.hotels.InsertOne(ctx, h); err != nil {
		return mapErr("insert hotel", err)
	}
	return nil
}

// ReplaceHotel overwrites a live hotel document.
func (r *CatalogRepo) ReplaceHotel(ctx context.Context, h domain.Hotel) error {
	return replaceLive(ctx, r.hotels, h.ID, h)
}

// SoftDeleteHotel flags a hotel as deleted.
func (r *CatalogRepo) SoftDeleteHotel(ctx context.Context, id string) error {
	return softDelete(ctx, r.hotels, bson.M{"_id": id})
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	return doc, mapErr("get from "+coll.Name(), err)
}

func replaceLive(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, byID(id), doc)
	if err != nil {
		return mapErr(fmt.Sprintf("replace %s %s", coll.Name(), id), err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

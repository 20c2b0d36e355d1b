package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/databases"
	"github.com/linesmerrill/motorent-api/mapper"
	"github.com/linesmerrill/motorent-api/models"
)

// activeStatuses are the reservation statuses that hold a motorcycle
var activeStatuses = []string{string(models.StatusPending), string(models.StatusConfirmed)}

// MotorcycleService manages the fleet catalog
type MotorcycleService struct {
	motorcycles  databases.MotorcycleDatabase
	reservations databases.ReservationDatabase
	storage      *StorageService
	cache        *CatalogCache
	log          *zap.SugaredLogger
	now          func() time.Time
}

// NewMotorcycleService creates a MotorcycleService. cache may be nil.
func NewMotorcycleService(motorcycles databases.MotorcycleDatabase, reservations databases.ReservationDatabase,
	storage *StorageService, cache *CatalogCache, log *zap.SugaredLogger) *MotorcycleService {
	return &MotorcycleService{
		motorcycles:  motorcycles,
		reservations: reservations,
		storage:      storage,
		cache:        cache,
		log:          log,
		now:          time.Now,
	}
}

func filterKey(f models.MotorcycleFilter) string {
	return fmt.Sprintf("list:%s|%s|%s|%g", f.Availability, strings.ToLower(f.Brand), strings.ToLower(f.Search), f.MaxPrice)
}

// List returns the catalog, cheapest first
func (m *MotorcycleService) List(ctx context.Context, f models.MotorcycleFilter) ([]models.Motorcycle, error) {
	key := filterKey(f)
	var cached []models.Motorcycle
	if m.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	filter := bson.M{}
	if f.Availability != "" {
		filter["availability"] = string(f.Availability)
	}
	if f.Brand != "" {
		filter["brand"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Brand) + "$", Options: "i"}
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"brand": pattern}, bson.M{"model": pattern}}
	}
	if f.MaxPrice > 0 {
		filter["price_per_day"] = bson.M{"$lte": f.MaxPrice}
	}

	rows, err := m.motorcycles.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "price_per_day", Value: 1}}))
	if err != nil {
		return nil, err
	}
	list := mapper.MotorcyclesFromRows(rows)
	m.cache.set(ctx, key, list)
	return list, nil
}

// Get returns one motorcycle
func (m *MotorcycleService) Get(ctx context.Context, id string) (models.Motorcycle, error) {
	var cached models.Motorcycle
	if m.cache.get(ctx, "item:"+id, &cached) {
		return cached, nil
	}
	row, err := m.motorcycles.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Motorcycle{}, ErrNotFound
	}
	if err != nil {
		return models.Motorcycle{}, err
	}
	moto := mapper.MotorcycleFromRow(*row)
	m.cache.set(ctx, "item:"+id, moto)
	return moto, nil
}

// Create adds a motorcycle. New entries default to Available.
func (m *MotorcycleService) Create(ctx context.Context, in models.Motorcycle) (models.Motorcycle, error) {
	if err := validateStruct(in); err != nil {
		return models.Motorcycle{}, err
	}
	if in.Availability == "" {
		in.Availability = models.AvailabilityAvailable
	}
	if !in.Availability.Valid() {
		return models.Motorcycle{}, &ValidationError{Err: fmt.Errorf("unknown availability %q", in.Availability)}
	}
	now := m.now().UTC()
	in.ID = primitive.NewObjectID().Hex()
	in.CreatedAt = now
	in.UpdatedAt = now
	if in.Features == nil {
		in.Features = []string{}
	}
	if err := m.motorcycles.InsertOne(ctx, mapper.MotorcycleToRow(in)); err != nil {
		return models.Motorcycle{}, err
	}
	m.cache.Invalidate(ctx)
	return in, nil
}

// Update replaces the descriptive fields of a motorcycle
func (m *MotorcycleService) Update(ctx context.Context, id string, in models.Motorcycle) (models.Motorcycle, error) {
	if err := validateStruct(in); err != nil {
		return models.Motorcycle{}, err
	}
	if in.Availability != "" && !in.Availability.Valid() {
		return models.Motorcycle{}, &ValidationError{Err: fmt.Errorf("unknown availability %q", in.Availability)}
	}
	set := bson.M{
		"name":          in.Name,
		"brand":         in.Brand,
		"model":         in.Model,
		"year":          in.Year,
		"engine_cc":     in.EngineCC,
		"transmission":  in.Transmission,
		"color":         in.Color,
		"description":   in.Description,
		"price_per_day": in.PricePerDay,
		"features":      in.Features,
		"updated_at":    m.now().UTC(),
	}
	if in.Availability != "" {
		set["availability"] = string(in.Availability)
	}
	res, err := m.motorcycles.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return models.Motorcycle{}, err
	}
	if res.MatchedCount == 0 {
		return models.Motorcycle{}, ErrNotFound
	}
	m.cache.Invalidate(ctx)
	return m.Get(ctx, id)
}

// SetAvailability flips the availability flag and returns the previous value
func (m *MotorcycleService) SetAvailability(ctx context.Context, id string, a models.Availability) (models.Availability, error) {
	if !a.Valid() {
		return "", &ValidationError{Err: fmt.Errorf("unknown availability %q", a)}
	}
	row, err := m.motorcycles.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	previous := models.Availability(row.Availability)
	if previous == a {
		return previous, nil
	}
	if _, err := m.motorcycles.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"availability": string(a), "updated_at": m.now().UTC()}}); err != nil {
		return previous, err
	}
	m.cache.Invalidate(ctx)
	return previous, nil
}

// SetImage uploads a new catalog image and removes the previous one
func (m *MotorcycleService) SetImage(ctx context.Context, id string, f Upload) (models.Motorcycle, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return models.Motorcycle{}, err
	}
	obj, err := m.storage.UploadImage(ctx, f)
	if err != nil {
		return models.Motorcycle{}, err
	}
	_, err = m.motorcycles.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"image_url":       obj.URL,
		"image_public_id": obj.Path,
		"updated_at":      m.now().UTC(),
	}})
	if err != nil {
		return models.Motorcycle{}, err
	}
	if current.ImagePublicID != "" {
		if err := m.storage.Delete(ctx, current.ImagePublicID, false); err != nil {
			m.log.Warnw("failed to delete replaced image", "motorcycleID", id, "path", current.ImagePublicID, "error", err)
		}
	}
	m.cache.Invalidate(ctx)
	return m.Get(ctx, id)
}

// Delete removes a motorcycle that no reservation references
func (m *MotorcycleService) Delete(ctx context.Context, id string) error {
	current, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	n, err := m.reservations.CountDocuments(ctx, bson.M{"motorcycle_id": id})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrInUse
	}
	if err := m.motorcycles.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	if current.ImagePublicID != "" {
		if err := m.storage.Delete(ctx, current.ImagePublicID, false); err != nil {
			m.log.Warnw("failed to delete image of removed motorcycle", "motorcycleID", id, "error", err)
		}
	}
	m.cache.Invalidate(ctx)
	return nil
}

// CheckAvailability reports whether the motorcycle can be booked for [start, end].
// Maintenance always blocks; otherwise any pending or confirmed reservation whose
// dates overlap the range blocks.
func (m *MotorcycleService) CheckAvailability(ctx context.Context, id string, start, end time.Time) (bool, error) {
	if end.Before(start) {
		return false, ErrInvalidDates
	}
	moto, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if moto.Availability == models.AvailabilityMaintenance {
		return false, nil
	}
	n, err := m.reservations.CountDocuments(ctx, overlapFilter(id, start, end))
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func overlapFilter(motorcycleID string, start, end time.Time) bson.M {
	return bson.M{
		"motorcycle_id": motorcycleID,
		"status":        bson.M{"$in": activeStatuses},
		"start_date":    bson.M{"$lte": end},
		"end_date":      bson.M{"$gte": start},
	}
}

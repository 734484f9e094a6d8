package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"pintapoa/internal/domain"
)

type locationRepository struct {
	coll collection
	now  func() time.Time
}

func NewLocationRepository(db *mongo.Database) domain.LocationRepository {
	return &locationRepository{
		coll: db.Collection(locationsCollection),
		now:  time.Now,
	}
}

func (r *locationRepository) List(ctx context.Context) ([]*domain.Location, error) {
	const op = "mongodb.locations.List"

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	locations := make([]*domain.Location, 0)
	now := r.now()
	for cur.Next(ctx) {
		locations = append(locations, locationFromRaw(cur.Current, now))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	domain.SortLocations(locations)
	return locations, nil
}

func (r *locationRepository) Create(ctx context.Context, l *domain.Location) error {
	const op = "mongodb.locations.Create"

	date, err := validatedDate(l)
	if err != nil {
		return err
	}
	doc := bson.D{
		{Key: "name", Value: l.Name},
		{Key: "address", Value: l.Address},
		{Key: "date", Value: date},
		{Key: "time", Value: l.Time},
		{Key: "imageUrl", Value: l.ImageURL},
		{Key: "coordinates", Value: l.Coordinates},
		{Key: "createdAt", Value: l.CreatedAt},
		{Key: "updatedAt", Value: l.UpdatedAt},
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("%s: unexpected inserted id %v", op, res.InsertedID)
	}
	l.ID = oid.Hex()
	return nil
}

func (r *locationRepository) Update(ctx context.Context, l *domain.Location) error {
	const op = "mongodb.locations.Update"

	date, err := validatedDate(l)
	if err != nil {
		return err
	}
	if l.ID == "" {
		return domain.ErrNotFound
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: l.Name},
		{Key: "address", Value: l.Address},
		{Key: "date", Value: date},
		{Key: "time", Value: l.Time},
		{Key: "imageUrl", Value: l.ImageURL},
		{Key: "coordinates", Value: l.Coordinates},
		{Key: "updatedAt", Value: l.UpdatedAt},
	}}}
	res, err := r.coll.UpdateOne(ctx, idFilter(l.ID), update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id string) error {
	const op = "mongodb.locations.Delete"

	if id == "" {
		return domain.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// locationFromRaw reads one stored document field by field so a single
// malformed record never fails the whole listing.
func locationFromRaw(raw bson.Raw, now time.Time) *domain.Location {
	l := &domain.Location{
		Name:        rawString(raw, "name"),
		Address:     rawString(raw, "address"),
		Time:        rawString(raw, "time"),
		ImageURL:    rawString(raw, "imageUrl"),
		Coordinates: rawString(raw, "coordinates"),
		CreatedAt:   rawTime(raw, "createdAt"),
		UpdatedAt:   rawTime(raw, "updatedAt"),
	}
	if v, err := raw.LookupErr("_id"); err == nil {
		if oid, ok := v.ObjectIDOK(); ok {
			l.ID = oid.Hex()
		} else if s, ok := v.StringValueOK(); ok {
			l.ID = s
		}
	}
	if date := rawTime(raw, "date"); !date.IsZero() {
		l.Date = domain.FormatDate(date)
	} else {
		l.RepairUnreadableDate(now)
	}
	return l
}

func rawString(raw bson.Raw, key string) string {
	v, err := raw.LookupErr(key)
	if err != nil {
		return ""
	}
	s, _ := v.StringValueOK()
	return s
}

func rawTime(raw bson.Raw, key string) time.Time {
	v, err := raw.LookupErr(key)
	if err != nil {
		return time.Time{}
	}
	t, ok := v.TimeOK()
	if !ok {
		return time.Time{}
	}
	return t.UTC()
}

func validatedDate(l *domain.Location) (time.Time, error) {
	if err := l.Input().Validate(); err != nil {
		return time.Time{}, err
	}
	return domain.ParseDate(l.Date)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"pintapoa/internal/domain"
)

// statusDocumentID addresses the singleton status document.
const statusDocumentID = "current"

type statusDocument struct {
	ID        string    `bson:"_id"`
	Status    string    `bson:"status"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty"`
}

type statusRepository struct {
	coll collection
	now  func() time.Time
}

func NewStatusRepository(db *mongo.Database) domain.StatusRepository {
	return &statusRepository{
		coll: db.Collection(statusCollection),
		now:  time.Now,
	}
}

func (r *statusRepository) Get(ctx context.Context) (domain.EventStatus, error) {
	const op = "mongodb.status.Get"

	var doc statusDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: statusDocumentID}}).Decode(&doc)
	if err == nil {
		return domain.EventStatus(doc.Status), nil
	}
	if !isNoDocuments(err) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// $setOnInsert leaves a document written concurrently untouched.
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "status", Value: string(domain.DefaultStatus)},
		{Key: "updatedAt", Value: r.now()},
	}}}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: statusDocumentID}}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("%s: create default: %w", op, err)
	}
	if res.UpsertedCount == 0 {
		if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: statusDocumentID}}).Decode(&doc); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		return domain.EventStatus(doc.Status), nil
	}
	return domain.DefaultStatus, nil
}

func (r *statusRepository) Set(ctx context.Context, status domain.EventStatus, updatedAt time.Time) error {
	const op = "mongodb.status.Set"

	doc := statusDocument{ID: statusDocumentID, Status: string(status), UpdatedAt: updatedAt}
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: statusDocumentID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

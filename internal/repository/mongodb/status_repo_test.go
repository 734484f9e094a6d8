package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"pintapoa/internal/domain"
)

func statusResult(status string) *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(bson.D{{Key: "_id", Value: statusDocumentID}, {Key: "status", Value: status}}, nil, nil)
}

func noDocument() *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func TestStatusRepository_Get(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	t.Run("stored status", func(t *testing.T) {
		coll := &fakeCollection{findOne: []*mongo.SingleResult{statusResult("active")}}
		repo := &statusRepository{coll: coll, now: func() time.Time { return now }}

		got, err := repo.Get(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, got)
		assert.Empty(t, coll.updates)
	})

	t.Run("missing document is created with the default", func(t *testing.T) {
		coll := &fakeCollection{
			findOne:      []*mongo.SingleResult{noDocument()},
			updateResult: &mongo.UpdateResult{UpsertedCount: 1},
		}
		repo := &statusRepository{coll: coll, now: func() time.Time { return now }}

		got, err := repo.Get(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusWaiting, got)
		require.Len(t, coll.updates, 1)
		assert.Equal(t, []bool{true}, coll.updateUpserts)
		assert.Equal(t, bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "status", Value: "waiting"},
			{Key: "updatedAt", Value: now},
		}}}, coll.updates[0])
	})

	t.Run("document written concurrently is re-read", func(t *testing.T) {
		coll := &fakeCollection{
			findOne:      []*mongo.SingleResult{noDocument(), statusResult("ended")},
			updateResult: &mongo.UpdateResult{MatchedCount: 1},
		}
		repo := &statusRepository{coll: coll, now: func() time.Time { return now }}

		got, err := repo.Get(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusEnded, got)
		assert.Equal(t, 2, coll.findOneCalls)
	})

	t.Run("store error", func(t *testing.T) {
		coll := &fakeCollection{
			findOne: []*mongo.SingleResult{mongo.NewSingleResultFromDocument(bson.D{}, errors.New("server selection timeout"), nil)},
		}
		repo := &statusRepository{coll: coll, now: func() time.Time { return now }}

		_, err := repo.Get(context.Background())

		require.Error(t, err)
		assert.Empty(t, coll.updates)
	})
}

func TestStatusRepository_Set(t *testing.T) {
	updatedAt := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	coll := &fakeCollection{}
	repo := &statusRepository{coll: coll, now: time.Now}

	require.NoError(t, repo.Set(context.Background(), domain.StatusSeeYouSoon, updatedAt))

	assert.True(t, coll.replaceUpsert)
	require.Len(t, coll.replacements, 1)
	assert.Equal(t, statusDocument{ID: statusDocumentID, Status: "see-you-soon", UpdatedAt: updatedAt}, coll.replacements[0])
	assert.Equal(t, bson.D{{Key: "_id", Value: statusDocumentID}}, coll.filters[0])
}

func TestStatusRepository_Set_StoreError(t *testing.T) {
	repo := &statusRepository{coll: &fakeCollection{replaceErr: errors.New("not primary")}, now: time.Now}

	err := repo.Set(context.Background(), domain.StatusActive, time.Now())

	require.Error(t, err)
}

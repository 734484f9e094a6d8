package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// fakeCollection answers from canned results and records what it was asked.
type fakeCollection struct {
	findDocs []any
	findErr  error

	// findOne results are returned in order; the last one repeats.
	findOne []*mongo.SingleResult

	insertID  any
	insertErr error

	updateResult  *mongo.UpdateResult
	updateErr     error
	replaceErr    error
	deleteResult  *mongo.DeleteResult
	deleteErr     error
	findOneCalls  int
	filters       []any
	updates       []any
	replacements  []any
	updateUpserts []bool
	replaceUpsert bool
}

func (f *fakeCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	f.filters = append(f.filters, filter)
	if f.findErr != nil {
		return nil, f.findErr
	}
	return mongo.NewCursorFromDocuments(f.findDocs, nil, nil)
}

func (f *fakeCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	f.filters = append(f.filters, filter)
	f.findOneCalls++
	if len(f.findOne) == 0 {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	res := f.findOne[0]
	if len(f.findOne) > 1 {
		f.findOne = f.findOne[1:]
	}
	return res
}

func (f *fakeCollection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &mongo.InsertOneResult{InsertedID: f.insertID, Acknowledged: true}, nil
}

func (f *fakeCollection) UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	f.filters = append(f.filters, filter)
	f.updates = append(f.updates, update)
	var args options.UpdateOneOptions
	for _, o := range opts {
		for _, set := range o.List() {
			_ = set(&args)
		}
	}
	f.updateUpserts = append(f.updateUpserts, args.Upsert != nil && *args.Upsert)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateResult, nil
}

func (f *fakeCollection) ReplaceOne(ctx context.Context, filter, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error) {
	f.filters = append(f.filters, filter)
	f.replacements = append(f.replacements, replacement)
	var args options.ReplaceOptions
	for _, o := range opts {
		for _, set := range o.List() {
			_ = set(&args)
		}
	}
	f.replaceUpsert = args.Upsert != nil && *args.Upsert
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (f *fakeCollection) DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	f.filters = append(f.filters, filter)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return f.deleteResult, nil
}

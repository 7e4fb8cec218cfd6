package feature

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new feature repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return newInstrumentedRepository(&mongoRepository{
		collection: db.Collection(CollectionName),
	})
}

func (r *mongoRepository) FindAll(ctx context.Context) ([]*Feature, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*Feature, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepository) FindByIDs(ctx context.Context, ids []string) ([]*Feature, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoRepository) FindByCatalogKey(ctx context.Context, key string) (*Feature, error) {
	return r.findOne(ctx, bson.M{"catalogKey": key})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*Feature, error) {
	var f Feature
	err := r.collection.FindOne(ctx, filter).Decode(&f)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *mongoRepository) find(ctx context.Context, filter bson.M) ([]*Feature, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"catalogKey": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var features []*Feature
	if err := cursor.All(ctx, &features); err != nil {
		return nil, err
	}
	return features, nil
}

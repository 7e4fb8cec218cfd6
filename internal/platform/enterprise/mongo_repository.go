package enterprise

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new enterprise repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return newInstrumentedRepository(&mongoRepository{
		collection: db.Collection(CollectionName),
	})
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*Enterprise, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepository) FindByTenantKey(ctx context.Context, key string) (*Enterprise, error) {
	return r.findOne(ctx, bson.M{"tenantKey": key})
}

func (r *mongoRepository) FindByAdminUserID(ctx context.Context, userID string) (*Enterprise, error) {
	return r.findOne(ctx, bson.M{"adminUserId": userID})
}

func (r *mongoRepository) ExistsByAdminRoleID(ctx context.Context, roleID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"adminRoleId": roleID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*Enterprise, error) {
	var e Enterprise
	err := r.collection.FindOne(ctx, filter).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

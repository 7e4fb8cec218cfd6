package permission

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRepository provides MongoDB access to grant rows
type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new grant repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return newInstrumentedRepository(&mongoRepository{
		collection: db.Collection(CollectionName),
	})
}

func (r *mongoRepository) FindByRoleID(ctx context.Context, roleID string) ([]*Grant, error) {
	return r.find(ctx, bson.M{"roleId": roleID})
}

// FindByRoleIDs loads the grants of several roles in one query
func (r *mongoRepository) FindByRoleIDs(ctx context.Context, roleIDs []string) ([]*Grant, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"roleId": bson.M{"$in": roleIDs}})
}

func (r *mongoRepository) FindOne(ctx context.Context, roleID, featureID string) (*Grant, error) {
	var grant Grant
	err := r.collection.FindOne(ctx, bson.M{"_id": GrantID(roleID, featureID)}).Decode(&grant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (r *mongoRepository) find(ctx context.Context, filter bson.M) ([]*Grant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "roleId", Value: 1}, {Key: "featureId", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var grants []*Grant
	if err := cursor.All(ctx, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

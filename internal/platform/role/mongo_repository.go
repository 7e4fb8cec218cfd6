package role

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRepository provides MongoDB access to role data
type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new role repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return newInstrumentedRepository(&mongoRepository{
		collection: db.Collection(CollectionName),
	})
}

// FindAll finds all roles
func (r *mongoRepository) FindAll(ctx context.Context) ([]*Role, error) {
	return r.find(ctx, bson.M{})
}

// FindByID finds a role by ID
func (r *mongoRepository) FindByID(ctx context.Context, id string) (*Role, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByIDs finds the roles with the given IDs. Unknown IDs are skipped.
func (r *mongoRepository) FindByIDs(ctx context.Context, ids []string) ([]*Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// FindByName finds a role by its unique name
func (r *mongoRepository) FindByName(ctx context.Context, name string) (*Role, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *mongoRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*Role, error) {
	var role Role
	err := r.collection.FindOne(ctx, filter).Decode(&role)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *mongoRepository) find(ctx context.Context, filter bson.M) ([]*Role, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []*Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

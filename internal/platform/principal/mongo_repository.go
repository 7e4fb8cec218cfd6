package principal

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRepository provides MongoDB access to user data
type mongoRepository struct {
	collection *mongo.Collection
}

// NewRepository creates a new user repository with instrumentation
func NewRepository(db *mongo.Database) Repository {
	return newInstrumentedRepository(&mongoRepository{
		collection: db.Collection(CollectionName),
	})
}

// FindByID finds a user by ID
func (r *mongoRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail finds a user by normalized email
func (r *mongoRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoRepository) FindByResetTokenHash(ctx context.Context, hash string) (*User, error) {
	return r.findOne(ctx, bson.M{"resetTokenHash": hash})
}

// FindByTenantID finds all users scoped to an enterprise
func (r *mongoRepository) FindByTenantID(ctx context.Context, tenantID string) ([]*User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{FieldTenantID: tenantID}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ExistsByEmail checks if a user with the email exists
func (r *mongoRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoRepository) CountActiveByRoleID(ctx context.Context, roleID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"roleIds": roleID, FieldActive: true})
}

// UpdateLastLogin updates the last login timestamp
func (r *mongoRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastLoginAt": time.Now()}},
	)
	return err
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexDefinition defines a MongoDB index
type IndexDefinition struct {
	Collection string
	Keys       bson.D
	Options    *options.IndexOptions
}

// Unique reports whether the index enforces uniqueness
func (d IndexDefinition) Unique() bool {
	return d.Options != nil && d.Options.Unique != nil && *d.Options.Unique
}

// IndexInitializer creates indexes on startup
type IndexInitializer struct {
	db *mongo.Database
}

// NewIndexInitializer creates a new index initializer
func NewIndexInitializer(db *mongo.Database) *IndexInitializer {
	return &IndexInitializer{db: db}
}

// Initialize creates all required indexes. Failing to create a unique
// index is an error: name and email uniqueness under concurrent writers
// depends on them. Other failures are logged.
func (i *IndexInitializer) Initialize(ctx context.Context) error {
	indexes := IndexDefinitions()

	var errs []error
	for _, idx := range indexes {
		if err := i.createIndex(ctx, idx); err != nil {
			if idx.Unique() {
				errs = append(errs, fmt.Errorf("unique index on %s %v: %w", idx.Collection, idx.Keys, err))
				continue
			}
			slog.Warn("Failed to create index",
				"error", err,
				"collection", idx.Collection)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("Index initialization complete", "count", len(indexes))
	return nil
}

func (i *IndexInitializer) createIndex(ctx context.Context, idx IndexDefinition) error {
	_, err := i.db.Collection(idx.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    idx.Keys,
		Options: idx.Options,
	})
	return err
}

// IndexDefinitions lists the indexes of every authorization collection
func IndexDefinitions() []IndexDefinition {
	return []IndexDefinition{
		// features
		{
			Collection: "features",
			Keys:       bson.D{{Key: "catalogKey", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},

		// roles
		{
			Collection: "roles",
			Keys:       bson.D{{Key: "name", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: "roles",
			Keys:       bson.D{{Key: "tenantId", Value: 1}},
			Options:    options.Index().SetSparse(true),
		},

		// permission_grants; the _id is derived from (roleId, featureId)
		{
			Collection: "permission_grants",
			Keys:       bson.D{{Key: "roleId", Value: 1}, {Key: "featureId", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: "permission_grants",
			Keys:       bson.D{{Key: "featureId", Value: 1}},
		},

		// users
		{
			Collection: "users",
			Keys:       bson.D{{Key: "email", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: "users",
			Keys:       bson.D{{Key: "tenantId", Value: 1}},
			Options:    options.Index().SetSparse(true),
		},
		{
			Collection: "users",
			Keys:       bson.D{{Key: "roleIds", Value: 1}, {Key: "active", Value: 1}},
		},
		{
			Collection: "users",
			Keys:       bson.D{{Key: "resetTokenHash", Value: 1}},
			Options:    options.Index().SetSparse(true),
		},

		// enterprises
		{
			Collection: "enterprises",
			Keys:       bson.D{{Key: "tenantKey", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: "enterprises",
			Keys:       bson.D{{Key: "adminUserId", Value: 1}},
		},
		{
			Collection: "enterprises",
			Keys:       bson.D{{Key: "adminRoleId", Value: 1}},
		},

		// events
		{
			Collection: "events",
			Keys:       bson.D{{Key: "messageGroup", Value: 1}, {Key: "time", Value: 1}},
		},
		{
			Collection: "events",
			Keys:       bson.D{{Key: "deduplicationId", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},

		// audit_logs
		{
			Collection: "audit_logs",
			Keys:       bson.D{{Key: "entityType", Value: 1}, {Key: "entityId", Value: 1}},
		},
		{
			Collection: "audit_logs",
			Keys:       bson.D{{Key: "performedAt", Value: -1}},
		},
	}
}

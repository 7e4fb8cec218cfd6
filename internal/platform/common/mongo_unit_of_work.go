package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUnitOfWork implements UnitOfWork using MongoDB transactions.
// Aggregate writes, the domain event and the audit log entry all happen
// inside one session transaction.
type MongoUnitOfWork struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoUnitOfWork creates a new MongoDB-backed UnitOfWork.
func NewMongoUnitOfWork(client *mongo.Client, db *mongo.Database) *MongoUnitOfWork {
	return &MongoUnitOfWork{
		client: client,
		db:     db,
	}
}

// Commit persists an aggregate with its domain event atomically.
func (uow *MongoUnitOfWork) Commit(ctx context.Context, aggregate AggregateRoot, event DomainEvent, command any) Result[DomainEvent] {
	return uow.CommitChanges(ctx, NewChangeSet().Upsert(aggregate), event, command)
}

// CommitAll persists multiple aggregates with a domain event atomically.
func (uow *MongoUnitOfWork) CommitAll(ctx context.Context, aggregates []AggregateRoot, event DomainEvent, command any) Result[DomainEvent] {
	return uow.CommitChanges(ctx, NewChangeSet().Upsert(aggregates...), event, command)
}

// CommitChanges applies filtered deletes, deletes, upserts and bulk updates in
// one transaction.
func (uow *MongoUnitOfWork) CommitChanges(ctx context.Context, changes *ChangeSet, event DomainEvent, command any) Result[DomainEvent] {
	session, err := uow.client.StartSession()
	if err != nil {
		return Failure[DomainEvent](InternalError(
			ErrCodeCommitFailed,
			"Failed to start session",
			map[string]any{"error": err.Error()},
		))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		for _, purge := range changes.Purges {
			if _, err := uow.db.Collection(purge.Collection).DeleteMany(sessCtx, bson.M(purge.Match)); err != nil {
				return nil, fmt.Errorf("bulk delete %s: %w", purge.Collection, err)
			}
		}

		for i, aggregate := range changes.Deletes {
			if err := uow.deleteAggregate(sessCtx, aggregate); err != nil {
				return nil, fmt.Errorf("delete aggregate %d: %w", i, err)
			}
		}

		for i, aggregate := range changes.Upserts {
			if err := uow.persistAggregate(sessCtx, aggregate); err != nil {
				return nil, fmt.Errorf("persist aggregate %d: %w", i, err)
			}
		}

		for _, update := range changes.Updates {
			res, err := uow.db.Collection(update.Collection).UpdateMany(
				sessCtx,
				bson.M(update.Match),
				bson.M{"$set": bson.M(update.Set)},
			)
			if err != nil {
				return nil, fmt.Errorf("bulk update %s: %w", update.Collection, err)
			}
			slog.DebugContext(ctx, "Bulk update applied",
				"collection", update.Collection,
				"matched", res.MatchedCount,
				"modified", res.ModifiedCount)
		}

		if _, err := uow.db.Collection(eventsCollection).InsertOne(sessCtx, ToPersistedEvent(event)); err != nil {
			return nil, fmt.Errorf("create event: %w", err)
		}

		if _, err := uow.db.Collection(auditLogsCollection).InsertOne(sessCtx, NewAuditLog(event, command)); err != nil {
			return nil, fmt.Errorf("create audit log: %w", err)
		}

		return nil, nil
	})

	if err != nil {
		return Failure[DomainEvent](commitFailure(err))
	}

	return newSuccess(event)
}

func (uow *MongoUnitOfWork) persistAggregate(ctx mongo.SessionContext, aggregate AggregateRoot) error {
	if aggregate.AggregateID() == "" {
		return errors.New("aggregate has no ID")
	}
	_, err := uow.db.Collection(aggregate.CollectionName()).ReplaceOne(
		ctx,
		bson.M{"_id": aggregate.AggregateID()},
		aggregate,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (uow *MongoUnitOfWork) deleteAggregate(ctx mongo.SessionContext, aggregate AggregateRoot) error {
	_, err := uow.db.Collection(aggregate.CollectionName()).DeleteOne(ctx, bson.M{"_id": aggregate.AggregateID()})
	return err
}

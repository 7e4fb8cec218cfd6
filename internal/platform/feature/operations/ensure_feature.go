package operations

import (
	"context"
	"strings"
	"time"

	"go.venuehub.tech/internal/common/lock"
	"go.venuehub.tech/internal/common/tsid"
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/events"
	"go.venuehub.tech/internal/platform/feature"
)

// EnsureFeatureCommand names the feature to get or create
type EnsureFeatureCommand struct {
	Name string `json:"name" validate:"required"`
}

// EnsureFeatureUseCase returns the feature with a given catalog key,
// creating it on first use
type EnsureFeatureUseCase struct {
	repo       feature.Repository
	unitOfWork common.UnitOfWork
	locker     lock.Locker
}

// NewEnsureFeatureUseCase creates a new EnsureFeatureUseCase
func NewEnsureFeatureUseCase(repo feature.Repository, uow common.UnitOfWork, locker lock.Locker) *EnsureFeatureUseCase {
	return &EnsureFeatureUseCase{
		repo:       repo,
		unitOfWork: uow,
		locker:     locker,
	}
}

// Execute is idempotent: names that share a slug resolve to the same
// feature, and repeating a call never fails.
func (uc *EnsureFeatureUseCase) Execute(
	ctx context.Context,
	cmd EnsureFeatureCommand,
	execCtx *common.ExecutionContext,
) common.Result[*feature.Feature] {
	name := strings.TrimSpace(cmd.Name)
	key := feature.Slug(name)
	if key == "" {
		return common.Failure[*feature.Feature](
			common.ValidationError(common.ErrCodeRequired, "Feature name is required", nil),
		)
	}

	if existing, err := uc.repo.FindByCatalogKey(ctx, key); err != nil {
		return lookupFailure(err)
	} else if existing != nil {
		return common.Resolved(existing)
	}

	release, err := uc.locker.Acquire(ctx, lock.Key("feature", key))
	if err != nil {
		return common.Failure[*feature.Feature](common.BusyError("feature"))
	}
	defer release()

	// Another caller may have created it while we waited.
	if existing, err := uc.repo.FindByCatalogKey(ctx, key); err != nil {
		return lookupFailure(err)
	} else if existing != nil {
		return common.Resolved(existing)
	}

	f := &feature.Feature{
		ID:         tsid.Generate(),
		Name:       name,
		CatalogKey: key,
		CreatedAt:  time.Now().UTC(),
	}

	result := uc.unitOfWork.Commit(ctx, f, events.NewFeatureEnsured(execCtx, f), cmd)
	if result.IsFailure() && result.Error().Code == common.ErrCodeAlreadyExists {
		// Lost a race against another instance; the unique index kept one.
		if existing, err := uc.repo.FindByCatalogKey(ctx, key); err == nil && existing != nil {
			return common.Resolved(existing)
		}
	}
	return common.Map(result, func(common.DomainEvent) *feature.Feature { return f })
}

func lookupFailure(err error) common.Result[*feature.Feature] {
	return common.Failure[*feature.Feature](
		common.InternalError(common.ErrCodeInternal, "Failed to look up feature", map[string]any{"error": err.Error()}),
	)
}

package operations

import (
	"context"
	"sync"
	"testing"

	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/feature"
	"go.venuehub.tech/internal/platform/store/storetest"
)

func newUseCase(t *testing.T) (*EnsureFeatureUseCase, *storetest.Fixture) {
	t.Helper()
	fx := storetest.New(t)
	return NewEnsureFeatureUseCase(fx.Features, fx.UoW, fx.Locker), fx
}

func TestEnsureFeature_CreatesOnce(t *testing.T) {
	uc, fx := newUseCase(t)
	ctx := context.Background()

	first := uc.Execute(ctx, EnsureFeatureCommand{Name: "Venue Booking"}, fx.ExecCtx("admin"))
	if first.IsFailure() {
		t.Fatalf("ensure failed: %v", first.Error())
	}
	if first.Value().CatalogKey != "venue_booking" {
		t.Errorf("expected catalog key venue_booking, got %q", first.Value().CatalogKey)
	}

	for _, name := range []string{"Venue Booking", "venue booking", "  VENUE   BOOKING "} {
		again := uc.Execute(ctx, EnsureFeatureCommand{Name: name}, fx.ExecCtx("admin"))
		if again.IsFailure() {
			t.Fatalf("ensure %q failed: %v", name, again.Error())
		}
		if again.Value().ID != first.Value().ID {
			t.Errorf("ensure %q returned a different feature", name)
		}
	}

	if n := fx.Tables.Features.Len(); n != 1 {
		t.Errorf("expected 1 stored feature, got %d", n)
	}
	if n := len(fx.UoW.Events()); n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestEnsureFeature_RequiresName(t *testing.T) {
	uc, fx := newUseCase(t)

	for _, name := range []string{"", "   "} {
		result := uc.Execute(context.Background(), EnsureFeatureCommand{Name: name}, fx.ExecCtx("admin"))
		if result.IsSuccess() {
			t.Fatalf("expected failure for %q", name)
		}
		if result.Error().Kind != common.ErrorKindValidation {
			t.Errorf("expected validation error, got %s", result.Error().Kind)
		}
	}
}

func TestEnsureFeature_ConcurrentCallsConverge(t *testing.T) {
	uc, fx := newUseCase(t)

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result := uc.Execute(context.Background(), EnsureFeatureCommand{Name: "Offers"}, fx.ExecCtx("admin"))
			if result.IsSuccess() {
				ids[i] = result.Value().ID
			}
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		if id == "" || id != ids[0] {
			t.Fatalf("caller %d got %q, want %q", i, id, ids[0])
		}
	}
	if n := fx.Tables.Features.Len(); n != 1 {
		t.Errorf("expected 1 stored feature, got %d", n)
	}
}

func TestEnsureFeature_CommitFailure(t *testing.T) {
	uc, fx := newUseCase(t)
	fx.FailWrites(feature.CollectionName)

	result := uc.Execute(context.Background(), EnsureFeatureCommand{Name: "Offers"}, fx.ExecCtx("admin"))
	if result.IsSuccess() {
		t.Fatal("expected failure")
	}
	if result.Error().Kind != common.ErrorKindInternal {
		t.Errorf("expected internal error, got %s", result.Error().Kind)
	}
	if n := fx.Tables.Features.Len(); n != 0 {
		t.Errorf("expected nothing stored, got %d", n)
	}
}

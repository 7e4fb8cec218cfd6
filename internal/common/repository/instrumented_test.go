package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestInstrumentPassesThroughResult(t *testing.T) {
	got, err := Instrument(context.Background(), "auth_roles", "FindByID", func() (string, error) {
		return "role-1", nil
	})
	if err != nil || got != "role-1" {
		t.Errorf("Instrument() = (%q, %v), want (role-1, nil)", got, err)
	}
}

func TestInstrumentVoidPropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := InstrumentVoid(context.Background(), "auth_roles", "Insert", func() error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("InstrumentVoid() error = %v, want %v", err, want)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not_found"},
		{fmt.Errorf("wrap: %w", ErrDuplicateKey), "duplicate_key"},
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	if Translate(nil) != nil {
		t.Error("Translate(nil) should be nil")
	}
	other := errors.New("network")
	if !errors.Is(Translate(other), other) {
		t.Error("unrelated errors should pass through")
	}
}

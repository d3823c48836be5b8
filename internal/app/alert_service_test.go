package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

func TestAlertService(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)

	makeStore := func(status domain.AlertStatus) *fakeStore {
		store := newFakeStore()
		store.alerts["a1"] = domain.Alert{
			ID: "a1", Type: domain.AlertTypeDamageReport,
			Status: status, BookingID: "bk-1",
		}
		return store
	}

	t.Run("acknowledge then resolve", func(t *testing.T) {
		t.Parallel()
		store := makeStore(domain.AlertStatusPending)
		svc := NewAlertService(store, clock.NewFixed(now))

		if err := svc.Acknowledge(context.Background(), "a1", "staff-1"); err != nil {
			t.Fatalf("acknowledge: %v", err)
		}
		if store.alerts["a1"].Status != domain.AlertStatusAcknowledged {
			t.Fatalf("expected acknowledged, got %s", store.alerts["a1"].Status)
		}

		if err := svc.Resolve(context.Background(), "a1", "staff-1"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if store.alerts["a1"].Status != domain.AlertStatusResolved {
			t.Fatalf("expected resolved, got %s", store.alerts["a1"].Status)
		}
		if len(store.audits) != 2 {
			t.Fatalf("expected two audit rows, got %d", len(store.audits))
		}
	})

	t.Run("resolve straight from pending", func(t *testing.T) {
		t.Parallel()
		store := makeStore(domain.AlertStatusPending)
		svc := NewAlertService(store, clock.NewFixed(now))

		if err := svc.Resolve(context.Background(), "a1", "staff-1"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if store.alerts["a1"].Status != domain.AlertStatusResolved {
			t.Fatalf("expected resolved, got %s", store.alerts["a1"].Status)
		}
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		t.Parallel()
		store := makeStore(domain.AlertStatusResolved)
		svc := NewAlertService(store, clock.NewFixed(now))

		if err := svc.Acknowledge(context.Background(), "a1", "staff-1"); err != nil {
			t.Fatalf("expected no-op, got %v", err)
		}
		if store.alerts["a1"].Status != domain.AlertStatusResolved {
			t.Fatal("expected resolved alert untouched")
		}
		if len(store.audits) != 0 {
			t.Fatal("expected no audit for a no-op")
		}
	})

	t.Run("requires actor", func(t *testing.T) {
		t.Parallel()
		svc := NewAlertService(makeStore(domain.AlertStatusPending), clock.NewFixed(now))
		if err := svc.Resolve(context.Background(), "a1", ""); !errors.Is(err, domain.ErrActorRequired) {
			t.Fatalf("expected ErrActorRequired, got %v", err)
		}
	})

	t.Run("unknown alert", func(t *testing.T) {
		t.Parallel()
		svc := NewAlertService(newFakeStore(), clock.NewFixed(now))
		if err := svc.Acknowledge(context.Background(), "a-x", "staff-1"); !errors.Is(err, domain.ErrAlertNotFound) {
			t.Fatalf("expected ErrAlertNotFound, got %v", err)
		}
	})
}

package app

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (n *recordingNotifier) Dispatch(_ context.Context, notification Notification) error {
	n.sent = append(n.sent, notification)
	return n.err
}

func readySnapshot() BookingSnapshot {
	return BookingSnapshot{
		PrepComplete:           true,
		PhotosComplete:         true,
		PaymentCollected:       true,
		AgreementSigned:        true,
		WalkaroundComplete:     true,
		WalkaroundAcknowledged: true,
	}
}

func TestLifecycleService_TransitionGraph(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	statuses := []domain.BookingStatus{
		domain.BookingStatusPending,
		domain.BookingStatusConfirmed,
		domain.BookingStatusActive,
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled,
	}
	legal := map[domain.BookingStatus]map[domain.BookingStatus]bool{
		domain.BookingStatusPending:   {domain.BookingStatusConfirmed: true, domain.BookingStatusCancelled: true},
		domain.BookingStatusConfirmed: {domain.BookingStatusActive: true, domain.BookingStatusCancelled: true},
		domain.BookingStatusActive:    {domain.BookingStatusCompleted: true, domain.BookingStatusCancelled: true},
	}

	// Every ordered pair is attempted; anything outside the edge table must
	// fail with the structured error naming the rejected edge.
	for _, from := range statuses {
		for _, to := range statuses {
			from, to := from, to
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				t.Parallel()

				store := newFakeStore()
				store.vehicles["veh-1"] = domain.Vehicle{ID: "veh-1", Name: "Corolla"}
				store.bookings["bk-1"] = domain.Booking{
					ID: "bk-1", Code: "BR-TEST01", VehicleID: "veh-1",
					CustomerID: "cust-1", Status: from,
					StartAt: now, EndAt: now.Add(48 * time.Hour),
				}
				store.snapshots["bk-1"] = readySnapshot()
				store.checkIns["bk-1"] = domain.CheckInRecord{BookingID: "bk-1", CheckInStatus: domain.CheckInStatusPassed}
				store.entries = append(store.entries, domain.DepositEntry{
					BookingID: "bk-1", Action: domain.DepositActionHold, AmountCents: 50000,
				})
				svc := NewLifecycleService(store, clock.NewFixed(now), nil, log.Default())

				_, err := svc.Transition(context.Background(), TransitionInput{
					BookingID: "bk-1", Target: to, Actor: "staff-1",
				})

				if legal[from][to] {
					if err != nil {
						t.Fatalf("expected %s -> %s to be legal, got %v", from, to, err)
					}
					if store.bookings["bk-1"].Status != to {
						t.Fatalf("expected status %s, got %s", to, store.bookings["bk-1"].Status)
					}
					return
				}

				if !errors.Is(err, domain.ErrIllegalTransition) {
					t.Fatalf("expected %s -> %s to be rejected, got %v", from, to, err)
				}
				var illegal *domain.IllegalTransitionError
				if !errors.As(err, &illegal) {
					t.Fatalf("expected IllegalTransitionError, got %T", err)
				}
				if illegal.From != from || illegal.To != to {
					t.Fatalf("expected edge %s -> %s in error, got %s -> %s", from, to, illegal.From, illegal.To)
				}
				if store.bookings["bk-1"].Status != from {
					t.Fatalf("expected status unchanged on rejection, got %s", store.bookings["bk-1"].Status)
				}
			})
		}
	}
}

func TestLifecycleService_ActivationGate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

	makeStore := func() *fakeStore {
		store := newFakeStore()
		store.vehicles["veh-1"] = domain.Vehicle{ID: "veh-1", Name: "Corolla"}
		store.bookings["bk-1"] = domain.Booking{
			ID: "bk-1", Code: "BR-TEST01", VehicleID: "veh-1",
			CustomerID: "cust-1", Status: domain.BookingStatusConfirmed,
			StartAt: now, EndAt: now.Add(48 * time.Hour),
		}
		return store
	}

	t.Run("blocks activation until every condition holds", func(t *testing.T) {
		t.Parallel()
		store := makeStore()
		snap := readySnapshot()
		snap.PaymentCollected = false
		store.snapshots["bk-1"] = snap
		store.checkIns["bk-1"] = domain.CheckInRecord{BookingID: "bk-1", CheckInStatus: domain.CheckInStatusPassed}
		store.entries = append(store.entries, domain.DepositEntry{BookingID: "bk-1", Action: domain.DepositActionHold, AmountCents: 50000})
		svc := NewLifecycleService(store, clock.NewFixed(now), nil, log.Default())

		_, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusActive, Actor: "staff-1"})
		if !errors.Is(err, domain.ErrBookingNotReady) {
			t.Fatalf("expected ErrBookingNotReady, got %v", err)
		}
		if store.bookings["bk-1"].Status != domain.BookingStatusConfirmed {
			t.Fatal("expected booking to stay confirmed")
		}
	})

	t.Run("needs_review check-in does not block activation", func(t *testing.T) {
		t.Parallel()
		store := makeStore()
		store.snapshots["bk-1"] = readySnapshot()
		store.checkIns["bk-1"] = domain.CheckInRecord{BookingID: "bk-1", CheckInStatus: domain.CheckInStatusNeedsReview}
		store.entries = append(store.entries, domain.DepositEntry{BookingID: "bk-1", Action: domain.DepositActionHold, AmountCents: 50000})
		notifier := &recordingNotifier{}
		svc := NewLifecycleService(store, clock.NewFixed(now), notifier, log.Default())

		if _, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusActive, Actor: "staff-1"}); err != nil {
			t.Fatalf("expected activation, got %v", err)
		}
		if len(notifier.sent) != 1 || notifier.sent[0].EventType != "rental_activated" {
			t.Fatalf("expected rental_activated notification, got %+v", notifier.sent)
		}
	})

	t.Run("blocked check-in blocks activation", func(t *testing.T) {
		t.Parallel()
		store := makeStore()
		store.snapshots["bk-1"] = readySnapshot()
		store.checkIns["bk-1"] = domain.CheckInRecord{BookingID: "bk-1", CheckInStatus: domain.CheckInStatusBlocked}
		store.entries = append(store.entries, domain.DepositEntry{BookingID: "bk-1", Action: domain.DepositActionHold, AmountCents: 50000})
		svc := NewLifecycleService(store, clock.NewFixed(now), nil, log.Default())

		_, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusActive, Actor: "staff-1"})
		if !errors.Is(err, domain.ErrBookingNotReady) {
			t.Fatalf("expected ErrBookingNotReady, got %v", err)
		}
	})
}

func TestLifecycleService_CompletedReturn(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)

	makeStore := func() *fakeStore {
		store := newFakeStore()
		store.vehicles["veh-1"] = domain.Vehicle{ID: "veh-1", Name: "Corolla"}
		store.bookings["bk-1"] = domain.Booking{
			ID: "bk-1", Code: "BR-TEST01", VehicleID: "veh-1",
			CustomerID: "cust-1", Status: domain.BookingStatusActive,
			StartAt: now.Add(-48 * time.Hour), EndAt: now,
		}
		store.entries = append(store.entries, domain.DepositEntry{
			BookingID: "bk-1", Action: domain.DepositActionHold, AmountCents: 50000,
		})
		return store
	}

	t.Run("clean return releases the full balance", func(t *testing.T) {
		t.Parallel()
		store := makeStore()
		notifier := &recordingNotifier{}
		svc := NewLifecycleService(store, clock.NewFixed(now), notifier, log.Default())

		booking, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusCompleted, Actor: "staff-1"})
		if err != nil {
			t.Fatalf("expected completion, got %v", err)
		}
		if booking.ActualReturnAt == nil || !booking.ActualReturnAt.Equal(now) {
			t.Fatalf("expected actual return at %v, got %v", now, booking.ActualReturnAt)
		}

		entries := store.entriesFor("bk-1")
		if len(entries) != 2 {
			t.Fatalf("expected exactly one release entry appended, got %d entries", len(entries))
		}
		release := entries[1]
		if release.Action != domain.DepositActionRelease || release.AmountCents != 50000 {
			t.Fatalf("expected release of 50000, got %+v", release)
		}
		if domain.FoldDepositBalance(entries) != 0 {
			t.Fatalf("expected folded balance 0, got %d", domain.FoldDepositBalance(entries))
		}
		if len(notifier.sent) != 1 || notifier.sent[0].EventType != "return_completed" {
			t.Fatalf("expected return_completed notification, got %+v", notifier.sent)
		}
		if notifier.sent[0].VehicleName != "Corolla" {
			t.Fatalf("expected vehicle name in notification, got %q", notifier.sent[0].VehicleName)
		}
	})

	t.Run("open damage alert blocks auto release", func(t *testing.T) {
		t.Parallel()
		store := makeStore()
		store.alerts["a1"] = domain.Alert{
			ID: "a1", Type: domain.AlertTypeDamageReport,
			Status: domain.AlertStatusPending, BookingID: "bk-1",
		}
		svc := NewLifecycleService(store, clock.NewFixed(now), nil, log.Default())

		if _, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusCompleted, Actor: "staff-1"}); err != nil {
			t.Fatalf("expected completion, got %v", err)
		}
		if len(store.entriesFor("bk-1")) != 1 {
			t.Fatal("expected no release while damage alert open")
		}
	})

	t.Run("exception return skips auto release", func(t *testing.T) {
		t.Parallel()
		store := makeStore()
		b := store.bookings["bk-1"]
		b.ReturnIsException = true
		store.bookings["bk-1"] = b
		svc := NewLifecycleService(store, clock.NewFixed(now), nil, log.Default())

		if _, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusCompleted, Actor: "staff-1"}); err != nil {
			t.Fatalf("expected completion, got %v", err)
		}
		if len(store.entriesFor("bk-1")) != 1 {
			t.Fatal("expected no release on exception return")
		}
	})

	t.Run("notifier failure does not unwind the transition", func(t *testing.T) {
		t.Parallel()
		store := makeStore()
		notifier := &recordingNotifier{err: errors.New("broker down")}
		svc := NewLifecycleService(store, clock.NewFixed(now), notifier, log.Default())

		if _, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusCompleted, Actor: "staff-1"}); err != nil {
			t.Fatalf("expected dispatch failure to be swallowed, got %v", err)
		}
		if store.bookings["bk-1"].Status != domain.BookingStatusCompleted {
			t.Fatal("expected status committed despite notifier failure")
		}
	})
}

func TestLifecycleService_Cancellation(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.vehicles["veh-1"] = domain.Vehicle{ID: "veh-1", Name: "Corolla"}
	store.bookings["bk-1"] = domain.Booking{
		ID: "bk-1", Code: "BR-TEST01", VehicleID: "veh-1",
		CustomerID: "cust-1", Status: domain.BookingStatusPending,
		StartAt: now, EndAt: now.Add(48 * time.Hour),
	}
	notifier := &recordingNotifier{}
	svc := NewLifecycleService(store, clock.NewFixed(now), notifier, log.Default())

	if _, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusCancelled, Actor: "staff-1", Notes: "customer no longer travelling"}); err != nil {
		t.Fatalf("expected cancellation, got %v", err)
	}

	issues := store.alertsOfType(domain.AlertTypeCustomerIssue)
	if len(issues) != 1 {
		t.Fatalf("expected one customer issue alert, got %d", len(issues))
	}
	if issues[0].BookingID != "bk-1" {
		t.Fatalf("expected alert bound to booking, got %+v", issues[0])
	}
	if len(notifier.sent) != 1 || notifier.sent[0].EventType != "booking_cancelled" {
		t.Fatalf("expected booking_cancelled notification, got %+v", notifier.sent)
	}
	if notifier.sent[0].Details["notes"] != "customer no longer travelling" {
		t.Fatalf("expected notes in notification details, got %+v", notifier.sent[0].Details)
	}
}

func TestLifecycleService_ActorRequired(t *testing.T) {
	t.Parallel()

	svc := NewLifecycleService(newFakeStore(), clock.NewFixed(time.Now()), nil, log.Default())
	if _, err := svc.Transition(context.Background(), TransitionInput{BookingID: "bk-1", Target: domain.BookingStatusConfirmed}); !errors.Is(err, domain.ErrActorRequired) {
		t.Fatalf("expected ErrActorRequired, got %v", err)
	}
}

package app

import (
	"context"
	"log"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

type LifecycleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, actualReturnAt *time.Time) error
	GetReadinessSnapshot(ctx context.Context, bookingID string) (BookingSnapshot, error)
	ListDepositEntries(ctx context.Context, bookingID string) ([]domain.DepositEntry, error)
	CreateDepositEntry(ctx context.Context, entry domain.DepositEntry) error
	CreateAlert(ctx context.Context, alert domain.Alert) error
	CountOpenAlerts(ctx context.Context, bookingID string, alertType domain.AlertType) (int, error)
	GetVehicle(ctx context.Context, vehicleID string) (domain.Vehicle, error)
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

// Notification is the payload handed to the external dispatcher.
type Notification struct {
	EventType   string
	BookingID   string
	BookingCode string
	VehicleName string
	Details     map[string]string
}

// Notifier delivers notifications best-effort. Implementations must be safe
// to call after the owning transaction has committed.
type Notifier interface {
	Dispatch(ctx context.Context, n Notification) error
}

const notifyTimeout = 5 * time.Second

// LifecycleService is the sole authority over booking status. Every
// transition goes through Transition: the edge table rejects anything that
// skips a state or moves backward, the status write plus its coupled ledger
// and alert effects commit in one transaction, and notification dispatch
// happens after commit so a dispatcher failure can never unwind the change.
type LifecycleService struct {
	repo     LifecycleRepository
	clock    clock.Clock
	notifier Notifier
	logger   *log.Logger
}

func NewLifecycleService(repo LifecycleRepository, clk clock.Clock, notifier Notifier, logger *log.Logger) *LifecycleService {
	if logger == nil {
		logger = log.Default()
	}
	return &LifecycleService{repo: repo, clock: clk, notifier: notifier, logger: logger}
}

type TransitionInput struct {
	BookingID string
	Target    domain.BookingStatus
	Actor     string
	Notes     string
}

func (s *LifecycleService) Transition(ctx context.Context, in TransitionInput) (domain.Booking, error) {
	if in.Actor == "" {
		return domain.Booking{}, domain.ErrActorRequired
	}

	now := s.clock.Now()
	var result domain.Booking
	var notification *Notification

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, in.BookingID)
		if err != nil {
			return err
		}
		if !ValidTransition(booking.Status, in.Target) {
			return &domain.IllegalTransitionError{From: booking.Status, To: in.Target}
		}

		if in.Target == domain.BookingStatusActive {
			snapshot, err := s.repo.GetReadinessSnapshot(txCtx, in.BookingID)
			if err != nil {
				return err
			}
			if !Ready(snapshot) {
				return domain.ErrBookingNotReady
			}
		}

		var actualReturnAt *time.Time
		if in.Target == domain.BookingStatusCompleted || in.Target == domain.BookingStatusCancelled {
			t := now
			actualReturnAt = &t
		}
		if err := s.repo.UpdateBookingStatus(txCtx, in.BookingID, in.Target, actualReturnAt); err != nil {
			return err
		}

		if err := s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "status_transition",
			EntityType: "booking",
			EntityID:   booking.ID,
			Actor:      in.Actor,
			OldData:    string(booking.Status),
			NewData:    string(in.Target),
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		switch in.Target {
		case domain.BookingStatusActive:
			notification = s.buildNotification(txCtx, "rental_activated", booking, in.Notes)
		case domain.BookingStatusCompleted:
			if err := s.autoRelease(txCtx, booking, in.Actor, now); err != nil {
				return err
			}
			notification = s.buildNotification(txCtx, "return_completed", booking, in.Notes)
		case domain.BookingStatusCancelled:
			if err := s.repo.CreateAlert(txCtx, domain.Alert{
				ID:        newUUID(),
				Type:      domain.AlertTypeCustomerIssue,
				Status:    domain.AlertStatusPending,
				BookingID: booking.ID,
				Message:   "booking " + booking.Code + " cancelled",
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
			notification = s.buildNotification(txCtx, "booking_cancelled", booking, in.Notes)
		}

		result = booking
		result.Status = in.Target
		result.ActualReturnAt = actualReturnAt
		result.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	// The transition is durable at this point. Dispatch failures are logged
	// and left to out-of-band retry; they never roll back the status write.
	if notification != nil && s.notifier != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.Dispatch(nctx, *notification); err != nil {
			s.logger.Printf("notification dispatch failed event=%s booking=%s err=%v",
				notification.EventType, notification.BookingID, err)
		}
	}

	return result, nil
}

// autoRelease appends a release entry for the remaining balance when the
// return carries no exception and no damage alert is still open.
func (s *LifecycleService) autoRelease(ctx context.Context, booking domain.Booking, actor string, now time.Time) error {
	if booking.ReturnIsException {
		return nil
	}
	openDamage, err := s.repo.CountOpenAlerts(ctx, booking.ID, domain.AlertTypeDamageReport)
	if err != nil {
		return err
	}
	if openDamage > 0 {
		return nil
	}

	entries, err := s.repo.ListDepositEntries(ctx, booking.ID)
	if err != nil {
		return err
	}
	balance := domain.FoldDepositBalance(entries)
	if balance <= 0 {
		return nil
	}

	release := domain.DepositEntry{
		ID:          newUUID(),
		BookingID:   booking.ID,
		Action:      domain.DepositActionRelease,
		AmountCents: balance,
		Reason:      "automatic release on completed return",
		Category:    domain.DepositCategoryAuthorization,
		CreatedBy:   actor,
		CreatedAt:   now,
	}
	if err := s.repo.CreateDepositEntry(ctx, release); err != nil {
		return err
	}
	return s.repo.AppendAudit(ctx, domain.AuditEntry{
		ID:         newUUID(),
		Action:     "deposit_release",
		EntityType: "deposit_entry",
		EntityID:   release.ID,
		Actor:      actor,
		NewData:    "release",
		CreatedAt:  now,
	})
}

func (s *LifecycleService) buildNotification(ctx context.Context, eventType string, booking domain.Booking, notes string) *Notification {
	vehicleName := ""
	if booking.VehicleID != "" {
		if vehicle, err := s.repo.GetVehicle(ctx, booking.VehicleID); err == nil {
			vehicleName = vehicle.Name
		}
	}
	details := map[string]string{"customer_id": booking.CustomerID}
	if notes != "" {
		details["notes"] = notes
	}
	return &Notification{
		EventType:   eventType,
		BookingID:   booking.ID,
		BookingCode: booking.Code,
		VehicleName: vehicleName,
		Details:     details,
	}
}

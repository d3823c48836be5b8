package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

type DepositRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	GetVehicle(ctx context.Context, vehicleID string) (domain.Vehicle, error)
	ListDepositEntries(ctx context.Context, bookingID string) ([]domain.DepositEntry, error)
	CreateDepositEntry(ctx context.Context, entry domain.DepositEntry) error
	SetReturnException(ctx context.Context, bookingID, reason string) error
	UpdateDepositStatus(ctx context.Context, bookingID, depositStatus string) error
	MarkPaymentCollected(ctx context.Context, bookingID string) error
	CreateAlert(ctx context.Context, alert domain.Alert) error
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

// damageWithholdCents is the severity-indexed withhold table. The table
// value is a ceiling: the appended entry is further capped by the damage's
// estimated cost when one is provided, and by the remaining balance.
var damageWithholdCents = map[domain.DamageSeverity]int64{
	domain.DamageSeverityMinor:    7_500,
	domain.DamageSeverityModerate: 25_000,
	domain.DamageSeveritySevere:   75_000,
}

// fuelRateCentsPerLiter prices a return-fuel shortfall.
const fuelRateCentsPerLiter = 250

// DepositService owns the append-only deposit ledger. Append is the only
// mutation primitive; balances are always folded from the entry log, never
// stored, so the ledger cannot drift from its own history.
type DepositService struct {
	repo  DepositRepository
	clock clock.Clock
}

func NewDepositService(repo DepositRepository, clk clock.Clock) *DepositService {
	return &DepositService{repo: repo, clock: clk}
}

type AppendEntryInput struct {
	BookingID   string
	Action      domain.DepositAction
	AmountCents int64
	Reason      string
	Category    domain.DepositCategory
	Actor       string
}

// Append writes one ledger entry plus its audit row. Staff releases and
// processor-reported holds both come through here.
func (s *DepositService) Append(ctx context.Context, in AppendEntryInput) (domain.DepositEntry, error) {
	if in.Actor == "" {
		return domain.DepositEntry{}, domain.ErrActorRequired
	}
	if in.AmountCents <= 0 {
		return domain.DepositEntry{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	entry := domain.DepositEntry{
		ID:          newUUID(),
		BookingID:   in.BookingID,
		Action:      in.Action,
		AmountCents: in.AmountCents,
		Reason:      in.Reason,
		Category:    in.Category,
		CreatedBy:   in.Actor,
		CreatedAt:   now,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBookingForUpdate(txCtx, in.BookingID); err != nil {
			return err
		}
		if err := s.repo.CreateDepositEntry(txCtx, entry); err != nil {
			return err
		}
		return s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "deposit_" + string(in.Action),
			EntityType: "deposit_entry",
			EntityID:   entry.ID,
			Actor:      in.Actor,
			NewData:    fmt.Sprintf("%s %d", in.Action, in.AmountCents),
			CreatedAt:  now,
		})
	})
	if err != nil {
		return domain.DepositEntry{}, err
	}
	return entry, nil
}

// Balance folds the booking's entries in creation order.
func (s *DepositService) Balance(ctx context.Context, bookingID string) (int64, error) {
	entries, err := s.repo.ListDepositEntries(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	return domain.FoldDepositBalance(entries), nil
}

// Entries returns the raw ledger for reporting.
func (s *DepositService) Entries(ctx context.Context, bookingID string) ([]domain.DepositEntry, error) {
	return s.repo.ListDepositEntries(ctx, bookingID)
}

type RecordDamageInput struct {
	BookingID          string
	Severity           domain.DamageSeverity
	Description        string
	EstimatedCostCents int64
	Actor              string
}

// RecordDamage flags the return as an exception, raises a damage alert, and
// withholds against the deposit when one is authorized. Only bookings that
// are active or already returned can take a damage report.
func (s *DepositService) RecordDamage(ctx context.Context, in RecordDamageInput) error {
	if in.Actor == "" {
		return domain.ErrActorRequired
	}
	ceiling, ok := damageWithholdCents[in.Severity]
	if !ok {
		return fmt.Errorf("unknown damage severity %q", in.Severity)
	}

	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, in.BookingID)
		if err != nil {
			return err
		}
		if booking.Status != domain.BookingStatusActive && booking.ActualReturnAt == nil {
			return &domain.IllegalTransitionError{From: booking.Status, To: booking.Status}
		}

		reason := "damage reported: " + in.Description
		if err := s.repo.SetReturnException(txCtx, in.BookingID, reason); err != nil {
			return err
		}
		if err := s.repo.CreateAlert(txCtx, domain.Alert{
			ID:        newUUID(),
			Type:      domain.AlertTypeDamageReport,
			Status:    domain.AlertStatusPending,
			BookingID: in.BookingID,
			Message:   fmt.Sprintf("%s damage on booking %s: %s", in.Severity, booking.Code, in.Description),
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}

		entries, err := s.repo.ListDepositEntries(txCtx, in.BookingID)
		if err != nil {
			return err
		}
		balance := domain.FoldDepositBalance(entries)
		if balance <= 0 {
			// Nothing authorized to withhold against; the exception flag and
			// alert still stand.
			return s.appendDamageAudit(txCtx, in, 0, now)
		}

		amount := ceiling
		if in.EstimatedCostCents > 0 && in.EstimatedCostCents < amount {
			amount = in.EstimatedCostCents
		}
		if amount > balance {
			amount = balance
		}

		if err := s.repo.CreateDepositEntry(txCtx, domain.DepositEntry{
			ID:          newUUID(),
			BookingID:   in.BookingID,
			Action:      domain.DepositActionWithhold,
			AmountCents: amount,
			Reason:      reason,
			Category:    domain.DepositCategoryDamage,
			CreatedBy:   in.Actor,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		return s.appendDamageAudit(txCtx, in, amount, now)
	})
}

func (s *DepositService) appendDamageAudit(ctx context.Context, in RecordDamageInput, withheldCents int64, now time.Time) error {
	return s.repo.AppendAudit(ctx, domain.AuditEntry{
		ID:         newUUID(),
		Action:     "damage_reported",
		EntityType: "booking",
		EntityID:   in.BookingID,
		Actor:      in.Actor,
		NewData:    fmt.Sprintf("severity=%s withheld=%d", in.Severity, withheldCents),
		CreatedAt:  now,
	})
}

type SettleFuelInput struct {
	BookingID       string
	PickupFuelLevel float64
	ReturnFuelLevel float64
	Actor           string
}

// SettleFuel compares pickup and return fuel levels (fractions of a full
// tank) against the vehicle's tank capacity and withholds the shortfall
// charge. Returning with equal or more fuel appends nothing.
func (s *DepositService) SettleFuel(ctx context.Context, in SettleFuelInput) (int64, error) {
	if in.Actor == "" {
		return 0, domain.ErrActorRequired
	}
	if in.PickupFuelLevel < 0 || in.PickupFuelLevel > 1 || in.ReturnFuelLevel < 0 || in.ReturnFuelLevel > 1 {
		return 0, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	var charged int64

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, in.BookingID)
		if err != nil {
			return err
		}

		shortfall := in.PickupFuelLevel - in.ReturnFuelLevel
		if shortfall <= 0 {
			return nil
		}

		vehicle, err := s.repo.GetVehicle(txCtx, booking.VehicleID)
		if err != nil {
			return err
		}
		liters := shortfall * vehicle.TankCapacityLiters
		amount := int64(liters * fuelRateCentsPerLiter)
		if amount <= 0 {
			return nil
		}

		entries, err := s.repo.ListDepositEntries(txCtx, in.BookingID)
		if err != nil {
			return err
		}
		if !hasDepositAuthorization(entries) {
			return domain.ErrDepositNotAuthorized
		}

		if err := s.repo.CreateDepositEntry(txCtx, domain.DepositEntry{
			ID:          newUUID(),
			BookingID:   in.BookingID,
			Action:      domain.DepositActionWithhold,
			AmountCents: amount,
			Reason:      fmt.Sprintf("fuel shortfall of %.1f liters", liters),
			Category:    domain.DepositCategoryFuel,
			CreatedBy:   in.Actor,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		if err := s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "fuel_settled",
			EntityType: "booking",
			EntityID:   in.BookingID,
			Actor:      in.Actor,
			NewData:    fmt.Sprintf("withheld=%d", amount),
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		charged = amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return charged, nil
}

type PaymentEventInput struct {
	BookingID     string
	EventType     string
	AmountCents   int64
	DepositStatus string
}

// RecordPaymentEvent reflects what the external payment processor reports
// back: the core never captures cards, it only records the resulting ledger
// entries and deposit status strings. Deposit authorizations append the
// initial hold entry.
func (s *DepositService) RecordPaymentEvent(ctx context.Context, in PaymentEventInput) error {
	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBookingForUpdate(txCtx, in.BookingID); err != nil {
			return err
		}

		if in.EventType == "deposit_authorized" {
			if in.AmountCents <= 0 {
				return domain.ErrInvalidAmount
			}
			if err := s.repo.CreateDepositEntry(txCtx, domain.DepositEntry{
				ID:          newUUID(),
				BookingID:   in.BookingID,
				Action:      domain.DepositActionHold,
				AmountCents: in.AmountCents,
				Reason:      "deposit authorization",
				Category:    domain.DepositCategoryAuthorization,
				CreatedBy:   "payment_processor",
				CreatedAt:   now,
			}); err != nil {
				return err
			}
		}

		if in.EventType == "payment_captured" {
			if err := s.repo.MarkPaymentCollected(txCtx, in.BookingID); err != nil {
				return err
			}
		}

		if in.DepositStatus != "" {
			if err := s.repo.UpdateDepositStatus(txCtx, in.BookingID, in.DepositStatus); err != nil {
				return err
			}
		}

		return s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "payment_event",
			EntityType: "booking",
			EntityID:   in.BookingID,
			Actor:      "payment_processor",
			NewData:    fmt.Sprintf("%s %d", in.EventType, in.AmountCents),
			CreatedAt:  now,
		})
	})
}

// hasDepositAuthorization reports whether the ledger carries at least one
// hold entry, meaning a deposit was authorized for the booking.
func hasDepositAuthorization(entries []domain.DepositEntry) bool {
	for _, e := range entries {
		if e.Action == domain.DepositActionHold {
			return true
		}
	}
	return false
}

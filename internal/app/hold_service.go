package app

import (
	"context"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetVehicleForUpdate(ctx context.Context, vehicleID string) (domain.Vehicle, error)
	GetHoldForUpdate(ctx context.Context, holdID string) (domain.ReservationHold, error)
	CountOverlappingBookings(ctx context.Context, vehicleID string, startAt, endAt time.Time, excludeBookingID string) (int, error)
	CountOverlappingActiveHolds(ctx context.Context, vehicleID string, startAt, endAt time.Time, now time.Time) (int, error)
	CreateHold(ctx context.Context, hold domain.ReservationHold) error
	UpdateHoldStatus(ctx context.Context, holdID string, status domain.HoldStatus) error
	CreateBooking(ctx context.Context, booking domain.Booking) error
}

// HoldService owns the reservation-hold lifecycle: create, lazy expiry,
// conversion into a pending booking. Every mutation re-checks conflicts
// inside the transaction; availability shown to the customer earlier is
// advisory only and is never trusted at commit time.
type HoldService struct {
	repo    HoldRepository
	clock   clock.Clock
	holdTTL time.Duration
}

const defaultHoldTTL = 15 * time.Minute

func NewHoldService(repo HoldRepository, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		clock:   clk,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

type CreateHoldInput struct {
	VehicleID  string
	CustomerID string
	StartAt    time.Time
	EndAt      time.Time
}

// CreateHold inserts an active hold for the window, guarded by a conflict
// re-check under the vehicle row lock. The lock serializes racing customers
// so the check-then-insert is atomic.
func (s *HoldService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.ReservationHold, error) {
	if in.VehicleID == "" || in.CustomerID == "" {
		return domain.ReservationHold{}, domain.ErrInvalidID
	}
	if !in.StartAt.Before(in.EndAt) {
		return domain.ReservationHold{}, domain.ErrInvalidWindow
	}

	now := s.clock.Now()
	var result domain.ReservationHold

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		vehicle, err := s.repo.GetVehicleForUpdate(txCtx, in.VehicleID)
		if err != nil {
			return err
		}

		checkStart, checkEnd := vehicle.BufferedWindow(in.StartAt, in.EndAt)
		bookings, err := s.repo.CountOverlappingBookings(txCtx, in.VehicleID, checkStart, checkEnd, "")
		if err != nil {
			return err
		}
		holds, err := s.repo.CountOverlappingActiveHolds(txCtx, in.VehicleID, checkStart, checkEnd, now)
		if err != nil {
			return err
		}
		if bookings > 0 || holds > 0 {
			return &domain.ConflictError{VehicleID: in.VehicleID, StartAt: in.StartAt, EndAt: in.EndAt}
		}

		hold := domain.ReservationHold{
			ID:         newUUID(),
			VehicleID:  in.VehicleID,
			CustomerID: in.CustomerID,
			StartAt:    in.StartAt,
			EndAt:      in.EndAt,
			Status:     domain.HoldStatusActive,
			ExpiresAt:  now.Add(s.holdTTL),
			CreatedAt:  now,
		}
		if err := s.repo.CreateHold(txCtx, hold); err != nil {
			return err
		}

		result = hold
		return nil
	})
	if err != nil {
		return domain.ReservationHold{}, err
	}

	return result, nil
}

// ExpireHold flips a hold to expired. Idempotent: calling it on an already
// expired or converted hold is a no-op.
func (s *HoldService) ExpireHold(ctx context.Context, holdID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold.Status != domain.HoldStatusActive {
			return nil
		}
		return s.repo.UpdateHoldStatus(txCtx, holdID, domain.HoldStatusExpired)
	})
}

// ConvertHold atomically flips an unexpired hold to converted and creates a
// pending booking carrying the hold's vehicle and window. A lapsed TTL fails
// with ErrHoldExpired even when no explicit expire call was ever made,
// forcing the caller to re-check availability; the stale row is flipped
// opportunistically on the way out.
func (s *HoldService) ConvertHold(ctx context.Context, holdID string, totalAmountCents, depositAmountCents int64) (domain.Booking, error) {
	now := s.clock.Now()
	var result domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold.Status == domain.HoldStatusConverted {
			return domain.ErrHoldAlreadyConverted
		}
		if hold.ExpiredAt(now) {
			if hold.Status == domain.HoldStatusActive {
				if err := s.repo.UpdateHoldStatus(txCtx, holdID, domain.HoldStatusExpired); err != nil {
					return err
				}
			}
			return domain.ErrHoldExpired
		}

		booking := domain.Booking{
			ID:                 newUUID(),
			Code:               newBookingCode(),
			VehicleID:          hold.VehicleID,
			CustomerID:         hold.CustomerID,
			Status:             domain.BookingStatusPending,
			StartAt:            hold.StartAt,
			EndAt:              hold.EndAt,
			TotalAmountCents:   totalAmountCents,
			DepositAmountCents: depositAmountCents,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			return err
		}
		if err := s.repo.UpdateHoldStatus(txCtx, holdID, domain.HoldStatusConverted); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

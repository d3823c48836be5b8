package app

import (
	"context"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetVehicleForUpdate(ctx context.Context, vehicleID string) (domain.Vehicle, error)
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (domain.Booking, error)
	CountOverlappingBookings(ctx context.Context, vehicleID string, startAt, endAt time.Time, excludeBookingID string) (int, error)
	CountOverlappingActiveHolds(ctx context.Context, vehicleID string, startAt, endAt time.Time, now time.Time) (int, error)
	CreateBooking(ctx context.Context, booking domain.Booking) error
	UpdateBookingVehicle(ctx context.Context, bookingID, vehicleID string) error
	UpdateBookingIntake(ctx context.Context, bookingID string, flags IntakeFlags) error
	GetReadinessSnapshot(ctx context.Context, bookingID string) (BookingSnapshot, error)
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

// IntakeFlags carries partial updates to the pre-activation checklist
// booleans; nil fields are left untouched.
type IntakeFlags struct {
	PrepComplete           *bool
	PhotosComplete         *bool
	AgreementSigned        *bool
	WalkaroundComplete     *bool
	WalkaroundAcknowledged *bool
}

// BookingService covers the booking mutations outside the status machine:
// staff walk-in creation and vehicle reassignment. Both share the hold
// path's rule that conflicts are re-checked at the point of the write.
type BookingService struct {
	repo  BookingRepository
	clock clock.Clock
}

func NewBookingService(repo BookingRepository, clk clock.Clock) *BookingService {
	return &BookingService{repo: repo, clock: clk}
}

type CreateWalkInInput struct {
	VehicleID          string
	CustomerID         string
	StartAt            time.Time
	EndAt              time.Time
	TotalAmountCents   int64
	DepositAmountCents int64
	Actor              string
}

// CreateWalkIn creates a pending booking directly, bypassing the hold flow.
// Staff-initiated entries still go through the vehicle-lock conflict check.
func (s *BookingService) CreateWalkIn(ctx context.Context, in CreateWalkInInput) (domain.Booking, error) {
	if in.Actor == "" {
		return domain.Booking{}, domain.ErrActorRequired
	}
	if in.VehicleID == "" || in.CustomerID == "" {
		return domain.Booking{}, domain.ErrInvalidID
	}
	if !in.StartAt.Before(in.EndAt) {
		return domain.Booking{}, domain.ErrInvalidWindow
	}

	now := s.clock.Now()
	var result domain.Booking

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

		booking := domain.Booking{
			ID:                 newUUID(),
			Code:               newBookingCode(),
			VehicleID:          in.VehicleID,
			CustomerID:         in.CustomerID,
			Status:             domain.BookingStatusPending,
			StartAt:            in.StartAt,
			EndAt:              in.EndAt,
			TotalAmountCents:   in.TotalAmountCents,
			DepositAmountCents: in.DepositAmountCents,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			return err
		}
		if err := s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "booking_created",
			EntityType: "booking",
			EntityID:   booking.ID,
			Actor:      in.Actor,
			NewData:    string(booking.Status),
			CreatedAt:  now,
		}); err != nil {
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

// AssignVehicle moves a booking onto another vehicle. The target vehicle's
// calendar is re-checked under its row lock, excluding the booking itself.
func (s *BookingService) AssignVehicle(ctx context.Context, bookingID, vehicleID, actor string) error {
	if actor == "" {
		return domain.ErrActorRequired
	}
	if vehicleID == "" {
		return domain.ErrInvalidID
	}

	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		vehicle, err := s.repo.GetVehicleForUpdate(txCtx, vehicleID)
		if err != nil {
			return err
		}
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}

		checkStart, checkEnd := vehicle.BufferedWindow(booking.StartAt, booking.EndAt)
		bookings, err := s.repo.CountOverlappingBookings(txCtx, vehicleID, checkStart, checkEnd, booking.ID)
		if err != nil {
			return err
		}
		holds, err := s.repo.CountOverlappingActiveHolds(txCtx, vehicleID, checkStart, checkEnd, now)
		if err != nil {
			return err
		}
		if bookings > 0 || holds > 0 {
			return &domain.ConflictError{VehicleID: vehicleID, StartAt: booking.StartAt, EndAt: booking.EndAt}
		}

		if err := s.repo.UpdateBookingVehicle(txCtx, bookingID, vehicleID); err != nil {
			return err
		}
		return s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "vehicle_assigned",
			EntityType: "booking",
			EntityID:   bookingID,
			Actor:      actor,
			OldData:    booking.VehicleID,
			NewData:    vehicleID,
			CreatedAt:  now,
		})
	})
}

// MarkIntake records staff progress through the pre-activation checklist.
func (s *BookingService) MarkIntake(ctx context.Context, bookingID string, flags IntakeFlags, actor string) error {
	if actor == "" {
		return domain.ErrActorRequired
	}
	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetBookingForUpdate(txCtx, bookingID); err != nil {
			return err
		}
		if err := s.repo.UpdateBookingIntake(txCtx, bookingID, flags); err != nil {
			return err
		}
		return s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "intake_updated",
			EntityType: "booking",
			EntityID:   bookingID,
			Actor:      actor,
			CreatedAt:  now,
		})
	})
}

// Snapshot exposes the readiness snapshot for the next-step and checklist
// endpoints.
func (s *BookingService) Snapshot(ctx context.Context, bookingID string) (BookingSnapshot, error) {
	return s.repo.GetReadinessSnapshot(ctx, bookingID)
}

// GetBooking is a plain read used by the transport layer.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (domain.Booking, error) {
	return s.repo.GetBooking(ctx, bookingID)
}

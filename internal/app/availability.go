package app

import (
	"context"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// AvailabilityRepository answers interval-overlap queries against the
// occupying sets. Both queries use the half-open predicate
// (start1 < end2 AND start2 < end1) so touching endpoints never collide.
type AvailabilityRepository interface {
	CountOverlappingBookings(ctx context.Context, vehicleID string, startAt, endAt time.Time, excludeBookingID string) (int, error)
	CountOverlappingActiveHolds(ctx context.Context, vehicleID string, startAt, endAt time.Time, now time.Time) (int, error)
}

// AvailabilityService is the conflict checker: pure decision logic over the
// vehicle's calendar, no mutation. Results are advisory outside a
// transaction; the hold and booking writers re-run the same checks inside
// their critical section.
type AvailabilityService struct {
	repo  AvailabilityRepository
	clock clock.Clock
}

func NewAvailabilityService(repo AvailabilityRepository, clk clock.Clock) *AvailabilityService {
	return &AvailabilityService{repo: repo, clock: clk}
}

// HasConflict reports whether any occupying booking or live hold overlaps
// the window. excludeBookingID lets reassignment checks ignore the booking
// being moved; pass "" otherwise.
func (s *AvailabilityService) HasConflict(ctx context.Context, vehicleID string, startAt, endAt time.Time, excludeBookingID string) (bool, error) {
	if !startAt.Before(endAt) {
		return false, domain.ErrInvalidWindow
	}

	bookings, err := s.repo.CountOverlappingBookings(ctx, vehicleID, startAt, endAt, excludeBookingID)
	if err != nil {
		return false, err
	}
	if bookings > 0 {
		return true, nil
	}

	holds, err := s.repo.CountOverlappingActiveHolds(ctx, vehicleID, startAt, endAt, s.clock.Now())
	if err != nil {
		return false, err
	}
	return holds > 0, nil
}

// HasHoldConflict checks the live-hold set only. A hold whose expires_at has
// passed never counts, even when its status row still says active.
func (s *AvailabilityService) HasHoldConflict(ctx context.Context, vehicleID string, startAt, endAt time.Time) (bool, error) {
	if !startAt.Before(endAt) {
		return false, domain.ErrInvalidWindow
	}
	holds, err := s.repo.CountOverlappingActiveHolds(ctx, vehicleID, startAt, endAt, s.clock.Now())
	if err != nil {
		return false, err
	}
	return holds > 0, nil
}

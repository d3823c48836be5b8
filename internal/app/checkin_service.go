package app

import (
	"context"
	"strings"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

type CheckInRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBooking(ctx context.Context, bookingID string) (domain.Booking, error)
	GetCheckIn(ctx context.Context, bookingID string) (*domain.CheckInRecord, error)
	CreateCheckIn(ctx context.Context, record domain.CheckInRecord) error
	UpdateCheckIn(ctx context.Context, record domain.CheckInRecord) error
	CreateAlert(ctx context.Context, alert domain.Alert) error
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

// MinimumRentalAge is the fixed age threshold for the age validation.
const MinimumRentalAge = 21

// arrivalGrace bounds the on-time window around the scheduled pickup.
const arrivalGrace = 30 * time.Minute

// CheckInService scores the bounded check-in sub-state-machine: identity,
// license, age and timing checks folded into a pass / needs_review / blocked
// verdict. A needs_review outcome raises an alert for staff follow-up but
// never hard-blocks activation; the override decision stays with the
// readiness gate.
type CheckInService struct {
	repo  CheckInRepository
	clock clock.Clock
}

func NewCheckInService(repo CheckInRepository, clk clock.Clock) *CheckInService {
	return &CheckInService{repo: repo, clock: clk}
}

type CompleteCheckInInput struct {
	BookingID   string
	ArrivalTime *time.Time
	Validations []domain.Validation

	// When set, the age and license validations are derived server-side
	// instead of being supplied in Validations.
	DateOfBirth      *time.Time
	LicenseExpiresAt *time.Time

	Actor string
}

func (s *CheckInService) CompleteCheckIn(ctx context.Context, in CompleteCheckInInput) (domain.CheckInRecord, error) {
	if in.Actor == "" {
		return domain.CheckInRecord{}, domain.ErrActorRequired
	}

	now := s.clock.Now()
	var result domain.CheckInRecord

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBooking(txCtx, in.BookingID)
		if err != nil {
			return err
		}

		existing, err := s.repo.GetCheckIn(txCtx, in.BookingID)
		if err != nil {
			return err
		}

		record := domain.CheckInRecord{
			BookingID: in.BookingID,
			CreatedAt: now,
		}
		if existing != nil {
			record = *existing
		}

		validations := in.Validations
		if in.DateOfBirth != nil {
			validations = append(validations, AgeValidation(*in.DateOfBirth, now))
		}
		if in.LicenseExpiresAt != nil {
			validations = append(validations, LicenseValidations(*in.LicenseExpiresAt, now, booking.EndAt)...)
		}

		record.ArrivalTime = in.ArrivalTime
		record.TimingStatus = TimingFor(booking.StartAt, in.ArrivalTime)
		applyValidations(&record, validations)

		status, reason := scoreCheckIn(record.TimingStatus, validations)
		record.CheckInStatus = status
		record.BlockedReason = reason
		record.UpdatedAt = now

		if existing == nil {
			if err := s.repo.CreateCheckIn(txCtx, record); err != nil {
				return err
			}
		} else {
			if err := s.repo.UpdateCheckIn(txCtx, record); err != nil {
				return err
			}
		}

		if status == domain.CheckInStatusNeedsReview {
			if err := s.repo.CreateAlert(txCtx, domain.Alert{
				ID:        newUUID(),
				Type:      domain.AlertTypeCheckInReview,
				Status:    domain.AlertStatusPending,
				BookingID: in.BookingID,
				Message:   "check-in needs review: " + reason,
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
		}

		if err := s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "check_in_completed",
			EntityType: "check_in",
			EntityID:   in.BookingID,
			Actor:      in.Actor,
			NewData:    string(status),
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		result = record
		return nil
	})
	if err != nil {
		return domain.CheckInRecord{}, err
	}
	return result, nil
}

func applyValidations(record *domain.CheckInRecord, validations []domain.Validation) {
	for _, v := range validations {
		switch v.Name {
		case "identity":
			record.IdentityVerified = v.Passed
		case "license":
			record.LicenseVerified = v.Passed
			record.LicenseValid = v.Passed
		case "license_name":
			record.LicenseNameMatches = v.Passed
		case "age":
			record.AgeVerified = v.Passed
		}
	}
}

// scoreCheckIn folds the validation set into a verdict. A no-show blocks
// outright; any failed required validation downgrades to needs_review with
// the failed labels joined for the staff console.
func scoreCheckIn(timing domain.TimingStatus, validations []domain.Validation) (domain.CheckInStatus, string) {
	if timing == domain.TimingNoShow {
		return domain.CheckInStatusBlocked, "customer did not arrive"
	}

	var failed []string
	for _, v := range validations {
		if v.Required && !v.Passed {
			label := v.Label
			if label == "" {
				label = v.Name
			}
			failed = append(failed, label)
		}
	}
	if len(failed) == 0 {
		return domain.CheckInStatusPassed, ""
	}
	return domain.CheckInStatusNeedsReview, strings.Join(failed, ", ")
}

// TimingFor classifies the arrival against the scheduled pickup. No recorded
// arrival is a no-show; outside the grace window the arrival is early or
// late, both worth surfacing without failing the check.
func TimingFor(scheduledStart time.Time, arrival *time.Time) domain.TimingStatus {
	if arrival == nil {
		return domain.TimingNoShow
	}
	switch {
	case arrival.Before(scheduledStart.Add(-arrivalGrace)):
		return domain.TimingEarly
	case arrival.After(scheduledStart.Add(arrivalGrace)):
		return domain.TimingLate
	default:
		return domain.TimingOnTime
	}
}

// AgeValidation scores the fixed minimum-age check from a date of birth.
func AgeValidation(dateOfBirth, now time.Time) domain.Validation {
	age := now.Year() - dateOfBirth.Year()
	anniversary := dateOfBirth.AddDate(age, 0, 0)
	if anniversary.After(now) {
		age--
	}
	return domain.Validation{
		Name:     "age",
		Label:    "minimum age",
		Required: true,
		Passed:   age >= MinimumRentalAge,
	}
}

// LicenseValidations checks the license expiry twice: against today, and
// against the rental's end. A license that is valid at pickup but lapses
// mid-rental is flagged separately from one already expired.
func LicenseValidations(expiresAt, now, rentalEnd time.Time) []domain.Validation {
	return []domain.Validation{
		{
			Name:     "license",
			Label:    "license valid",
			Required: true,
			Passed:   expiresAt.After(now),
		},
		{
			Name:     "license_rental_period",
			Label:    "license valid through rental",
			Required: true,
			Passed:   expiresAt.After(rentalEnd),
		},
	}
}

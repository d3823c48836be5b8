package app

import (
	"context"

	"github.com/mapsensemedia/betterrental-sub002/internal/clock"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

type AlertRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetAlertForUpdate(ctx context.Context, alertID string) (domain.Alert, error)
	UpdateAlertStatus(ctx context.Context, alertID string, status domain.AlertStatus) error
	ListAlertsByBooking(ctx context.Context, bookingID string) ([]domain.Alert, error)
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}

// AlertService handles staff acknowledge/resolve actions. Alerts only move
// forward: pending → acknowledged → resolved, and acknowledging is optional.
type AlertService struct {
	repo  AlertRepository
	clock clock.Clock
}

func NewAlertService(repo AlertRepository, clk clock.Clock) *AlertService {
	return &AlertService{repo: repo, clock: clk}
}

func (s *AlertService) Acknowledge(ctx context.Context, alertID, actor string) error {
	return s.setStatus(ctx, alertID, actor, domain.AlertStatusAcknowledged)
}

func (s *AlertService) Resolve(ctx context.Context, alertID, actor string) error {
	return s.setStatus(ctx, alertID, actor, domain.AlertStatusResolved)
}

func (s *AlertService) setStatus(ctx context.Context, alertID, actor string, target domain.AlertStatus) error {
	if actor == "" {
		return domain.ErrActorRequired
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		alert, err := s.repo.GetAlertForUpdate(txCtx, alertID)
		if err != nil {
			return err
		}
		if alert.Status == domain.AlertStatusResolved {
			// Resolution is terminal; repeat calls are no-ops.
			return nil
		}
		if alert.Status == target {
			return nil
		}
		if err := s.repo.UpdateAlertStatus(txCtx, alertID, target); err != nil {
			return err
		}
		return s.repo.AppendAudit(txCtx, domain.AuditEntry{
			ID:         newUUID(),
			Action:     "alert_" + string(target),
			EntityType: "alert",
			EntityID:   alertID,
			Actor:      actor,
			OldData:    string(alert.Status),
			NewData:    string(target),
			CreatedAt:  s.clock.Now(),
		})
	})
}

func (s *AlertService) ListByBooking(ctx context.Context, bookingID string) ([]domain.Alert, error) {
	return s.repo.ListAlertsByBooking(ctx, bookingID)
}

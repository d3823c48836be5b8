package domain

import "time"

type AlertType string

const (
	AlertTypeCustomerIssue AlertType = "customer_issue"
	AlertTypeCheckInReview AlertType = "check_in_review"
	AlertTypeDamageReport  AlertType = "damage_report"
)

type AlertStatus string

const (
	AlertStatusPending      AlertStatus = "pending"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// Alert is a staff-facing flag raised as a side effect of transitions,
// damage reports, and check-in failures. Alerts are acknowledged and
// resolved by staff; they are never auto-deleted.
type Alert struct {
	ID        string
	Type      AlertType
	Status    AlertStatus
	BookingID string
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

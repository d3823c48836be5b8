package app

import "github.com/mapsensemedia/betterrental-sub002/internal/domain"

// allowedTransitions is the whole lifecycle graph. Forward moves only, no
// skips, with cancellation reachable from every non-terminal status.
var allowedTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingStatusPending:   {domain.BookingStatusConfirmed, domain.BookingStatusCancelled},
	domain.BookingStatusConfirmed: {domain.BookingStatusActive, domain.BookingStatusCancelled},
	domain.BookingStatusActive:    {domain.BookingStatusCompleted, domain.BookingStatusCancelled},
	domain.BookingStatusCompleted: nil,
	domain.BookingStatusCancelled: nil,
}

// ValidTransition reports whether from→to is an edge of the lifecycle graph.
func ValidTransition(from, to domain.BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

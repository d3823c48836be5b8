package domain

import "time"

// Vehicle carries the catalog attributes the engine reads: tank capacity for
// fuel settlement and the cleaning buffer applied between rentals. The
// catalog itself is owned elsewhere; this side only looks vehicles up.
type Vehicle struct {
	ID                  string
	Name                string
	Category            string
	TankCapacityLiters  float64
	CleaningBufferHours int
	DailyRateCents      int64
}

// BufferedWindow widens a rental window by the vehicle's cleaning buffer on
// both sides, so a rental cannot start until the previous one has had its
// turnaround time. A zero buffer returns the window unchanged.
func (v Vehicle) BufferedWindow(startAt, endAt time.Time) (time.Time, time.Time) {
	buffer := time.Duration(v.CleaningBufferHours) * time.Hour
	return startAt.Add(-buffer), endAt.Add(buffer)
}

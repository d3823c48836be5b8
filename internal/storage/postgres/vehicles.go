package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

const vehicleColumns = `id, name, category, tank_capacity_liters, cleaning_buffer_hours, daily_rate_cents`

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(&v.ID, &v.Name, &v.Category, &v.TankCapacityLiters, &v.CleaningBufferHours, &v.DailyRateCents)
	return v, err
}

func (s *Store) GetVehicle(ctx context.Context, vehicleID string) (domain.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1`, vehicleColumns)
	v, err := scanVehicle(s.queryRow(ctx, query, vehicleID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Vehicle{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Vehicle{}, domain.ErrVehicleNotFound
		}
		return domain.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

// GetVehicleForUpdate locks the vehicle row. The lock is the serialization
// point for every check-then-insert against the vehicle's calendar.
func (s *Store) GetVehicleForUpdate(ctx context.Context, vehicleID string) (domain.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleColumns)
	v, err := scanVehicle(s.queryRow(ctx, query, vehicleID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Vehicle{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Vehicle{}, domain.ErrVehicleNotFound
		}
		return domain.Vehicle{}, fmt.Errorf("get vehicle for update: %w", err)
	}
	return v, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"go.uber.org/zap"
)

var parkingSiteHistoryColumns = append([]string{
	"parking_site_id", "realtime_opening_status", "static_data_updated_at", "realtime_data_updated_at",
}, capacityColumns()...)

type parkingSiteHistoryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewParkingSiteHistoryRepository(db *DB) repository.ParkingSiteHistoryRepository {
	return &parkingSiteHistoryRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *parkingSiteHistoryRepository) Create(ctx context.Context, entry *domain.ParkingSiteHistory) error {
	query := fmt.Sprintf(`
		INSERT INTO parking_site_history (%s)
		VALUES (%s)
		RETURNING id, created_at
	`, columnList(parkingSiteHistoryColumns), placeholders(1, len(parkingSiteHistoryColumns)))

	args := []interface{}{
		entry.ParkingSiteID, string(entry.RealtimeOpeningStatus), entry.StaticDataUpdatedAt, entry.RealtimeDataUpdatedAt,
	}
	args = append(args, capacityValues(entry.Capacities, entry.RealtimeCapacities, entry.RealtimeFreeCapacities)...)

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		r.logger.Error("Failed to create parking site history",
			zap.Int64("parking_site_id", entry.ParkingSiteID),
			zap.Error(err))
		return mapError(err)
	}
	return nil
}

func (r *parkingSiteHistoryRepository) ListByEntity(ctx context.Context, parkingSiteID int64, limit int) ([]domain.ParkingSiteHistory, error) {
	query := fmt.Sprintf(`
		SELECT id, created_at, %s
		FROM parking_site_history
		WHERE parking_site_id = $1
		ORDER BY id DESC
		LIMIT NULLIF($2, 0)
	`, columnList(parkingSiteHistoryColumns))

	rows, err := r.db.QueryContext(ctx, query, parkingSiteID, limit)
	if err != nil {
		r.logger.Error("Failed to list parking site history", zap.Int64("parking_site_id", parkingSiteID), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	entries := make([]domain.ParkingSiteHistory, 0)
	for rows.Next() {
		var h domain.ParkingSiteHistory
		refs := []interface{}{
			&h.ID, &h.CreatedAt,
			&h.ParkingSiteID, &h.RealtimeOpeningStatus, &h.StaticDataUpdatedAt, &h.RealtimeDataUpdatedAt,
		}
		refs = append(refs, capacityRefs(&h.Capacities, &h.RealtimeCapacities, &h.RealtimeFreeCapacities)...)
		if err := rows.Scan(refs...); err != nil {
			r.logger.Error("Failed to scan parking site history", zap.Error(err))
			return nil, errors.ErrDatabaseError
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

type parkingSpotHistoryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewParkingSpotHistoryRepository(db *DB) repository.ParkingSpotHistoryRepository {
	return &parkingSpotHistoryRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *parkingSpotHistoryRepository) Create(ctx context.Context, entry *domain.ParkingSpotHistory) error {
	query := `
		INSERT INTO parking_spot_history (parking_spot_id, realtime_status, static_data_updated_at, realtime_data_updated_at)
		VALUES (:parking_spot_id, :realtime_status, :static_data_updated_at, :realtime_data_updated_at)
		RETURNING id, created_at
	`

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		r.logger.Error("Failed to create parking spot history",
			zap.Int64("parking_spot_id", entry.ParkingSpotID),
			zap.Error(err))
		return mapError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return errors.ErrDatabaseError
		}
	}
	return nil
}

func (r *parkingSpotHistoryRepository) ListByEntity(ctx context.Context, parkingSpotID int64, limit int) ([]domain.ParkingSpotHistory, error) {
	query := `
		SELECT id, parking_spot_id, realtime_status, static_data_updated_at, realtime_data_updated_at, created_at
		FROM parking_spot_history
		WHERE parking_spot_id = $1
		ORDER BY id DESC
		LIMIT NULLIF($2, 0)
	`

	entries := make([]domain.ParkingSpotHistory, 0)
	if err := r.db.SelectContext(ctx, &entries, query, parkingSpotID, limit); err != nil {
		r.logger.Error("Failed to list parking spot history", zap.Int64("parking_spot_id", parkingSpotID), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return entries, nil
}

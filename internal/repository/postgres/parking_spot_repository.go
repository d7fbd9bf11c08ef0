package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"go.uber.org/zap"
)

var parkingSpotWriteColumns = []string{
	"source_id", "original_uid", "parking_site_id", "duplicate_of_parking_spot_id",
	"name", "address", "type", "purpose", "lat", "lon", "has_realtime_data",
	"realtime_status", "static_data_updated_at", "realtime_data_updated_at",
}

var parkingSpotReadColumns = append([]string{"id", "created_at", "modified_at"}, parkingSpotWriteColumns...)

type parkingSpotRepository struct {
	entityTable
	children childrenStore
}

func NewParkingSpotRepository(db *DB) repository.ParkingSpotRepository {
	return &parkingSpotRepository{
		entityTable: entityTable{
			db:              db.DB,
			logger:          db.logger,
			table:           "parking_spots",
			duplicateColumn: "duplicate_of_parking_spot_id",
		},
		children: childrenStore{prefix: "parking_spot"},
	}
}

func parkingSpotRefs(s *domain.ParkingSpot) []interface{} {
	return []interface{}{
		&s.ID, &s.CreatedAt, &s.ModifiedAt,
		&s.SourceID, &s.OriginalUID, &s.ParkingSiteID, &s.DuplicateOfParkingSpotID,
		&s.Name, &s.Address, &s.Type, &s.Purpose, &s.Lat, &s.Lon, &s.HasRealtimeData,
		&s.RealtimeStatus, &s.StaticDataUpdatedAt, &s.RealtimeDataUpdatedAt,
	}
}

func parkingSpotValues(s *domain.ParkingSpot) []interface{} {
	return []interface{}{
		s.SourceID, s.OriginalUID, s.ParkingSiteID, s.DuplicateOfParkingSpotID,
		s.Name, s.Address, s.Type, string(s.Purpose), s.Lat, s.Lon, s.HasRealtimeData,
		string(s.RealtimeStatus), s.StaticDataUpdatedAt, s.RealtimeDataUpdatedAt,
	}
}

func (r *parkingSpotRepository) FetchBySourceAndOriginalUID(ctx context.Context, sourceID int64, originalUID string) (*domain.ParkingSpot, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM parking_spots p
		WHERE p.source_id = $1 AND p.original_uid = $2
	`, prefixed("p", parkingSpotReadColumns))

	var spot domain.ParkingSpot
	err := r.db.QueryRowContext(ctx, query, sourceID, originalUID).Scan(parkingSpotRefs(&spot)...)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch parking spot",
			zap.Int64("source_id", sourceID),
			zap.String("original_uid", originalUID),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	if err := r.attachChildren(ctx, []*domain.ParkingSpot{&spot}); err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *parkingSpotRepository) FetchByIDs(ctx context.Context, ids []int64) ([]*domain.ParkingSpot, error) {
	if len(ids) == 0 {
		return []*domain.ParkingSpot{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM parking_spots p
		WHERE p.id = ANY($1)
		ORDER BY p.id
	`, prefixed("p", parkingSpotReadColumns))

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to fetch parking spots by ids", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	spots := make([]*domain.ParkingSpot, 0, len(ids))
	for rows.Next() {
		var spot domain.ParkingSpot
		if err := rows.Scan(parkingSpotRefs(&spot)...); err != nil {
			r.logger.Error("Failed to scan parking spot", zap.Error(err))
			return nil, errors.ErrDatabaseError
		}
		spots = append(spots, &spot)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate parking spots", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	if err := r.attachChildren(ctx, spots); err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *parkingSpotRepository) attachChildren(ctx context.Context, spots []*domain.ParkingSpot) error {
	ids := make([]int64, len(spots))
	for i, spot := range spots {
		ids[i] = spot.ID
	}

	loaded, err := r.children.load(ctx, r.db, ids)
	if err != nil {
		r.logger.Error("Failed to load parking spot children", zap.Error(err))
		return errors.ErrDatabaseError
	}

	for _, spot := range spots {
		ch := loaded[spot.ID]
		spot.ExternalIdentifiers = ch.ExternalIdentifiers
		spot.Tags = ch.Tags
		spot.Restrictions = ch.Restrictions
	}
	return nil
}

func (r *parkingSpotRepository) Save(ctx context.Context, spot *domain.ParkingSpot) error {
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		values := append(parkingSpotValues(spot), spot.Lon.InexactFloat64(), spot.Lat.InexactFloat64())
		n := len(parkingSpotWriteColumns)

		if spot.ID == 0 {
			query := fmt.Sprintf(`
				INSERT INTO parking_spots (%s, geometry)
				VALUES (%s, %s)
				RETURNING id, created_at, modified_at
			`, columnList(parkingSpotWriteColumns), placeholders(1, n), geometryExpr(n+1))

			if err := tx.QueryRowxContext(ctx, query, values...).Scan(&spot.ID, &spot.CreatedAt, &spot.ModifiedAt); err != nil {
				return err
			}
		} else {
			query := fmt.Sprintf(`
				UPDATE parking_spots
				SET %s, geometry = %s, modified_at = NOW()
				WHERE id = $%d
				RETURNING modified_at
			`, assignments(parkingSpotWriteColumns, 1), geometryExpr(n+1), n+3)

			err := tx.QueryRowxContext(ctx, query, append(values, spot.ID)...).Scan(&spot.ModifiedAt)
			if err == sql.ErrNoRows {
				return errors.ErrNotFound
			}
			if err != nil {
				return err
			}
		}

		return r.children.save(ctx, tx, spot.ID, children{
			ExternalIdentifiers: spot.ExternalIdentifiers,
			Tags:                spot.Tags,
			Restrictions:        spot.Restrictions,
		})
	})
	if err != nil {
		r.logger.Error("Failed to save parking spot",
			zap.Int64("source_id", spot.SourceID),
			zap.String("original_uid", spot.OriginalUID),
			zap.Error(err))
		return mapError(err)
	}
	return nil
}

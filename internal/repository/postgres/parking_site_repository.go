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

// Колонки, которые пишет Save (без id, geometry и служебных временных меток)
var parkingSiteWriteColumns = append([]string{
	"source_id", "original_uid", "parking_site_group_id", "duplicate_of_parking_site_id",
	"name", "operator_name", "public_url", "address", "description", "type", "purpose",
	"lat", "lon", "has_fee", "opening_hours", "max_stay", "has_realtime_data",
	"realtime_opening_status", "static_data_updated_at", "realtime_data_updated_at",
}, capacityColumns()...)

var parkingSiteReadColumns = append([]string{"id", "created_at", "modified_at"}, parkingSiteWriteColumns...)

type parkingSiteRepository struct {
	entityTable
	children childrenStore
}

func NewParkingSiteRepository(db *DB) repository.ParkingSiteRepository {
	return &parkingSiteRepository{
		entityTable: entityTable{
			db:              db.DB,
			logger:          db.logger,
			table:           "parking_sites",
			duplicateColumn: "duplicate_of_parking_site_id",
		},
		children: childrenStore{prefix: "parking_site"},
	}
}

func parkingSiteRefs(s *domain.ParkingSite) []interface{} {
	refs := []interface{}{
		&s.ID, &s.CreatedAt, &s.ModifiedAt,
		&s.SourceID, &s.OriginalUID, &s.ParkingSiteGroupID, &s.DuplicateOfParkingSiteID,
		&s.Name, &s.OperatorName, &s.PublicURL, &s.Address, &s.Description, &s.Type, &s.Purpose,
		&s.Lat, &s.Lon, &s.HasFee, &s.OpeningHours, &s.MaxStay, &s.HasRealtimeData,
		&s.RealtimeOpeningStatus, &s.StaticDataUpdatedAt, &s.RealtimeDataUpdatedAt,
	}
	return append(refs, capacityRefs(&s.Capacities, &s.RealtimeCapacities, &s.RealtimeFreeCapacities)...)
}

func parkingSiteValues(s *domain.ParkingSite) []interface{} {
	values := []interface{}{
		s.SourceID, s.OriginalUID, s.ParkingSiteGroupID, s.DuplicateOfParkingSiteID,
		s.Name, s.OperatorName, s.PublicURL, s.Address, s.Description, string(s.Type), string(s.Purpose),
		s.Lat, s.Lon, s.HasFee, s.OpeningHours, s.MaxStay, s.HasRealtimeData,
		string(s.RealtimeOpeningStatus), s.StaticDataUpdatedAt, s.RealtimeDataUpdatedAt,
	}
	return append(values, capacityValues(s.Capacities, s.RealtimeCapacities, s.RealtimeFreeCapacities)...)
}

func (r *parkingSiteRepository) FetchBySourceAndOriginalUID(ctx context.Context, sourceID int64, originalUID string) (*domain.ParkingSite, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM parking_sites s
		WHERE s.source_id = $1 AND s.original_uid = $2
	`, prefixed("s", parkingSiteReadColumns))

	var site domain.ParkingSite
	err := r.db.QueryRowContext(ctx, query, sourceID, originalUID).Scan(parkingSiteRefs(&site)...)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch parking site",
			zap.Int64("source_id", sourceID),
			zap.String("original_uid", originalUID),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	if err := r.attachChildren(ctx, []*domain.ParkingSite{&site}); err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *parkingSiteRepository) FetchByIDs(ctx context.Context, ids []int64) ([]*domain.ParkingSite, error) {
	if len(ids) == 0 {
		return []*domain.ParkingSite{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM parking_sites s
		WHERE s.id = ANY($1)
		ORDER BY s.id
	`, prefixed("s", parkingSiteReadColumns))

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to fetch parking sites by ids", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	defer rows.Close()

	sites := make([]*domain.ParkingSite, 0, len(ids))
	for rows.Next() {
		var site domain.ParkingSite
		if err := rows.Scan(parkingSiteRefs(&site)...); err != nil {
			r.logger.Error("Failed to scan parking site", zap.Error(err))
			return nil, errors.ErrDatabaseError
		}
		sites = append(sites, &site)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate parking sites", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	if err := r.attachChildren(ctx, sites); err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *parkingSiteRepository) attachChildren(ctx context.Context, sites []*domain.ParkingSite) error {
	ids := make([]int64, len(sites))
	for i, site := range sites {
		ids[i] = site.ID
	}

	loaded, err := r.children.load(ctx, r.db, ids)
	if err != nil {
		r.logger.Error("Failed to load parking site children", zap.Error(err))
		return errors.ErrDatabaseError
	}

	for _, site := range sites {
		ch := loaded[site.ID]
		site.ExternalIdentifiers = ch.ExternalIdentifiers
		site.Tags = ch.Tags
		site.Restrictions = ch.Restrictions
	}
	return nil
}

func (r *parkingSiteRepository) Save(ctx context.Context, site *domain.ParkingSite) error {
	err := inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		values := append(parkingSiteValues(site), site.Lon.InexactFloat64(), site.Lat.InexactFloat64())
		n := len(parkingSiteWriteColumns)

		if site.ID == 0 {
			query := fmt.Sprintf(`
				INSERT INTO parking_sites (%s, geometry)
				VALUES (%s, %s)
				RETURNING id, created_at, modified_at
			`, columnList(parkingSiteWriteColumns), placeholders(1, n), geometryExpr(n+1))

			if err := tx.QueryRowxContext(ctx, query, values...).Scan(&site.ID, &site.CreatedAt, &site.ModifiedAt); err != nil {
				return err
			}
		} else {
			query := fmt.Sprintf(`
				UPDATE parking_sites
				SET %s, geometry = %s, modified_at = NOW()
				WHERE id = $%d
				RETURNING modified_at
			`, assignments(parkingSiteWriteColumns, 1), geometryExpr(n+1), n+3)

			err := tx.QueryRowxContext(ctx, query, append(values, site.ID)...).Scan(&site.ModifiedAt)
			if err == sql.ErrNoRows {
				return errors.ErrNotFound
			}
			if err != nil {
				return err
			}
		}

		return r.children.save(ctx, tx, site.ID, children{
			ExternalIdentifiers: site.ExternalIdentifiers,
			Tags:                site.Tags,
			Restrictions:        site.Restrictions,
		})
	})
	if err != nil {
		r.logger.Error("Failed to save parking site",
			zap.Int64("source_id", site.SourceID),
			zap.String("original_uid", site.OriginalUID),
			zap.Error(err))
		return mapError(err)
	}
	return nil
}

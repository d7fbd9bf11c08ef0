package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"go.uber.org/zap"
)

const sourceColumns = `
	id, uid, name, public_url, attribution_license, attribution_contributor, attribution_url,
	static_status, realtime_status, static_data_updated_at, realtime_data_updated_at,
	static_parking_site_error_count, realtime_parking_site_error_count,
	static_parking_spot_error_count, realtime_parking_spot_error_count,
	created_at, modified_at`

type sourceRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSourceRepository(db *DB) repository.SourceRepository {
	return &sourceRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *sourceRepository) GetByUID(ctx context.Context, uid string) (*domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE uid = $1`

	var source domain.Source
	err := r.db.GetContext(ctx, &source, query, uid)
	if err == sql.ErrNoRows {
		return nil, errors.ErrSourceNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get source by uid", zap.String("uid", uid), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return &source, nil
}

func (r *sourceRepository) GetByID(ctx context.Context, id int64) (*domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE id = $1`

	var source domain.Source
	err := r.db.GetContext(ctx, &source, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrSourceNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get source by id", zap.Int64("id", id), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return &source, nil
}

func (r *sourceRepository) List(ctx context.Context) ([]*domain.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources ORDER BY id`

	sources := make([]*domain.Source, 0)
	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		r.logger.Error("Failed to list sources", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return sources, nil
}

func (r *sourceRepository) Create(ctx context.Context, source *domain.Source) error {
	query := `
		INSERT INTO sources (
			uid, name, public_url, attribution_license, attribution_contributor, attribution_url,
			static_status, realtime_status
		)
		VALUES (:uid, :name, :public_url, :attribution_license, :attribution_contributor, :attribution_url,
			:static_status, :realtime_status)
		RETURNING id, created_at, modified_at
	`

	rows, err := r.db.NamedQueryContext(ctx, query, source)
	if err != nil {
		r.logger.Error("Failed to create source", zap.String("uid", source.UID), zap.Error(err))
		return mapError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&source.ID, &source.CreatedAt, &source.ModifiedAt); err != nil {
			return errors.ErrDatabaseError
		}
	}
	return nil
}

func (r *sourceRepository) Update(ctx context.Context, source *domain.Source) error {
	query := `
		UPDATE sources SET
			name = :name,
			public_url = :public_url,
			attribution_license = :attribution_license,
			attribution_contributor = :attribution_contributor,
			attribution_url = :attribution_url,
			static_status = :static_status,
			realtime_status = :realtime_status,
			static_data_updated_at = :static_data_updated_at,
			realtime_data_updated_at = :realtime_data_updated_at,
			static_parking_site_error_count = :static_parking_site_error_count,
			realtime_parking_site_error_count = :realtime_parking_site_error_count,
			static_parking_spot_error_count = :static_parking_spot_error_count,
			realtime_parking_spot_error_count = :realtime_parking_spot_error_count,
			modified_at = NOW()
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, source)
	if err != nil {
		r.logger.Error("Failed to update source", zap.String("uid", source.UID), zap.Error(err))
		return mapError(err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrSourceNotFound
	}
	return nil
}

type groupRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewGroupRepository(db *DB) repository.GroupRepository {
	return &groupRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *groupRepository) GetOrCreate(ctx context.Context, sourceID int64, originalUID string) (*domain.ParkingSiteGroup, error) {
	// DO UPDATE нужен, чтобы RETURNING вернул существующую строку
	query := `
		INSERT INTO parking_site_groups (source_id, original_uid, name)
		VALUES ($1, $2, $2)
		ON CONFLICT (source_id, original_uid) DO UPDATE SET modified_at = parking_site_groups.modified_at
		RETURNING id, source_id, original_uid, name, created_at, modified_at
	`

	var group domain.ParkingSiteGroup
	if err := r.db.GetContext(ctx, &group, query, sourceID, originalUID); err != nil {
		r.logger.Error("Failed to get or create parking site group",
			zap.Int64("source_id", sourceID),
			zap.String("original_uid", originalUID),
			zap.Error(err))
		return nil, mapError(err)
	}
	return &group, nil
}

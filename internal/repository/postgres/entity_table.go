package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/pkg/errors"
	"go.uber.org/zap"
)

// entityTable - операции, общие для parking_sites и parking_spots
type entityTable struct {
	db              *sqlx.DB
	logger          *zap.Logger
	table           string
	duplicateColumn string
}

func (t *entityTable) FetchIDsBySource(ctx context.Context, sourceID int64) ([]int64, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE source_id = $1 ORDER BY id`, t.table)

	ids := make([]int64, 0)
	if err := t.db.SelectContext(ctx, &ids, query, sourceID); err != nil {
		t.logger.Error("Failed to fetch ids by source",
			zap.String("table", t.table),
			zap.Int64("source_id", sourceID),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return ids, nil
}

func (t *entityTable) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.table)

	result, err := t.db.ExecContext(ctx, query, id)
	if err != nil {
		t.logger.Error("Failed to delete entity",
			zap.String("table", t.table),
			zap.Int64("id", id),
			zap.Error(err))
		return mapError(err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (t *entityTable) FetchLocations(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error) {
	where, args := locationFilterClause(filter, 1)
	query := fmt.Sprintf(`
		SELECT id, source_id, purpose, lat::float8 AS lat, lon::float8 AS lon
		FROM %s
		WHERE %s
		ORDER BY id
	`, t.table, where)

	locations := make([]domain.Location, 0)
	if err := t.db.SelectContext(ctx, &locations, query, args...); err != nil {
		t.logger.Error("Failed to fetch locations", zap.String("table", t.table), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return locations, nil
}

func (t *entityTable) SetDuplicateOf(ctx context.Context, id int64, duplicateOf *int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, modified_at = NOW() WHERE id = $1`, t.table, t.duplicateColumn)

	result, err := t.db.ExecContext(ctx, query, id, duplicateOf)
	if err != nil {
		t.logger.Error("Failed to set duplicate pointer",
			zap.String("table", t.table),
			zap.Int64("id", id),
			zap.Error(err))
		return mapError(err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (t *entityTable) ResetDuplicateOf(ctx context.Context, filter domain.LocationFilter) (int64, error) {
	where, args := locationFilterClause(filter, 1)
	query := fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = NULL, modified_at = NOW()
		WHERE %[2]s IS NOT NULL AND %[3]s
	`, t.table, t.duplicateColumn, where)

	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		t.logger.Error("Failed to reset duplicate pointers", zap.String("table", t.table), zap.Error(err))
		return 0, errors.ErrDatabaseError
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.ErrDatabaseError
	}
	return affected, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/parking-aggregator/internal/domain"
)

// children - дочерние списки сущности. Идентичность строки определяется позицией.
type children struct {
	ExternalIdentifiers []domain.ExternalIdentifier
	Tags                []domain.Tag
	Restrictions        []domain.ParkingRestriction
}

// childrenStore читает и пишет дочерние таблицы <prefix>_external_identifiers, _tags, _restrictions
type childrenStore struct {
	prefix string
}

func (c childrenStore) parentColumn() string { return c.prefix + "_id" }

type externalIdentifierRow struct {
	ParentID int64 `db:"parent_id"`
	domain.ExternalIdentifier
}

type tagRow struct {
	ParentID int64 `db:"parent_id"`
	domain.Tag
}

type restrictionRow struct {
	ParentID int64 `db:"parent_id"`
	domain.ParkingRestriction
}

// load читает дочерние строки для списка родителей
func (c childrenStore) load(ctx context.Context, q sqlx.QueryerContext, parentIDs []int64) (map[int64]*children, error) {
	result := make(map[int64]*children, len(parentIDs))
	for _, id := range parentIDs {
		result[id] = &children{}
	}
	if len(parentIDs) == 0 {
		return result, nil
	}

	var identifiers []externalIdentifierRow
	query := fmt.Sprintf(`
		SELECT %[1]s AS parent_id, id, type, value
		FROM %[2]s_external_identifiers
		WHERE %[1]s = ANY($1)
		ORDER BY %[1]s, position
	`, c.parentColumn(), c.prefix)
	if err := sqlx.SelectContext(ctx, q, &identifiers, query, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("load external identifiers: %w", err)
	}
	for _, row := range identifiers {
		result[row.ParentID].ExternalIdentifiers = append(result[row.ParentID].ExternalIdentifiers, row.ExternalIdentifier)
	}

	var tags []tagRow
	query = fmt.Sprintf(`
		SELECT %[1]s AS parent_id, id, value
		FROM %[2]s_tags
		WHERE %[1]s = ANY($1)
		ORDER BY %[1]s, position
	`, c.parentColumn(), c.prefix)
	if err := sqlx.SelectContext(ctx, q, &tags, query, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	for _, row := range tags {
		result[row.ParentID].Tags = append(result[row.ParentID].Tags, row.Tag)
	}

	var restrictions []restrictionRow
	query = fmt.Sprintf(`
		SELECT %[1]s AS parent_id, id, type, hours, max_stay
		FROM %[2]s_restrictions
		WHERE %[1]s = ANY($1)
		ORDER BY %[1]s, position
	`, c.parentColumn(), c.prefix)
	if err := sqlx.SelectContext(ctx, q, &restrictions, query, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("load restrictions: %w", err)
	}
	for _, row := range restrictions {
		result[row.ParentID].Restrictions = append(result[row.ParentID].Restrictions, row.ParkingRestriction)
	}

	return result, nil
}

// save синхронизирует дочерние таблицы: строки с id обновляются, без id вставляются,
// строки родителя, которых нет в списке, удаляются
func (c childrenStore) save(ctx context.Context, tx *sqlx.Tx, parentID int64, ch children) error {
	identifiers := make([]childRow, len(ch.ExternalIdentifiers))
	for i := range ch.ExternalIdentifiers {
		item := &ch.ExternalIdentifiers[i]
		identifiers[i] = childRow{id: &item.ID, values: []interface{}{string(item.Type), item.Value}}
	}
	if err := c.sync(ctx, tx, "external_identifiers", []string{"type", "value"}, parentID, identifiers); err != nil {
		return err
	}

	tags := make([]childRow, len(ch.Tags))
	for i := range ch.Tags {
		item := &ch.Tags[i]
		tags[i] = childRow{id: &item.ID, values: []interface{}{item.Value}}
	}
	if err := c.sync(ctx, tx, "tags", []string{"value"}, parentID, tags); err != nil {
		return err
	}

	restrictions := make([]childRow, len(ch.Restrictions))
	for i := range ch.Restrictions {
		item := &ch.Restrictions[i]
		restrictions[i] = childRow{id: &item.ID, values: []interface{}{item.Type, item.Hours, item.MaxStay}}
	}
	return c.sync(ctx, tx, "restrictions", []string{"type", "hours", "max_stay"}, parentID, restrictions)
}

type childRow struct {
	id     *int64
	values []interface{}
}

func (c childrenStore) sync(ctx context.Context, tx *sqlx.Tx, suffix string, columns []string, parentID int64, rows []childRow) error {
	table := c.prefix + "_" + suffix
	parent := c.parentColumn()

	keep := make([]int64, 0, len(rows))
	for position, row := range rows {
		if *row.id != 0 {
			query := fmt.Sprintf(
				"UPDATE %s SET position = $1, %s WHERE id = $%d AND %s = $%d",
				table, assignments(columns, 2), len(columns)+2, parent, len(columns)+3,
			)
			args := append([]interface{}{position}, row.values...)
			args = append(args, *row.id, parentID)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("update %s: %w", table, err)
			}
		} else {
			query := fmt.Sprintf(
				"INSERT INTO %s (%s, position, %s) VALUES ($1, $2, %s) RETURNING id",
				table, parent, strings.Join(columns, ", "), placeholders(3, len(columns)),
			)
			args := append([]interface{}{parentID, position}, row.values...)
			if err := tx.QueryRowxContext(ctx, query, args...).Scan(row.id); err != nil {
				return fmt.Errorf("insert %s: %w", table, err)
			}
		}
		keep = append(keep, *row.id)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND NOT (id = ANY($2))", table, parent)
	if _, err := tx.ExecContext(ctx, query, parentID, pq.Array(keep)); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

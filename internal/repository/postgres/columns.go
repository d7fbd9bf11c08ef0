package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/parking-aggregator/internal/domain"
)

// Префиксы колонок трех вариантов емкости
const (
	capacityPrefixStatic       = ""
	capacityPrefixRealtime     = "realtime_"
	capacityPrefixRealtimeFree = "realtime_free_"
)

var capacityPrefixes = []string{capacityPrefixStatic, capacityPrefixRealtime, capacityPrefixRealtimeFree}

// capacityColumns возвращает 24 колонки емкости в порядке prefix x CapacityKinds
func capacityColumns() []string {
	columns := make([]string, 0, len(capacityPrefixes)*len(domain.CapacityKinds))
	for _, prefix := range capacityPrefixes {
		for _, kind := range domain.CapacityKinds {
			columns = append(columns, prefix+string(kind))
		}
	}
	return columns
}

// capacityRefs возвращает адреса полей для Scan в порядке capacityColumns
func capacityRefs(static, realtime, realtimeFree *domain.Capacities) []interface{} {
	refs := make([]interface{}, 0, len(capacityPrefixes)*len(domain.CapacityKinds))
	for _, set := range []*domain.Capacities{static, realtime, realtimeFree} {
		for _, kind := range domain.CapacityKinds {
			refs = append(refs, set.Ref(kind))
		}
	}
	return refs
}

// capacityValues возвращает значения в порядке capacityColumns
func capacityValues(static, realtime, realtimeFree domain.Capacities) []interface{} {
	values := make([]interface{}, 0, len(capacityPrefixes)*len(domain.CapacityKinds))
	values = append(values, static.Values()...)
	values = append(values, realtime.Values()...)
	values = append(values, realtimeFree.Values()...)
	return values
}

// placeholders возвращает "$from, $from+1, ..." для n параметров
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

// assignments возвращает "col1 = $from, col2 = $from+1, ..."
func assignments(columns []string, from int) string {
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = fmt.Sprintf("%s = $%d", column, from+i)
	}
	return strings.Join(parts, ", ")
}

// prefixed добавляет алиас таблицы к колонкам
func prefixed(alias string, columns []string) string {
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = alias + "." + column
	}
	return strings.Join(parts, ", ")
}

// geometryExpr строит точку из двух параметров: $from - lon, $from+1 - lat
func geometryExpr(from int) string {
	return fmt.Sprintf("ST_SetSRID(ST_MakePoint($%d, $%d), 4326)", from, from+1)
}

// locationFilterClause возвращает условия WHERE для фильтра локаций, начиная с параметра from
func locationFilterClause(filter domain.LocationFilter, from int) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(filter.SourceIDs) > 0 {
		args = append(args, pq.Array(filter.SourceIDs))
		conditions = append(conditions, fmt.Sprintf("source_id = ANY($%d)", from+len(args)-1))
	}
	if len(filter.Purposes) > 0 {
		purposes := make([]string, len(filter.Purposes))
		for i, p := range filter.Purposes {
			purposes[i] = string(p)
		}
		args = append(args, pq.Array(purposes))
		conditions = append(conditions, fmt.Sprintf("purpose = ANY($%d)", from+len(args)-1))
	}

	if len(conditions) == 0 {
		return "TRUE", nil
	}
	return strings.Join(conditions, " AND "), args
}

// columnList перечисляет колонки через запятую
func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}

package domain

import "github.com/shopspring/decimal"

// Location - облегченная проекция сущности для поиска дубликатов
type Location struct {
	ID       int64   `json:"id" db:"id"`
	SourceID int64   `json:"source_id" db:"source_id"`
	Purpose  Purpose `json:"purpose" db:"purpose"`
	Lat      float64 `json:"lat" db:"lat"`
	Lon      float64 `json:"lon" db:"lon"`
}

// LocationFilter - фильтр выборки локаций и сброса дубликатов
type LocationFilter struct {
	SourceIDs []int64
	Purposes  []Purpose
}

// DuplicateStatus - решение оператора по кандидату
type DuplicateStatus string

const (
	DuplicateStatusKeep   DuplicateStatus = "KEEP"
	DuplicateStatusIgnore DuplicateStatus = "IGNORE"
)

// DuplicatePair - упорядоченная пара (id, duplicate_id)
type DuplicatePair struct {
	ID          int64 `json:"id"`
	DuplicateID int64 `json:"duplicate_id"`
}

// Reverse возвращает пару в обратном порядке
func (p DuplicatePair) Reverse() DuplicatePair {
	return DuplicatePair{ID: p.DuplicateID, DuplicateID: p.ID}
}

// DuplicateSnapshot - отображаемые поля сущности для UI оператора
type DuplicateSnapshot struct {
	SourceID    int64           `json:"source_id"`
	SourceUID   string          `json:"source_uid"`
	OriginalUID string          `json:"original_uid"`
	Name        *string         `json:"name,omitempty"`
	Address     *string         `json:"address,omitempty"`
	Type        string          `json:"type,omitempty"`
	Purpose     Purpose         `json:"purpose"`
	Capacity    *int            `json:"capacity,omitempty"`
	Lat         decimal.Decimal `json:"lat"`
	Lon         decimal.Decimal `json:"lon"`
	PublicURL   *string         `json:"public_url,omitempty"`
}

// DuplicateCandidate - неподтвержденная пара дубликатов с точки зрения сущности ID
type DuplicateCandidate struct {
	ID          int64           `json:"id"`
	DuplicateID int64           `json:"duplicate_id"`
	Distance    float64         `json:"distance"`
	Status      DuplicateStatus `json:"status"`
	DuplicateSnapshot
}

// Pair возвращает пару кандидата
func (c DuplicateCandidate) Pair() DuplicatePair {
	return DuplicatePair{ID: c.ID, DuplicateID: c.DuplicateID}
}

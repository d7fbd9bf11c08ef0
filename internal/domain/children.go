package domain

// ExternalIdentifierType - тип внешнего идентификатора
type ExternalIdentifierType string

const (
	ExternalIdentifierTypeOSM   ExternalIdentifierType = "OSM"
	ExternalIdentifierTypeDHID  ExternalIdentifierType = "DHID"
	ExternalIdentifierTypeOther ExternalIdentifierType = "OTHER"
)

// ExternalIdentifier - идентификатор объекта в сторонней системе.
// Строки дочерних таблиц идентифицируются позицией в списке.
type ExternalIdentifier struct {
	ID    int64                  `json:"-" db:"id"`
	Type  ExternalIdentifierType `json:"type" db:"type"`
	Value string                 `json:"value" db:"value"`
}

// Tag - произвольная метка объекта
type Tag struct {
	ID    int64  `json:"-" db:"id"`
	Value string `json:"value" db:"value"`
}

// ParkingRestriction - ограничение использования (для кого, когда, на сколько)
type ParkingRestriction struct {
	ID      int64   `json:"-" db:"id"`
	Type    *string `json:"type,omitempty" db:"type"`
	Hours   *string `json:"hours,omitempty" db:"hours"`
	MaxStay *int    `json:"max_stay,omitempty" db:"max_stay"`
}

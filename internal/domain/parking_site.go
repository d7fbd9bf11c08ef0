package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purpose - назначение парковки
type Purpose string

const (
	PurposeCar  Purpose = "CAR"
	PurposeBike Purpose = "BIKE"
	PurposeItem Purpose = "ITEM"
)

// ParkingSiteType - тип парковочного объекта
type ParkingSiteType string

const (
	ParkingSiteTypeOnStreet      ParkingSiteType = "ON_STREET"
	ParkingSiteTypeOffStreet     ParkingSiteType = "OFF_STREET_PARKING_GROUND"
	ParkingSiteTypeUnderground   ParkingSiteType = "UNDERGROUND"
	ParkingSiteTypeCarPark       ParkingSiteType = "CAR_PARK"
	ParkingSiteTypeWalkInCarPark ParkingSiteType = "WALK_IN"
	ParkingSiteTypeBikeStands    ParkingSiteType = "STANDS"
	ParkingSiteTypeBikeLockers   ParkingSiteType = "LOCKERS"
	ParkingSiteTypeBikeShed      ParkingSiteType = "SHED"
	ParkingSiteTypeOther         ParkingSiteType = "OTHER"
)

// OpeningStatus - realtime статус открытия
type OpeningStatus string

const (
	OpeningStatusOpen    OpeningStatus = "OPEN"
	OpeningStatusClosed  OpeningStatus = "CLOSED"
	OpeningStatusUnknown OpeningStatus = "UNKNOWN"
)

// ParkingSite - парковочный объект, уникальный по паре (source_id, original_uid)
type ParkingSite struct {
	ID                       int64  `json:"id" db:"id"`
	SourceID                 int64  `json:"source_id" db:"source_id"`
	OriginalUID              string `json:"original_uid" db:"original_uid"`
	ParkingSiteGroupID       *int64 `json:"parking_site_group_id,omitempty" db:"parking_site_group_id"`
	DuplicateOfParkingSiteID *int64 `json:"duplicate_of_parking_site_id,omitempty" db:"duplicate_of_parking_site_id"`

	Name         string          `json:"name" db:"name"`
	OperatorName *string         `json:"operator_name,omitempty" db:"operator_name"`
	PublicURL    *string         `json:"public_url,omitempty" db:"public_url"`
	Address      *string         `json:"address,omitempty" db:"address"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Type         ParkingSiteType `json:"type" db:"type"`
	Purpose      Purpose         `json:"purpose" db:"purpose"`
	Lat          decimal.Decimal `json:"lat" db:"lat"`
	Lon          decimal.Decimal `json:"lon" db:"lon"`
	HasFee       *bool           `json:"has_fee,omitempty" db:"has_fee"`
	OpeningHours *string         `json:"opening_hours,omitempty" db:"opening_hours"`
	MaxStay      *int            `json:"max_stay,omitempty" db:"max_stay"`

	HasRealtimeData        bool          `json:"has_realtime_data" db:"has_realtime_data"`
	Capacities             Capacities    `json:"capacities"`
	RealtimeCapacities     Capacities    `json:"realtime_capacities"`
	RealtimeFreeCapacities Capacities    `json:"realtime_free_capacities"`
	RealtimeOpeningStatus  OpeningStatus `json:"realtime_opening_status" db:"realtime_opening_status"`

	StaticDataUpdatedAt   *time.Time `json:"static_data_updated_at,omitempty" db:"static_data_updated_at"`
	RealtimeDataUpdatedAt *time.Time `json:"realtime_data_updated_at,omitempty" db:"realtime_data_updated_at"`

	ExternalIdentifiers []ExternalIdentifier `json:"external_identifiers,omitempty"`
	Tags                []Tag                `json:"tags,omitempty"`
	Restrictions        []ParkingRestriction `json:"restrictions,omitempty"`

	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ModifiedAt time.Time `json:"modified_at" db:"modified_at"`
}

func (s *ParkingSite) EntityID() int64 {
	return s.ID
}

// ChangeSnapshot возвращает значения, изменение которых порождает запись истории
func (s *ParkingSite) ChangeSnapshot() ParkingSiteHistory {
	return ParkingSiteHistory{
		ParkingSiteID:          s.ID,
		Capacities:             s.Capacities.Clone(),
		RealtimeCapacities:     s.RealtimeCapacities.Clone(),
		RealtimeFreeCapacities: s.RealtimeFreeCapacities.Clone(),
		RealtimeOpeningStatus:  s.RealtimeOpeningStatus,
		StaticDataUpdatedAt:    s.StaticDataUpdatedAt,
		RealtimeDataUpdatedAt:  s.RealtimeDataUpdatedAt,
	}
}

// DuplicateSnapshot возвращает данные для отображения кандидата в дубликаты
func (s *ParkingSite) DuplicateSnapshot() DuplicateSnapshot {
	return DuplicateSnapshot{
		SourceID:    s.SourceID,
		OriginalUID: s.OriginalUID,
		Name:        &s.Name,
		Address:     s.Address,
		Type:        string(s.Type),
		Purpose:     s.Purpose,
		Capacity:    s.Capacities.Total,
		Lat:         s.Lat,
		Lon:         s.Lon,
		PublicURL:   s.PublicURL,
	}
}

// ParkingSiteGroup - группа парковочных объектов одного источника
type ParkingSiteGroup struct {
	ID          int64     `json:"id" db:"id"`
	SourceID    int64     `json:"source_id" db:"source_id"`
	OriginalUID string    `json:"original_uid" db:"original_uid"`
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ModifiedAt  time.Time `json:"modified_at" db:"modified_at"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParkingSpotStatus - realtime статус отдельного места
type ParkingSpotStatus string

const (
	ParkingSpotStatusAvailable ParkingSpotStatus = "AVAILABLE"
	ParkingSpotStatusTaken     ParkingSpotStatus = "TAKEN"
	ParkingSpotStatusUnknown   ParkingSpotStatus = "UNKNOWN"
)

// ParkingSpot - отдельное парковочное место, уникальное по паре (source_id, original_uid)
type ParkingSpot struct {
	ID                       int64  `json:"id" db:"id"`
	SourceID                 int64  `json:"source_id" db:"source_id"`
	OriginalUID              string `json:"original_uid" db:"original_uid"`
	ParkingSiteID            *int64 `json:"parking_site_id,omitempty" db:"parking_site_id"`
	DuplicateOfParkingSpotID *int64 `json:"duplicate_of_parking_spot_id,omitempty" db:"duplicate_of_parking_spot_id"`

	Name    *string         `json:"name,omitempty" db:"name"`
	Address *string         `json:"address,omitempty" db:"address"`
	Type    *string         `json:"type,omitempty" db:"type"`
	Purpose Purpose         `json:"purpose" db:"purpose"`
	Lat     decimal.Decimal `json:"lat" db:"lat"`
	Lon     decimal.Decimal `json:"lon" db:"lon"`

	HasRealtimeData bool              `json:"has_realtime_data" db:"has_realtime_data"`
	RealtimeStatus  ParkingSpotStatus `json:"realtime_status" db:"realtime_status"`

	StaticDataUpdatedAt   *time.Time `json:"static_data_updated_at,omitempty" db:"static_data_updated_at"`
	RealtimeDataUpdatedAt *time.Time `json:"realtime_data_updated_at,omitempty" db:"realtime_data_updated_at"`

	ExternalIdentifiers []ExternalIdentifier `json:"external_identifiers,omitempty"`
	Tags                []Tag                `json:"tags,omitempty"`
	Restrictions        []ParkingRestriction `json:"restrictions,omitempty"`

	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ModifiedAt time.Time `json:"modified_at" db:"modified_at"`
}

func (s *ParkingSpot) EntityID() int64 {
	return s.ID
}

// ChangeSnapshot возвращает значения, изменение которых порождает запись истории
func (s *ParkingSpot) ChangeSnapshot() ParkingSpotHistory {
	return ParkingSpotHistory{
		ParkingSpotID:         s.ID,
		RealtimeStatus:        s.RealtimeStatus,
		StaticDataUpdatedAt:   s.StaticDataUpdatedAt,
		RealtimeDataUpdatedAt: s.RealtimeDataUpdatedAt,
	}
}

// DuplicateSnapshot возвращает данные для отображения кандидата в дубликаты
func (s *ParkingSpot) DuplicateSnapshot() DuplicateSnapshot {
	spotType := ""
	if s.Type != nil {
		spotType = *s.Type
	}
	return DuplicateSnapshot{
		SourceID:    s.SourceID,
		OriginalUID: s.OriginalUID,
		Name:        s.Name,
		Address:     s.Address,
		Type:        spotType,
		Purpose:     s.Purpose,
		Lat:         s.Lat,
		Lon:         s.Lon,
	}
}

package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExternalIdentifierInput - внешний идентификатор во входных данных конвертера
type ExternalIdentifierInput struct {
	Type  ExternalIdentifierType `json:"type" validate:"required,oneof=OSM DHID OTHER"`
	Value string                 `json:"value" validate:"required,max=256"`
}

// ParkingRestrictionInput - ограничение во входных данных конвертера
type ParkingRestrictionInput struct {
	Type    *string `json:"type,omitempty" validate:"omitempty,max=64"`
	Hours   *string `json:"hours,omitempty" validate:"omitempty,max=512"`
	MaxStay *int    `json:"max_stay,omitempty" validate:"omitempty,min=0"`
}

// StaticParkingSiteInput - статическая запись парковочного объекта от конвертера
type StaticParkingSiteInput struct {
	UID          string          `json:"uid" validate:"required,max=256"`
	GroupUID     *string         `json:"group_uid,omitempty" validate:"omitempty,max=256"`
	Name         string          `json:"name" validate:"required,max=256"`
	OperatorName *string         `json:"operator_name,omitempty" validate:"omitempty,max=256"`
	PublicURL    *string         `json:"public_url,omitempty" validate:"omitempty,url"`
	Address      *string         `json:"address,omitempty" validate:"omitempty,max=512"`
	Description  *string         `json:"description,omitempty"`
	Type         ParkingSiteType `json:"type" validate:"required"`
	Purpose      Purpose         `json:"purpose" validate:"required,oneof=CAR BIKE ITEM"`
	Lat          decimal.Decimal `json:"lat" validate:"latitude"`
	Lon          decimal.Decimal `json:"lon" validate:"longitude"`
	HasFee       *bool           `json:"has_fee,omitempty"`
	OpeningHours *string         `json:"opening_hours,omitempty" validate:"omitempty,max=512"`
	MaxStay      *int            `json:"max_stay,omitempty" validate:"omitempty,min=0"`

	HasRealtimeData     bool      `json:"has_realtime_data"`
	StaticDataUpdatedAt time.Time `json:"static_data_updated_at" validate:"required"`

	Capacity           *int `json:"capacity" validate:"required,min=0"`
	CapacityDisabled   *int `json:"capacity_disabled,omitempty" validate:"omitempty,min=0"`
	CapacityWoman      *int `json:"capacity_woman,omitempty" validate:"omitempty,min=0"`
	CapacityFamily     *int `json:"capacity_family,omitempty" validate:"omitempty,min=0"`
	CapacityCharging   *int `json:"capacity_charging,omitempty" validate:"omitempty,min=0"`
	CapacityCarsharing *int `json:"capacity_carsharing,omitempty" validate:"omitempty,min=0"`
	CapacityTruck      *int `json:"capacity_truck,omitempty" validate:"omitempty,min=0"`
	CapacityBus        *int `json:"capacity_bus,omitempty" validate:"omitempty,min=0"`

	ExternalIdentifiers []ExternalIdentifierInput `json:"external_identifiers,omitempty" validate:"omitempty,dive"`
	Tags                []string                  `json:"tags,omitempty" validate:"omitempty,dive,max=256"`
	Restrictions        []ParkingRestrictionInput `json:"restrictions,omitempty" validate:"omitempty,dive"`
}

// Capacities собирает статические емкости в Capacities
func (i StaticParkingSiteInput) Capacities() Capacities {
	return Capacities{
		Total:      i.Capacity,
		Disabled:   i.CapacityDisabled,
		Woman:      i.CapacityWoman,
		Family:     i.CapacityFamily,
		Charging:   i.CapacityCharging,
		Carsharing: i.CapacityCarsharing,
		Truck:      i.CapacityTruck,
		Bus:        i.CapacityBus,
	}
}

// RealtimeParkingSiteInput - realtime запись парковочного объекта от конвертера
type RealtimeParkingSiteInput struct {
	UID                   string         `json:"uid" validate:"required,max=256"`
	RealtimeDataUpdatedAt time.Time      `json:"realtime_data_updated_at" validate:"required"`
	RealtimeOpeningStatus *OpeningStatus `json:"realtime_opening_status,omitempty" validate:"omitempty,oneof=OPEN CLOSED UNKNOWN"`

	RealtimeCapacity           *int `json:"realtime_capacity,omitempty" validate:"omitempty,min=0"`
	RealtimeCapacityDisabled   *int `json:"realtime_capacity_disabled,omitempty" validate:"omitempty,min=0"`
	RealtimeCapacityWoman      *int `json:"realtime_capacity_woman,omitempty" validate:"omitempty,min=0"`
	RealtimeCapacityFamily     *int `json:"realtime_capacity_family,omitempty" validate:"omitempty,min=0"`
	RealtimeCapacityCharging   *int `json:"realtime_capacity_charging,omitempty" validate:"omitempty,min=0"`
	RealtimeCapacityCarsharing *int `json:"realtime_capacity_carsharing,omitempty" validate:"omitempty,min=0"`
	RealtimeCapacityTruck      *int `json:"realtime_capacity_truck,omitempty" validate:"omitempty,min=0"`
	RealtimeCapacityBus        *int `json:"realtime_capacity_bus,omitempty" validate:"omitempty,min=0"`

	RealtimeFreeCapacity           *int `json:"realtime_free_capacity,omitempty" validate:"omitempty,min=0"`
	RealtimeFreeCapacityDisabled   *int `json:"realtime_free_capacity_disabled,omitempty" validate:"omitempty,min=0"`
	RealtimeFreeCapacityWoman      *int `json:"realtime_free_capacity_woman,omitempty" validate:"omitempty,min=0"`
	RealtimeFreeCapacityFamily     *int `json:"realtime_free_capacity_family,omitempty" validate:"omitempty,min=0"`
	RealtimeFreeCapacityCharging   *int `json:"realtime_free_capacity_charging,omitempty" validate:"omitempty,min=0"`
	RealtimeFreeCapacityCarsharing *int `json:"realtime_free_capacity_carsharing,omitempty" validate:"omitempty,min=0"`
	RealtimeFreeCapacityTruck      *int `json:"realtime_free_capacity_truck,omitempty" validate:"omitempty,min=0"`
	RealtimeFreeCapacityBus        *int `json:"realtime_free_capacity_bus,omitempty" validate:"omitempty,min=0"`
}

// RealtimeCapacities собирает realtime_<kind> значения
func (i RealtimeParkingSiteInput) RealtimeCapacities() Capacities {
	return Capacities{
		Total:      i.RealtimeCapacity,
		Disabled:   i.RealtimeCapacityDisabled,
		Woman:      i.RealtimeCapacityWoman,
		Family:     i.RealtimeCapacityFamily,
		Charging:   i.RealtimeCapacityCharging,
		Carsharing: i.RealtimeCapacityCarsharing,
		Truck:      i.RealtimeCapacityTruck,
		Bus:        i.RealtimeCapacityBus,
	}
}

// RealtimeFreeCapacities собирает realtime_free_<kind> значения
func (i RealtimeParkingSiteInput) RealtimeFreeCapacities() Capacities {
	return Capacities{
		Total:      i.RealtimeFreeCapacity,
		Disabled:   i.RealtimeFreeCapacityDisabled,
		Woman:      i.RealtimeFreeCapacityWoman,
		Family:     i.RealtimeFreeCapacityFamily,
		Charging:   i.RealtimeFreeCapacityCharging,
		Carsharing: i.RealtimeFreeCapacityCarsharing,
		Truck:      i.RealtimeFreeCapacityTruck,
		Bus:        i.RealtimeFreeCapacityBus,
	}
}

// StaticParkingSpotInput - статическая запись парковочного места от конвертера
type StaticParkingSpotInput struct {
	UID            string          `json:"uid" validate:"required,max=256"`
	ParkingSiteUID *string         `json:"parking_site_uid,omitempty" validate:"omitempty,max=256"`
	Name           *string         `json:"name,omitempty" validate:"omitempty,max=256"`
	Address        *string         `json:"address,omitempty" validate:"omitempty,max=512"`
	Type           *string         `json:"type,omitempty" validate:"omitempty,max=64"`
	Purpose        Purpose         `json:"purpose" validate:"required,oneof=CAR BIKE ITEM"`
	Lat            decimal.Decimal `json:"lat" validate:"latitude"`
	Lon            decimal.Decimal `json:"lon" validate:"longitude"`

	HasRealtimeData     bool      `json:"has_realtime_data"`
	StaticDataUpdatedAt time.Time `json:"static_data_updated_at" validate:"required"`

	ExternalIdentifiers []ExternalIdentifierInput `json:"external_identifiers,omitempty" validate:"omitempty,dive"`
	Tags                []string                  `json:"tags,omitempty" validate:"omitempty,dive,max=256"`
	Restrictions        []ParkingRestrictionInput `json:"restrictions,omitempty" validate:"omitempty,dive"`
}

// RealtimeParkingSpotInput - realtime запись парковочного места от конвертера
type RealtimeParkingSpotInput struct {
	UID                   string            `json:"uid" validate:"required,max=256"`
	RealtimeStatus        ParkingSpotStatus `json:"realtime_status" validate:"required,oneof=AVAILABLE TAKEN UNKNOWN"`
	RealtimeDataUpdatedAt time.Time         `json:"realtime_data_updated_at" validate:"required"`
}

// ImportError - ошибка обработки одной записи источника
type ImportError struct {
	SourceUID   string `json:"source_uid"`
	OriginalUID string `json:"original_uid,omitempty"`
	Message     string `json:"message"`
}

func (e ImportError) Error() string {
	if e.OriginalUID == "" {
		return fmt.Sprintf("%s: %s", e.SourceUID, e.Message)
	}
	return fmt.Sprintf("%s/%s: %s", e.SourceUID, e.OriginalUID, e.Message)
}

// StaticBatch - результат статического вызова конвертера
type StaticBatch struct {
	ParkingSites      []StaticParkingSiteInput
	ParkingSiteErrors []ImportError
	ParkingSpots      []StaticParkingSpotInput
	ParkingSpotErrors []ImportError
}

// RealtimeBatch - результат realtime вызова конвертера
type RealtimeBatch struct {
	ParkingSites      []RealtimeParkingSiteInput
	ParkingSiteErrors []ImportError
	ParkingSpots      []RealtimeParkingSpotInput
	ParkingSpotErrors []ImportError
}

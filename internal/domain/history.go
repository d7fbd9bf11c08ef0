package domain

import "time"

// ParkingSiteHistory - снимок емкостей и статуса, пишется только при фактическом изменении
type ParkingSiteHistory struct {
	ID                     int64         `json:"id" db:"id"`
	ParkingSiteID          int64         `json:"parking_site_id" db:"parking_site_id"`
	Capacities             Capacities    `json:"capacities"`
	RealtimeCapacities     Capacities    `json:"realtime_capacities"`
	RealtimeFreeCapacities Capacities    `json:"realtime_free_capacities"`
	RealtimeOpeningStatus  OpeningStatus `json:"realtime_opening_status" db:"realtime_opening_status"`
	StaticDataUpdatedAt    *time.Time    `json:"static_data_updated_at,omitempty" db:"static_data_updated_at"`
	RealtimeDataUpdatedAt  *time.Time    `json:"realtime_data_updated_at,omitempty" db:"realtime_data_updated_at"`
	CreatedAt              time.Time     `json:"created_at" db:"created_at"`
}

// Differs сообщает, отличаются ли значения, отслеживаемые историей.
// Временные метки не участвуют в сравнении.
func (h ParkingSiteHistory) Differs(other ParkingSiteHistory) bool {
	return !h.Capacities.Equal(other.Capacities) ||
		!h.RealtimeCapacities.Equal(other.RealtimeCapacities) ||
		!h.RealtimeFreeCapacities.Equal(other.RealtimeFreeCapacities) ||
		h.RealtimeOpeningStatus != other.RealtimeOpeningStatus
}

// ParkingSpotHistory - снимок статуса места
type ParkingSpotHistory struct {
	ID                    int64             `json:"id" db:"id"`
	ParkingSpotID         int64             `json:"parking_spot_id" db:"parking_spot_id"`
	RealtimeStatus        ParkingSpotStatus `json:"realtime_status" db:"realtime_status"`
	StaticDataUpdatedAt   *time.Time        `json:"static_data_updated_at,omitempty" db:"static_data_updated_at"`
	RealtimeDataUpdatedAt *time.Time        `json:"realtime_data_updated_at,omitempty" db:"realtime_data_updated_at"`
	CreatedAt             time.Time         `json:"created_at" db:"created_at"`
}

// Differs сообщает, изменился ли статус места
func (h ParkingSpotHistory) Differs(other ParkingSpotHistory) bool {
	return h.RealtimeStatus != other.RealtimeStatus
}

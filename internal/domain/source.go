package domain

import "time"

// SourceStatus - состояние импорта источника по одной оси (static или realtime)
type SourceStatus string

const (
	SourceStatusProvisioned SourceStatus = "PROVISIONED"
	SourceStatusActive      SourceStatus = "ACTIVE"
	SourceStatusFailed      SourceStatus = "FAILED"
	SourceStatusDisabled    SourceStatus = "DISABLED"
)

// ImportKind - тип импорта
type ImportKind string

const (
	ImportKindStatic   ImportKind = "static"
	ImportKindRealtime ImportKind = "realtime"
)

// Source - внешний источник данных о парковках
type Source struct {
	ID                     int64   `json:"id" db:"id"`
	UID                    string  `json:"uid" db:"uid"`
	Name                   string  `json:"name" db:"name"`
	PublicURL              *string `json:"public_url,omitempty" db:"public_url"`
	AttributionLicense     *string `json:"attribution_license,omitempty" db:"attribution_license"`
	AttributionContributor *string `json:"attribution_contributor,omitempty" db:"attribution_contributor"`
	AttributionURL         *string `json:"attribution_url,omitempty" db:"attribution_url"`

	StaticStatus          SourceStatus `json:"static_status" db:"static_status"`
	RealtimeStatus        SourceStatus `json:"realtime_status" db:"realtime_status"`
	StaticDataUpdatedAt   *time.Time   `json:"static_data_updated_at,omitempty" db:"static_data_updated_at"`
	RealtimeDataUpdatedAt *time.Time   `json:"realtime_data_updated_at,omitempty" db:"realtime_data_updated_at"`

	StaticParkingSiteErrorCount   int `json:"static_parking_site_error_count" db:"static_parking_site_error_count"`
	RealtimeParkingSiteErrorCount int `json:"realtime_parking_site_error_count" db:"realtime_parking_site_error_count"`
	StaticParkingSpotErrorCount   int `json:"static_parking_spot_error_count" db:"static_parking_spot_error_count"`
	RealtimeParkingSpotErrorCount int `json:"realtime_parking_spot_error_count" db:"realtime_parking_spot_error_count"`

	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ModifiedAt time.Time `json:"modified_at" db:"modified_at"`
}

// SourceInfo - описание источника, которое предоставляет конвертер
type SourceInfo struct {
	UID                    string  `yaml:"uid" validate:"required,max=256"`
	Name                   string  `yaml:"name" validate:"required"`
	PublicURL              *string `yaml:"public_url,omitempty" validate:"omitempty,url"`
	AttributionLicense     *string `yaml:"attribution_license,omitempty"`
	AttributionContributor *string `yaml:"attribution_contributor,omitempty"`
	AttributionURL         *string `yaml:"attribution_url,omitempty" validate:"omitempty,url"`
}

// NewSource создает источник в состоянии PROVISIONED по описанию конвертера
func NewSource(info SourceInfo) *Source {
	return &Source{
		UID:                    info.UID,
		Name:                   info.Name,
		PublicURL:              info.PublicURL,
		AttributionLicense:     info.AttributionLicense,
		AttributionContributor: info.AttributionContributor,
		AttributionURL:         info.AttributionURL,
		StaticStatus:           SourceStatusProvisioned,
		RealtimeStatus:         SourceStatusProvisioned,
	}
}

// ApplyInfo обновляет описательные поля. UID не меняется никогда.
func (s *Source) ApplyInfo(info SourceInfo) {
	s.Name = info.Name
	s.PublicURL = info.PublicURL
	s.AttributionLicense = info.AttributionLicense
	s.AttributionContributor = info.AttributionContributor
	s.AttributionURL = info.AttributionURL
}

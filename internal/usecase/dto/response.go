package dto

import (
	"time"

	"github.com/parking-aggregator/internal/domain"
)

// GenerateDuplicatesResponse - кандидаты в дубликаты, по два на каждую пару
type GenerateDuplicatesResponse struct {
	Candidates   []domain.DuplicateCandidate `json:"candidates"`
	RadiusMeters float64                     `json:"radius_meters"`
	Total        int                         `json:"total"`
}

// ApplyDuplicatesResponse - итог применения решений
type ApplyDuplicatesResponse struct {
	Applied int `json:"applied"`
	Ignored int `json:"ignored"`
}

// ResetDuplicatesResponse - количество сброшенных указателей duplicate_of
type ResetDuplicatesResponse struct {
	Reset int64 `json:"reset"`
}

// SourceResponse - источник с последними отчетами импорта
type SourceResponse struct {
	*domain.Source
	SupportsRealtime   bool                    `json:"supports_realtime"`
	LastStaticImport   *domain.ImportDoneEvent `json:"last_static_import,omitempty"`
	LastRealtimeImport *domain.ImportDoneEvent `json:"last_realtime_import,omitempty"`
}

// ImportResponse - результат запуска импорта через API
type ImportResponse struct {
	RunID      string              `json:"run_id"`
	SourceUID  string              `json:"source_uid"`
	Report     domain.ImportReport `json:"report"`
	Error      string              `json:"error,omitempty"`
	FinishedAt time.Time           `json:"finished_at"`
}

// ConvertImportDoneEvent преобразует событие импорта в ответ API
func ConvertImportDoneEvent(event *domain.ImportDoneEvent) ImportResponse {
	return ImportResponse{
		RunID:      event.RunID.String(),
		SourceUID:  event.SourceUID,
		Report:     event.Report,
		Error:      event.Error,
		FinishedAt: event.FinishedAt,
	}
}

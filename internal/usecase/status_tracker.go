package usecase

import (
	"time"

	"github.com/parking-aggregator/internal/domain"
)

// StatusTracker - машина состояний источника по двум независимым осям (static, realtime).
// Все переходы идемпотентны: повторный запуск из FAILED при успехе переводит в ACTIVE.
type StatusTracker struct {
	now func() time.Time
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{now: time.Now}
}

// Outcome - статус по итогам прогона: хотя бы одна примененная запись дает ACTIVE
func (t *StatusTracker) Outcome(results ...domain.ImportResult) domain.SourceStatus {
	for _, r := range results {
		if r.Succeeded() > 0 {
			return domain.SourceStatusActive
		}
	}
	return domain.SourceStatusFailed
}

// ApplyStatic записывает итог статического импорта в источник
func (t *StatusTracker) ApplyStatic(source *domain.Source, sites, spots domain.ImportResult) domain.SourceStatus {
	status := t.Outcome(sites, spots)

	source.StaticStatus = status
	source.StaticParkingSiteErrorCount = sites.ErrorCount()
	source.StaticParkingSpotErrorCount = spots.ErrorCount()
	if status == domain.SourceStatusActive {
		now := t.now().UTC()
		source.StaticDataUpdatedAt = &now
	}

	return status
}

// ApplyRealtime записывает итог realtime импорта. DISABLED не перезаписывается.
func (t *StatusTracker) ApplyRealtime(source *domain.Source, sites, spots domain.ImportResult) domain.SourceStatus {
	if source.RealtimeStatus == domain.SourceStatusDisabled {
		return source.RealtimeStatus
	}

	status := t.Outcome(sites, spots)

	source.RealtimeStatus = status
	source.RealtimeParkingSiteErrorCount = sites.ErrorCount()
	source.RealtimeParkingSpotErrorCount = spots.ErrorCount()
	if status == domain.SourceStatusActive {
		now := t.now().UTC()
		source.RealtimeDataUpdatedAt = &now
	}

	return status
}

// ConverterFailed переводит ось kind в FAILED после отказа конвертера
func (t *StatusTracker) ConverterFailed(source *domain.Source, kind domain.ImportKind) {
	switch kind {
	case domain.ImportKindStatic:
		source.StaticStatus = domain.SourceStatusFailed
	case domain.ImportKindRealtime:
		if source.RealtimeStatus != domain.SourceStatusDisabled {
			source.RealtimeStatus = domain.SourceStatusFailed
		}
	}
}

// SyncRealtimeCapability выставляет DISABLED для источника без realtime и снимает его,
// если конвертер перенастроен. Возвращает true, если статус изменился.
func (t *StatusTracker) SyncRealtimeCapability(source *domain.Source, supportsRealtime bool) bool {
	switch {
	case !supportsRealtime && source.RealtimeStatus != domain.SourceStatusDisabled:
		source.RealtimeStatus = domain.SourceStatusDisabled
		return true
	case supportsRealtime && source.RealtimeStatus == domain.SourceStatusDisabled:
		source.RealtimeStatus = domain.SourceStatusProvisioned
		return true
	}
	return false
}

// CanImportRealtime - realtime имеет смысл только поверх успешного статического импорта
func (t *StatusTracker) CanImportRealtime(source *domain.Source) bool {
	return source.StaticStatus == domain.SourceStatusActive &&
		source.RealtimeStatus != domain.SourceStatusDisabled
}

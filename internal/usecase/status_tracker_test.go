package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/usecase"
)

func TestStatusTracker_Outcome(t *testing.T) {
	tracker := usecase.NewStatusTracker()

	tests := []struct {
		name    string
		results []domain.ImportResult
		want    domain.SourceStatus
	}{
		{"no records", []domain.ImportResult{{}, {}}, domain.SourceStatusFailed},
		{"only errors", []domain.ImportResult{{Failed: 3, ConverterErrors: 2}}, domain.SourceStatusFailed},
		{"partial success", []domain.ImportResult{{Updated: 1, Failed: 10}}, domain.SourceStatusActive},
		{"spots only", []domain.ImportResult{{}, {Created: 2}}, domain.SourceStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracker.Outcome(tt.results...))
		})
	}
}

func TestStatusTracker_ApplyStatic(t *testing.T) {
	tracker := usecase.NewStatusTracker()
	source := domain.NewSource(domain.SourceInfo{UID: "a", Name: "A"})

	status := tracker.ApplyStatic(source, domain.ImportResult{Created: 1, Failed: 2, ConverterErrors: 1}, domain.ImportResult{NotFound: 1})

	assert.Equal(t, domain.SourceStatusActive, status)
	assert.Equal(t, domain.SourceStatusActive, source.StaticStatus)
	assert.Equal(t, 3, source.StaticParkingSiteErrorCount)
	assert.Equal(t, 1, source.StaticParkingSpotErrorCount)
	assert.NotNil(t, source.StaticDataUpdatedAt)
	assert.Equal(t, domain.SourceStatusProvisioned, source.RealtimeStatus)
}

func TestStatusTracker_RealtimeAxis(t *testing.T) {
	tracker := usecase.NewStatusTracker()
	source := domain.NewSource(domain.SourceInfo{UID: "a", Name: "A"})

	assert.False(t, tracker.CanImportRealtime(source))

	tracker.ApplyStatic(source, domain.ImportResult{Created: 1}, domain.ImportResult{})
	assert.True(t, tracker.CanImportRealtime(source))

	tracker.ConverterFailed(source, domain.ImportKindRealtime)
	assert.Equal(t, domain.SourceStatusFailed, source.RealtimeStatus)
	assert.True(t, tracker.CanImportRealtime(source))

	assert.Equal(t, domain.SourceStatusActive, tracker.ApplyRealtime(source, domain.ImportResult{Updated: 1}, domain.ImportResult{}))
	assert.NotNil(t, source.RealtimeDataUpdatedAt)

	assert.True(t, tracker.SyncRealtimeCapability(source, false))
	assert.False(t, tracker.SyncRealtimeCapability(source, false))
	assert.False(t, tracker.CanImportRealtime(source))

	// DISABLED не перезаписывается ни итогом, ни отказом конвертера
	assert.Equal(t, domain.SourceStatusDisabled, tracker.ApplyRealtime(source, domain.ImportResult{Updated: 1}, domain.ImportResult{}))
	tracker.ConverterFailed(source, domain.ImportKindRealtime)
	assert.Equal(t, domain.SourceStatusDisabled, source.RealtimeStatus)

	assert.True(t, tracker.SyncRealtimeCapability(source, true))
	assert.Equal(t, domain.SourceStatusProvisioned, source.RealtimeStatus)
}

func TestStatusTracker_ConverterFailedStatic(t *testing.T) {
	tracker := usecase.NewStatusTracker()
	source := domain.NewSource(domain.SourceInfo{UID: "a", Name: "A"})
	tracker.ApplyStatic(source, domain.ImportResult{Created: 1}, domain.ImportResult{})

	tracker.ConverterFailed(source, domain.ImportKindStatic)

	assert.Equal(t, domain.SourceStatusFailed, source.StaticStatus)
	assert.False(t, tracker.CanImportRealtime(source))
}

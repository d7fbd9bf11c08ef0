package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/usecase"
)

func TestImportUseCase_ImportStatic_CreatesAndReportsActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")

	report, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 100), staticSite("p2", 50)},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceStatusActive, report.Status)
	assert.Equal(t, 2, report.ParkingSites.Created)
	assert.Equal(t, 2, report.ParkingSites.HistoryWritten)

	stored, err := env.sources.GetByUID(ctx, "stuttgart")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusActive, stored.StaticStatus)
	assert.NotNil(t, stored.StaticDataUpdatedAt)
	assert.Equal(t, 0, stored.StaticParkingSiteErrorCount)

	site, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Site p1", site.Name)
	assert.Equal(t, 100, *site.Capacities.Total)
	assert.Equal(t, domain.OpeningStatusUnknown, site.RealtimeOpeningStatus)
}

func TestImportUseCase_ImportStatic_AbsenceIsDeletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")

	_, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10), staticSite("p2", 20), staticSite("p3", 30)},
	})
	require.NoError(t, err)

	// p2 пропал из выгрузки, p3 пришел с ошибкой конвертера
	report, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10), staticSite("p4", 40)},
		ParkingSiteErrors: []domain.ImportError{
			{SourceUID: "stuttgart", OriginalUID: "p3", Message: "invalid lat"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.ParkingSites.Created)
	assert.Equal(t, 1, report.ParkingSites.Updated)
	assert.Equal(t, 1, report.ParkingSites.Deleted)
	assert.Equal(t, 1, report.ParkingSites.ConverterErrors)

	for uid, exists := range map[string]bool{"p1": true, "p2": false, "p3": true, "p4": true} {
		_, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, uid)
		if exists {
			assert.NoError(t, err, uid)
		} else {
			assert.ErrorIs(t, err, errors.ErrNotFound, uid)
		}
	}

	stored, err := env.sources.GetByUID(ctx, "stuttgart")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.StaticParkingSiteErrorCount)
}

// Запись с ошибкой конвертера присутствует в выгрузке, поэтому не считается отсутствующей:
// сущность сохраняется без изменений, хотя в этом прогоне ее uid не пришел валидной записью.
func TestImportUseCase_ImportStatic_ConverterErrorUIDIsNotAbsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")

	_, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10), staticSite("p2", 20)},
		ParkingSpots: []domain.StaticParkingSpotInput{staticSpot("s1", nil), staticSpot("s2", nil)},
	})
	require.NoError(t, err)

	report, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites:      []domain.StaticParkingSiteInput{staticSite("p1", 10)},
		ParkingSiteErrors: []domain.ImportError{{SourceUID: "stuttgart", OriginalUID: "p2", Message: "invalid capacity"}},
		ParkingSpots:      []domain.StaticParkingSpotInput{staticSpot("s1", nil)},
		ParkingSpotErrors: []domain.ImportError{{SourceUID: "stuttgart", OriginalUID: "s2", Message: "invalid lat"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.ParkingSites.Deleted)
	assert.Equal(t, 0, report.ParkingSpots.Deleted)

	p2, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, 20, *p2.Capacities.Total)

	_, err = env.spots.FetchBySourceAndOriginalUID(ctx, source.ID, "s2")
	assert.NoError(t, err)

	// без ошибки конвертера отсутствие снова означает удаление
	report, err = env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10)},
		ParkingSpots: []domain.StaticParkingSpotInput{staticSpot("s1", nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParkingSites.Deleted)
	assert.Equal(t, 1, report.ParkingSpots.Deleted)
}

func TestImportUseCase_ImportStatic_DoesNotTouchOtherSources(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.createSource(t, "a")
	b := env.createSource(t, "b")

	_, err := env.importUC.ImportStatic(ctx, a, domain.StaticBatch{ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10)}})
	require.NoError(t, err)
	_, err = env.importUC.ImportStatic(ctx, b, domain.StaticBatch{ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10)}})
	require.NoError(t, err)

	_, err = env.importUC.ImportStatic(ctx, b, domain.StaticBatch{})
	require.NoError(t, err)

	_, err = env.sites.FetchBySourceAndOriginalUID(ctx, a.ID, "p1")
	assert.NoError(t, err)
	_, err = env.sites.FetchBySourceAndOriginalUID(ctx, b.ID, "p1")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestImportUseCase_ImportStatic_InvalidRecordKeepsExistingEntity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")

	_, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10), staticSite("p2", 20)},
	})
	require.NoError(t, err)

	broken := staticSite("p2", 20)
	broken.Purpose = "BOAT"
	report, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10), broken},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.ParkingSites.Failed)
	assert.Equal(t, 0, report.ParkingSites.Deleted)
	assert.Equal(t, domain.SourceStatusActive, report.Status)

	site, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, domain.PurposeCar, site.Purpose)
}

// panickingGroupRepository паникует на одном uid группы
type panickingGroupRepository struct {
	repository.GroupRepository
	uid string
}

func (r *panickingGroupRepository) GetOrCreate(ctx context.Context, sourceID int64, originalUID string) (*domain.ParkingSiteGroup, error) {
	if originalUID == r.uid {
		panic("group storage corrupted")
	}
	return r.GroupRepository.GetOrCreate(ctx, sourceID, originalUID)
}

func TestImportUseCase_ImportStatic_PanicInRecordDoesNotAbort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")

	importUC := usecase.NewImportUseCase(
		env.sources, env.sites, env.spots, env.siteHistory, env.spotHistory,
		&panickingGroupRepository{GroupRepository: env.groups, uid: "boom"},
		env.tracker, &config.ImportConfig{HistoryEnabled: true}, zap.NewNop(),
	)

	_, err := importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10)},
	})
	require.NoError(t, err)

	grouped := staticSite("p1", 15)
	grouped.GroupUID = strPtr("boom")
	report, err := importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{grouped, staticSite("p2", 20)},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.ParkingSites.Failed)
	assert.Equal(t, 1, report.ParkingSites.Created)
	assert.Equal(t, 0, report.ParkingSites.Deleted)
	assert.Equal(t, domain.SourceStatusActive, report.Status)

	// запись с паникой не удаляется и не меняется
	p1, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, *p1.Capacities.Total)

	_, err = env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p2")
	require.NoError(t, err)
}

func TestImportUseCase_ImportStatic_ZeroSuccessesFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")

	report, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSiteErrors: []domain.ImportError{{SourceUID: "stuttgart", OriginalUID: "p1", Message: "broken"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusFailed, report.Status)
	assert.Equal(t, domain.SourceStatusFailed, source.StaticStatus)
	assert.Nil(t, source.StaticDataUpdatedAt)

	// FAILED -> ACTIVE на следующем успешном прогоне
	report, err = env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 10)},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusActive, report.Status)
}

func TestImportUseCase_ImportStatic_HistoryOnlyOnChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")
	batch := domain.StaticBatch{ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 100)}}

	_, err := env.importUC.ImportStatic(ctx, source, batch)
	require.NoError(t, err)
	site, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p1")
	require.NoError(t, err)

	// повтор без изменений: истории нет, хотя меняется описание
	same := staticSite("p1", 100)
	same.Description = strPtr("renovated")
	report, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{ParkingSites: []domain.StaticParkingSiteInput{same}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.ParkingSites.HistoryWritten)

	report, err = env.importUC.ImportStatic(ctx, source, domain.StaticBatch{ParkingSites: []domain.StaticParkingSiteInput{staticSite("p1", 120)}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParkingSites.HistoryWritten)

	history, err := env.siteHistory.ListByEntity(ctx, site.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 120, *history[0].Capacities.Total)
	assert.Equal(t, 100, *history[1].Capacities.Total)
	assert.Equal(t, site.ID, history[0].ParkingSiteID)
}

func TestImportUseCase_ImportStatic_ChildrenReusedByPosition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")

	input := staticSite("p1", 10)
	input.Tags = []string{"covered", "staffed", "lit"}
	input.ExternalIdentifiers = []domain.ExternalIdentifierInput{{Type: domain.ExternalIdentifierTypeOSM, Value: "way/1"}}
	_, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{ParkingSites: []domain.StaticParkingSiteInput{input}})
	require.NoError(t, err)

	before, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p1")
	require.NoError(t, err)
	require.Len(t, before.Tags, 3)

	input.Tags = []string{"open-air", "staffed"}
	input.ExternalIdentifiers = []domain.ExternalIdentifierInput{
		{Type: domain.ExternalIdentifierTypeOSM, Value: "way/2"},
		{Type: domain.ExternalIdentifierTypeDHID, Value: "de:08111:6115"},
	}
	_, err = env.importUC.ImportStatic(ctx, source, domain.StaticBatch{ParkingSites: []domain.StaticParkingSiteInput{input}})
	require.NoError(t, err)

	after, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p1")
	require.NoError(t, err)

	require.Len(t, after.Tags, 2)
	assert.Equal(t, before.Tags[0].ID, after.Tags[0].ID)
	assert.Equal(t, before.Tags[1].ID, after.Tags[1].ID)
	assert.Equal(t, "open-air", after.Tags[0].Value)

	require.Len(t, after.ExternalIdentifiers, 2)
	assert.Equal(t, before.ExternalIdentifiers[0].ID, after.ExternalIdentifiers[0].ID)
	assert.Equal(t, "way/2", after.ExternalIdentifiers[0].Value)
	assert.NotZero(t, after.ExternalIdentifiers[1].ID)
	assert.NotEqual(t, after.ExternalIdentifiers[0].ID, after.ExternalIdentifiers[1].ID)
}

func TestImportUseCase_ImportStatic_GroupsAndSpots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")

	p1 := staticSite("p1", 10)
	p1.GroupUID = strPtr("messe")
	p2 := staticSite("p2", 10)
	p2.GroupUID = strPtr("messe")

	report, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSites: []domain.StaticParkingSiteInput{p1, p2},
		ParkingSpots: []domain.StaticParkingSpotInput{
			staticSpot("s1", strPtr("p1")),
			staticSpot("s2", strPtr("unknown")),
			staticSpot("s3", nil),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, report.ParkingSpots.Created)
	assert.Equal(t, 0, report.ParkingSpots.Failed)
	// статус места не меняется статическим импортом
	assert.Equal(t, 0, report.ParkingSpots.HistoryWritten)

	site1, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p1")
	require.NoError(t, err)
	site2, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p2")
	require.NoError(t, err)
	require.NotNil(t, site1.ParkingSiteGroupID)
	assert.Equal(t, site1.ParkingSiteGroupID, site2.ParkingSiteGroupID)

	s1, err := env.spots.FetchBySourceAndOriginalUID(ctx, source.ID, "s1")
	require.NoError(t, err)
	require.NotNil(t, s1.ParkingSiteID)
	assert.Equal(t, site1.ID, *s1.ParkingSiteID)
	assert.Equal(t, domain.ParkingSpotStatusUnknown, s1.RealtimeStatus)

	s2, err := env.spots.FetchBySourceAndOriginalUID(ctx, source.ID, "s2")
	require.NoError(t, err)
	assert.Nil(t, s2.ParkingSiteID)
}

func activeSource(t *testing.T, env *testEnv, sites ...domain.StaticParkingSiteInput) *domain.Source {
	t.Helper()
	source := env.createSource(t, "stuttgart")
	_, err := env.importUC.ImportStatic(context.Background(), source, domain.StaticBatch{ParkingSites: sites})
	require.NoError(t, err)
	require.Equal(t, domain.SourceStatusActive, source.StaticStatus)
	return source
}

func TestImportUseCase_ImportRealtime_ClampsFreeCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := activeSource(t, env, staticSite("p1", 10), staticSite("p2", 10))

	open := domain.OpeningStatusOpen
	report, err := env.importUC.ImportRealtime(ctx, source, domain.RealtimeBatch{
		ParkingSites: []domain.RealtimeParkingSiteInput{
			// нет realtime_capacity: потолок - статическая емкость 10
			{UID: "p1", RealtimeDataUpdatedAt: updatedAt, RealtimeOpeningStatus: &open, RealtimeFreeCapacity: intPtr(50)},
			// realtime_capacity задана: потолок 8
			{UID: "p2", RealtimeDataUpdatedAt: updatedAt, RealtimeCapacity: intPtr(8), RealtimeFreeCapacity: intPtr(9)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceStatusActive, report.Status)
	assert.Equal(t, 2, report.ParkingSites.Updated)
	assert.Equal(t, 2, report.ParkingSites.Clamped)

	p1, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, *p1.RealtimeFreeCapacities.Total)
	assert.Equal(t, domain.OpeningStatusOpen, p1.RealtimeOpeningStatus)
	require.NotNil(t, p1.RealtimeDataUpdatedAt)
	assert.True(t, updatedAt.Equal(*p1.RealtimeDataUpdatedAt))

	p2, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, 8, *p2.RealtimeFreeCapacities.Total)
	assert.Equal(t, domain.OpeningStatusUnknown, p2.RealtimeOpeningStatus)
}

func TestImportUseCase_ImportRealtime_UnknownUIDNeverCreates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := activeSource(t, env, staticSite("p1", 10))

	report, err := env.importUC.ImportRealtime(ctx, source, domain.RealtimeBatch{
		ParkingSites: []domain.RealtimeParkingSiteInput{
			{UID: "ghost", RealtimeDataUpdatedAt: updatedAt, RealtimeFreeCapacity: intPtr(1)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.ParkingSites.NotFound)
	assert.Equal(t, domain.SourceStatusFailed, report.Status)
	assert.Equal(t, 1, source.RealtimeParkingSiteErrorCount)

	_, err = env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "ghost")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestImportUseCase_ImportRealtime_HistoryOnChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := activeSource(t, env, staticSite("p1", 10))
	site, err := env.sites.FetchBySourceAndOriginalUID(ctx, source.ID, "p1")
	require.NoError(t, err)

	record := domain.RealtimeParkingSiteInput{UID: "p1", RealtimeDataUpdatedAt: updatedAt, RealtimeFreeCapacity: intPtr(4)}

	report, err := env.importUC.ImportRealtime(ctx, source, domain.RealtimeBatch{ParkingSites: []domain.RealtimeParkingSiteInput{record}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParkingSites.HistoryWritten)

	// только временная метка изменилась
	record.RealtimeDataUpdatedAt = updatedAt.Add(5 * time.Minute)
	report, err = env.importUC.ImportRealtime(ctx, source, domain.RealtimeBatch{ParkingSites: []domain.RealtimeParkingSiteInput{record}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.ParkingSites.HistoryWritten)

	history, err := env.siteHistory.ListByEntity(ctx, site.ID, 0)
	require.NoError(t, err)
	// снимок создания + одно realtime изменение
	assert.Len(t, history, 2)
}

func TestImportUseCase_ImportRealtime_Spots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := env.createSource(t, "stuttgart")
	_, err := env.importUC.ImportStatic(ctx, source, domain.StaticBatch{
		ParkingSpots: []domain.StaticParkingSpotInput{staticSpot("s1", nil)},
	})
	require.NoError(t, err)

	report, err := env.importUC.ImportRealtime(ctx, source, domain.RealtimeBatch{
		ParkingSpots: []domain.RealtimeParkingSpotInput{
			{UID: "s1", RealtimeStatus: domain.ParkingSpotStatusTaken, RealtimeDataUpdatedAt: updatedAt},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ParkingSpots.Updated)
	assert.Equal(t, 1, report.ParkingSpots.HistoryWritten)

	spot, err := env.spots.FetchBySourceAndOriginalUID(ctx, source.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.ParkingSpotStatusTaken, spot.RealtimeStatus)

	history, err := env.spotHistory.ListByEntity(ctx, spot.ID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ParkingSpotStatusTaken, history[0].RealtimeStatus)
}

func TestImportUseCase_ImportRealtime_Skipped(t *testing.T) {
	batch := domain.RealtimeBatch{
		ParkingSites: []domain.RealtimeParkingSiteInput{{UID: "p1", RealtimeDataUpdatedAt: updatedAt, RealtimeFreeCapacity: intPtr(1)}},
	}

	t.Run("static not active", func(t *testing.T) {
		env := newTestEnv(t)
		source := env.createSource(t, "stuttgart")

		report, err := env.importUC.ImportRealtime(context.Background(), source, batch)
		require.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Equal(t, domain.SourceStatusProvisioned, source.RealtimeStatus)
	})

	t.Run("realtime disabled", func(t *testing.T) {
		env := newTestEnv(t)
		source := activeSource(t, env, staticSite("p1", 10))
		env.tracker.SyncRealtimeCapability(source, false)

		report, err := env.importUC.ImportRealtime(context.Background(), source, batch)
		require.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Equal(t, domain.SourceStatusDisabled, report.Status)

		site, err := env.sites.FetchBySourceAndOriginalUID(context.Background(), source.ID, "p1")
		require.NoError(t, err)
		assert.Nil(t, site.RealtimeFreeCapacities.Total)
	})
}

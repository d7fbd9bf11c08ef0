package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/repository/memory"
	"github.com/parking-aggregator/internal/usecase"
)

// MockStreamRepository - мок для StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) (string, error) {
	args := m.Called(ctx, stream, data)
	return args.String(0), args.Error(1)
}

// MockCacheRepository - мок для CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetImportReport(ctx context.Context, sourceUID string, kind domain.ImportKind) (*domain.ImportDoneEvent, error) {
	args := m.Called(ctx, sourceUID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportDoneEvent), args.Error(1)
}

func (m *MockCacheRepository) SetImportReport(ctx context.Context, event *domain.ImportDoneEvent, ttl time.Duration) error {
	args := m.Called(ctx, event, ttl)
	return args.Error(0)
}

// testEnv - пайплайн поверх in-memory хранилища
type testEnv struct {
	sources     repository.SourceRepository
	sites       repository.ParkingSiteRepository
	spots       repository.ParkingSpotRepository
	siteHistory repository.ParkingSiteHistoryRepository
	spotHistory repository.ParkingSpotHistoryRepository
	groups      repository.GroupRepository
	tracker     *usecase.StatusTracker
	importUC    *usecase.ImportUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		sources:     memory.NewSourceRepository(),
		sites:       memory.NewParkingSiteRepository(),
		spots:       memory.NewParkingSpotRepository(),
		siteHistory: memory.NewParkingSiteHistoryRepository(),
		spotHistory: memory.NewParkingSpotHistoryRepository(),
		groups:      memory.NewGroupRepository(),
		tracker:     usecase.NewStatusTracker(),
	}
	env.importUC = usecase.NewImportUseCase(
		env.sources, env.sites, env.spots, env.siteHistory, env.spotHistory, env.groups,
		env.tracker, &config.ImportConfig{HistoryEnabled: true}, zap.NewNop(),
	)
	return env
}

func (env *testEnv) createSource(t *testing.T, uid string) *domain.Source {
	t.Helper()
	source := domain.NewSource(domain.SourceInfo{UID: uid, Name: "Source " + uid})
	require.NoError(t, env.sources.Create(context.Background(), source))
	return source
}

// createSite сохраняет объект напрямую, минуя импорт
func (env *testEnv) createSite(t *testing.T, sourceID int64, uid string, lat, lon string, purpose domain.Purpose) *domain.ParkingSite {
	t.Helper()
	site := &domain.ParkingSite{
		SourceID:              sourceID,
		OriginalUID:           uid,
		Name:                  "Site " + uid,
		Type:                  domain.ParkingSiteTypeCarPark,
		Purpose:               purpose,
		Lat:                   decimal.RequireFromString(lat),
		Lon:                   decimal.RequireFromString(lon),
		RealtimeOpeningStatus: domain.OpeningStatusUnknown,
		Capacities:            domain.Capacities{Total: intPtr(100)},
	}
	require.NoError(t, env.sites.Save(context.Background(), site))
	return site
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

var updatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func staticSite(uid string, capacity int) domain.StaticParkingSiteInput {
	return domain.StaticParkingSiteInput{
		UID:                 uid,
		Name:                "Site " + uid,
		Type:                domain.ParkingSiteTypeCarPark,
		Purpose:             domain.PurposeCar,
		Lat:                 decimal.RequireFromString("48.7758000"),
		Lon:                 decimal.RequireFromString("9.1829000"),
		HasRealtimeData:     true,
		StaticDataUpdatedAt: updatedAt,
		Capacity:            intPtr(capacity),
	}
}

func staticSpot(uid string, siteUID *string) domain.StaticParkingSpotInput {
	return domain.StaticParkingSpotInput{
		UID:                 uid,
		ParkingSiteUID:      siteUID,
		Purpose:             domain.PurposeCar,
		Lat:                 decimal.RequireFromString("48.7758100"),
		Lon:                 decimal.RequireFromString("9.1829100"),
		HasRealtimeData:     true,
		StaticDataUpdatedAt: updatedAt,
	}
}

package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/converter"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/infrastructure/feed"
	"github.com/parking-aggregator/internal/repository/cache"
	"github.com/parking-aggregator/internal/repository/memory"
	"github.com/parking-aggregator/internal/repository/postgres"
	redisRepo "github.com/parking-aggregator/internal/repository/redis"
	"github.com/parking-aggregator/internal/usecase"
)

type (
	SiteDuplicateUseCase = usecase.DuplicateUseCase[domain.ParkingSite, *domain.ParkingSite]
	SpotDuplicateUseCase = usecase.DuplicateUseCase[domain.ParkingSpot, *domain.ParkingSpot]
)

// App - общий для api и worker набор зависимостей
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *converter.Registry

	SourceUC        *usecase.SourceUseCase
	SiteDuplicateUC *SiteDuplicateUseCase
	SpotDuplicateUC *SpotDuplicateUseCase

	// StreamRepo равен nil, если Redis не настроен
	StreamRepo repository.StreamRepository

	closers []func() error
}

type repositories struct {
	sources     repository.SourceRepository
	sites       repository.ParkingSiteRepository
	spots       repository.ParkingSpotRepository
	siteHistory repository.ParkingSiteHistoryRepository
	spotHistory repository.ParkingSpotHistoryRepository
	groups      repository.GroupRepository
}

// New подключает хранилища, загружает источники и собирает use cases
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	repos, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		lockRepo  repository.LockRepository
		cacheRepo repository.CacheRepository
	)
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedis(ctx, &cfg.Redis, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, redisClient.Close)

		if err := healthCheck(ctx, redisClient.Health); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis health check failed: %w", err)
		}

		lockRepo = cache.NewLockRepository(redisClient)
		cacheRepo = cache.NewCacheRepository(redisClient)
		a.StreamRepo = redisRepo.NewStreamRepository(redisClient.Client(), logger, cfg.Worker.StreamReadTimeout)
	} else {
		// блокировки действуют только внутри процесса
		lockRepo = memory.NewLockRepository()
		logger.Warn("Redis is not configured, using in-process locks without event streams")
	}

	sources, err := converter.LoadSourcesFile(cfg.Import.SourcesFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Registry, err = converter.NewRegistryFromConfig(sources, feed.NewClient(&cfg.Converter, logger), logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("Sources loaded",
		zap.String("file", cfg.Import.SourcesFile),
		zap.Int("count", a.Registry.Len()))

	tracker := usecase.NewStatusTracker()
	importUC := usecase.NewImportUseCase(
		repos.sources, repos.sites, repos.spots, repos.siteHistory, repos.spotHistory, repos.groups,
		tracker, &cfg.Import, logger,
	)

	a.SourceUC = usecase.NewSourceUseCase(
		a.Registry, repos.sources, importUC, tracker, lockRepo, a.StreamRepo, cacheRepo, &cfg.Import, logger,
	)
	a.SiteDuplicateUC = usecase.NewDuplicateUseCase[domain.ParkingSite](repos.sites, repos.sources, &cfg.Matching, logger)
	a.SpotDuplicateUC = usecase.NewDuplicateUseCase[domain.ParkingSpot](repos.spots, repos.sources, &cfg.Matching, logger)

	if err := a.SourceUC.EnsureSources(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register sources: %w", err)
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (*repositories, error) {
	switch a.Config.Store.Driver {
	case config.StoreDriverMemory:
		a.Logger.Warn("Using in-memory store, data is lost on restart")
		return &repositories{
			sources:     memory.NewSourceRepository(),
			sites:       memory.NewParkingSiteRepository(),
			spots:       memory.NewParkingSpotRepository(),
			siteHistory: memory.NewParkingSiteHistoryRepository(),
			spotHistory: memory.NewParkingSpotHistoryRepository(),
			groups:      memory.NewGroupRepository(),
		}, nil

	case config.StoreDriverPostgres:
		db, err := postgres.New(&a.Config.Database, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if err := healthCheck(ctx, db.Health); err != nil {
			return nil, fmt.Errorf("postgres health check failed: %w", err)
		}
		a.Logger.Info("PostgreSQL connected")

		return &repositories{
			sources:     postgres.NewSourceRepository(db),
			sites:       postgres.NewParkingSiteRepository(db),
			spots:       postgres.NewParkingSpotRepository(db),
			siteHistory: postgres.NewParkingSiteHistoryRepository(db),
			spotHistory: postgres.NewParkingSpotHistoryRepository(db),
			groups:      postgres.NewGroupRepository(db),
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", a.Config.Store.Driver)
}

func healthCheck(ctx context.Context, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return check(ctx)
}

// Close закрывает соединения в обратном порядке
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Error("Failed to close connection", zap.Error(err))
		}
	}
	a.closers = nil
}

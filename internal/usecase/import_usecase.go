package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/pkg/validator"
)

// historyEntry - снимок истории, умеющий сравнивать себя с предыдущим
type historyEntry[H any] interface {
	Differs(H) bool
}

// entityKind описывает вид сущности для обобщенного импорта
type entityKind[E any, H historyEntry[H]] struct {
	name        string
	repo        repository.EntityRepository[E]
	history     repository.HistoryRepository[H]
	id          func(*E) int64
	originalUID func(*E) string
	newEntity   func(sourceID int64, originalUID string) *E
	snapshot    func(*E) H
}

// ImportUseCase - конвейер сверки данных источника с хранилищем
type ImportUseCase struct {
	sourceRepo     repository.SourceRepository
	siteRepo       repository.ParkingSiteRepository
	groupRepo      repository.GroupRepository
	tracker        *StatusTracker
	historyEnabled bool
	logger         *zap.Logger

	sites entityKind[domain.ParkingSite, domain.ParkingSiteHistory]
	spots entityKind[domain.ParkingSpot, domain.ParkingSpotHistory]
}

func NewImportUseCase(
	sourceRepo repository.SourceRepository,
	siteRepo repository.ParkingSiteRepository,
	spotRepo repository.ParkingSpotRepository,
	siteHistoryRepo repository.ParkingSiteHistoryRepository,
	spotHistoryRepo repository.ParkingSpotHistoryRepository,
	groupRepo repository.GroupRepository,
	tracker *StatusTracker,
	cfg *config.ImportConfig,
	logger *zap.Logger,
) *ImportUseCase {
	return &ImportUseCase{
		sourceRepo:     sourceRepo,
		siteRepo:       siteRepo,
		groupRepo:      groupRepo,
		tracker:        tracker,
		historyEnabled: cfg.HistoryEnabled,
		logger:         logger,
		sites: entityKind[domain.ParkingSite, domain.ParkingSiteHistory]{
			name:        "parking_site",
			repo:        siteRepo,
			history:     siteHistoryRepo,
			id:          func(s *domain.ParkingSite) int64 { return s.ID },
			originalUID: func(s *domain.ParkingSite) string { return s.OriginalUID },
			newEntity: func(sourceID int64, originalUID string) *domain.ParkingSite {
				return &domain.ParkingSite{
					SourceID:              sourceID,
					OriginalUID:           originalUID,
					RealtimeOpeningStatus: domain.OpeningStatusUnknown,
				}
			},
			snapshot: (*domain.ParkingSite).ChangeSnapshot,
		},
		spots: entityKind[domain.ParkingSpot, domain.ParkingSpotHistory]{
			name:        "parking_spot",
			repo:        spotRepo,
			history:     spotHistoryRepo,
			id:          func(s *domain.ParkingSpot) int64 { return s.ID },
			originalUID: func(s *domain.ParkingSpot) string { return s.OriginalUID },
			newEntity: func(sourceID int64, originalUID string) *domain.ParkingSpot {
				return &domain.ParkingSpot{
					SourceID:       sourceID,
					OriginalUID:    originalUID,
					RealtimeStatus: domain.ParkingSpotStatusUnknown,
				}
			},
			snapshot: (*domain.ParkingSpot).ChangeSnapshot,
		},
	}
}

// ImportStatic сверяет статические данные источника: создает, обновляет и удаляет
// отсутствующие в выгрузке сущности. Объекты импортируются раньше мест,
// чтобы места могли сослаться на них.
func (uc *ImportUseCase) ImportStatic(ctx context.Context, source *domain.Source, batch domain.StaticBatch) (domain.ImportReport, error) {
	logger := uc.logger.With(zap.String("source_uid", source.UID), zap.String("kind", string(domain.ImportKindStatic)))

	sites, err := importStatic(ctx, uc, uc.sites, source, batch.ParkingSites, batch.ParkingSiteErrors,
		func(in domain.StaticParkingSiteInput) string { return in.UID },
		uc.applyStaticSite, logger)
	if err != nil {
		return domain.ImportReport{}, err
	}

	spots, err := importStatic(ctx, uc, uc.spots, source, batch.ParkingSpots, batch.ParkingSpotErrors,
		func(in domain.StaticParkingSpotInput) string { return in.UID },
		uc.applyStaticSpot, logger)
	if err != nil {
		return domain.ImportReport{}, err
	}

	status := uc.tracker.ApplyStatic(source, sites, spots)
	if err := uc.sourceRepo.Update(ctx, source); err != nil {
		return domain.ImportReport{}, fmt.Errorf("update source status: %w", err)
	}

	logger.Info("Static import finished",
		zap.String("status", string(status)),
		zap.Any("parking_sites", sites),
		zap.Any("parking_spots", spots))

	return domain.ImportReport{
		Kind:         domain.ImportKindStatic,
		Status:       status,
		ParkingSites: sites,
		ParkingSpots: spots,
	}, nil
}

// ImportRealtime перезаписывает realtime поля существующих сущностей.
// Без ACTIVE статического статуса или при DISABLED realtime ничего не делает.
func (uc *ImportUseCase) ImportRealtime(ctx context.Context, source *domain.Source, batch domain.RealtimeBatch) (domain.ImportReport, error) {
	logger := uc.logger.With(zap.String("source_uid", source.UID), zap.String("kind", string(domain.ImportKindRealtime)))

	if !uc.tracker.CanImportRealtime(source) {
		logger.Info("Realtime import skipped",
			zap.String("static_status", string(source.StaticStatus)),
			zap.String("realtime_status", string(source.RealtimeStatus)))
		return domain.ImportReport{
			Kind:    domain.ImportKindRealtime,
			Status:  source.RealtimeStatus,
			Skipped: true,
		}, nil
	}

	sites := importRealtime(ctx, uc, uc.sites, source, batch.ParkingSites, batch.ParkingSiteErrors,
		func(in domain.RealtimeParkingSiteInput) string { return in.UID },
		uc.applyRealtimeSite, logger)

	spots := importRealtime(ctx, uc, uc.spots, source, batch.ParkingSpots, batch.ParkingSpotErrors,
		func(in domain.RealtimeParkingSpotInput) string { return in.UID },
		applyRealtimeSpot, logger)

	status := uc.tracker.ApplyRealtime(source, sites, spots)
	if err := uc.sourceRepo.Update(ctx, source); err != nil {
		return domain.ImportReport{}, fmt.Errorf("update source status: %w", err)
	}

	logger.Info("Realtime import finished",
		zap.String("status", string(status)),
		zap.Any("parking_sites", sites),
		zap.Any("parking_spots", spots))

	return domain.ImportReport{
		Kind:         domain.ImportKindRealtime,
		Status:       status,
		ParkingSites: sites,
		ParkingSpots: spots,
	}, nil
}

func importStatic[E any, S any, H historyEntry[H]](
	ctx context.Context,
	uc *ImportUseCase,
	kind entityKind[E, H],
	source *domain.Source,
	records []S,
	converterErrors []domain.ImportError,
	uid func(S) string,
	apply func(context.Context, *domain.Source, *E, S) error,
	logger *zap.Logger,
) (domain.ImportResult, error) {
	result := domain.ImportResult{ConverterErrors: len(converterErrors)}
	logger = logger.With(zap.String("entity", kind.name))

	ids, err := kind.repo.FetchIDsBySource(ctx, source.ID)
	if err != nil {
		return result, fmt.Errorf("fetch %s ids: %w", kind.name, err)
	}
	existing := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}

	for _, record := range records {
		originalUID := uid(record)

		err := guard(func() error {
			entity, err := kind.repo.FetchBySourceAndOriginalUID(ctx, source.ID, originalUID)
			created := false
			switch {
			case errors.Is(err, errors.ErrNotFound):
				entity = kind.newEntity(source.ID, originalUID)
				created = true
			case err != nil:
				return err
			default:
				delete(existing, kind.id(entity))
			}

			if err := validator.Validate(record); err != nil {
				return err
			}

			prior := kind.snapshot(entity)
			if err := apply(ctx, source, entity, record); err != nil {
				return err
			}
			if err := kind.repo.Save(ctx, entity); err != nil {
				return err
			}

			if created {
				result.Created++
			} else {
				result.Updated++
			}

			if writeHistory(ctx, uc, kind, prior, entity, logger) {
				result.HistoryWritten++
			}
			return nil
		})
		if err != nil {
			result.Failed++
			logger.Warn("Failed to import static record",
				zap.String("original_uid", originalUID),
				zap.Error(err))
		}
	}

	result.Deleted = deleteAbsent(ctx, kind, existing, converterErrors, logger)

	return result, nil
}

// deleteAbsent удаляет сущности, которых нет в новой выгрузке. Записи из списка
// ошибок конвертера считаются присутствующими.
func deleteAbsent[E any, H historyEntry[H]](
	ctx context.Context,
	kind entityKind[E, H],
	existing map[int64]struct{},
	converterErrors []domain.ImportError,
	logger *zap.Logger,
) int {
	if len(existing) == 0 {
		return 0
	}

	erroneous := make(map[string]struct{}, len(converterErrors))
	for _, e := range converterErrors {
		if e.OriginalUID != "" {
			erroneous[e.OriginalUID] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(existing))
	for id := range existing {
		ids = append(ids, id)
	}

	entities, err := kind.repo.FetchByIDs(ctx, ids)
	if err != nil {
		logger.Error("Failed to fetch absent entities", zap.Int("count", len(ids)), zap.Error(err))
		return 0
	}

	deleted := 0
	for _, entity := range entities {
		if _, ok := erroneous[kind.originalUID(entity)]; ok {
			continue
		}
		if err := kind.repo.Delete(ctx, kind.id(entity)); err != nil {
			logger.Warn("Failed to delete absent entity",
				zap.Int64("id", kind.id(entity)),
				zap.String("original_uid", kind.originalUID(entity)),
				zap.Error(err))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		logger.Info("Deleted entities absent from import", zap.Int("count", deleted))
	}
	return deleted
}

func importRealtime[E any, R any, H historyEntry[H]](
	ctx context.Context,
	uc *ImportUseCase,
	kind entityKind[E, H],
	source *domain.Source,
	records []R,
	converterErrors []domain.ImportError,
	uid func(R) string,
	apply func(*E, R, *zap.Logger) bool,
	logger *zap.Logger,
) domain.ImportResult {
	result := domain.ImportResult{ConverterErrors: len(converterErrors)}
	logger = logger.With(zap.String("entity", kind.name))

	for _, record := range records {
		originalUID := uid(record)
		recordLogger := logger.With(zap.String("original_uid", originalUID))

		err := guard(func() error {
			if err := validator.Validate(record); err != nil {
				return err
			}

			entity, err := kind.repo.FetchBySourceAndOriginalUID(ctx, source.ID, originalUID)
			if err != nil {
				return err
			}

			prior := kind.snapshot(entity)
			if apply(entity, record, recordLogger) {
				result.Clamped++
			}
			if err := kind.repo.Save(ctx, entity); err != nil {
				return err
			}
			result.Updated++

			if writeHistory(ctx, uc, kind, prior, entity, recordLogger) {
				result.HistoryWritten++
			}
			return nil
		})
		switch {
		case err == nil:
		case errors.Is(err, errors.ErrNotFound):
			result.NotFound++
			recordLogger.Warn("Realtime record for unknown entity")
		default:
			result.Failed++
			recordLogger.Warn("Failed to import realtime record", zap.Error(err))
		}
	}

	return result
}

// writeHistory пишет снимок, только если отслеживаемые значения изменились
func writeHistory[E any, H historyEntry[H]](
	ctx context.Context,
	uc *ImportUseCase,
	kind entityKind[E, H],
	prior H,
	entity *E,
	logger *zap.Logger,
) bool {
	if !uc.historyEnabled {
		return false
	}

	after := kind.snapshot(entity)
	if !after.Differs(prior) {
		return false
	}
	if err := kind.history.Create(ctx, &after); err != nil {
		logger.Warn("Failed to write history", zap.Error(err))
		return false
	}
	return true
}

// guard превращает панику обработки записи в ошибку
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

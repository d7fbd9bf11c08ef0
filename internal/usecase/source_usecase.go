package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/converter"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/usecase/dto"
)

const importReportTTL = 7 * 24 * time.Hour

// SourceUseCase - точка входа планировщика: регистрирует источники и запускает
// их импорт. Цикл одного источника сериализуется распределенной блокировкой.
type SourceUseCase struct {
	registry   *converter.Registry
	sourceRepo repository.SourceRepository
	importUC   *ImportUseCase
	tracker    *StatusTracker
	lockRepo   repository.LockRepository
	streamRepo repository.StreamRepository // может быть nil
	cacheRepo  repository.CacheRepository  // может быть nil
	lockTTL    time.Duration
	logger     *zap.Logger
}

func NewSourceUseCase(
	registry *converter.Registry,
	sourceRepo repository.SourceRepository,
	importUC *ImportUseCase,
	tracker *StatusTracker,
	lockRepo repository.LockRepository,
	streamRepo repository.StreamRepository,
	cacheRepo repository.CacheRepository,
	cfg *config.ImportConfig,
	logger *zap.Logger,
) *SourceUseCase {
	return &SourceUseCase{
		registry:   registry,
		sourceRepo: sourceRepo,
		importUC:   importUC,
		tracker:    tracker,
		lockRepo:   lockRepo,
		streamRepo: streamRepo,
		cacheRepo:  cacheRepo,
		lockTTL:    cfg.LockTTL,
		logger:     logger,
	}
}

// EnsureSources создает или обновляет источники для всех зарегистрированных конвертеров
func (uc *SourceUseCase) EnsureSources(ctx context.Context) error {
	for _, c := range uc.registry.All() {
		if _, err := uc.ensureSource(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (uc *SourceUseCase) ensureSource(ctx context.Context, c converter.Converter) (*domain.Source, error) {
	info := c.SourceInfo()

	source, err := uc.sourceRepo.GetByUID(ctx, info.UID)
	if errors.Is(err, errors.ErrSourceNotFound) {
		source = domain.NewSource(info)
		uc.tracker.SyncRealtimeCapability(source, converter.SupportsRealtime(c))
		if err := uc.sourceRepo.Create(ctx, source); err != nil {
			return nil, fmt.Errorf("create source %s: %w", info.UID, err)
		}
		uc.logger.Info("Source registered",
			zap.String("source_uid", source.UID),
			zap.String("realtime_status", string(source.RealtimeStatus)))
		return source, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", info.UID, err)
	}

	source.ApplyInfo(info)
	uc.tracker.SyncRealtimeCapability(source, converter.SupportsRealtime(c))
	if err := uc.sourceRepo.Update(ctx, source); err != nil {
		return nil, fmt.Errorf("update source %s: %w", info.UID, err)
	}
	return source, nil
}

// RunStatic выполняет статический импорт источника
func (uc *SourceUseCase) RunStatic(ctx context.Context, uid string) (*domain.ImportDoneEvent, error) {
	return uc.run(ctx, uid, domain.ImportKindStatic)
}

// RunRealtime выполняет realtime импорт источника
func (uc *SourceUseCase) RunRealtime(ctx context.Context, uid string) (*domain.ImportDoneEvent, error) {
	return uc.run(ctx, uid, domain.ImportKindRealtime)
}

// Run выполняет импорт указанного вида
func (uc *SourceUseCase) Run(ctx context.Context, uid string, kind domain.ImportKind) (*domain.ImportDoneEvent, error) {
	switch kind {
	case domain.ImportKindStatic, domain.ImportKindRealtime:
		return uc.run(ctx, uid, kind)
	}
	return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"kind": kind})
}

func (uc *SourceUseCase) run(ctx context.Context, uid string, kind domain.ImportKind) (*domain.ImportDoneEvent, error) {
	c, ok := uc.registry.Get(uid)
	if !ok {
		return nil, errors.ErrConverterNotFound.WithDetails(map[string]interface{}{"source_uid": uid})
	}

	lockKey := "lock:import:" + uid
	token, acquired, err := uc.lockRepo.Acquire(ctx, lockKey, uc.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !acquired {
		return nil, errors.ErrImportLocked.WithDetails(map[string]interface{}{"source_uid": uid})
	}
	defer func() {
		if err := uc.lockRepo.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			uc.logger.Warn("Failed to release import lock", zap.String("source_uid", uid), zap.Error(err))
		}
	}()

	// источник перечитывается под блокировкой: realtime зависит от только что записанного static статуса
	source, err := uc.ensureSource(ctx, c)
	if err != nil {
		return nil, err
	}

	event := &domain.ImportDoneEvent{
		RunID:     uuid.New(),
		SourceUID: uid,
	}
	logger := uc.logger.With(
		zap.String("source_uid", uid),
		zap.String("kind", string(kind)),
		zap.String("run_id", event.RunID.String()))
	logger.Info("Import started")

	start := time.Now()
	var report domain.ImportReport
	if kind == domain.ImportKindStatic {
		report, err = uc.runStatic(ctx, c, source, logger)
	} else {
		report, err = uc.runRealtime(ctx, c, source, logger)
	}
	if err != nil {
		var converterErr *converterFailure
		if !stderrors.As(err, &converterErr) {
			logger.Error("Import failed", zap.Error(err))
			return nil, err
		}
		event.Error = converterErr.Error()
	}

	event.Report = report
	event.FinishedAt = time.Now().UTC()

	logger.Info("Import completed",
		zap.String("status", string(report.Status)),
		zap.Bool("skipped", report.Skipped),
		zap.Duration("duration", time.Since(start)))

	uc.publish(ctx, event, logger)
	return event, nil
}

// converterFailure - отказ конвертера; статус уже переведен в FAILED
type converterFailure struct {
	err error
}

func (e *converterFailure) Error() string { return e.err.Error() }
func (e *converterFailure) Unwrap() error { return e.err }

func (uc *SourceUseCase) runStatic(ctx context.Context, c converter.Converter, source *domain.Source, logger *zap.Logger) (domain.ImportReport, error) {
	batch, err := converter.FetchStatic(ctx, c)
	if err != nil {
		return uc.failConverter(ctx, source, domain.ImportKindStatic, err, logger)
	}
	return uc.importUC.ImportStatic(ctx, source, batch)
}

func (uc *SourceUseCase) runRealtime(ctx context.Context, c converter.Converter, source *domain.Source, logger *zap.Logger) (domain.ImportReport, error) {
	// конвертер не вызывается, если результат все равно будет отброшен
	if !uc.tracker.CanImportRealtime(source) {
		return uc.importUC.ImportRealtime(ctx, source, domain.RealtimeBatch{})
	}

	batch, err := converter.FetchRealtime(ctx, c)
	if err != nil {
		return uc.failConverter(ctx, source, domain.ImportKindRealtime, err, logger)
	}
	return uc.importUC.ImportRealtime(ctx, source, batch)
}

func (uc *SourceUseCase) failConverter(ctx context.Context, source *domain.Source, kind domain.ImportKind, cause error, logger *zap.Logger) (domain.ImportReport, error) {
	logger.Error("Converter failed", zap.Error(cause))

	uc.tracker.ConverterFailed(source, kind)
	if err := uc.sourceRepo.Update(ctx, source); err != nil {
		return domain.ImportReport{}, fmt.Errorf("update source status: %w", err)
	}

	status := source.StaticStatus
	if kind == domain.ImportKindRealtime {
		status = source.RealtimeStatus
	}
	return domain.ImportReport{Kind: kind, Status: status}, &converterFailure{err: cause}
}

// publish отправляет событие завершения и кеширует отчет. Ошибки только логируются.
func (uc *SourceUseCase) publish(ctx context.Context, event *domain.ImportDoneEvent, logger *zap.Logger) {
	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetImportReport(ctx, event, importReportTTL); err != nil {
			logger.Warn("Failed to cache import report", zap.Error(err))
		}
	}

	if uc.streamRepo != nil {
		if _, err := uc.streamRepo.PublishToStream(ctx, domain.StreamImportDone, event); err != nil {
			logger.Warn("Failed to publish import done event", zap.Error(err))
		}
	}
}

// List возвращает все источники
func (uc *SourceUseCase) List(ctx context.Context) ([]dto.SourceResponse, error) {
	sources, err := uc.sourceRepo.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list sources", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SourceResponse, 0, len(sources))
	for _, source := range sources {
		result = append(result, uc.toResponse(ctx, source, false))
	}
	return result, nil
}

// Get возвращает источник с последними отчетами импорта
func (uc *SourceUseCase) Get(ctx context.Context, uid string) (*dto.SourceResponse, error) {
	source, err := uc.sourceRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	resp := uc.toResponse(ctx, source, true)
	return &resp, nil
}

func (uc *SourceUseCase) toResponse(ctx context.Context, source *domain.Source, withReports bool) dto.SourceResponse {
	resp := dto.SourceResponse{Source: source}
	if c, ok := uc.registry.Get(source.UID); ok {
		resp.SupportsRealtime = converter.SupportsRealtime(c)
	}

	if !withReports || uc.cacheRepo == nil {
		return resp
	}

	for _, kind := range []domain.ImportKind{domain.ImportKindStatic, domain.ImportKindRealtime} {
		event, err := uc.cacheRepo.GetImportReport(ctx, source.UID, kind)
		if err != nil {
			uc.logger.Warn("Failed to read cached import report",
				zap.String("source_uid", source.UID),
				zap.String("kind", string(kind)),
				zap.Error(err))
			continue
		}
		if kind == domain.ImportKindStatic {
			resp.LastStaticImport = event
		} else {
			resp.LastRealtimeImport = event
		}
	}
	return resp
}

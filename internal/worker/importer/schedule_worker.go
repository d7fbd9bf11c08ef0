package importer

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/converter"
	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/worker"
)

// ScheduleWorker запускает импорт источников по cron расписанию
type ScheduleWorker struct {
	*worker.BaseWorker
	registry *converter.Registry
	runner   ImportRunner
	defaults converter.Schedule
	cron     *cron.Cron
}

// NewScheduleWorker создает ScheduleWorker. defaults используются для источников без своего расписания.
func NewScheduleWorker(
	registry *converter.Registry,
	runner ImportRunner,
	defaults converter.Schedule,
	logger *zap.Logger,
) *ScheduleWorker {
	cl := newCronLogger(logger)

	return &ScheduleWorker{
		BaseWorker: worker.NewBaseWorker("import-scheduler", "", logger),
		registry:   registry,
		runner:     runner,
		defaults:   defaults,
		// пропуск тика, пока предыдущий запуск того же задания не завершился
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Schedule регистрирует задания для всех источников реестра
func (w *ScheduleWorker) Schedule(ctx context.Context) error {
	for _, c := range w.registry.All() {
		uid := c.SourceInfo().UID
		schedule := w.registry.Schedule(uid)

		if err := w.add(ctx, uid, domain.ImportKindStatic, pick(schedule.Static, w.defaults.Static)); err != nil {
			return err
		}
		if converter.SupportsRealtime(c) {
			if err := w.add(ctx, uid, domain.ImportKindRealtime, pick(schedule.Realtime, w.defaults.Realtime)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *ScheduleWorker) add(ctx context.Context, uid string, kind domain.ImportKind, spec string) error {
	if spec == "" {
		return nil
	}

	_, err := w.cron.AddFunc(spec, func() { w.runJob(ctx, uid, kind) })
	if err != nil {
		return fmt.Errorf("schedule %s import of %s (%q): %w", kind, uid, spec, err)
	}

	w.Logger().Info("Import scheduled",
		zap.String("source_uid", uid),
		zap.String("kind", string(kind)),
		zap.String("schedule", spec))
	return nil
}

func (w *ScheduleWorker) runJob(ctx context.Context, uid string, kind domain.ImportKind) {
	logger := w.Logger().With(zap.String("source_uid", uid), zap.String("kind", string(kind)))

	event, err := w.runner.Run(ctx, uid, kind)
	switch {
	case errors.Is(err, errors.ErrImportLocked):
		logger.Info("Import already running elsewhere, tick skipped")
	case err != nil:
		logger.Error("Scheduled import failed", zap.Error(err))
	default:
		logger.Debug("Scheduled import finished",
			zap.String("run_id", event.RunID.String()),
			zap.String("status", string(event.Report.Status)))
	}
}

// Start регистрирует задания и ждет остановки. Выполняющиеся задания дожидаются завершения.
func (w *ScheduleWorker) Start(ctx context.Context) error {
	logger := w.Logger()

	if err := w.Schedule(ctx); err != nil {
		return err
	}

	logger.Info("Starting ImportScheduleWorker", zap.Int("jobs", len(w.cron.Entries())))
	w.cron.Start()

	var result error
	select {
	case <-w.StopChan():
		logger.Info("Worker stopped")
	case <-ctx.Done():
		logger.Info("Context cancelled")
		result = ctx.Err()
	}

	<-w.cron.Stop().Done()
	return result
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

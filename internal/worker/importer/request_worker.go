package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
	"github.com/parking-aggregator/internal/pkg/validator"
	"github.com/parking-aggregator/internal/worker"
)

// RequestWorker обрабатывает внеплановые запросы импорта из stream:parking:import:request
type RequestWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	runner       ImportRunner
	consumerName string
	maxRetries   int
	retryDelay   time.Duration
}

// NewRequestWorker создает новый RequestWorker
func NewRequestWorker(
	streamRepo repository.StreamRepository,
	runner ImportRunner,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *RequestWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &RequestWorker{
		BaseWorker:   worker.NewBaseWorker("import-request", consumerGroup, logger),
		streamRepo:   streamRepo,
		runner:       runner,
		consumerName: consumerName,
		maxRetries:   maxRetries,
		retryDelay:   5 * time.Second,
	}
}

// Start читает запросы до остановки воркера
func (w *RequestWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting ImportRequestWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamImportRequest, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// канал сообщений живет, пока не отменен consumeCtx
	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, domain.StreamImportRequest, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream closed")
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *RequestWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	event, err := parseRequest(msg)
	if err != nil {
		logger.Warn("Invalid import request, skipping", zap.Error(err))
	} else {
		w.process(ctx, event, logger)
	}

	// ACK в любом случае: повторы уже выполнены, битое сообщение не должно застревать
	if err := w.streamRepo.AckMessage(ctx, domain.StreamImportRequest, w.ConsumerGroup(), msg.ID); err != nil {
		logger.Error("Failed to ack message", zap.Error(err))
	}
}

// process выполняет импорт, повторяя попытки при занятой блокировке и ошибках хранилища
func (w *RequestWorker) process(ctx context.Context, event *domain.ImportRequestEvent, logger *zap.Logger) {
	logger = logger.With(zap.String("source_uid", event.SourceUID), zap.String("kind", string(event.Kind)))

	for attempt := 1; ; attempt++ {
		done, err := w.runner.Run(ctx, event.SourceUID, event.Kind)
		if err == nil {
			logger.Info("Requested import finished",
				zap.String("run_id", done.RunID.String()),
				zap.String("status", string(done.Report.Status)))
			return
		}

		if !retryable(err) || attempt >= w.maxRetries {
			logger.Error("Requested import failed", zap.Int("attempt", attempt), zap.Error(err))
			return
		}

		logger.Warn("Requested import failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-time.After(w.retryDelay):
		case <-ctx.Done():
			return
		case <-w.StopChan():
			return
		}
	}
}

// retryable - повторяются занятая блокировка и сбои инфраструктуры.
// Ошибки запроса (нет конвертера, неверный вид) терминальны.
func retryable(err error) bool {
	appErr, ok := errors.As(err)
	if !ok {
		return true
	}
	switch appErr.Code {
	case errors.ErrImportLocked.Code,
		errors.ErrDatabaseError.Code,
		errors.ErrCacheError.Code,
		errors.ErrInternalServer.Code:
		return true
	}
	return false
}

func parseRequest(msg domain.StreamMessage) (*domain.ImportRequestEvent, error) {
	var event domain.ImportRequestEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if err := validator.Validate(&event); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return &event, nil
}

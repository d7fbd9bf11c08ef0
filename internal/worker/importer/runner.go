package importer

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/domain"
)

// ImportRunner - запуск импорта одного источника
type ImportRunner interface {
	Run(ctx context.Context, uid string, kind domain.ImportKind) (*domain.ImportDoneEvent, error)
}

// cronLogger передает сообщения cron в zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func newCronLogger(logger *zap.Logger) cron.Logger {
	return &cronLogger{sugar: logger.Sugar()}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

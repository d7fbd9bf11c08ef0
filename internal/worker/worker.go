package worker

import "context"

// Worker - фоновый процесс сервиса импорта
type Worker interface {
	// Start блокируется до остановки воркера или отмены ctx
	Start(ctx context.Context) error

	// Stop сигнализирует об остановке, не дожидаясь завершения
	Stop() error

	Name() string
}

package repository

import (
	"context"

	"github.com/parking-aggregator/internal/domain"
)

// StreamRepository - очереди событий импорта поверх Redis Streams
type StreamRepository interface {
	// CreateConsumerGroup создает группу, если ее еще нет
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeStream читает сообщения группы до отмены ctx. Канал закрывается при остановке.
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	AckMessage(ctx context.Context, stream, group, messageID string) error

	// PublishToStream сериализует data в JSON и возвращает id сообщения
	PublishToStream(ctx context.Context, stream string, data interface{}) (string, error)
}

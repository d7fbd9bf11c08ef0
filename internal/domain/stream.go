package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamImportRequest = "stream:parking:import:request"
	StreamImportDone    = "stream:parking:import:done"
)

// ImportRequestEvent - запрос на внеплановый импорт источника
type ImportRequestEvent struct {
	SourceUID string     `json:"source_uid" validate:"required"`
	Kind      ImportKind `json:"kind" validate:"required,oneof=static realtime"`
}

// ImportDoneEvent - результат импорта источника
type ImportDoneEvent struct {
	RunID      uuid.UUID    `json:"run_id"`
	SourceUID  string       `json:"source_uid"`
	Report     ImportReport `json:"report"`
	Error      string       `json:"error,omitempty"`
	FinishedAt time.Time    `json:"finished_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}

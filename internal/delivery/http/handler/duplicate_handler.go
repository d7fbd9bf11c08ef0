package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/pkg/utils"
	"github.com/parking-aggregator/internal/usecase/dto"
)

// DuplicateService - поиск и применение дубликатов для одного вида сущностей
type DuplicateService interface {
	GenerateDuplicates(ctx context.Context, req dto.GenerateDuplicatesRequest) (*dto.GenerateDuplicatesResponse, error)
	ApplyDuplicates(ctx context.Context, req dto.ApplyDuplicatesRequest) (*dto.ApplyDuplicatesResponse, error)
	ResetDuplicates(ctx context.Context, req dto.ResetDuplicatesRequest) (*dto.ResetDuplicatesResponse, error)
}

// DuplicateHandler - обработчик операций с дубликатами (объекты или места)
type DuplicateHandler struct {
	duplicateUC DuplicateService
	logger      *zap.Logger
}

// NewDuplicateHandler - создание нового DuplicateHandler. entity попадает только в логи.
func NewDuplicateHandler(duplicateUC DuplicateService, entity string, logger *zap.Logger) *DuplicateHandler {
	return &DuplicateHandler{
		duplicateUC: duplicateUC,
		logger:      logger.With(zap.String("entity", entity)),
	}
}

// Generate - кандидаты в дубликаты в радиусе
func (h *DuplicateHandler) Generate(c *fiber.Ctx) error {
	start := time.Now()

	var req dto.GenerateDuplicatesRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.duplicateUC.GenerateDuplicates(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    result.Total,
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// Apply - применение решений оператора
func (h *DuplicateHandler) Apply(c *fiber.Ctx) error {
	var req dto.ApplyDuplicatesRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.duplicateUC.ApplyDuplicates(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// Reset - сброс duplicate_of под фильтром
func (h *DuplicateHandler) Reset(c *fiber.Ctx) error {
	var req dto.ResetDuplicatesRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	h.logger.Info("Resetting duplicates",
		zap.Int64s("source_ids", req.SourceIDs),
		zap.Int("purposes", len(req.Purposes)))

	result, err := h.duplicateUC.ResetDuplicates(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/pkg/utils"
	"github.com/parking-aggregator/internal/usecase"
	"github.com/parking-aggregator/internal/usecase/dto"
)

// SourceHandler - обработчик запросов по источникам и ручному запуску импорта
type SourceHandler struct {
	sourceUC *usecase.SourceUseCase
	logger   *zap.Logger
}

// NewSourceHandler - создание нового SourceHandler
func NewSourceHandler(sourceUC *usecase.SourceUseCase, logger *zap.Logger) *SourceHandler {
	return &SourceHandler{
		sourceUC: sourceUC,
		logger:   logger,
	}
}

// List - список источников со статусами
func (h *SourceHandler) List(c *fiber.Ctx) error {
	sources, err := h.sourceUC.List(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{
		"sources": sources,
	}, &utils.Meta{
		Total: len(sources),
	})
}

// Get - источник с последними отчетами импорта
func (h *SourceHandler) Get(c *fiber.Ctx) error {
	source, err := h.sourceUC.Get(c.Context(), c.Params("uid"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, source, nil)
}

// ImportStatic - синхронный запуск статического импорта
func (h *SourceHandler) ImportStatic(c *fiber.Ctx) error {
	return h.runImport(c, domain.ImportKindStatic)
}

// ImportRealtime - синхронный запуск realtime импорта
func (h *SourceHandler) ImportRealtime(c *fiber.Ctx) error {
	return h.runImport(c, domain.ImportKindRealtime)
}

func (h *SourceHandler) runImport(c *fiber.Ctx, kind domain.ImportKind) error {
	uid := c.Params("uid")

	h.logger.Info("Manual import requested",
		zap.String("source_uid", uid),
		zap.String("kind", string(kind)))

	event, err := h.sourceUC.Run(c.UserContext(), uid, kind)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.ConvertImportDoneEvent(event), nil)
}

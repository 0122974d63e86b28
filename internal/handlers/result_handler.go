package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/models"
	"alfredoptarigan/resume-roast/internal/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ResultHandler struct {
	genRepo repositories.GenerationRepository
	logger  *zap.Logger
}

func NewResultHandler(genRepo repositories.GenerationRepository, log *zap.Logger) *ResultHandler {
	return &ResultHandler{genRepo: genRepo, logger: logger.OrNop(log)}
}

// HandleGetGeneration serves GET /api/generations/:id.
func (h *ResultHandler) HandleGetGeneration(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   msgInvalidRequest,
			Details: []string{"id: must be a UUID"},
		})
	}

	gen, err := h.genRepo.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Generation not found"})
		}
		h.logger.Error("failed to load generation", zap.String("id", id.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: msgInternalError})
	}

	return c.JSON(gen)
}

// HandleListGenerations serves GET /api/generations?task=roast&limit=20.
func (h *ResultHandler) HandleListGenerations(c *fiber.Ctx) error {
	task := c.Query("task")
	if task == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   msgInvalidRequest,
			Details: []string{"task: is required"},
		})
	}

	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	gens, err := h.genRepo.ListRecentByTask(c.UserContext(), task, limit)
	if err != nil {
		h.logger.Error("failed to list generations", zap.String("task", task), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: msgInternalError})
	}
	if gens == nil {
		gens = []models.Generation{}
	}

	return c.JSON(fiber.Map{"generations": gens})
}

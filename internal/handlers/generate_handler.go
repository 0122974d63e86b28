package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/metrics"
	"alfredoptarigan/resume-roast/internal/ratelimit"
	"alfredoptarigan/resume-roast/internal/services"
)

// HeaderGenerationID carries the id a generation is archived under.
const HeaderGenerationID = "X-Generation-ID"

// GenerateHandler serves one pipeline task over HTTP.
type GenerateHandler struct {
	runner   services.Runner
	archiver services.Archiver
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewGenerateHandler wires a handler for runner. archiver may be nil when
// persistence is disabled.
func NewGenerateHandler(
	runner services.Runner,
	archiver services.Archiver,
	m *metrics.Metrics,
	log *zap.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		runner:   runner,
		archiver: archiver,
		metrics:  m,
		logger:   logger.OrNop(log),
	}
}

// Handle runs the pipeline on the request body.
func (h *GenerateHandler) Handle(c *fiber.Ctx) error {
	task := h.runner.Name()
	start := time.Now()

	outcome, err := h.runner.Execute(c.UserContext(), c.Body())
	if err != nil {
		status, writeErr := writePipelineError(c, h.logger, task, err)
		h.metrics.ObserveRequest(task, strconv.Itoa(status), time.Since(start).Seconds())
		return writeErr
	}

	if id, ok := archive(h.archiver, c, outcome, nil); ok {
		c.Set(HeaderGenerationID, id.String())
	}

	h.metrics.ObserveRequest(task, strconv.Itoa(fiber.StatusOK), time.Since(start).Seconds())
	h.logger.Info("generation completed",
		zap.String("task", task),
		zap.String("mode", outcome.Mode),
		zap.Duration("latency", time.Since(start)),
	)

	return c.JSON(outcome.Response)
}

func archive(a services.Archiver, c *fiber.Ctx, outcome *services.Outcome, documentID *uuid.UUID) (uuid.UUID, bool) {
	if a == nil {
		return uuid.Nil, false
	}

	clientKey, _ := c.Locals(ratelimit.LocalClientKey).(string)
	id := uuid.New()

	ok := a.Enqueue(services.ArchiveJob{
		ID:         id,
		Task:       outcome.Task,
		ClientKey:  clientKey,
		Mode:       outcome.Mode,
		Request:    outcome.Request,
		Response:   outcome.Response,
		DocumentID: documentID,
	})
	return id, ok
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-roast/internal/logger"
	"alfredoptarigan/resume-roast/internal/metrics"
	"alfredoptarigan/resume-roast/internal/models"
	"alfredoptarigan/resume-roast/internal/repositories"
	"alfredoptarigan/resume-roast/internal/services"
)

const (
	uploadField = "resume"

	// maxResumeRunes matches the resumeText upper bound accepted by the parse task.
	maxResumeRunes = 50000
)

// UploadHandler accepts a PDF resume and runs the parse-cv task on its text.
type UploadHandler struct {
	parser         services.Runner
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	pdfParser      services.PDFParserService
	archiver       services.Archiver
	maxFileSize    int64
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewUploadHandler wires the upload flow. docRepo and archiver may be nil when
// persistence is disabled; the stored file is then removed after parsing.
func NewUploadHandler(
	parser services.Runner,
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	archiver services.Archiver,
	maxFileSize int64,
	m *metrics.Metrics,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		parser:         parser,
		docRepo:        docRepo,
		storageService: storageService,
		pdfParser:      pdfParser,
		archiver:       archiver,
		maxFileSize:    maxFileSize,
		metrics:        m,
		logger:         logger.OrNop(log),
	}
}

func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	task := h.parser.Name()
	start := time.Now()

	status, err := h.handle(c)
	h.metrics.ObserveRequest(task, strconv.Itoa(status), time.Since(start).Seconds())
	return err
}

func (h *UploadHandler) handle(c *fiber.Ctx) (int, error) {
	task := h.parser.Name()

	file, err := c.FormFile(uploadField)
	if err != nil {
		return badRequest(c, fmt.Sprintf("%s: a PDF file is required", uploadField))
	}

	if file.Size > h.maxFileSize {
		return badRequest(c, fmt.Sprintf("%s: file too large, max size is %d bytes", uploadField, h.maxFileSize))
	}

	filename, filePath, err := h.storageService.SaveFile(file, uploadField)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFile) {
			return badRequest(c, fmt.Sprintf("%s: %v", uploadField, err))
		}
		h.logger.Error("failed to store upload", zap.Error(err))
		return internalError(c)
	}

	keep := false
	defer func() {
		if !keep {
			if err := h.storageService.DeleteFile(filename); err != nil {
				h.logger.Warn("failed to remove upload", zap.String("file", filename), zap.Error(err))
			}
		}
	}()

	content, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		h.logger.Info("could not extract pdf text", zap.String("file", file.Filename), zap.Error(err))
		return badRequest(c, fmt.Sprintf("%s: could not read text from PDF", uploadField))
	}

	text := content.Text
	if runes := []rune(text); len(runes) > maxResumeRunes {
		text = string(runes[:maxResumeRunes])
	}

	raw, err := json.Marshal(models.ParseRequest{ResumeText: text})
	if err != nil {
		h.logger.Error("failed to encode parse request", zap.Error(err))
		return internalError(c)
	}

	outcome, err := h.parser.Execute(c.UserContext(), raw)
	if err != nil {
		return writePipelineError(c, h.logger, task, err)
	}

	resume, ok := outcome.Response.(models.ParsedResume)
	if !ok {
		h.logger.Error("unexpected parse outcome", zap.String("type", fmt.Sprintf("%T", outcome.Response)))
		return internalError(c)
	}

	doc := models.Document{
		Filename:         filename,
		OriginalFileName: file.Filename,
		ContentType:      file.Header.Get(fiber.HeaderContentType),
		SizeBytes:        file.Size,
		PageCount:        content.PageCount,
		FilePath:         filePath,
	}

	var documentID *uuid.UUID
	if h.docRepo != nil {
		doc.ID = uuid.New()
		doc.CreatedAt = time.Now()
		if err := h.docRepo.Create(c.UserContext(), &doc); err != nil {
			h.logger.Error("failed to save document record", zap.Error(err))
		} else {
			keep = true
			documentID = &doc.ID
		}
	}

	if id, ok := archive(h.archiver, c, outcome, documentID); ok {
		c.Set(HeaderGenerationID, id.String())
	}

	resp := models.ParseUploadResponse{
		Document: models.UploadResponse{
			OriginalName: doc.OriginalFileName,
			SizeBytes:    doc.SizeBytes,
			PageCount:    doc.PageCount,
		},
		Resume: resume,
	}
	// Without a document record the stored file is removed on return.
	if documentID != nil {
		resp.Document.ID = documentID.String()
		resp.Document.Filename = doc.Filename
	}

	return fiber.StatusOK, c.JSON(resp)
}

func badRequest(c *fiber.Ctx, detail string) (int, error) {
	return fiber.StatusBadRequest, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error:   msgInvalidRequest,
		Details: []string{detail},
	})
}

func internalError(c *fiber.Ctx) (int, error) {
	return fiber.StatusInternalServerError, c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: msgInternalError,
	})
}

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"sheet_ai_server/internal/output"
	"sheet_ai_server/internal/types"
	"sheet_ai_server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileJanitor deletes rendered files some time after they were served.
type FileJanitor interface {
	ScheduleRemoval(path string)
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	pipeline *Pipeline
	janitor  FileJanitor
	logger   *zap.Logger
	started  time.Time
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(pipeline *Pipeline, janitor FileJanitor, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		pipeline: pipeline,
		janitor:  janitor,
		logger:   logger,
		started:  time.Now(),
	}
}

// --- Structs for API Responses ---

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

const (
	msgInvalidPrompt   = "Missing or invalid parameter: prompt"
	msgGenerationError = "An error occurred during generation"
	msgBodyTooLarge    = "Request body too large"
)

// --- API Handlers ---

// POST /api/generate
func (h *APIHandler) GenerateSpreadsheet(c *gin.Context) {
	logger := h.logger.With(zap.String("request_id", requestID(c)))

	var req types.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgBodyTooLarge})
			return
		}
		logger.Info("Rejected generation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidPrompt})
		return
	}
	prompt, err := types.ValidatePrompt(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidPrompt})
		return
	}

	logger.Info("Received generation request", zap.Int("prompt_length", len(prompt)))

	// A client disconnect does not abort generation; the file is rendered and cleaned up regardless.
	ctx := context.WithoutCancel(c.Request.Context())
	file, err := h.pipeline.Run(ctx, prompt)
	if err != nil {
		logger.Error("Route /api/generate failed",
			zap.String("kind", string(types.KindOf(err))),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgGenerationError, Details: err.Error()})
		return
	}
	defer h.janitor.ScheduleRemoval(file.Path)

	h.streamFile(c, logger, file)
}

// streamFile sends file as an attachment. Open and stat failures go to ErrorResponder;
// failures after the headers are committed are only logged.
func (h *APIHandler) streamFile(c *gin.Context, logger *zap.Logger, file *output.File) {
	f, err := os.Open(file.Path)
	if err != nil {
		_ = c.Error(fmt.Errorf("failed to open rendered file: %w", err)).SetMeta(msgGenerationError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		_ = c.Error(fmt.Errorf("failed to stat rendered file: %w", err)).SetMeta(msgGenerationError)
		return
	}

	c.Header("Content-Type", utils.ContentType(file.Name))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Header("Content-Length", strconv.FormatInt(info.Size(), 10))
	c.Status(http.StatusOK)

	n, err := io.Copy(c.Writer, f)
	if err != nil {
		logger.Error("Download error", zap.String("file", file.Name), zap.Int64("bytes", n), zap.Error(err))
		return
	}
	logger.Info("Spreadsheet delivered", zap.String("file", file.Name), zap.Int64("bytes", n))
}

// GET /health
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Uptime: time.Since(h.started).Seconds()})
}

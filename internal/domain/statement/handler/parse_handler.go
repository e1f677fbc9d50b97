// Package handler exposes the statement parser over HTTP with gin.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/statement-parser/internal/domain/statement"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/export"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/pipeline"
	"github.com/FACorreiaa/statement-parser/internal/domain/statement/service"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Code       int    `json:"code"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string   `json:"status"`
	Version      string   `json:"version"`
	Institutions []string `json:"supported_banks"`
}

// ParseHandler serves statement uploads over HTTP.
type ParseHandler struct {
	parseSvc       *service.ParseService
	maxUploadBytes int64
	version        string
	logger         *slog.Logger
}

// NewParseHandler creates a new parse handler
func NewParseHandler(parseSvc *service.ParseService, maxUploadBytes int64, version string, logger *slog.Logger) *ParseHandler {
	return &ParseHandler{
		parseSvc:       parseSvc,
		maxUploadBytes: maxUploadBytes,
		version:        version,
		logger:         logger,
	}
}

// Register mounts the handler's routes on r.
func (h *ParseHandler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.POST("/parse", h.Parse)
}

// Health reports liveness and the supported bank codes.
func (h *ParseHandler) Health(c *gin.Context) {
	institutions := h.parseSvc.Institutions()
	codes := make([]string, len(institutions))
	for i, inst := range institutions {
		codes[i] = string(inst)
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "ok",
		Version:      h.version,
		Institutions: codes,
	})
}

// Parse handles POST /parse: a multipart "file", a "bank_code" and an
// optional "format" of json, csv or xlsx.
func (h *ParseHandler) Parse(c *gin.Context) {
	code := c.PostForm("bank_code")
	inst, err := pipeline.ParseInstitution(code)
	if err != nil {
		resp := ErrorResponse{
			Error:   "UNSUPPORTED_BANK",
			Message: fmt.Sprintf("unsupported bank_code %q, expected one of %s", code, joinInstitutions()),
			Code:    http.StatusBadRequest,
		}
		if s := pipeline.Suggest(code); s != "" {
			resp.Suggestion = fmt.Sprintf("did you mean %q?", s)
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	format, err := export.ParseFormat(c.DefaultPostForm("format", c.Query("format")))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_FORMAT", err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "FILE_REQUIRED", errors.New("multipart field \"file\" is required"))
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		h.sendError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Errorf("%w: %d bytes, limit %d", service.ErrFileTooLarge, fileHeader.Size, h.maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "FILE_UNREADABLE", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "FILE_UNREADABLE", err)
		return
	}

	resp, err := h.parseSvc.Parse(c.Request.Context(), service.Request{
		Institution: inst,
		Filename:    fileHeader.Filename,
		Data:        data,
	})
	if err != nil {
		status, label := statusFor(err)
		h.sendError(c, status, label, err)
		return
	}

	switch format {
	case export.FormatCSV:
		c.Header("Content-Disposition", attachment(fileHeader.Filename, "csv"))
		c.Header("Content-Type", format.ContentType())
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, resp.Transactions); err != nil {
			h.logger.Error("failed to stream CSV", slog.Any("error", err))
		}
	case export.FormatXLSX:
		c.Header("Content-Disposition", attachment(fileHeader.Filename, "xlsx"))
		c.Header("Content-Type", format.ContentType())
		c.Status(http.StatusOK)
		if err := export.WriteXLSX(c.Writer, resp.Transactions, resp.Summary); err != nil {
			h.logger.Error("failed to stream XLSX", slog.Any("error", err))
		}
	default:
		c.JSON(http.StatusOK, resp)
	}
}

// statusFor maps service errors to an HTTP status and an error label.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE"
	case errors.Is(err, service.ErrNotPDF):
		return http.StatusBadRequest, "NOT_PDF"
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, pipeline.ErrUnsupportedInstitution):
		return http.StatusBadRequest, "UNSUPPORTED_BANK"
	case errors.Is(err, statement.ErrParseFailed):
		return http.StatusUnprocessableEntity, "PARSE_FAILED"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "PARSE_TIMEOUT"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func (h *ParseHandler) sendError(c *gin.Context, status int, label string, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("parse request failed", slog.String("error_code", label), slog.Any("error", err))
	} else {
		h.logger.Warn("parse request rejected", slog.String("error_code", label), slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{
		Error:   label,
		Message: err.Error(),
		Code:    status,
	})
}

func attachment(filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "statement"
	}
	return fmt.Sprintf("attachment; filename=%q", base+"."+ext)
}

func joinInstitutions() string {
	codes := make([]string, len(pipeline.Institutions))
	for i, inst := range pipeline.Institutions {
		codes[i] = string(inst)
	}
	return strings.Join(codes, ", ")
}

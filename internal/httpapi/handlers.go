package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/logging"
	"github.com/joseph-ayodele/vetting-tracker/internal/pipeline"
	"github.com/joseph-ayodele/vetting-tracker/internal/vetting"
)

const (
	msgMissingFinanceFields = "Missing required fields: prompt and file"
	msgMissingFileBase64    = "Missing required field: fileBase64"
	msgApprovalOCRFailed    = "OCR failed for GM document"
	msgApprovalFailed       = "Failed to process GM data"
	msgFinanceFailed        = "Failed to process finance data"
	msgNoMatchingCase       = "No matching vetting case found for provided planHead/workHead"
	msgProcessFailed        = "Failed to process data"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Ingestor runs the document extraction flows.
type Ingestor interface {
	ProcessFinance(ctx context.Context, prompt, fileBase64 string) (*pipeline.FinanceResult, error)
	ProcessApproval(ctx context.Context, fileBase64 string) (*pipeline.ApprovalResult, error)
}

// DelayService answers delay and listing queries.
type DelayService interface {
	ComputeDelays(ctx context.Context, q vetting.DelayQuery) (*vetting.Report, error)
	ListVettingData(ctx context.Context) (*vetting.VettingData, error)
}

// Exporter renders the delay workbook.
type Exporter interface {
	ExportDelaysXLSX(ctx context.Context) ([]byte, error)
}

type Handler struct {
	ingest Ingestor
	delays DelayService
	export Exporter
	health func(context.Context) error
	logger *slog.Logger
}

type financeRequest struct {
	Prompt     string `json:"prompt"`
	FileBase64 string `json:"fileBase64"`
}

type approvalRequest struct {
	FileBase64 string `json:"fileBase64"`
	RowID      any    `json:"rowId"`
}

// ExtractFinance handles POST /api/extract-finance-data.
func (h *Handler) ExtractFinance(c *gin.Context) {
	var req financeRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.FileBase64) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingFinanceFields})
		return
	}

	ctx := c.Request.Context()
	res, err := h.ingest.ProcessFinance(ctx, req.Prompt, req.FileBase64)
	if err != nil {
		logging.WithContext(ctx, h.logger).Error("http.extract_finance.failed", "err", err)
		if xe, ok := pipeline.AsExtractionError(err); ok {
			c.JSON(xe.Status, gin.H{"error": xe.Message, "code": xe.Code, "details": xe.Details})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgFinanceFailed, "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExtractApproval handles POST /api/extract-GM-data.
func (h *Handler) ExtractApproval(c *gin.Context) {
	var req approvalRequest
	_ = c.ShouldBindJSON(&req)
	ctx := c.Request.Context()
	log := logging.WithContext(ctx, h.logger)
	log.Info("http.extract_approval.received", "has_file", req.FileBase64 != "", "row_id", req.RowID)

	if strings.TrimSpace(req.FileBase64) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingFileBase64})
		return
	}

	res, err := h.ingest.ProcessApproval(ctx, req.FileBase64)
	if err != nil {
		log.Error("http.extract_approval.failed", "err", err)
		if xe, ok := pipeline.AsExtractionError(err); ok && xe.Code == pipeline.CodeApprovalOCRFailed {
			c.JSON(xe.Status, gin.H{
				"error":      msgApprovalOCRFailed,
				"code":       xe.Code,
				"details":    xe.Message,
				"ocrDetails": xe.Details,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgApprovalFailed, "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// VettingData handles GET /api/get-vetting-data.
func (h *Handler) VettingData(c *gin.Context) {
	data, err := h.delays.ListVettingData(c.Request.Context())
	if err != nil {
		logging.WithContext(c.Request.Context(), h.logger).Error("http.vetting_data.failed", "err", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": msgProcessFailed, "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vettingData": data})
}

// VettingDelay handles GET and POST /api/get-vetting-delay. Query parameters
// win over body fields.
func (h *Handler) VettingDelay(c *gin.Context) {
	query := map[string]any{}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	body := map[string]any{}
	if c.Request.Body != nil && c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
			return
		}
	}
	q := vetting.QueryFromSources(query, body)

	ctx := c.Request.Context()
	report, err := h.delays.ComputeDelays(ctx, q)
	if err != nil {
		logging.WithContext(ctx, h.logger).Error("http.vetting_delay.failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgProcessFailed, "details": err.Error()})
		return
	}
	if q.Filtered() && !report.CaseFound() {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoMatchingCase, "delays": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"delays": report})
}

// ExportDelays handles GET /api/export-delays.
func (h *Handler) ExportDelays(c *gin.Context) {
	b, err := h.export.ExportDelaysXLSX(c.Request.Context())
	if err != nil {
		logging.WithContext(c.Request.Context(), h.logger).Error("http.export_delays.failed", "err", err)
		c.JSON(common.HTTPStatus(err), gin.H{"error": "Failed to export delays", "details": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="vetting-delays.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, b)
}

// Healthz pings the database.
func (h *Handler) Healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

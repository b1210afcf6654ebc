// Package pipeline turns scanned finance and approval documents into stored
// flow cases and approval records: OCR, structured extraction, then persistence.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/archive"
	"github.com/joseph-ayodele/vetting-tracker/internal/entity"
	"github.com/joseph-ayodele/vetting-tracker/internal/llm"
	"github.com/joseph-ayodele/vetting-tracker/internal/logging"
	"github.com/joseph-ayodele/vetting-tracker/internal/metrics"
	"github.com/joseph-ayodele/vetting-tracker/internal/ocr"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository"
	"github.com/joseph-ayodele/vetting-tracker/internal/timeline"
	"github.com/joseph-ayodele/vetting-tracker/internal/utils"
)

// FinanceWrite reports what was stored for a finance document.
type FinanceWrite struct {
	Saved         bool   `json:"saved"`
	CaseUUID      string `json:"caseUuid,omitempty"`
	TotalFlowRows int    `json:"totalFlowRows"`
	MatchedRows   int    `json:"matchedRows"`
	Error         string `json:"error,omitempty"`
}

// ApprovalWrite reports what was stored for an approval document.
type ApprovalWrite struct {
	Saved        bool    `json:"saved"`
	CaseUUID     string  `json:"caseUuid,omitempty"`
	ApprovalDate *string `json:"approvalDate"`
	ApprovalTime *string `json:"approvalTime"`
	Error        string  `json:"error,omitempty"`
}

type FinanceResult struct {
	llm.FlowExtraction
	RawText          string          `json:"raw_text"`
	FlowWithMetadata []FlowRow       `json:"flowWithMetadata"`
	FilteredDateTime []DateTimeEntry `json:"filteredDateTime"`
	DBWrite          FinanceWrite    `json:"dbWrite"`
	TraceID          string          `json:"traceId"`
}

type ApprovalResult struct {
	llm.FlowExtraction
	RawText string        `json:"raw_text"`
	DBWrite ApprovalWrite `json:"dbWrite"`
	TraceID string        `json:"traceId"`
}

// Processor coordinates OCR, structured extraction and persistence.
type Processor struct {
	ocr       ocr.Extractor
	extractor llm.StructuredExtractor
	flows     repository.FlowRepository
	approvals repository.ApprovalRepository
	archiver  archive.Archiver
	metrics   *metrics.Metrics
	logger    *slog.Logger

	financePrompt string
	ocrTimeout    time.Duration
}

type Option func(*Processor)

// WithArchiver uploads every decoded document before it is stored.
func WithArchiver(a archive.Archiver) Option {
	return func(p *Processor) { p.archiver = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithFinancePrompt sets the lead-in used by ProcessFile for finance documents.
func WithFinancePrompt(prompt string) Option {
	return func(p *Processor) { p.financePrompt = prompt }
}

func WithOCRTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.ocrTimeout = d
		}
	}
}

func NewProcessor(
	ocrClient ocr.Extractor,
	extractor llm.StructuredExtractor,
	flows repository.FlowRepository,
	approvals repository.ApprovalRepository,
	logger *slog.Logger,
	opts ...Option,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		ocr:        ocrClient,
		extractor:  extractor,
		flows:      flows,
		approvals:  approvals,
		logger:     logger,
		ocrTimeout: 120 * time.Second,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessFinance extracts a finance flow from the document and stores it as a new case.
// Upstream failures are returned as *ExtractionError; a failed write is reported in
// the result's DBWrite and is not an error.
func (p *Processor) ProcessFinance(ctx context.Context, prompt, fileBase64 string) (*FinanceResult, error) {
	traceID := uuid.NewString()
	log := logging.WithContext(ctx, p.logger).With("trace_id", traceID, "kind", constants.FinanceFlow)
	start := time.Now()
	log.Info("pipeline.finance.start", "payload_len", len(fileBase64))

	payload := ocr.NormalizeBase64(fileBase64)
	text, err := p.runOCR(ctx, log, CodeFinanceOCRFailed, payload)
	if err != nil {
		p.metrics.RecordIngest(string(constants.FinanceFlow), string(constants.IngestOCRFailed))
		return nil, err
	}

	extraction, err := p.runExtraction(ctx, log, llm.ExtractRequest{Kind: constants.FinanceFlow, Prompt: prompt, Text: text})
	if err != nil {
		p.metrics.RecordIngest(string(constants.FinanceFlow), string(constants.IngestLLMFailed))
		return nil, err
	}

	rows := BuildFlowMetadata(extraction.RightSideFlow)
	header := &entity.FlowHeader{
		ID:       uuid.New(),
		Planhead: utils.NullIfBlank(extraction.PlanHead),
		Workname: utils.NullIfBlank(extraction.WorkName),
	}
	header.SourceObject = p.archive(ctx, log, constants.FinanceFlow, header.ID, payload)

	write := p.persistFlow(ctx, log, header, rows)
	p.metrics.RecordIngest(string(constants.FinanceFlow), outcome(write.Saved))

	log.Info("pipeline.finance.done",
		"saved", write.Saved,
		"case_uuid", write.CaseUUID,
		"flow_rows", write.TotalFlowRows,
		"matched_rows", write.MatchedRows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &FinanceResult{
		FlowExtraction:   extraction,
		RawText:          text,
		FlowWithMetadata: rows,
		FilteredDateTime: FilteredDateTime(rows),
		DBWrite:          write,
		TraceID:          traceID,
	}, nil
}

// ProcessApproval extracts a GM approval and stores it as an independent record.
func (p *Processor) ProcessApproval(ctx context.Context, fileBase64 string) (*ApprovalResult, error) {
	traceID := uuid.NewString()
	log := logging.WithContext(ctx, p.logger).With("trace_id", traceID, "kind", constants.Approval)
	start := time.Now()
	log.Info("pipeline.approval.start", "payload_len", len(fileBase64))

	payload := ocr.NormalizeBase64(fileBase64)
	text, err := p.runOCR(ctx, log, CodeApprovalOCRFailed, payload)
	if err != nil {
		p.metrics.RecordIngest(string(constants.Approval), string(constants.IngestOCRFailed))
		return nil, err
	}

	extraction, err := p.runExtraction(ctx, log, llm.ExtractRequest{Kind: constants.Approval, Text: text})
	if err != nil {
		p.metrics.RecordIngest(string(constants.Approval), string(constants.IngestLLMFailed))
		return nil, err
	}

	rawDate, rawTime := ResolveApprovalDateTime(extraction, text)
	rec := &entity.ApprovalRecord{
		ID:           uuid.New(),
		Planhead:     utils.NullIfBlank(extraction.PlanHead),
		Workname:     utils.NullIfBlank(extraction.WorkName),
		ApprovalDate: utils.NullIfBlank(timeline.ToSQLDate(rawDate)),
		ApprovalTime: utils.NullIfBlank(timeline.ToSQLTime(rawTime)),
		RawText:      utils.NullIfBlank(text),
	}
	log.Debug("pipeline.approval.resolved",
		"raw_date", rawDate, "raw_time", rawTime,
		"approval_date", utils.StrOrEmpty(rec.ApprovalDate),
		"approval_time", utils.StrOrEmpty(rec.ApprovalTime),
	)
	rec.SourceObject = p.archive(ctx, log, constants.Approval, rec.ID, payload)

	write := ApprovalWrite{ApprovalDate: rec.ApprovalDate, ApprovalTime: rec.ApprovalTime}
	stageStart := time.Now()
	if err := p.approvals.Create(ctx, rec); err != nil {
		log.Error("pipeline.approval.save_failed", "error", err)
		write = ApprovalWrite{Saved: false, Error: err.Error()}
	} else {
		write.Saved = true
		write.CaseUUID = rec.ID.String()
	}
	p.metrics.ObserveStage("persist", time.Since(stageStart))
	p.metrics.RecordIngest(string(constants.Approval), outcome(write.Saved))

	log.Info("pipeline.approval.done",
		"saved", write.Saved,
		"case_uuid", write.CaseUUID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &ApprovalResult{
		FlowExtraction: extraction,
		RawText:        text,
		DBWrite:        write,
		TraceID:        traceID,
	}, nil
}

// ProcessFile reads a document from disk and routes it by kind. A write that
// did not commit is returned as an error so queue workers can log it.
func (p *Processor) ProcessFile(ctx context.Context, path string, kind constants.DocumentKind) error {
	if !constants.AllowedExt(filepath.Ext(path)) {
		return fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	payload := base64.StdEncoding.EncodeToString(b)

	switch kind {
	case constants.FinanceFlow:
		res, err := p.ProcessFinance(ctx, p.financePrompt, payload)
		if err != nil {
			return err
		}
		if !res.DBWrite.Saved {
			return fmt.Errorf("save flow: %s", res.DBWrite.Error)
		}
	case constants.Approval:
		res, err := p.ProcessApproval(ctx, payload)
		if err != nil {
			return err
		}
		if !res.DBWrite.Saved {
			return fmt.Errorf("save approval: %s", res.DBWrite.Error)
		}
	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}
	return nil
}

func (p *Processor) runOCR(ctx context.Context, log *slog.Logger, code, payload string) (string, error) {
	if payload == "" {
		log.Warn("pipeline.ocr.empty_payload")
		return "", ocrError(code, msgEmptyPayload, "", nil)
	}

	start := time.Now()
	ocrCtx, cancel := context.WithTimeout(ctx, p.ocrTimeout)
	defer cancel()
	text, err := p.ocr.ExtractText(ocrCtx, payload)
	p.metrics.ObserveStage("ocr", time.Since(start))

	switch {
	case errors.Is(err, ocr.ErrEmptyText):
		log.Warn("pipeline.ocr.empty_text")
		return "", ocrError(code, msgEmptyText, "", err)
	case err != nil:
		log.Error("pipeline.ocr.failed", "error", err)
		return "", ocrError(code, msgOCRTransport, err.Error(), err)
	case ocr.IsFailureText(text):
		log.Warn("pipeline.ocr.rejected", "text", text)
		return "", ocrError(code, msgRejectedInput, text, nil)
	}

	text = ocr.Normalize(text)
	if text == "" {
		return "", ocrError(code, msgEmptyText, "", nil)
	}
	log.Info("pipeline.ocr.ok", "chars", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

func (p *Processor) runExtraction(ctx context.Context, log *slog.Logger, req llm.ExtractRequest) (llm.FlowExtraction, error) {
	start := time.Now()
	out, _, err := p.extractor.Extract(ctx, req)
	p.metrics.ObserveStage("llm", time.Since(start))
	if err != nil {
		log.Error("pipeline.llm.failed", "error", err)
		return llm.FlowExtraction{}, llmError(err)
	}
	log.Info("pipeline.llm.ok",
		"plan_head", out.PlanHead,
		"flow_rows", len(out.RightSideFlow),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (p *Processor) persistFlow(ctx context.Context, log *slog.Logger, header *entity.FlowHeader, rows []FlowRow) FinanceWrite {
	items := make([]*entity.FlowItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, &entity.FlowItem{
			SequenceNo:  r.SequenceNo,
			Designation: utils.NullIfBlank(r.DesignationCanonical),
			Department:  utils.NullIfBlank(r.Department),
			ActionDate:  utils.NullIfBlank(r.ActionDate),
			ActionTime:  utils.NullIfBlank(r.ActionTime),
		})
	}

	start := time.Now()
	err := p.flows.CreateWithItems(ctx, header, items)
	p.metrics.ObserveStage("persist", time.Since(start))
	if err != nil {
		log.Error("pipeline.finance.save_failed", "error", err)
		return FinanceWrite{Saved: false, Error: err.Error()}
	}
	return FinanceWrite{
		Saved:         true,
		CaseUUID:      header.ID.String(),
		TotalFlowRows: len(rows),
		MatchedRows:   MatchedRows(rows),
	}
}

// archive stores the decoded document when an archiver is configured.
// Failures are logged and leave the source object unset.
func (p *Processor) archive(ctx context.Context, log *slog.Logger, kind constants.DocumentKind, id uuid.UUID, payload string) *string {
	if p.archiver == nil {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		log.Warn("pipeline.archive.decode_failed", "error", err)
		return nil
	}
	key, err := p.archiver.Put(ctx, kind, id, data)
	if err != nil {
		log.Warn("pipeline.archive.failed", "error", err)
		return nil
	}
	return &key
}

func outcome(saved bool) string {
	if saved {
		return string(constants.IngestSaved)
	}
	return string(constants.IngestSaveFailed)
}

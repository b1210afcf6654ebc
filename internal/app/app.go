// Package app wires configuration into the repositories, services and
// ingestion pipeline shared by the commands.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/vetting-tracker/internal/archive"
	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/export"
	"github.com/joseph-ayodele/vetting-tracker/internal/llm/openai"
	"github.com/joseph-ayodele/vetting-tracker/internal/metrics"
	"github.com/joseph-ayodele/vetting-tracker/internal/ocr"
	"github.com/joseph-ayodele/vetting-tracker/internal/pipeline"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository"
	"github.com/joseph-ayodele/vetting-tracker/internal/vetting"
)

// App holds every long-lived component built from a Config.
type App struct {
	Config    *common.Config
	DB        *repository.DB
	Flows     repository.FlowRepository
	Approvals repository.ApprovalRepository
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Vetting   *vetting.Service
	Export    *export.Service
	Processor *pipeline.Processor
	logger    *slog.Logger
}

// New opens and migrates the database, then builds the services on top of it.
// The archive bucket is created when archiving is enabled.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, common.DatabaseError("open database", err)
	}
	if err := repository.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
		db.Close(logger)
		return nil, common.DatabaseError("ping database", err)
	}
	if err := repository.Migrate(ctx, db.Driver); err != nil {
		db.Close(logger)
		return nil, common.DatabaseError("migrate schema", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	flows := repository.NewFlowRepository(db.Driver, logger)
	approvals := repository.NewApprovalRepository(db.Driver, logger)
	svc := vetting.NewService(flows, approvals, vetting.Options{
		FlowScanWindow:     cfg.Matching.FlowScanWindow,
		ApprovalScanWindow: cfg.Matching.ApprovalScanWindow,
	}, m, logger)

	opts := []pipeline.Option{
		pipeline.WithMetrics(m),
		pipeline.WithFinancePrompt(cfg.LLM.FinancePrompt),
		pipeline.WithOCRTimeout(cfg.OCR.Timeout),
	}
	if cfg.Archive.Enabled {
		arch, err := archive.NewMinioArchiver(cfg.Archive, logger)
		if err != nil {
			db.Close(logger)
			return nil, err
		}
		if err := arch.EnsureBucket(ctx); err != nil {
			db.Close(logger)
			return nil, err
		}
		opts = append(opts, pipeline.WithArchiver(arch))
		logger.Info("app.archive.enabled", "bucket", cfg.Archive.Bucket)
	}

	ocrClient := ocr.NewClient(ocr.Config{
		BaseURL:    cfg.OCR.BaseURL,
		Timeout:    cfg.OCR.Timeout,
		RetryCount: cfg.OCR.RetryCount,
	}, logger)
	llmClient := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	return &App{
		Config:    cfg,
		DB:        db,
		Flows:     flows,
		Approvals: approvals,
		Registry:  reg,
		Metrics:   m,
		Vetting:   svc,
		Export:    export.NewService(flows, svc, logger),
		Processor: pipeline.NewProcessor(ocrClient, llmClient, flows, approvals, logger, opts...),
		logger:    logger,
	}, nil
}

// Ping checks database connectivity.
func (a *App) Ping(ctx context.Context) error {
	return repository.HealthCheck(ctx, a.DB, 2*time.Second, a.logger)
}

func (a *App) Close() {
	a.DB.Close(a.logger)
}

// Package export renders stored vetting cases and their delays as spreadsheets.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/entity"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository"
	"github.com/joseph-ayodele/vetting-tracker/internal/utils"
	"github.com/joseph-ayodele/vetting-tracker/internal/vetting"
)

const DelaysSheet = "Delays"

var delayHeaders = []string{
	"Plan Head",
	"Work Name",
	"Created",
	"Flow Items",
	"Approval Date",
	"Total Cycle Days",
	"Executive Delay Days",
	"Finance Delay Days",
	"HQ Delay Days",
	"Approval Match",
}

// DelayComputer computes the report for a known flow header.
type DelayComputer interface {
	ComputeForFlow(ctx context.Context, header *entity.FlowHeader) (*vetting.Report, error)
}

// Service is a tiny façade over the flow store and the delay engine that produces XLSX bytes.
type Service struct {
	flows  repository.FlowRepository
	delays DelayComputer
	logger *slog.Logger
}

func NewService(flows repository.FlowRepository, delays DelayComputer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{flows: flows, delays: delays, logger: logger}
}

// ExportDelaysXLSX returns a workbook with one row per stored case, newest first.
func (s *Service) ExportDelaysXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	headers, err := s.flows.ListAll(ctx)
	if err != nil {
		return nil, common.DatabaseError("list flow headers", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", DelaysSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	for i, h := range delayHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(DelaysSheet, cell, h)
	}

	row := 2
	for _, h := range headers {
		report, err := s.delays.ComputeForFlow(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("compute delays for %s: %w", h.ID, err)
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(DelaysSheet, cell, v)
		}
		write(1, h.PlanheadString())
		write(2, h.WorknameString())
		write(3, utils.FormatYMD(h.CreatedAt))
		write(4, report.Meta.FlowItemsCount)
		write(5, utils.StrOrEmpty(report.Meta.ApprovalDate))
		write(6, report.TotalCycleDays)
		write(7, report.ExecutiveDelayDays)
		write(8, report.FinanceDelayDays)
		write(9, report.HQDelayDays)
		if report.Meta.ApprovalStrategy != nil {
			write(10, string(*report.Meta.ApprovalStrategy))
		} else {
			write(10, "")
		}
		row++
	}

	_ = f.SetColWidth(DelaysSheet, "A", "A", 22) // plan head
	_ = f.SetColWidth(DelaysSheet, "B", "B", 48) // work name
	_ = f.SetColWidth(DelaysSheet, "C", "E", 14)
	_ = f.SetColWidth(DelaysSheet, "F", "I", 12)
	_ = f.SetColWidth(DelaysSheet, "J", "J", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(headers),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

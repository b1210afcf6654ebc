// Package vetting answers delay queries: it resolves a request to a stored
// flow, pairs it with an approval record and runs the delay calculator.
package vetting

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/delay"
	"github.com/joseph-ayodele/vetting-tracker/internal/entity"
	"github.com/joseph-ayodele/vetting-tracker/internal/logging"
	"github.com/joseph-ayodele/vetting-tracker/internal/matching"
	"github.com/joseph-ayodele/vetting-tracker/internal/metrics"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository"
)

// DelayQuery identifies the case to report on. Strict disables the
// latest-approval fallback for unfiltered queries.
type DelayQuery struct {
	Planhead string
	Workname string
	Strict   bool
}

func (q DelayQuery) matchQuery() matching.Query {
	return matching.Query{Planhead: q.Planhead, Workname: q.Workname}
}

// Filtered reports whether any identifier was supplied.
func (q DelayQuery) Filtered() bool {
	return !q.matchQuery().Empty()
}

// Meta describes how a Report was produced.
type Meta struct {
	RequestedPlanhead *string                  `json:"requestedPlanhead"`
	RequestedWorkhead *string                  `json:"requestedWorkhead"`
	SelectedPlanhead  *string                  `json:"selectedPlanhead"`
	SelectedWorkhead  *string                  `json:"selectedWorkhead"`
	MatchStrategy     *constants.MatchStrategy `json:"matchStrategy"`
	ApprovalStrategy  *constants.MatchStrategy `json:"approvalStrategy"`
	FlowUUID          *uuid.UUID               `json:"flowUuid"`
	FlowItemsCount    int                      `json:"flowItemsCount"`
	ApprovalMatched   bool                     `json:"approvalMatched"`
	ApprovalUUID      *uuid.UUID               `json:"approvalUuid"`
	ApprovalDate      *string                  `json:"approvalDate"`
	ApprovalTime      *string                  `json:"approvalTime"`
	Markers           *delay.Markers           `json:"markers"`
}

// Report is the answer to a delay query.
type Report struct {
	delay.Metrics
	Meta Meta `json:"meta"`
}

// CaseFound reports whether a flow header was selected.
func (r *Report) CaseFound() bool {
	return r != nil && r.Meta.FlowUUID != nil
}

// VettingData is every stored header and item.
type VettingData struct {
	DocData  []*entity.FlowHeader `json:"docdata"`
	FlowData []*entity.FlowItem   `json:"flowdata"`
}

// Options tune the matcher's scan windows.
type Options struct {
	FlowScanWindow     int
	ApprovalScanWindow int
}

// Service answers delay queries against the store.
type Service struct {
	flows     repository.FlowRepository
	approvals repository.ApprovalRepository
	opts      Options
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService wires a Service. Zero windows fall back to the defaults; m may be nil.
func NewService(flows repository.FlowRepository, approvals repository.ApprovalRepository, opts Options, m *metrics.Metrics, logger *slog.Logger) *Service {
	if opts.FlowScanWindow <= 0 {
		opts.FlowScanWindow = constants.DefaultFlowScanWindow
	}
	if opts.ApprovalScanWindow <= 0 {
		opts.ApprovalScanWindow = constants.DefaultApprovalScanWindow
	}
	return &Service{
		flows:     flows,
		approvals: approvals,
		opts:      opts,
		metrics:   m,
		logger:    logger,
	}
}

// ComputeDelays selects the flow matching q, pairs it with an approval record
// and computes its delays. A query that matches nothing is not an error: the
// report is all zeros and CaseFound is false.
func (s *Service) ComputeDelays(ctx context.Context, q DelayQuery) (*Report, error) {
	start := time.Now()
	log := logging.WithContext(ctx, s.logger)
	log.Info("delay.query.start", "planhead", q.Planhead, "workname", q.Workname, "strict", q.Strict)

	report := &Report{Meta: Meta{
		RequestedPlanhead: trimmedOrNil(q.Planhead),
		RequestedWorkhead: trimmedOrNil(q.Workname),
	}}

	limit := s.opts.FlowScanWindow
	if !q.Filtered() {
		limit = 1
	}
	headers, err := s.flows.ListRecent(ctx, limit)
	if err != nil {
		return nil, common.DatabaseError("load flow candidates", err)
	}

	header, strategy := matching.SelectFlow(q.matchQuery(), headers)
	if header == nil {
		if q.Strict {
			report.Meta.MatchStrategy = strategyPtr(constants.StrategyStrictNoMatch)
		}
		s.metrics.RecordDelayQuery("")
		log.Info("delay.query.no_match", "candidates", len(headers), "elapsed_ms", time.Since(start).Milliseconds())
		return report, nil
	}

	if err := s.fill(ctx, q, header, report); err != nil {
		return nil, err
	}
	report.Meta.MatchStrategy = strategyPtr(strategy)

	s.metrics.RecordDelayQuery(string(strategy))
	log.Info("delay.query.ok",
		"flow_id", header.ID,
		"strategy", strategy,
		"approval_matched", report.Meta.ApprovalMatched,
		"items", report.Meta.FlowItemsCount,
		"total_days", report.TotalCycleDays,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// ComputeForFlow reports on a header that is already known, skipping flow
// selection. The approval is matched strictly on the header's identifiers.
func (s *Service) ComputeForFlow(ctx context.Context, header *entity.FlowHeader) (*Report, error) {
	report := &Report{}
	if err := s.fill(ctx, DelayQuery{Strict: true}, header, report); err != nil {
		return nil, err
	}
	return report, nil
}

// fill loads the header's items and approval and stores the metrics in report.
func (s *Service) fill(ctx context.Context, q DelayQuery, header *entity.FlowHeader, report *Report) error {
	items, err := s.flows.ListItems(ctx, header.ID)
	if err != nil {
		return common.DatabaseError("load flow items", err)
	}

	approval, approvalStrategy, err := s.selectApproval(ctx, q, header)
	if err != nil {
		return err
	}

	var approvalDate, approvalTime string
	if approval != nil {
		approvalDate, approvalTime = approval.ApprovalDateString(), approval.ApprovalTimeString()
	}
	result := delay.Calculate(toDelayItems(items), approvalDate, approvalTime)

	id := header.ID
	report.Metrics = result.Metrics
	report.Meta.SelectedPlanhead = trimmedOrNil(header.PlanheadString())
	report.Meta.SelectedWorkhead = trimmedOrNil(header.WorknameString())
	report.Meta.FlowUUID = &id
	report.Meta.FlowItemsCount = len(items)
	report.Meta.Markers = &result.Markers
	if approval != nil {
		aid := approval.ID
		report.Meta.ApprovalStrategy = strategyPtr(approvalStrategy)
		report.Meta.ApprovalUUID = &aid
		report.Meta.ApprovalDate = approval.ApprovalDate
		report.Meta.ApprovalTime = approval.ApprovalTime
		report.Meta.ApprovalMatched = approvalDate != ""
	}
	return nil
}

func (s *Service) selectApproval(ctx context.Context, q DelayQuery, header *entity.FlowHeader) (*entity.ApprovalRecord, constants.MatchStrategy, error) {
	records, err := s.approvals.ListRecentDated(ctx, s.opts.ApprovalScanWindow)
	if err != nil {
		return nil, "", common.DatabaseError("load approval candidates", err)
	}
	if rec, strategy := matching.SelectApproval(header, records); rec != nil {
		return rec, strategy, nil
	}
	if !q.Filtered() && !q.Strict && len(records) > 0 {
		return records[0], constants.StrategyLatestDated, nil
	}
	return nil, "", nil
}

// ListVettingData returns every stored header and item.
func (s *Service) ListVettingData(ctx context.Context) (*VettingData, error) {
	headers, err := s.flows.ListAll(ctx)
	if err != nil {
		return nil, common.DatabaseError("list flow headers", err)
	}
	items, err := s.flows.ListAllItems(ctx)
	if err != nil {
		return nil, common.DatabaseError("list flow items", err)
	}
	if headers == nil {
		headers = []*entity.FlowHeader{}
	}
	if items == nil {
		items = []*entity.FlowItem{}
	}
	return &VettingData{DocData: headers, FlowData: items}, nil
}

func toDelayItems(items []*entity.FlowItem) []delay.Item {
	out := make([]delay.Item, 0, len(items))
	for _, it := range items {
		out = append(out, delay.Item{
			Designation: deref(it.Designation),
			Department:  deref(it.Department),
			SequenceNo:  it.SequenceNo,
			ActionDate:  deref(it.ActionDate),
			ActionTime:  deref(it.ActionTime),
		})
	}
	return out
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func strategyPtr(s constants.MatchStrategy) *constants.MatchStrategy {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

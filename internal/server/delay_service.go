package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/delay"
	"github.com/joseph-ayodele/vetting-tracker/internal/logging"
	"github.com/joseph-ayodele/vetting-tracker/internal/utils"
	"github.com/joseph-ayodele/vetting-tracker/internal/vetting"
)

// MsgNoMatchingCase is returned when a filtered query selects no flow.
const MsgNoMatchingCase = "No matching vetting case found for provided planHead/workHead"

const (
	maxPlanheadLen = 256
	maxWorkheadLen = 1024
)

// DelayComputer is the part of vetting.Service the gRPC surface needs.
type DelayComputer interface {
	ComputeDelays(ctx context.Context, q vetting.DelayQuery) (*vetting.Report, error)
	ListVettingData(ctx context.Context) (*vetting.VettingData, error)
}

type DelayService struct {
	svc    DelayComputer
	logger *slog.Logger
}

var _ DelayServiceServer = (*DelayService)(nil)

func NewDelayService(svc DelayComputer, logger *slog.Logger) *DelayService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DelayService{svc: svc, logger: logger}
}

// ComputeDelays accepts {planhead|planHead, workhead|workHead|workname, strict}.
func (s *DelayService) ComputeDelays(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := logging.WithContext(ctx, s.logger)
	q := vetting.QueryFromSources(req.AsMap())

	v := common.NewValidator().
		Field("planhead", q.Planhead, common.MaxLength(maxPlanheadLen)).
		Field("workhead", q.Workname, common.MaxLength(maxWorkheadLen))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	report, err := s.svc.ComputeDelays(ctx, q)
	if err != nil {
		log.Error("grpc.compute_delays.failed", "planhead", q.Planhead, "workhead", q.Workname, "err", err)
		return nil, status.Error(common.GRPCCode(err), "compute delays failed")
	}

	out, err := utils.ToStruct(report)
	if err != nil {
		log.Error("grpc.compute_delays.encode_failed", "err", err)
		return nil, common.InternalError("encode report failed")
	}

	if q.Filtered() && !report.CaseFound() {
		st, derr := status.New(codes.NotFound, MsgNoMatchingCase).WithDetails(out)
		if derr != nil {
			return nil, common.NotFoundError(MsgNoMatchingCase)
		}
		return nil, st.Err()
	}
	return out, nil
}

type bucketRequest struct {
	Items        []delay.Item `json:"items"`
	ApprovalDate string       `json:"approvalDate"`
	ApprovalTime string       `json:"approvalTime"`
}

// CalculateBucketDelay runs the calculator over caller-supplied items without
// touching the store.
func (s *DelayService) CalculateBucketDelay(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in bucketRequest
	if err := utils.FromStruct(req, &in); err != nil {
		return nil, common.InvalidArgumentErrorf("invalid bucket request: %v", err)
	}

	out, err := utils.ToStruct(delay.Calculate(in.Items, in.ApprovalDate, in.ApprovalTime))
	if err != nil {
		logging.WithContext(ctx, s.logger).Error("grpc.bucket_delay.encode_failed", "err", err)
		return nil, common.InternalError("encode result failed")
	}
	return out, nil
}

func (s *DelayService) ListVettingData(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	data, err := s.svc.ListVettingData(ctx)
	if err != nil {
		logging.WithContext(ctx, s.logger).Error("grpc.list_vetting_data.failed", "err", err)
		return nil, status.Error(common.GRPCCode(err), "list vetting data failed")
	}
	out, err := utils.ToStruct(data)
	if err != nil {
		return nil, common.InternalError("encode vetting data failed")
	}
	return out, nil
}

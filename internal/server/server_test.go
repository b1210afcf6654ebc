package server

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/vetting-tracker/internal/entity"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository"
	"github.com/joseph-ayodele/vetting-tracker/internal/repository/repotest"
	"github.com/joseph-ayodele/vetting-tracker/internal/vetting"
)

func str(s string) *string { return &s }

func newTestConn(t *testing.T) *grpc.ClientConn {
	t.Helper()
	ctx := context.Background()
	logger := repotest.Logger()
	db := repotest.NewSQLite(t)
	flows := repository.NewFlowRepository(db.Driver, logger)
	approvals := repository.NewApprovalRepository(db.Driver, logger)

	require.NoError(t, flows.CreateWithItems(ctx, &entity.FlowHeader{Planhead: str("CE/123/2024")}, []*entity.FlowItem{{
		SequenceNo:  1,
		Designation: str("SR DFM"),
		Department:  str("JU"),
		ActionDate:  str("2024-01-05"),
		ActionTime:  str("10:00:00"),
	}}))
	require.NoError(t, approvals.Create(ctx, &entity.ApprovalRecord{Planhead: str("CE/123/2024"), ApprovalDate: str("2024-01-01")}))

	svc := vetting.NewService(flows, approvals, vetting.Options{}, nil, logger)
	srv, _ := NewGRPCServer(NewDelayService(svc, logger), logger)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func callCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestComputeDelays(t *testing.T) {
	client := NewDelayServiceClient(newTestConn(t))

	req, err := structpb.NewStruct(map[string]any{"planHead": "CE/123/2024"})
	require.NoError(t, err)
	out, err := client.ComputeDelays(callCtx(t), req)
	require.NoError(t, err)

	assert.Equal(t, float64(4), out.Fields["executiveDelayDays"].GetNumberValue())
	assert.Zero(t, out.Fields["financeDelayDays"].GetNumberValue())
	meta := out.Fields["meta"].GetStructValue()
	require.NotNil(t, meta)
	assert.Equal(t, "exact_planhead", meta.Fields["matchStrategy"].GetStringValue())
	assert.Equal(t, "2024-01-01", meta.Fields["approvalDate"].GetStringValue())
}

func TestComputeDelays_NoCaseAttachesReport(t *testing.T) {
	client := NewDelayServiceClient(newTestConn(t))

	req, err := structpb.NewStruct(map[string]any{"planhead": "ZZZ", "strict": "yes"})
	require.NoError(t, err)
	_, err = client.ComputeDelays(callCtx(t), req)
	require.Error(t, err)

	st := status.Convert(err)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, MsgNoMatchingCase, st.Message())
	require.Len(t, st.Details(), 1)
	report, ok := st.Details()[0].(*structpb.Struct)
	require.True(t, ok)
	assert.Equal(t, "strict_no_flow_match", report.Fields["meta"].GetStructValue().Fields["matchStrategy"].GetStringValue())
}

func TestComputeDelays_RejectsOversizedInput(t *testing.T) {
	client := NewDelayServiceClient(newTestConn(t))

	req, err := structpb.NewStruct(map[string]any{"planhead": strings.Repeat("x", maxPlanheadLen+1)})
	require.NoError(t, err)
	_, err = client.ComputeDelays(callCtx(t), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCalculateBucketDelay(t *testing.T) {
	client := NewDelayServiceClient(newTestConn(t))

	req, err := structpb.NewStruct(map[string]any{
		"items": []any{
			map[string]any{"designation": "SR DFM", "department": "JU", "sequenceNo": 1, "actionDate": "2024-01-05", "actionTime": "10:00:00"},
		},
		"approvalDate": "2024-01-01",
	})
	require.NoError(t, err)
	out, err := client.CalculateBucketDelay(callCtx(t), req)
	require.NoError(t, err)
	assert.Equal(t, float64(4), out.Fields["executiveDelayDays"].GetNumberValue())
	assert.Zero(t, out.Fields["financeDelayDays"].GetNumberValue())
	assert.NotNil(t, out.Fields["markers"].GetStructValue())
}

func TestListVettingData(t *testing.T) {
	client := NewDelayServiceClient(newTestConn(t))

	out, err := client.ListVettingData(callCtx(t), nil)
	require.NoError(t, err)
	assert.Len(t, out.Fields["docdata"].GetListValue().GetValues(), 1)
	assert.Len(t, out.Fields["flowdata"].GetListValue().GetValues(), 1)
}

func TestHealth(t *testing.T) {
	conn := newTestConn(t)
	resp, err := healthpb.NewHealthClient(conn).Check(callCtx(t), &healthpb.HealthCheckRequest{Service: DelayServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/logging"
	repo "github.com/joseph-ayodele/vetting-tracker/internal/repository"
	"github.com/joseph-ayodele/vetting-tracker/internal/server"
	"github.com/joseph-ayodele/vetting-tracker/internal/vetting"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		planhead = flag.String("planhead", "", "plan head to match")
		workhead = flag.String("workhead", "", "work name to match")
		strict   = flag.String("strict", "true", "disable the latest-approval fallback (false|0|no to turn off)")
		addr     = flag.String("addr", "", "query a running vettingd over gRPC instead of the database")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	q := vetting.DelayQuery{Planhead: *planhead, Workname: *workhead, Strict: vetting.ParseStrict(*strict)}

	var (
		out []byte
		err error
	)
	if *addr != "" {
		out, err = viaGRPC(ctx, *addr, q)
	} else {
		out, err = viaDatabase(ctx, q)
	}
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func viaDatabase(ctx context.Context, q vetting.DelayQuery) ([]byte, error) {
	cfg, err := common.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DB_URL env var is required")
	}
	cfg.Log.Level = "warn"
	logger := logging.New(cfg.Log)

	db, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	defer db.Close(logger)

	svc := vetting.NewService(
		repo.NewFlowRepository(db.Driver, logger),
		repo.NewApprovalRepository(db.Driver, logger),
		vetting.Options{FlowScanWindow: cfg.Matching.FlowScanWindow, ApprovalScanWindow: cfg.Matching.ApprovalScanWindow},
		nil, logger,
	)
	report, err := svc.ComputeDelays(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.Filtered() && !report.CaseFound() {
		printError("%s\n", server.MsgNoMatchingCase)
	}
	return json.MarshalIndent(report, "", "  ")
}

func viaGRPC(ctx context.Context, addr string, q vetting.DelayQuery) ([]byte, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	req, err := structpb.NewStruct(map[string]any{
		"planhead": q.Planhead,
		"workhead": q.Workname,
		"strict":   q.Strict,
	})
	if err != nil {
		return nil, err
	}
	resp, err := server.NewDelayServiceClient(conn).ComputeDelays(ctx, req)
	if err != nil {
		st := status.Convert(err)
		for _, d := range st.Details() {
			if report, ok := d.(*structpb.Struct); ok {
				printError("%s\n", st.Message())
				return protojson.MarshalOptions{Multiline: true}.Marshal(report)
			}
		}
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true}.Marshal(resp)
}

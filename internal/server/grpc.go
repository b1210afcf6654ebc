// Package server exposes the delay engine over gRPC.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/logging"
)

const requestIDKey = "x-request-id"

// NewGRPCServer builds a server with the delay service, health and reflection
// registered. The returned health server reports SERVING for "".
func NewGRPCServer(delays DelayServiceServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(logger))}, opts...)
	s := grpc.NewServer(opts...)

	RegisterDelayServiceServer(s, delays)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(DelayServiceName, healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl
	reflection.Register(s)
	return s, hs
}

// UnaryLoggingInterceptor tags each call with a request id, taken from the
// x-request-id metadata when present, and logs its outcome.
func UnaryLoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDKey); len(v) > 0 {
				reqID = v[0]
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, reqID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, reqID))

		resp, err := handler(ctx, req)

		log := logging.WithContext(ctx, logger)
		code := status.Code(err)
		if err != nil {
			log.Warn("grpc.request", "method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds(), "err", err)
		} else {
			log.Info("grpc.request", "method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds())
		}
		return resp, err
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/app"
	"github.com/joseph-ayodele/vetting-tracker/internal/async"
	"github.com/joseph-ayodele/vetting-tracker/internal/common"
	"github.com/joseph-ayodele/vetting-tracker/internal/httpapi"
	"github.com/joseph-ayodele/vetting-tracker/internal/ingest"
	"github.com/joseph-ayodele/vetting-tracker/internal/logging"
	"github.com/joseph-ayodele/vetting-tracker/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", getenv("CONFIG_PATH", "config.yaml"), "path to YAML config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "vettingd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateExtraction(); err != nil {
		logger.Warn("vettingd.extraction_disabled", "reason", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Server.HTTPAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		httpServer := &http.Server{
			Addr: cfg.Server.HTTPAddr,
			Handler: httpapi.NewRouter(httpapi.Config{
				Ingestor:  a.Processor,
				Delays:    a.Vetting,
				Exporter:  a.Export,
				Health:    a.Ping,
				Metrics:   a.Metrics,
				JWTSecret: cfg.Auth.JWTSecret,
				Logger:    logger,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("vettingd.http.listening", "addr", cfg.Server.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http serve: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
		}
		grpcServer, hs := server.NewGRPCServer(server.NewDelayService(a.Vetting, logger), logger)
		g.Go(func() error {
			logger.Info("vettingd.grpc.listening", "addr", cfg.Server.GRPCAddr)
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			<-ctx.Done()
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			grpcServer.GracefulStop()
			return nil
		})
	}

	sources := []ingest.Source{
		{Dir: cfg.Ingest.FinanceDir, Kind: constants.FinanceFlow},
		{Dir: cfg.Ingest.ApprovalDir, Kind: constants.Approval},
	}
	if cfg.Ingest.FinanceDir != "" || cfg.Ingest.ApprovalDir != "" {
		queue := async.NewProcessorQueue(a.Processor, logger,
			async.WithWorkers(cfg.Ingest.Workers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
			async.WithProcessTimeout(cfg.Ingest.ProcessTimeout),
		)
		g.Go(func() error {
			err := ingest.Run(ctx, sources, cfg.Ingest.Debounce, queue, logger)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			queue.Shutdown(shutdownCtx)
			return err
		})
	}

	err = g.Wait()
	logger.Info("vettingd.stopped")
	return err
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

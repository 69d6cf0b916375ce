package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/quote-compare/internal/app"
	"github.com/joseph-ayodele/quote-compare/internal/async"
	"github.com/joseph-ayodele/quote-compare/internal/auth"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	repo "github.com/joseph-ayodele/quote-compare/internal/repository"
	"github.com/joseph-ayodele/quote-compare/internal/server"
	"github.com/joseph-ayodele/quote-compare/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repo.Open(ctx, app.StoreConfig(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open comparison store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close comparison store", "error", err)
		}
	}()

	reports, err := storage.NewStorage(ctx, storage.FromConfig(cfg.Storage))
	if err != nil {
		logger.Error("failed to open report storage", "type", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}

	pipe, err := app.NewPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build extraction pipeline", "error", err)
		os.Exit(1)
	}
	defer pipe.Close()

	svc := app.NewService(store, pipe, reports, cfg, logger)

	var queue *async.ReportQueue
	if cfg.Report.AutoGenerate {
		queue = async.NewReportQueue(svc, logger,
			async.WithWorkers(cfg.Report.Workers),
			async.WithProcessTimeout(cfg.Report.Timeout),
		)
		svc.SetReportScheduler(queue)
	}

	verifier, err := auth.FromConfig(cfg.Auth)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(2)
	}

	extraction := "local"
	if pipe.Text.HasPrimary() {
		extraction = "llmwhisperer, local fallback"
	}
	llmInfo := "disabled"
	if pipe.LLMEnabled() {
		llmInfo = strings.Join(pipe.LLM.Names(), ", ")
	}
	srv := server.NewServer(svc, verifier, server.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxFileSize:    cfg.Upload.MaxFileSize,
		MaxFiles:       cfg.Upload.MaxFiles,
	}, logger,
		server.WithHealthInfo("extraction", extraction),
		server.WithHealthInfo("llm", llmInfo),
		server.WithHealthInfo("storage", cfg.Storage.Type),
		server.WithHealthProbe("store", store.Ping),
	)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	var grpcServer *grpc.Server
	var healthServer *health.Server
	if addr := cfg.Server.GRPCHealthAddr; addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("failed to listen on health address", "addr", addr, "error", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer()
		healthServer = health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC health serve error", "error", err)
			}
		}()
		logger.Info("gRPC health listening", "addr", addr)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("quotesd listening", "addr", cfg.Server.HTTPAddr, "auto_report", cfg.Report.AutoGenerate)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error("http serve error", "error", err)
	}
	logger.Info("shutting down")

	if healthServer != nil {
		healthServer.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/hr-pulse/internal/config"
	"github.com/jonathan/hr-pulse/internal/db"
	"github.com/jonathan/hr-pulse/internal/logger"
	"github.com/jonathan/hr-pulse/internal/observability"
	"github.com/jonathan/hr-pulse/internal/prediction"
	"github.com/jonathan/hr-pulse/internal/server"
	"github.com/jonathan/hr-pulse/internal/server/ratelimit"
	"github.com/jonathan/hr-pulse/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort      int
	serveModelPath string
	serveDBURL     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the HTTP server exposing /predict-salary, /jobs, /upload, /health and /ready.

The model bundle is loaded once at startup. When it is missing the server
still starts and reports 503 on /ready and /predict-salary, unless
model.required is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "Port to listen on")
	serveCmd.Flags().StringVar(&serveModelPath, "model", "", "Path to the model bundle (overrides model.path)")
	serveCmd.Flags().StringVar(&serveDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd,
		flagOverride{flag: "port", key: "server.port"},
		flagOverride{flag: "model", key: "model.path"},
		flagOverride{flag: "db-url", key: "database.url"},
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	srv, cleanup, err := buildServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return srv.Start(ctx)
}

// buildServer loads the model and connects the backends. Backend failures
// other than a required model degrade the matching endpoints instead of
// aborting startup.
func buildServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*server.Server, func(), error) {
	deps := server.Deps{Logger: log}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	predictor, err := prediction.Load(cfg.Model.Path)
	if err != nil {
		if cfg.Model.Required {
			return nil, cleanup, fmt.Errorf("failed to load model: %w", err)
		}
		log.Warn("starting without a model", zap.String(logger.FieldPath, cfg.Model.Path), zap.Error(err))
		deps.ModelErr = err
	} else {
		info := predictor.Info()
		log.Info("model loaded",
			zap.String(logger.FieldPath, info.Path),
			zap.String(logger.FieldFingerprint, info.Fingerprint),
			zap.Int("features", info.Features),
		)
		deps.Predictor = predictor
	}

	if cfg.Database.URL != "" {
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Warn("database unavailable, /jobs will fail", zap.Error(err))
		} else {
			deps.Jobs = database
			closers = append(closers, database.Close)
		}
	} else {
		log.Warn("no database configured, /jobs will fail")
	}

	files, err := storage.NewLocalStorage(storage.Config{BasePath: cfg.Upload.Dir, MaxBytes: cfg.Upload.MaxBytes})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	deps.Files = files

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		UploadMaxBytes:  cfg.Upload.MaxBytes,
		RateLimit: ratelimit.NewConfig(
			cfg.RateLimit.Enabled,
			cfg.RateLimit.DefaultLimit,
			cfg.RateLimit.DefaultWindow,
			cfg.RateLimit.CleanupInterval,
			cfg.RateLimit.Whitelist,
			cfg.RateLimit.Blacklist,
		),
	}, deps)
	return srv, cleanup, nil
}

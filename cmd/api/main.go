package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application"
	appai "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application/ai"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application/corrections"
	appscans "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application/scans"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/config"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/exports"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scanerrors"
	domainscans "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/scans"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/ai/openai"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/backend"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/db/memory"
	mysqlp "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/db/mysql"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/db/postgres"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/httpserver"
	minioStore "github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/infra/storage"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/logger"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/middleware"
)

type repositories struct {
	db       *sql.DB
	history  domainscans.Repository
	failures scanerrors.Repository
	exports  exports.Repository
}

func main() {
	// load config, fall back to defaults when the file is missing
	path := config.Path()
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, closer := logger.New(logger.FromConfig(cfg, "sca-api"))
	defer closer.Close()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log hclog.Logger) error {
	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	checkers := map[string]middleware.HealthChecker{}
	if repos.db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: repos.db}
	}

	// init minio, export is optional
	var exporter *minioStore.Store
	if cfg.ExportEnabled() {
		exporter, err = minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init error: %w", err)
		}
		checkers["storage"] = middleware.CheckFunc(exporter.Ping)
		log.Info("export enabled", "bucket", cfg.Minio.BucketName)
	}

	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	opts := appscans.Options{
		PollInterval:     cfg.Backend.PollInterval,
		TransportRetries: cfg.Backend.TransportRetries,
		Clock:            application.SystemClock{},
		Logger:           log,
		Recorder: &appscans.HistoryRecorder{
			Scans:    repos.history,
			Failures: repos.failures,
			Logger:   log,
		},
		OnUpdate: newLifecycleMetrics().observe,
	}
	if cfg.EnrichmentEnabled() {
		narrator := openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
		opts.Enricher = appai.NewService(narrator, log)
		log.Info("narrative enrichment enabled", "model", narrator.Model)
	}
	ctrl := appscans.NewController(client, corrections.New(nil), opts)

	svc := &appscans.Service{
		Controller: ctrl,
		Exports:    repos.exports,
		History:    repos.history,
		Failures:   repos.failures,
		Clock:      application.SystemClock{},
	}
	if exporter != nil {
		svc.Exporter = exporter
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RequestsPerMinute)
	defer limiter.Stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: httpserver.NewRouter(svc, httpserver.Options{
			Logger:      log,
			APIKeys:     cfg.Auth.APIKeys,
			CORSOrigins: cfg.Server.CORSOrigins,
			Limiter:     limiter,
			Checkers:    checkers,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr, "backend", client.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		return err
	}
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(ctx2)
	ctrl.Abandon()
	return err
}

func openRepositories(ctx context.Context, cfg *config.Config, log hclog.Logger) (repositories, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		if db, err = mysqlp.Connect(ctx, cfg.MySQLDSN()); err != nil {
			return repositories{}, fmt.Errorf("mysql connect error: %w", err)
		}
		if cfg.Database.Migrate {
			if err := mysqlp.Migrate(ctx, db); err != nil {
				db.Close()
				return repositories{}, fmt.Errorf("mysql migrate error: %w", err)
			}
		}
		log.Info("history stored in mysql", "host", cfg.Database.Host, "db", cfg.Database.Name)
		return repositories{
			db:       db,
			history:  mysqlp.NewScanRepository(db),
			failures: mysqlp.NewScanErrorRepository(db),
			exports:  mysqlp.NewExportRepository(db),
		}, nil
	case config.DriverPostgres:
		if db, err = postgres.Connect(ctx, cfg.PostgresDSN()); err != nil {
			return repositories{}, fmt.Errorf("postgres connect error: %w", err)
		}
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return repositories{}, fmt.Errorf("postgres migrate error: %w", err)
			}
		}
		log.Info("history stored in postgres", "host", cfg.Database.Host, "db", cfg.Database.Name)
		return repositories{
			db:       db,
			history:  postgres.NewScanRepository(db),
			failures: postgres.NewScanErrorRepository(db),
			exports:  postgres.NewExportRepository(db),
		}, nil
	default:
		log.Warn("no database configured, history kept in memory")
		return repositories{
			history:  memory.NewScanRepository(),
			failures: memory.NewScanErrorRepository(),
			exports:  memory.NewExportRepository(),
		}, nil
	}
}

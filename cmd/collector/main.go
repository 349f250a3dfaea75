package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/fb-collector/internal/article"
	"github.com/pribylovaa/fb-collector/internal/config"
	"github.com/pribylovaa/fb-collector/internal/graph"
	collectorhttp "github.com/pribylovaa/fb-collector/internal/http"
	"github.com/pribylovaa/fb-collector/internal/metrics"
	"github.com/pribylovaa/fb-collector/internal/service"
	"github.com/pribylovaa/fb-collector/internal/storage"
	"github.com/pribylovaa/fb-collector/internal/storage/minio"
	"github.com/pribylovaa/fb-collector/internal/storage/mongo"
	"github.com/pribylovaa/fb-collector/internal/storage/postgres"
	"github.com/pribylovaa/fb-collector/pkg/redact"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting fb-collector",
		slog.String("env", cfg.Env),
		slog.String("page_id", cfg.Graph.PageID),
		slog.String("db_driver", cfg.DB.Driver),
		slog.String("db_url", redact.URL(cfg.DB.URL)),
	)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	os.Exit(run(rootCtx, rootCancel, cfg, log))
}

// run собирает зависимости и выполняет один прогон либо расписание. Возвращает код выхода.
func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, log *slog.Logger) int {
	defer cancel()

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := openStorage(dbCtx, cfg.DB)
	dbCancel()
	if err != nil {
		log.Error("storage_connect_failed", slog.String("err", err.Error()))
		return 1
	}
	log.Info("storage_connected", slog.String("driver", cfg.DB.Driver))
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = store.Close(closeCtx)
	}()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var archive article.Archive
	if cfg.Archive.Enabled() {
		a, err := minio.New(ctx, cfg.Archive)
		if err != nil {
			log.Error("archive_connect_failed", slog.String("err", err.Error()))
			return 1
		}
		archive = a
		log.Info("archive_enabled", slog.String("bucket", cfg.Archive.Bucket))
	}

	enricher, err := article.New(cfg.Enricher, archive)
	if err != nil {
		log.Error("enricher_init_failed", slog.String("err", err.Error()))
		return 1
	}

	svc := service.New(graph.New(cfg.Graph, graph.WithMetrics(m)), enricher, store, *cfg, m)
	log.Info("service_initialized")

	if cfg.Collect.Interval == 0 {
		if _, err := svc.Collect(ctx); err != nil {
			return 1
		}
		return 0
	}

	httpSrv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: collectorhttp.NewRouter(collectorhttp.Options{
			Logger:   log,
			Health:   svc,
			Gatherer: reg,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http_listen_start", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}()

	if err := svc.StartSchedule(ctx); err != nil {
		log.Error("schedule_failed", slog.String("err", err.Error()))
	}
	log.Info("shutdown_requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	log.Info("service_stopped")

	return 0
}

// openStorage выбирает реализацию хранилища по cfg.Driver.
func openStorage(ctx context.Context, cfg config.DBConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return mongo.New(ctx, cfg)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

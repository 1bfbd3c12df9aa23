package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/studyplan/internal/adapters/calendar"
	"github.com/okian/studyplan/internal/adapters/http/api"
	"github.com/okian/studyplan/internal/adapters/http/swagger"
	"github.com/okian/studyplan/internal/adapters/llm"
	"github.com/okian/studyplan/internal/adapters/repository"
	service "github.com/okian/studyplan/internal/app"
	"github.com/okian/studyplan/internal/config"
	"github.com/okian/studyplan/internal/domain/conflict"
	"github.com/okian/studyplan/pkg/logger"
	"github.com/okian/studyplan/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("calendar", cfg.CalendarProvider),
			logger.String("store", cfg.StoreDriver),
			logger.Bool("llm", cfg.LLMActive()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// buildService opens the store and calendar and assembles the service. The
// returned cleanup releases both and must run after the service stops.
func buildService(ctx context.Context, cfg *config.Config) (*service.Service, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	store, err := repository.Open(ctx, cfg.StoreDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	cal, stopCalendar, err := buildCalendar(ctx, cfg, loc)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	opts := []service.Option{
		service.WithLogger(logger.Get()),
		service.WithStore(store),
		service.WithCalendar(calendar.Instrument(cal)),
		service.WithLocation(loc),
		service.WithConfidenceThreshold(cfg.LLMConfidenceThreshold),
		service.WithLLMTimeout(cfg.LLMTimeout()),
		service.WithQueueSize(cfg.AuditQueueSize),
		service.WithWorkerCount(cfg.AuditWorkerCount),
		service.WithDedupeSize(cfg.ImportDedupeSize),
		service.WithChunking(cfg.ChunkSize, cfg.ChunkOverlap),
		service.WithUpcomingDays(cfg.UpcomingDays),
		service.WithConflictOptions(
			conflict.WithAdjacencyWindow(cfg.AdjacencyWindow()),
			conflict.WithMaxAlternatives(cfg.MaxAlternatives),
		),
	}
	if cfg.LLMActive() {
		opts = append(opts, service.WithAnalyzer(llm.New(cfg.LLMAPIKey, cfg.LLMBaseURL,
			llm.WithModel(cfg.LLMModel),
			llm.WithTimeout(cfg.LLMTimeout()),
		)))
	}

	cleanup := func() {
		stopCalendar()
		store.Close()
	}
	return service.New(opts...), cleanup, nil
}

// buildCalendar creates the configured provider. The returned stop func
// halts background refreshes.
func buildCalendar(ctx context.Context, cfg *config.Config, loc *time.Location) (calendar.Provider, func(), error) {
	noop := func() {}
	switch cfg.CalendarProvider {
	case config.CalendarMemory, "":
		return calendar.NewMemory(), noop, nil
	case config.CalendarGoogle:
		g, err := calendar.NewGoogle(ctx, calendar.GoogleCredentials{
			AccessToken:  cfg.GoogleAccessToken,
			RefreshToken: cfg.GoogleRefreshToken,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
		}, cfg.CalendarID, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create google calendar: %w", err)
		}
		return g, noop, nil
	case config.CalendarICS:
		feed := calendar.NewFeed(cfg.ICSURL, calendar.WithFeedLocation(loc))
		if err := feed.Start(ctx, cfg.ICSRefreshCron); err != nil {
			return nil, nil, fmt.Errorf("failed to start ics feed: %w", err)
		}
		return feed, feed.Stop, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown calendar provider %q", config.ErrInvalidConfig, cfg.CalendarProvider)
	}
}

// newHandler registers the API and its documentation on a fresh mux.
func newHandler(ctx context.Context, svc *service.Service) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically publishes the service's stats.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics copies queue and worker figures from GetStats into
// their gauges.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}

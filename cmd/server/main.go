package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/auth"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/config"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/database"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/hub"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/metrics"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/server"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/repository"
)

func main() {
	ctx := context.Background()
	sctx := WithSignal(ctx)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	repo := repository.New(pool)
	authSvc := auth.NewService(cfg.TokenSecret, cfg.TokenTTL)
	hubInstance := hub.New(log, m, clockwork.NewRealClock())

	router := InitRouter(cfg, log, registry, hubInstance, repo, authSvc)
	httpSrv := server.NewHTTPServer(":"+cfg.Port, router)

	app := newApplication(log, httpSrv, hubInstance)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

func newLogger(cfg *config.Config) logger.Logger {
	lCfg := logger.NewDefaultConfig()
	lCfg.Level = logger.ParseLevel(cfg.LogLevel)
	lCfg.Format = cfg.LogFormat
	lCfg.Output = cfg.LogOutput
	lCfg.FilePath = cfg.LogFile
	return logger.NewLogrusLogger(lCfg)
}

type Application struct {
	logger  logger.Logger
	httpSrv server.Server
	hub     *hub.Hub
}

func newApplication(
	log logger.Logger,
	httpSrv *server.HTTPServer,
	hubInstance *hub.Hub,
) *Application {
	return &Application{
		logger:  log.WithField("app", "quickpoll"),
		httpSrv: httpSrv,
		hub:     hubInstance,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg := errgroup.Group{}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Close live connections first so the HTTP server can drain.
		app.hub.Shutdown()

		return app.httpSrv.Stop(shutdownCtx)
	})

	return eg.Wait()
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}

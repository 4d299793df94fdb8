package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"neonflow/internal/calculator"
	"neonflow/internal/config"
	"neonflow/internal/history"
	"neonflow/internal/observability"
	"neonflow/internal/server"
)

func main() {

	ctx := context.Background()

	// Environment
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	configPath := flag.String("config", config.PathFromEnv(), "path to the TOML, YAML or JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.Logging.Level)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics, log export
	telemetryShutdown, err := initTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		panic(err)
	}
	defer telemetryShutdown(ctx)

	// History store
	store, err := history.Open(cfg.History)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	session := calculator.NewSession(ctx, store, observability.Logger)

	// Router
	router := server.NewRouter(session)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Server.Addr),
			zap.String("history_backend", cfg.History.Backend),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}
}

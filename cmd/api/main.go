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

	"mbtaboard.org/internal/app"
	"mbtaboard.org/internal/appconf"
	"mbtaboard.org/internal/logging"
	"mbtaboard.org/internal/restapi"
)

func main() {
	var (
		configPath string
		port       int
		env        string
	)

	flag.StringVar(&configPath, "config", "", "Path to a YAML config file (optional)")
	flag.IntVar(&port, "port", 0, "API server port (overrides config)")
	flag.StringVar(&env, "env", "", "Environment (development|staging|production, overrides config)")
	flag.Parse()

	logger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)

	cfg, err := appconf.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if env != "" {
		cfg.Server.Env = env
	}

	application := app.New(cfg, logger)
	api := restapi.NewRestAPI(application)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownError := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		logger.Info("shutting down server", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Server.Env)
	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		logger.Error(err.Error())
		os.Exit(1)
	}

	// ListenAndServe returned because Shutdown was called; wait for the
	// in-flight requests to drain.
	if err := <-shutdownError; err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// Package main implements the chess room server: a rules-refereeing
// daemon that hosts games over websockets with a small REST surface
// for room management.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chessd/internal/config"
	"chessd/internal/logging"
	serverhttp "chessd/internal/server/http"
	"chessd/internal/server/service"
	"chessd/internal/server/storage"
	"chessd/internal/server/ws"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		listen     = flag.String("listen", "", "Listen address (overrides config)")
		dev        = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		pidPath    = flag.String("pid", "", "Optional path to write PID file")
		pidLock    = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("config error: %v", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dev {
		cfg.Dev = true
	}
	if *pidPath != "" {
		cfg.PIDFile = *pidPath
	}
	if *pidLock {
		cfg.PIDLock = true
	}
	if cfg.PIDLock && cfg.PIDFile == "" {
		fatalf("-pid-lock requires -pid")
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fatalf("logging error: %v", err)
	}
	defer log.Sync()

	if cfg.PIDFile != "" {
		cleanup, err := managePIDFile(cfg.PIDFile, cfg.PIDLock)
		if err != nil {
			log.Fatal("failed to manage PID file", zap.Error(err))
		}
		defer cleanup()
		log.Info("PID file created", zap.String("path", cfg.PIDFile), zap.Bool("lock", cfg.PIDLock))
	}

	var store *storage.Store
	if cfg.Archive.Enabled {
		store, err = storage.NewStore(cfg.Archive.DSN, log)
		if err != nil {
			log.Fatal("failed to initialize archive", zap.Error(err))
		}
		if err := store.InitDB(); err != nil {
			log.Fatal("failed to initialize archive schema", zap.Error(err))
		}
		log.Info("archive enabled")
	} else {
		log.Info("archive disabled")
	}

	svc := service.New(store, cfg.MaxRooms, log)
	hub := ws.NewHub(log)
	wsh := ws.NewHandler(svc, hub, log)
	app := serverhttp.NewFiberApp(svc, wsh, log, cfg.Dev)

	go func() {
		log.Info("chess room server starting",
			zap.String("listen", cfg.Listen),
			zap.Int("max_rooms", cfg.MaxRooms),
			zap.Bool("dev", cfg.Dev))
		if err := app.Listen(cfg.Listen); err != nil {
			log.Error("listen error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	if err := app.ShutdownWithTimeout(gracefulShutdownTimeout); err != nil {
		log.Warn("server shutdown incomplete", zap.Error(err))
	}
	if err := svc.Shutdown(); err != nil {
		log.Warn("service shutdown incomplete", zap.Error(err))
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

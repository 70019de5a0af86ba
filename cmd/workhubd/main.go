package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codefionn/workhub/internal/auth"
	"github.com/codefionn/workhub/internal/config"
	"github.com/codefionn/workhub/internal/hub"
	"github.com/codefionn/workhub/internal/logger"
	"github.com/codefionn/workhub/internal/pidfile"
	"github.com/codefionn/workhub/internal/pprof"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to config file (default: "+config.DefaultConfigPath()+")")
		listenAddr = flag.String("addr", "", "listen address override")
		logLevel   = flag.String("log-level", "", "log level override (debug, info, warn, error, none)")
		pidPath    = flag.String("pidfile", "", "write a PID file at this path")
		pprofAddr  = flag.String("pprof-addr", "", "serve /debug/pprof on this address")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Global().Close() }()

	if *pidPath != "" {
		pf, err := pidfile.Acquire(*pidPath)
		if err != nil {
			return err
		}
		defer func() { _ = pf.Release() }()
	}

	if *pprofAddr != "" {
		dbg := pprof.NewServer(*pprofAddr)
		if err := dbg.Start(); err != nil {
			return fmt.Errorf("failed to start pprof server: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = dbg.Stop(ctx)
		}()
	}

	authn := auth.NewAuthenticator(nil, cfg.AuthToken)

	h := hub.New(hub.Options{
		Authenticator:     authn,
		HeartbeatInterval: cfg.HeartbeatInterval(),
		HeartbeatTimeout:  cfg.HeartbeatTimeout(),
		Callbacks: hub.Callbacks{
			OnWorkerConnected: func(workerID string) {
				logger.Info("Worker connected: %s", workerID)
			},
			OnWorkerDisconnected: func(workerID string) {
				logger.Info("Worker disconnected: %s", workerID)
			},
			OnTaskComplete: func(workerID, taskID string, _ interface{}) {
				logger.Info("Task %s completed by %s", taskID, workerID)
			},
			OnTaskError: func(workerID, taskID, errMsg string) {
				logger.Warn("Task %s failed on %s: %s", taskID, workerID, errMsg)
			},
			OnWorkerReadyForTermination: func(workerID string) {
				logger.Info("Worker %s ready for termination", workerID)
			},
		},
	})

	srv := hub.NewServer(cfg, h)
	if err := srv.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received %v, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

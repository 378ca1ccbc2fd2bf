package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felipeagger/htlb/internal/config"
	"github.com/felipeagger/htlb/internal/lifecycle"
	"github.com/felipeagger/htlb/internal/status"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the proxy and block until shutdown",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	controller := lifecycle.New(cfg, logger)
	if err := controller.Start(); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	logger.Info("htlb started", "listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), "policy", cfg.Algorithm)

	control := &status.ControlServer{
		SocketPath: socketPath,
		StatusFunc: controller.Status,
		StopFunc:   controller.Stop,
	}
	if err := control.Start(); err != nil {
		logger.Warn("control socket unavailable", "error", err)
	} else {
		defer control.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	return controller.Stop()
}

func newLogger(cfg config.Logging) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.Level) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	out := os.Stderr
	if cfg.File != "" {
		if f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = f
		}
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

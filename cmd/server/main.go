package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/GShivamani/Multi-Client-TCP-Chat-Server/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run owns the whole lifecycle so every defer fires before the process
// exits and main stays trivially testable.
func run() error {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg, err := server.LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	chat := server.NewServer(cfg, log)
	if err := chat.Start(); err != nil {
		return err
	}

	httpServer := server.NewHTTPServer(cfg, chat, log)
	go func() {
		log.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("shutdown signal received")

	if err := server.ShutdownHTTPServer(httpServer, cfg.ShutdownTimeout); err != nil {
		log.Warn("http server shutdown", "err", err)
	}
	return chat.Shutdown(cfg.ShutdownTimeout)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/thulla/internal/auth"
	"github.com/jason-s-yu/thulla/internal/cache"
	"github.com/jason-s-yu/thulla/internal/config"
	"github.com/jason-s-yu/thulla/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	// "server hash-password <pw>" prints a value for ADMIN_PASSWORD_HASH.
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		hash, err := auth.HashPassword(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The archive outlives the signal context so departures published during
	// shutdown are still pushed.
	archiveCtx, stopArchive := context.WithCancel(context.Background())
	defer stopArchive()

	var sinks []handlers.EventSink
	archiveDone := make(chan struct{})
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("event archive: %v", err)
		}
		defer rdb.Close()

		archive := cache.NewEventArchive(rdb, cfg.EventQueue, 1024, logger.WithField("component", "archive"))
		go func() {
			defer close(archiveDone)
			archive.Run(archiveCtx)
		}()
		sinks = append(sinks, archive)
		logger.Infof("archiving events to Redis list %q at %s", cfg.EventQueue, cfg.RedisAddr)
	} else {
		close(archiveDone)
		logger.Info("REDIS_ADDR not set, event archive disabled")
	}

	gs, err := handlers.NewGameServer(logger, cfg, sinks...)
	if err != nil {
		logger.Fatalf("game server: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           gs.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Sessions are hijacked connections, so srv.Shutdown does not wait for
	// them; gs.Shutdown ends each one and waits for its seat to be released.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gs.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("game shutdown: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	stopArchive()
	<-archiveDone
	logger.Info("stopped")
}

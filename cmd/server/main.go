// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/truthorlie/internal/auth"
	"github.com/jason-s-yu/truthorlie/internal/cache"
	"github.com/jason-s-yu/truthorlie/internal/config"
	"github.com/jason-s-yu/truthorlie/internal/database"
	"github.com/jason-s-yu/truthorlie/internal/handlers"
	"github.com/jason-s-yu/truthorlie/internal/lobby"
	"github.com/jason-s-yu/truthorlie/internal/notify"
	"github.com/jason-s-yu/truthorlie/internal/session"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := cfg.NewLogger()

	ttl, _ := cfg.TokenTTL()
	var issuer *auth.Issuer
	if cfg.TokenPrivateKeyPath != "" {
		issuer, err = auth.NewIssuerFromPath(cfg.TokenPrivateKeyPath, cfg.TokenPublicKeyPath, ttl)
	} else {
		issuer, err = auth.NewIssuer(ttl)
	}
	if err != nil {
		logger.Fatalf("auth init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := handlers.NewHub()
	dispatcher := notify.NewDispatcher(hub, logger.WithField("component", "dispatcher"), cfg.DeliveryTimeout)
	registry := lobby.NewRegistry(lobby.WithLogger(logger.WithField("component", "registry")))

	opts := []session.ControllerOption{
		session.WithLogger(logger.WithField("component", "controller")),
		session.WithFailureCounter(dispatcher),
	}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		opts = append(opts, session.WithRecorder(cache.NewPublisher(rdb, cfg.QueueName)))
		logger.Infof("publishing lobby events to %s", cfg.QueueName)
	}
	controller := session.NewController(registry, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	gateway := handlers.NewGateway(logger, issuer, hub, controller, dispatcher, cfg.AllowedOrigins)
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer pool.Close()
		gateway.SetHistory(database.NewArchive(pool))
		logger.Info("serving game history on /games")
	}
	gateway.Routes(mux)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", cfg.Address())
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	case <-ctx.Done():
		logger.Info("terminating")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}
}

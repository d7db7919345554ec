package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"math-solver/api/internal/config"
	"math-solver/api/internal/handle"
	"math-solver/api/internal/httpserver"
	"math-solver/api/internal/llm/registry"
	"math-solver/api/internal/solver"
	"math-solver/api/internal/store"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engines, closeEngines := registry.Build(ctx, cfg)
	defer closeEngines()

	history, err := store.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("history store")
	}
	defer history.Close()

	h := handle.New(solver.New(engines, history))
	srv := httpserver.New(":"+cfg.Port, httpserver.NewRouter(h))

	go func() {
		log.WithFields(log.Fields{"addr": srv.Addr, "event": "listening"}).Info("math solver api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
}

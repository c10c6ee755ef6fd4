package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/cache"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/db"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/geoserve"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/logger"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/metrics"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/middleware"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/store"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()
	log := logger.L()

	cfg := config.Load()

	conn, dialect, err := db.Connect(cfg.Database)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	gateway := store.NewGateway(conn, dialect, log)
	if err := gateway.Migrate(); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	svc := geoserve.NewService(conn, dialect, cfg.Cache, log)
	memo := cache.NewMemo()
	artifacts := cache.NewArtifactStore(cfg.Cache.Dir)
	precomputer := cache.NewPrecomputer(svc, artifacts, memo, log)
	scheduler := cache.NewScheduler(cfg.Precompute.Hour, cfg.Precompute.Minute, precomputer.Run, log)

	handlers := geoserve.NewHandlers(svc, memo, artifacts, log)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.LoggingMiddleware(log))
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	handlers.Register(r)
	r.Handle("/metrics", metrics.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go scheduler.Start(ctx)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		log.Info("listening", "port", cfg.Server.Port, "backend", dialect.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

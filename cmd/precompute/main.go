package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/cache"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/db"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/geoserve"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/logger"
)

// One-shot artifact rebuild, for warming the cache outside the daily
// schedule (after a bulk import, or on a fresh deployment).
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

	svc := geoserve.NewService(conn, dialect, cfg.Cache, log)
	artifacts := cache.NewArtifactStore(cfg.Cache.Dir)
	precomputer := cache.NewPrecomputer(svc, artifacts, cache.NewMemo(), log)

	if err := precomputer.Run(context.Background()); err != nil {
		log.Error("precompute failed", "error", err)
		os.Exit(1)
	}
	log.Info("precompute complete", "dir", cfg.Cache.Dir)
}

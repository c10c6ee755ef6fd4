package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/db"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/logger"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/reconcile"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/registry"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/store"
)

// Registry importer: fetches the parcel mesh for each manifest municipality
// from the land-registry API, reconciles it and upserts the survivors.
func main() {
	_ = godotenv.Load()
	logger.Setup()
	log := logger.L()

	cfg := config.Load()
	if cfg.GeoAPI.Token == "" {
		log.Error("GEOAPI_TOKEN is required")
		os.Exit(1)
	}
	manifest, err := config.LoadManifest(cfg.Ingest.ManifestPath)
	if err != nil {
		log.Error("manifest load failed", "error", err)
		os.Exit(1)
	}
	if len(manifest.Municipios) == 0 {
		log.Error("manifest lists no municipalities")
		os.Exit(1)
	}

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

	ctx := context.Background()
	fiscal, err := gateway.FiscalTable(ctx)
	if err != nil {
		log.Error("fiscal reference table load failed", "error", err)
		os.Exit(1)
	}
	if fiscal.Len() == 0 {
		log.Warn("fiscal reference table is empty, parcels will not be classified")
	}

	client := registry.NewClient(cfg.GeoAPI, log)
	engine := reconcile.NewEngine(fiscal, reconcile.NewQuarantine(cfg.Ingest.QuarantineDir), log)

	var withErrors int
	for _, municipio := range manifest.Municipios {
		log.Info("fetching municipality", "municipio", municipio)
		raws, err := client.FetchMunicipality(ctx, municipio)
		if err != nil {
			log.Error("fetch failed", "municipio", municipio, "error", err)
			withErrors++
			continue
		}
		if len(raws) == 0 {
			log.Warn("no records for municipality", "municipio", municipio)
			continue
		}
		res, err := engine.Run(municipio, raws)
		if err != nil {
			log.Error("reconciliation failed", "municipio", municipio, "error", err)
			withErrors++
			continue
		}
		n, err := gateway.UpsertParcels(ctx, res.Parcels)
		if err != nil {
			log.Error("upsert failed", "municipio", municipio, "error", err)
			withErrors++
			continue
		}
		fmt.Printf("• %s: %d brutos, %d salvos, %d idênticos, %d inconsistentes, %d sem geometria\n",
			municipio, res.Stats.Input, n, res.Stats.IdenticalDuplicates,
			res.Stats.InconsistentDuplicates, res.Stats.MissingGeometry)
	}

	if withErrors > 0 {
		fmt.Printf("Municípios com erros: %d\n", withErrors)
		os.Exit(1)
	}
}

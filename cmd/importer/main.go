package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/db"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/ingest"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/logger"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/store"
)

// Bulk CSV importer: loads every dataset named in the manifest, skipping
// tables already refreshed inside the freshness window.
func main() {
	_ = godotenv.Load()
	logger.Setup()
	log := logger.L()

	cfg := config.Load()
	manifest, err := config.LoadManifest(cfg.Ingest.ManifestPath)
	if err != nil {
		log.Error("manifest load failed", "error", err)
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

	importer := ingest.NewImporter(gateway, cfg.Ingest, log)
	results := importer.Run(context.Background(), manifest)

	failed := 0
	fmt.Println("\n=== RESUMO DA IMPORTAÇÃO ===")
	for _, r := range results {
		switch r.Status {
		case ingest.StatusImported:
			fmt.Printf("• %s: %d registros\n", r.Table, r.Rows)
		case ingest.StatusSkipped:
			fmt.Printf("• %s: dados recentes, importação pulada\n", r.Table)
		default:
			failed++
			fmt.Printf("• %s: FALHOU (%v)\n", r.Table, r.Err)
		}
	}
	fmt.Println("============================")
	if failed > 0 {
		os.Exit(1)
	}
}

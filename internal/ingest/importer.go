package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/reconcile"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/store"
)

// Dataset import statuses reported in the run summary.
const (
	StatusImported = "imported"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// DatasetResult is one line of the import summary.
type DatasetResult struct {
	Table  string
	Status string
	Rows   int
	Err    error
}

// Importer drives one bulk import cycle over the manifest's datasets.
// Each dataset is gated by the freshness window: tables already loaded
// inside the window are reported as skipped and left untouched.
type Importer struct {
	gw            *store.Gateway
	quarantineDir string
	window        time.Duration
	log           *slog.Logger
}

func NewImporter(gw *store.Gateway, cfg config.IngestConfig, log *slog.Logger) *Importer {
	return &Importer{
		gw:            gw,
		quarantineDir: cfg.QuarantineDir,
		window:        cfg.FreshnessWindow,
		log:           log,
	}
}

// Run imports every dataset named in the manifest. The reference table runs
// first so the parcel mesh can join regions and fiscal modules. A failing
// dataset is reported and does not stop the others.
func (imp *Importer) Run(ctx context.Context, m *config.Manifest) []DatasetResult {
	var results []DatasetResult
	add := func(table string, rows int, skipped bool, err error) {
		r := DatasetResult{Table: table, Status: StatusImported, Rows: rows, Err: err}
		if skipped {
			r.Status = StatusSkipped
		}
		if err != nil {
			r.Status = StatusFailed
			imp.log.Error("dataset import failed", "table", table, "error", err)
		}
		results = append(results, r)
	}

	rows, skipped, err := imp.importRegionModules(ctx, m.Datasets.RegioesModulosFiscais)
	add(store.RegionFiscalModule{}.TableName(), rows, skipped, err)

	rows, skipped, err = imp.importParcels(ctx, m.Datasets.MalhaFundiaria)
	add(store.Parcel{}.TableName(), rows, skipped, err)

	rows, skipped, err = imp.importMunicipios(ctx, m.Datasets.Municipios)
	add(store.MunicipioBoundary{}.TableName(), rows, skipped, err)

	rows, skipped, err = imp.importAssentamentos(ctx, m.Datasets.Assentamentos)
	add(store.Assentamento{}.TableName(), rows, skipped, err)

	rows, skipped, err = imp.importReservatorios(ctx, m.Datasets.Reservatorios)
	add(store.Reservatorio{}.TableName(), rows, skipped, err)

	return results
}

// shouldRun wraps the gateway's freshness gate; an unset path means the
// manifest does not carry that dataset and the import is skipped.
func (imp *Importer) shouldRun(ctx context.Context, table, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	return imp.gw.ShouldImport(ctx, table, imp.window)
}

func (imp *Importer) importRegionModules(ctx context.Context, path string) (int, bool, error) {
	table := store.RegionFiscalModule{}.TableName()
	run, err := imp.shouldRun(ctx, table, path)
	if err != nil || !run {
		return 0, !run, err
	}
	rows, err := RegionModulesFromCSV(path)
	if err != nil {
		return 0, false, err
	}
	n, err := imp.gw.ReplaceRegionFiscalModules(ctx, rows)
	return n, false, err
}

func (imp *Importer) importParcels(ctx context.Context, path string) (int, bool, error) {
	table := store.Parcel{}.TableName()
	run, err := imp.shouldRun(ctx, table, path)
	if err != nil || !run {
		return 0, !run, err
	}
	raws, err := ParcelsFromCSV(path)
	if err != nil {
		return 0, false, err
	}
	fiscal, err := imp.gw.FiscalTable(ctx)
	if err != nil {
		return 0, false, err
	}
	engine := reconcile.NewEngine(fiscal, reconcile.NewQuarantine(imp.quarantineDir), imp.log)
	res, err := engine.Run("todos", raws)
	if err != nil {
		return 0, false, fmt.Errorf("reconcile: %w", err)
	}
	n, err := imp.gw.UpsertParcels(ctx, res.Parcels)
	return n, false, err
}

func (imp *Importer) importMunicipios(ctx context.Context, path string) (int, bool, error) {
	table := store.MunicipioBoundary{}.TableName()
	run, err := imp.shouldRun(ctx, table, path)
	if err != nil || !run {
		return 0, !run, err
	}
	rows, err := MunicipiosFromCSV(path)
	if err != nil {
		return 0, false, err
	}
	n, err := imp.gw.UpsertMunicipios(ctx, rows)
	return n, false, err
}

func (imp *Importer) importAssentamentos(ctx context.Context, path string) (int, bool, error) {
	table := store.Assentamento{}.TableName()
	run, err := imp.shouldRun(ctx, table, path)
	if err != nil || !run {
		return 0, !run, err
	}
	rows, err := AssentamentosFromCSV(path)
	if err != nil {
		return 0, false, err
	}
	n, err := imp.gw.UpsertAssentamentos(ctx, rows)
	return n, false, err
}

func (imp *Importer) importReservatorios(ctx context.Context, path string) (int, bool, error) {
	table := store.Reservatorio{}.TableName()
	run, err := imp.shouldRun(ctx, table, path)
	if err != nil || !run {
		return 0, !run, err
	}
	rows, err := ReservatoriosFromCSV(path)
	if err != nil {
		return 0, false, err
	}
	n, err := imp.gw.UpsertReservatorios(ctx, rows)
	return n, false, err
}

package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
	dbpkg "github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/db"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/store"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestParcelsFromCSVAliases(t *testing.T) {
	path := writeCSV(t, "lote_id,municipio,proprietario,multipolygon,cpfcnpj\n"+
		`42,IRAUCUBA,Ana,"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 1, 0 0)))",123`+"\n")

	raws, err := ParcelsFromCSV(path)
	if err != nil {
		t.Fatalf("ParcelsFromCSV: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("rows = %d", len(raws))
	}
	r := raws[0]
	if r.LoteID != "42" || r.Municipio != "IRAUCUBA" || r.CPFCNPJ != "123" {
		t.Errorf("parsed row = %+v", r)
	}
	if r.Geometria == "" {
		t.Error("geometry column not picked up")
	}
}

func TestRegionModulesFromCSV(t *testing.T) {
	path := writeCSV(t, "regiao_administrativa,nome_municipio,modulo_fiscal\n"+
		"Cariri,Crato,\"10,0\"\n"+
		"Cariri,,5\n")

	rows, err := RegionModulesFromCSV(path)
	if err != nil {
		t.Fatalf("RegionModulesFromCSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, blank municipality must be dropped", len(rows))
	}
	if rows[0].ModuloFiscal == nil || *rows[0].ModuloFiscal != 10.0 {
		t.Errorf("modulo_fiscal = %v, locale decimal comma must parse", rows[0].ModuloFiscal)
	}
}

func TestAssentamentosFromCSVGeometry(t *testing.T) {
	path := writeCSV(t, "cd_sipra,municipio,nome_assentamento,area,num_familias,wkt_geometry\n"+
		`CE001,Santa Quitéria,Boa Esperança,120.5,34,"POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0))"`+"\n")

	rows, err := AssentamentosFromCSV(path)
	if err != nil {
		t.Fatalf("AssentamentosFromCSV: %v", err)
	}
	a := rows[0]
	if a.Geom == "" {
		t.Error("WKT must convert to EWKB hex")
	}
	if a.NomeMunicipio == nil || *a.NomeMunicipio != "santa_quiteria" {
		t.Errorf("municipality slug = %v", a.NomeMunicipio)
	}
	if a.NumFamilias == nil || *a.NumFamilias != 34 {
		t.Errorf("num_familias = %v", a.NumFamilias)
	}
}

func TestReservatoriosFromCSVLegacyColumns(t *testing.T) {
	path := writeCSV(t, "id_sagreh,nome,proprietar,municipio,x,y,capacid_m3\n"+
		"R1,Orós,DNOCS,Orós,-38.91,-6.24,1940000000\n")

	rows, err := ReservatoriosFromCSV(path)
	if err != nil {
		t.Fatalf("ReservatoriosFromCSV: %v", err)
	}
	r := rows[0]
	if r.Proprietario == nil || *r.Proprietario != "DNOCS" {
		t.Errorf("legacy proprietar column not aliased: %v", r.Proprietario)
	}
	if r.X == nil || r.Y == nil {
		t.Fatal("coordinates missing")
	}
	if *r.X != -38.91 || *r.Y != -6.24 {
		t.Errorf("coords = %v, %v", *r.X, *r.Y)
	}
}

func TestMunicipiosFromCSVBadGeometryFails(t *testing.T) {
	path := writeCSV(t, "nm_mun,wkt\nCrato,POINT (1 1)\n")
	if _, err := MunicipiosFromCSV(path); err == nil {
		t.Fatal("point geometry must be rejected for a boundary dataset")
	}
}

func testImporter(t *testing.T) (*Importer, *store.Gateway) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	gw := store.NewGateway(conn, dbpkg.SpatiaLiteDialect{}, log)
	if err := conn.AutoMigrate(&store.RegionFiscalModule{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.IngestConfig{
		QuarantineDir:   t.TempDir(),
		FreshnessWindow: 24 * time.Hour,
	}
	return NewImporter(gw, cfg, log), gw
}

func TestImporterSkipsFreshAndAbsentDatasets(t *testing.T) {
	imp, _ := testImporter(t)
	refCSV := writeCSV(t, "regiao_administrativa,nome_municipio,modulo_fiscal\nCariri,Crato,10\n")

	var m config.Manifest
	m.Datasets.RegioesModulosFiscais = refCSV

	results := imp.Run(context.Background(), &m)
	if len(results) != 5 {
		t.Fatalf("results = %d, want one per dataset", len(results))
	}

	byTable := make(map[string]DatasetResult)
	for _, r := range results {
		byTable[r.Table] = r
	}
	ref := byTable[store.RegionFiscalModule{}.TableName()]
	if ref.Status != StatusImported || ref.Rows != 1 {
		t.Errorf("reference table result = %+v", ref)
	}
	// Datasets without a manifest path are skipped, not failed.
	for _, table := range []string{
		store.MunicipioBoundary{}.TableName(),
		store.Assentamento{}.TableName(),
		store.Reservatorio{}.TableName(),
	} {
		if got := byTable[table].Status; got != StatusSkipped {
			t.Errorf("%s status = %q, want skipped", table, got)
		}
	}

	// A second run inside the freshness window skips the reference table.
	results = imp.Run(context.Background(), &m)
	for _, r := range results {
		if r.Table == ref.Table && r.Status != StatusSkipped {
			t.Errorf("second run status = %q, want skipped", r.Status)
		}
	}
}

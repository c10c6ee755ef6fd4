package reconcile

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/classify"
)

// squareWKT is a 100 m square in the survey CRS: exactly 1 hectare.
const squareWKT = "POLYGON ((0 0, 100 0, 100 100, 0 100, 0 0))"

type staticRegions map[string]struct {
	region string
	mf     float64
}

func (s staticRegions) Lookup(slug string) (string, *float64, bool) {
	e, ok := s[slug]
	if !ok {
		return "", nil, false
	}
	return e.region, &e.mf, true
}

func testEngine(t *testing.T, regions staticRegions) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewEngine(regions, NewQuarantine(dir), log), dir
}

func validRaw(loteID string) RawParcel {
	return RawParcel{
		LoteID:       loteID,
		Municipio:    "Santa Quitéria",
		Proprietario: "José da Silva",
		Imovel:       "Fazenda Boa Vista",
		Geometria:    squareWKT,
		DataCriacao:  "2021-03-01 10:00:00",
		CPFCNPJ:      "123.456.789-00",
	}
}

func quarantineFiles(t *testing.T, dir, kind string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, kind+"_*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func TestIdenticalDuplicatesKeepOne(t *testing.T) {
	eng, dir := testEngine(t, nil)
	raws := []RawParcel{validRaw("7"), validRaw("7"), validRaw("7")}

	res, err := eng.Run("santa_quiteria", raws)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Parcels) != 1 {
		t.Fatalf("kept %d parcels, want 1", len(res.Parcels))
	}
	if res.Parcels[0].LoteID != 7 {
		t.Errorf("lote_id = %d", res.Parcels[0].LoteID)
	}
	if res.Stats.IdenticalDuplicates != 2 {
		t.Errorf("IdenticalDuplicates = %d, want 2", res.Stats.IdenticalDuplicates)
	}
	if res.Stats.IdenticalGroups != 1 {
		t.Errorf("IdenticalGroups = %d, want 1", res.Stats.IdenticalGroups)
	}
	if res.Stats.UniqueKeys != 1 {
		t.Errorf("UniqueKeys = %d, want 1", res.Stats.UniqueKeys)
	}
	if res.Stats.Municipalities != 1 {
		t.Errorf("Municipalities = %d, want 1", res.Stats.Municipalities)
	}

	files := quarantineFiles(t, dir, kindIdentical)
	if len(files) != 1 {
		t.Fatalf("identical quarantine files = %d, want 1", len(files))
	}
	var entries []quarantined
	raw, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read quarantine: %v", err)
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("unmarshal quarantine: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("quarantined entries = %d, want the whole group", len(entries))
	}
}

func TestQuarantineNeverLeaksTaxpayerID(t *testing.T) {
	eng, dir := testEngine(t, nil)
	raws := []RawParcel{validRaw("7"), validRaw("7")}

	if _, err := eng.Run("santa_quiteria", raws); err != nil {
		t.Fatalf("Run: %v", err)
	}
	files := quarantineFiles(t, dir, kindIdentical)
	if len(files) != 1 {
		t.Fatalf("quarantine files = %d, want 1", len(files))
	}
	raw, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read quarantine: %v", err)
	}
	if strings.Contains(string(raw), "123.456.789-00") {
		t.Error("taxpayer id leaked into quarantine artifact")
	}
}

func TestInconsistentDuplicatesDropAll(t *testing.T) {
	eng, dir := testEngine(t, nil)
	a := validRaw("9")
	b := validRaw("9")
	b.DataModificacao = "2024-06-01 12:00:00"

	res, err := eng.Run("todos", []RawParcel{a, b})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Parcels) != 0 {
		t.Fatalf("kept %d parcels, want 0: no tiebreak for conflicting records", len(res.Parcels))
	}
	if res.Stats.InconsistentDuplicates != 2 {
		t.Errorf("InconsistentDuplicates = %d, want 2", res.Stats.InconsistentDuplicates)
	}
	if res.Stats.InconsistentGroups != 1 {
		t.Errorf("InconsistentGroups = %d, want 1", res.Stats.InconsistentGroups)
	}
	if got := quarantineFiles(t, dir, kindInconsistent); len(got) != 1 {
		t.Errorf("inconsistent quarantine files = %d, want 1", len(got))
	}
	if res.Stats.ProblemsByMunicipality["santa_quiteria"] != 2 {
		t.Errorf("problem count = %d, want 2", res.Stats.ProblemsByMunicipality["santa_quiteria"])
	}
}

func TestTitleNumberConflictIsInconsistent(t *testing.T) {
	eng, dir := testEngine(t, nil)
	a := validRaw("21")
	a.NumeroTitulo = "T-100"
	b := validRaw("21")
	b.NumeroTitulo = "T-200"

	res, err := eng.Run("todos", []RawParcel{a, b})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Parcels) != 0 {
		t.Fatalf("kept %d parcels, want 0: diverging title numbers are a conflict", len(res.Parcels))
	}
	if res.Stats.InconsistentDuplicates != 2 {
		t.Errorf("InconsistentDuplicates = %d, want 2", res.Stats.InconsistentDuplicates)
	}
	if res.Stats.InconsistentGroups != 1 {
		t.Errorf("InconsistentGroups = %d, want 1", res.Stats.InconsistentGroups)
	}
	if got := quarantineFiles(t, dir, kindInconsistent); len(got) != 1 {
		t.Errorf("inconsistent quarantine files = %d, want 1", len(got))
	}
}

func TestGeometrylessTwinDoesNotShadowValidRecord(t *testing.T) {
	eng, dir := testEngine(t, nil)
	bad := validRaw("33")
	bad.Geometria = ""

	res, err := eng.Run("todos", []RawParcel{bad, validRaw("33")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Parcels) != 1 {
		t.Fatalf("kept %d parcels, want 1: the record with geometry survives", len(res.Parcels))
	}
	if res.Parcels[0].LoteID != 33 {
		t.Errorf("lote_id = %d", res.Parcels[0].LoteID)
	}
	if res.Stats.MissingGeometry != 1 {
		t.Errorf("MissingGeometry = %d, want 1", res.Stats.MissingGeometry)
	}
	if res.Stats.IdenticalDuplicates != 0 {
		t.Errorf("IdenticalDuplicates = %d, want 0", res.Stats.IdenticalDuplicates)
	}
	if got := quarantineFiles(t, dir, kindNoGeometry); len(got) != 1 {
		t.Errorf("missing-geometry quarantine files = %d, want 1", len(got))
	}
}

func TestMissingGeometryQuarantined(t *testing.T) {
	eng, dir := testEngine(t, nil)
	bad := validRaw("11")
	bad.Geometria = "NaN"

	res, err := eng.Run("todos", []RawParcel{validRaw("10"), bad})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Parcels) != 1 {
		t.Fatalf("kept %d parcels, want 1", len(res.Parcels))
	}
	if res.Stats.MissingGeometry != 1 {
		t.Errorf("MissingGeometry = %d, want 1", res.Stats.MissingGeometry)
	}
	if got := quarantineFiles(t, dir, kindNoGeometry); len(got) != 1 {
		t.Errorf("missing-geometry quarantine files = %d, want 1", len(got))
	}
}

func TestFiscalJoinAndClassification(t *testing.T) {
	regions := staticRegions{
		"santa_quiteria": {region: "Sertão de Crateús", mf: 0.5},
	}
	eng, _ := testEngine(t, regions)

	res, err := eng.Run("santa_quiteria", []RawParcel{validRaw("1")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Parcels) != 1 {
		t.Fatalf("kept %d parcels, want 1", len(res.Parcels))
	}
	p := res.Parcels[0]
	if p.RegiaoAdministrativa == nil || *p.RegiaoAdministrativa != "Sertão de Crateús" {
		t.Errorf("region = %v", p.RegiaoAdministrativa)
	}
	if p.ModuloFiscal == nil || *p.ModuloFiscal != 0.5 {
		t.Errorf("fiscal module = %v", p.ModuloFiscal)
	}
	// 1 ha against a 0.5 ha module: between MF and 4MF.
	if p.Categoria != classify.Pequena {
		t.Errorf("categoria = %q, want %q", p.Categoria, classify.Pequena)
	}
	if p.Area == nil || *p.Area != 1.0 {
		t.Errorf("area = %v, want 1 ha", p.Area)
	}
}

func TestUnknownMunicipalityStaysUnclassified(t *testing.T) {
	eng, _ := testEngine(t, nil)

	res, err := eng.Run("todos", []RawParcel{validRaw("2")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := res.Parcels[0]
	if p.RegiaoAdministrativa != nil {
		t.Errorf("region = %v, want nil", *p.RegiaoAdministrativa)
	}
	if p.Categoria != classify.SemClassificacao {
		t.Errorf("categoria = %q, want %q", p.Categoria, classify.SemClassificacao)
	}
}

func TestDesignationFlags(t *testing.T) {
	eng, _ := testEngine(t, nil)
	r := validRaw("3")
	r.Imovel = "Território Quilombola do Córrego"
	r.Proprietario = "Assentamento Nova Canaã"

	res, err := eng.Run("todos", []RawParcel{r})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := res.Parcels[0]
	if p.EhQuilombo == nil || !*p.EhQuilombo {
		t.Error("quilombo flag not set")
	}
	if p.EhAssentamento == nil || !*p.EhAssentamento {
		t.Error("assentamento flag not set")
	}
	if p.EhIndigena == nil || *p.EhIndigena {
		t.Error("indigena flag wrongly set")
	}
}

func TestMunicipalityDisplayName(t *testing.T) {
	eng, _ := testEngine(t, nil)
	r := validRaw("4")
	r.Municipio = "IRAUÇUBA"

	res, err := eng.Run("todos", []RawParcel{r})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := res.Parcels[0]
	if p.NomeMunicipio == nil || *p.NomeMunicipio != "Irauçuba" {
		t.Errorf("display name = %v", p.NomeMunicipio)
	}
	if p.NomeMunicipioOriginal == nil || *p.NomeMunicipioOriginal != "IRAUÇUBA" {
		t.Errorf("original name = %v", p.NomeMunicipioOriginal)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvAsDurationAcceptsBareHours(t *testing.T) {
	t.Setenv("FRESHNESS_TEST", "48")
	if got := getEnvAsDuration("FRESHNESS_TEST", time.Hour); got != 48*time.Hour {
		t.Errorf("bare integer = %v, want 48h", got)
	}

	t.Setenv("FRESHNESS_TEST", "90m")
	if got := getEnvAsDuration("FRESHNESS_TEST", time.Hour); got != 90*time.Minute {
		t.Errorf("duration string = %v, want 90m", got)
	}

	t.Setenv("FRESHNESS_TEST", "bogus")
	if got := getEnvAsDuration("FRESHNESS_TEST", time.Hour); got != time.Hour {
		t.Errorf("garbage = %v, want fallback", got)
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.yml")
	content := `municipios:
  - IRAUCUBA
  - SANTA QUITERIA
datasets:
  malha_fundiaria: data/malha.csv
  regioes_modulos_fiscais: data/regioes.csv
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Municipios) != 2 || m.Municipios[1] != "SANTA QUITERIA" {
		t.Errorf("municipios = %v", m.Municipios)
	}
	if m.Datasets.MalhaFundiaria != "data/malha.csv" {
		t.Errorf("malha_fundiaria = %q", m.Datasets.MalhaFundiaria)
	}
	if m.Datasets.Assentamentos != "" {
		t.Errorf("absent dataset = %q, want empty", m.Datasets.Assentamentos)
	}

	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("missing manifest must error")
	}
}

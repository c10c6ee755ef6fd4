package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Manifest lists the municipalities to fetch from the registry and the CSV
// dataset paths for the bulk importer.
type Manifest struct {
	Municipios []string `yaml:"municipios"`
	Datasets   struct {
		MalhaFundiaria        string `yaml:"malha_fundiaria"`
		Assentamentos         string `yaml:"assentamentos"`
		Reservatorios         string `yaml:"reservatorios"`
		Municipios            string `yaml:"municipios"`
		RegioesModulosFiscais string `yaml:"regioes_modulos_fiscais"`
	} `yaml:"datasets"`
}

func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

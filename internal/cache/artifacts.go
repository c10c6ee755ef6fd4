package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/normalize"
)

// Artifact kinds; part of the on-disk file names.
const (
	KindRegion       = "regiao"
	KindMunicipality = "municipio"
)

// ArtifactStore keeps one precomputed GeoJSON file per entity under its
// directory, named <kind>_<slug>.geojson. Writes go through a temp file and
// rename so readers never observe a partial artifact.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

func (s *ArtifactStore) path(kind, name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.geojson", kind, normalize.MunicipalitySlug(name)))
}

func (s *ArtifactStore) Write(kind, name string, payload []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(kind, name)); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// Read returns the artifact payload, or os.ErrNotExist when it was never
// precomputed.
func (s *ArtifactStore) Read(kind, name string) ([]byte, error) {
	return os.ReadFile(s.path(kind, name))
}

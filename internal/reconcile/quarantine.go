package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	kindIdentical    = "objetos_identicos"
	kindInconsistent = "objetos_inconsistentes"
	kindNoGeometry   = "objetos_sem_geometria"
)

// quarantined wraps a raw record with the reason it was set aside.
type quarantined struct {
	Reason string    `json:"motivo"`
	Record RawParcel `json:"registro"`
}

// Quarantine writes set-aside records under the review directory, one JSON
// file per problem kind per run. Files are named
// <kind>_<scope>_<runID>.json so successive runs never clobber each other.
type Quarantine struct {
	dir string
}

func NewQuarantine(dir string) *Quarantine {
	return &Quarantine{dir: dir}
}

func (q *Quarantine) write(kind, scope, runID string, entries []quarantined) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(q.dir, 0o755); err != nil {
		return fmt.Errorf("create quarantine dir: %w", err)
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quarantine entries: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.json", kind, scope, runID)
	if err := os.WriteFile(filepath.Join(q.dir, name), payload, 0o644); err != nil {
		return fmt.Errorf("write quarantine file %s: %w", name, err)
	}
	return nil
}

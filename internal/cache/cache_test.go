package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestMemoMissUntilSet(t *testing.T) {
	m := NewMemo()
	if _, ok := m.Regions(); ok {
		t.Error("empty memo must miss")
	}
	m.SetRegions([]string{"Cariri"})
	got, ok := m.Regions()
	if !ok || len(got) != 1 || got[0] != "Cariri" {
		t.Errorf("Regions = %v, %v", got, ok)
	}

	if _, ok := m.Municipalities("Cariri"); ok {
		t.Error("unknown region must miss")
	}
	m.SetMunicipalities("Cariri", []string{"Crato", "Juazeiro do Norte"})
	munis, ok := m.Municipalities("Cariri")
	if !ok || len(munis) != 2 {
		t.Errorf("Municipalities = %v, %v", munis, ok)
	}

	m.Invalidate()
	if _, ok := m.Regions(); ok {
		t.Error("invalidated memo must miss")
	}
}

func TestArtifactStoreRoundTrip(t *testing.T) {
	s := NewArtifactStore(t.TempDir())
	payload := []byte(`{"type":"FeatureCollection","features":[]}`)

	if err := s.Write(KindMunicipality, "Santa Quitéria", payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(KindMunicipality, "santa_quiteria")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: %s", got)
	}

	if _, err := s.Read(KindRegion, "cariri"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing artifact error = %v, want os.ErrNotExist", err)
	}
}

func TestArtifactStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewArtifactStore(dir)
	if err := s.Write(KindRegion, "cariri", []byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

type fakeSource struct {
	mu       sync.Mutex
	failMuni string
	built    []string
}

func (f *fakeSource) Regions(context.Context) ([]string, error) {
	return []string{"Cariri"}, nil
}

func (f *fakeSource) Municipalities(_ context.Context, region string) ([]string, error) {
	return []string{"Crato", "Barbalha"}, nil
}

func (f *fakeSource) RegionCollection(_ context.Context, region string) ([]byte, error) {
	f.record("regiao:" + region)
	return []byte(`{"type":"FeatureCollection"}`), nil
}

func (f *fakeSource) MunicipalityCollection(_ context.Context, muni string) ([]byte, error) {
	f.record("municipio:" + muni)
	if muni == f.failMuni {
		return nil, fmt.Errorf("backend unavailable")
	}
	return []byte(`{"type":"FeatureCollection"}`), nil
}

func (f *fakeSource) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.built = append(f.built, name)
}

func TestPrecomputerBuildsAllAndFillsMemo(t *testing.T) {
	src := &fakeSource{}
	store := NewArtifactStore(t.TempDir())
	memo := NewMemo()

	p := NewPrecomputer(src, store, memo, testLogger())
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := store.Read(KindRegion, "cariri"); err != nil {
		t.Errorf("region artifact missing: %v", err)
	}
	for _, muni := range []string{"crato", "barbalha"} {
		if _, err := store.Read(KindMunicipality, muni); err != nil {
			t.Errorf("municipality artifact %s missing: %v", muni, err)
		}
	}
	if regions, ok := memo.Regions(); !ok || len(regions) != 1 {
		t.Errorf("memo regions = %v, %v", regions, ok)
	}
	if munis, ok := memo.Municipalities("Cariri"); !ok || len(munis) != 2 {
		t.Errorf("memo municipalities = %v, %v", munis, ok)
	}
}

func TestPrecomputerSurvivesEntityFailure(t *testing.T) {
	src := &fakeSource{failMuni: "Crato"}
	store := NewArtifactStore(t.TempDir())

	p := NewPrecomputer(src, store, NewMemo(), testLogger())
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run must not fail on one bad entity: %v", err)
	}

	if _, err := store.Read(KindMunicipality, "crato"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed entity must have no artifact, got err %v", err)
	}
	if _, err := store.Read(KindMunicipality, "barbalha"); err != nil {
		t.Errorf("healthy entity artifact missing: %v", err)
	}
}

func TestSchedulerNextRunAt(t *testing.T) {
	s := NewScheduler(3, 30, nil, testLogger())
	loc := time.UTC

	before := time.Date(2025, 5, 10, 1, 0, 0, 0, loc)
	if got := s.nextRunAt(before); !got.Equal(time.Date(2025, 5, 10, 3, 30, 0, 0, loc)) {
		t.Errorf("nextRunAt(before) = %v", got)
	}

	after := time.Date(2025, 5, 10, 4, 0, 0, 0, loc)
	if got := s.nextRunAt(after); !got.Equal(time.Date(2025, 5, 11, 3, 30, 0, 0, loc)) {
		t.Errorf("nextRunAt(after) = %v", got)
	}

	exact := time.Date(2025, 5, 10, 3, 30, 0, 0, loc)
	if got := s.nextRunAt(exact); !got.Equal(time.Date(2025, 5, 11, 3, 30, 0, 0, loc)) {
		t.Errorf("nextRunAt(exact) = %v, the boundary rolls to tomorrow", got)
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := NewScheduler(0, 0, func(ctx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}, testLogger())
	// Pin "now" just before the scheduled time so the first fire is
	// immediate.
	base := time.Date(2025, 5, 10, 23, 59, 59, int(900*time.Millisecond), time.UTC)
	s.now = func() time.Time { return base }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler never fired")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}

// Package cache holds the serving layer's precomputed state: the in-memory
// memo for the small list endpoints and the on-disk GeoJSON artifacts for
// the heavy ones, plus the scheduler that rebuilds both daily.
package cache

import "sync"

// Memo caches the region and municipality lists. It starts empty and is
// populated by the precompute pass; a miss sends the caller to the live
// query path.
type Memo struct {
	mu            sync.RWMutex
	regions       []string
	munisByRegion map[string][]string
}

func NewMemo() *Memo {
	return &Memo{munisByRegion: make(map[string][]string)}
}

func (m *Memo) Regions() ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.regions == nil {
		return nil, false
	}
	return m.regions, true
}

func (m *Memo) SetRegions(regions []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = regions
}

func (m *Memo) Municipalities(region string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	munis, ok := m.munisByRegion[region]
	return munis, ok
}

func (m *Memo) SetMunicipalities(region string, munis []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.munisByRegion[region] = munis
}

// Invalidate drops everything; the next precompute pass repopulates.
func (m *Memo) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = nil
	m.munisByRegion = make(map[string][]string)
}

// Package reconcile turns raw registry records into canonical parcels:
// duplicate resolution keyed by lote_id, geometry validation, fiscal-module
// join and size classification. Records that cannot be trusted are set
// aside for human review instead of silently dropped.
package reconcile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/classify"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/geometry"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/metrics"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/normalize"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/store"
)

// RegionLookup resolves a municipality slug to its administrative region
// and fiscal module. *store.FiscalTable satisfies it.
type RegionLookup interface {
	Lookup(slug string) (region string, fiscalModule *float64, ok bool)
}

// Stats summarizes one reconciliation run.
type Stats struct {
	Input                  int
	Kept                   int
	Municipalities         int
	UniqueKeys             int
	IdenticalGroups        int
	InconsistentGroups     int
	IdenticalDuplicates    int
	InconsistentDuplicates int
	MissingGeometry        int
	// ProblemsByMunicipality counts quarantined records per municipality
	// slug, for the run summary.
	ProblemsByMunicipality map[string]int
}

// Result is the outcome of one run: the canonical rows plus the counters.
type Result struct {
	RunID   string
	Parcels []store.Parcel
	Stats   Stats
}

type Engine struct {
	regions    RegionLookup
	quarantine *Quarantine
	log        *slog.Logger
}

func NewEngine(regions RegionLookup, quarantine *Quarantine, log *slog.Logger) *Engine {
	return &Engine{regions: regions, quarantine: quarantine, log: log}
}

// Run reconciles one batch. scope names the unit of work (a municipality
// slug or "todos") and only affects quarantine file naming. Duplicate
// groups whose compared fields all agree keep their first record; groups
// that disagree are excluded entirely, on the grounds that no automated
// tiebreak is defensible for cadastral data.
func (e *Engine) Run(scope string, raws []RawParcel) (*Result, error) {
	runID := uuid.NewString()
	stats := Stats{Input: len(raws), ProblemsByMunicipality: make(map[string]int)}

	var identical, inconsistent, noGeometry []quarantined
	problem := func(r RawParcel) {
		stats.ProblemsByMunicipality[normalize.MunicipalitySlug(r.Municipio)]++
	}

	municipalities := make(map[string]struct{}, len(raws))
	for _, r := range raws {
		municipalities[normalize.MunicipalitySlug(r.Municipio)] = struct{}{}
	}
	stats.Municipalities = len(municipalities)

	// Records without usable geometry never enter grouping: otherwise a
	// geometry-less twin could become a group's representative and bury
	// the valid record behind it.
	eligible := make([]RawParcel, 0, len(raws))
	for _, r := range raws {
		if normalize.IsNullish(r.Geometria) {
			stats.MissingGeometry++
			noGeometry = append(noGeometry, quarantined{Reason: "record has no geometry", Record: r})
			problem(r)
			continue
		}
		eligible = append(eligible, r)
	}

	// Group by lote_id preserving first-seen order.
	order := make([]string, 0, len(eligible))
	groups := make(map[string][]RawParcel, len(eligible))
	for _, r := range eligible {
		key := strings.TrimSpace(r.LoteID)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	stats.UniqueKeys = len(groups)

	var survivors []RawParcel
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			survivors = append(survivors, group[0])
			continue
		}
		if allIdentical(group) {
			survivors = append(survivors, group[0])
			stats.IdenticalGroups++
			stats.IdenticalDuplicates += len(group) - 1
			for _, r := range group {
				identical = append(identical, quarantined{Reason: "registros identicos para o mesmo lote_id", Record: r})
				problem(r)
			}
			continue
		}
		stats.InconsistentGroups++
		stats.InconsistentDuplicates += len(group)
		for _, r := range group {
			inconsistent = append(inconsistent, quarantined{Reason: "registros divergentes para o mesmo lote_id", Record: r})
			problem(r)
		}
	}

	parcels := make([]store.Parcel, 0, len(survivors))
	for _, r := range survivors {
		p, err := e.toParcel(r)
		if err != nil {
			stats.MissingGeometry++
			noGeometry = append(noGeometry, quarantined{Reason: err.Error(), Record: r})
			problem(r)
			continue
		}
		parcels = append(parcels, p)
	}
	stats.Kept = len(parcels)

	if err := e.quarantine.write(kindIdentical, scope, runID, identical); err != nil {
		return nil, err
	}
	if err := e.quarantine.write(kindInconsistent, scope, runID, inconsistent); err != nil {
		return nil, err
	}
	if err := e.quarantine.write(kindNoGeometry, scope, runID, noGeometry); err != nil {
		return nil, err
	}
	metrics.QuarantinedRecords.Add(float64(len(identical) + len(inconsistent) + len(noGeometry)))

	e.log.Info("reconciliation finished",
		"scope", scope,
		"run_id", runID,
		"input", stats.Input,
		"kept", stats.Kept,
		"municipalities", stats.Municipalities,
		"unique_keys", stats.UniqueKeys,
		"identical_groups", stats.IdenticalGroups,
		"inconsistent_groups", stats.InconsistentGroups,
		"identical_duplicates", stats.IdenticalDuplicates,
		"inconsistent_duplicates", stats.InconsistentDuplicates,
		"missing_geometry", stats.MissingGeometry,
	)
	return &Result{RunID: runID, Parcels: parcels, Stats: stats}, nil
}

func allIdentical(group []RawParcel) bool {
	first := group[0].signature()
	for _, r := range group[1:] {
		if r.signature() != first {
			return false
		}
	}
	return true
}

// toParcel normalizes one surviving record into its canonical row. An
// unusable geometry or lote_id fails the record, which the caller
// quarantines.
func (e *Engine) toParcel(r RawParcel) (store.Parcel, error) {
	loteID := normalize.Int(r.LoteID)
	if loteID == nil {
		return store.Parcel{}, fmt.Errorf("lote_id %q is not numeric", r.LoteID)
	}
	if normalize.IsNullish(r.Geometria) {
		return store.Parcel{}, fmt.Errorf("record has no geometry")
	}
	mp, err := geometry.Decode(r.Geometria)
	if err != nil {
		return store.Parcel{}, fmt.Errorf("decode geometry: %w", err)
	}
	hexEWKB, err := geometry.EWKBHex(mp, geometry.SRIDSurvey)
	if err != nil {
		return store.Parcel{}, fmt.Errorf("encode geometry: %w", err)
	}

	area := geometry.AreaHa(mp)
	perim := geometry.PerimeterKm(mp)

	title := normalize.MunicipalityTitle(r.Municipio)
	slug := normalize.MunicipalitySlug(r.Municipio)
	p := store.Parcel{
		LoteID:                *loteID,
		PessoaID:              normalize.Float(r.PessoaID),
		NomeMunicipio:         &title,
		NomeProprietario:      normalize.String(r.Proprietario),
		Imovel:                normalize.String(r.Imovel),
		NomeDistrito:          normalize.String(r.NomeDistrito),
		CodigoDistrito:        normalize.Float(r.CodigoDistrito),
		PontoDeReferencia:     normalize.String(r.PontoDeReferencia),
		DataCriacaoLote:       normalize.Timestamp(r.DataCriacao),
		CodigoMunicipio:       normalize.Float(r.CodigoMunicipio),
		Geometry31984:         hexEWKB,
		Centroide:             normalize.String(r.Centroide),
		DataModificacaoLote:   normalize.Timestamp(r.DataModificacao),
		SituacaoJuridica:      normalize.String(r.SituacaoJuridica),
		NumeroIncra:           normalize.String(r.NumeroIncra),
		NumeroTitulo:          normalize.String(r.NumeroTitulo),
		NumeroLote:            normalize.String(r.NumeroLote),
		NomeMunicipioOriginal: normalize.String(r.Municipio),
		Area:                  &area,
		PerimetroKm:           &perim,
	}

	var fiscalModule *float64
	if region, mf, ok := e.regions.Lookup(slug); ok {
		p.RegiaoAdministrativa = &region
		p.ModuloFiscal = mf
		fiscalModule = mf
	}
	p.Categoria = classify.Classify(&area, fiscalModule)

	quilombo := designation(r, "quilomb")
	indigena := designation(r, "indigen")
	assentamento := designation(r, "assenta")
	p.EhQuilombo = &quilombo
	p.EhIndigena = &indigena
	p.EhAssentamento = &assentamento
	return p, nil
}

// designation reports whether the owner or property name carries the given
// designation marker. Matching is accent- and case-insensitive.
func designation(r RawParcel, marker string) bool {
	return strings.Contains(normalize.Fold(r.Proprietario), marker) ||
		strings.Contains(normalize.Fold(r.Imovel), marker)
}

package geoserve

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/cache"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/metrics"
)

// Handlers serves the HTTP endpoints, preferring the memo and the
// precomputed artifacts over live queries.
type Handlers struct {
	svc       *Service
	memo      *cache.Memo
	artifacts *cache.ArtifactStore
	log       *slog.Logger
}

func NewHandlers(svc *Service, memo *cache.Memo, artifacts *cache.ArtifactStore, log *slog.Logger) *Handlers {
	return &Handlers{svc: svc, memo: memo, artifacts: artifacts, log: log}
}

func (h *Handlers) RegionsHandler(w http.ResponseWriter, r *http.Request) {
	if regions, ok := h.memo.Regions(); ok {
		h.writeJSON(w, r, "/regioes", regions)
		return
	}
	regions, err := h.svc.Regions(r.Context())
	if err != nil {
		h.fail(w, r, "/regioes", "Failed to list regions", http.StatusInternalServerError, err)
		return
	}
	h.memo.SetRegions(regions)
	h.writeJSON(w, r, "/regioes", regions)
}

func (h *Handlers) MunicipalitiesHandler(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("regiao")
	if region != "" {
		if munis, ok := h.memo.Municipalities(region); ok {
			h.writeJSON(w, r, "/municipios", munis)
			return
		}
	}
	munis, err := h.svc.Municipalities(r.Context(), region)
	if err != nil {
		h.failFilter(w, r, "/municipios", err)
		return
	}
	if region != "" {
		h.memo.SetMunicipalities(region, munis)
	}
	h.writeJSON(w, r, "/municipios", munis)
}

func (h *Handlers) GeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Regiao:    q.Get("regiao"),
		Municipio: q.Get("municipio"),
	}
	if err := f.validate(); err != nil {
		h.fail(w, r, "/geojson", err.Error(), http.StatusBadRequest, err)
		return
	}
	if raw := q.Get("tolerance"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			h.fail(w, r, "/geojson", "invalid tolerance", http.StatusBadRequest, err)
			return
		}
		f.Tolerance = &v
	}
	if raw := q.Get("decimals"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			h.fail(w, r, "/geojson", "invalid decimals", http.StatusBadRequest, err)
			return
		}
		f.Decimals = &v
	}

	// Precomputed artifacts are built with the default simplification
	// parameters; a hit serves them regardless of overrides.
	kind, name := cache.KindRegion, f.Regiao
	if f.Municipio != "" {
		kind, name = cache.KindMunicipality, f.Municipio
	}
	if payload, err := h.artifacts.Read(kind, name); err == nil {
		metrics.ArtifactHits.Inc()
		h.writeRaw(w, r, "/geojson", payload)
		return
	}
	metrics.ArtifactMisses.Inc()

	fc, err := h.svc.FeatureCollection(r.Context(), f)
	if err != nil {
		h.failFilter(w, r, "/geojson", err)
		return
	}
	h.writeJSON(w, r, "/geojson", fc)
}

func (h *Handlers) MunicipalityBoundaryHandler(w http.ResponseWriter, r *http.Request) {
	municipio := r.URL.Query().Get("municipio")
	if municipio == "" {
		h.fail(w, r, "/geojson_muni", "municipio is required", http.StatusBadRequest, ErrExclusiveFilter)
		return
	}
	fc, err := h.svc.MunicipalityBoundary(r.Context(), municipio)
	if err != nil {
		h.failFilter(w, r, "/geojson_muni", err)
		return
	}
	h.writeJSON(w, r, "/geojson_muni", fc)
}

// failFilter maps the service's sentinel errors onto HTTP statuses.
func (h *Handlers) failFilter(w http.ResponseWriter, r *http.Request, route string, err error) {
	switch {
	case errors.Is(err, ErrExclusiveFilter):
		h.fail(w, r, route, err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrNotFound):
		h.fail(w, r, route, err.Error(), http.StatusNotFound, err)
	default:
		h.fail(w, r, route, "Query failed", http.StatusInternalServerError, err)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, route, msg string, status int, err error) {
	if status >= 500 {
		h.log.Error("request failed", "route", route, "error", err)
	}
	metrics.RequestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	http.Error(w, msg, status)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, route string, payload any) {
	metrics.RequestsTotal.WithLabelValues(route, "2xx").Inc()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("encode response failed", "route", route, "error", err)
	}
}

func (h *Handlers) writeRaw(w http.ResponseWriter, r *http.Request, route string, payload []byte) {
	metrics.RequestsTotal.WithLabelValues(route, "2xx").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

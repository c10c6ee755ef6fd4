package geoserve

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the serving endpoints to the given router.
func (h *Handlers) Register(r chi.Router) {
	r.Get("/regioes", h.RegionsHandler)
	r.Get("/municipios", h.MunicipalitiesHandler)
	r.Get("/geojson", h.GeoJSONHandler)
	r.Get("/geojson_muni", h.MunicipalityBoundaryHandler)
}

func (h *Handlers) SetupRoutes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

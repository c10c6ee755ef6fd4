// Package geoserve is the read side of the service: region and municipality
// listings plus GeoJSON feature collections, with geometry simplification
// and reprojection pushed down to the spatial backend.
package geoserve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/config"
	dbpkg "github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/db"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/geometry"
)

var (
	// ErrExclusiveFilter rejects requests that name both or neither filter.
	ErrExclusiveFilter = errors.New("exactly one of regiao or municipio must be provided")
	// ErrNotFound means the filter matched nothing.
	ErrNotFound = errors.New("no matching features")
)

// Filter selects parcels by region or by municipality, never both.
// Tolerance and Decimals override the configured simplification defaults
// when set.
type Filter struct {
	Regiao    string
	Municipio string
	Tolerance *float64
	Decimals  *int
}

func (f Filter) validate() error {
	if (f.Regiao == "") == (f.Municipio == "") {
		return ErrExclusiveFilter
	}
	return nil
}

type Service struct {
	db        *gorm.DB
	dialect   dbpkg.Dialect
	tolerance float64
	decimals  int
	log       *slog.Logger
}

func NewService(db *gorm.DB, dialect dbpkg.Dialect, cfg config.CacheConfig, log *slog.Logger) *Service {
	return &Service{
		db:        db,
		dialect:   dialect,
		tolerance: cfg.SimplifyTolerance,
		decimals:  cfg.SimplifyDecimals,
		log:       log,
	}
}

// Regions lists the administrative regions present in the parcel table.
func (s *Service) Regions(ctx context.Context) ([]string, error) {
	var regions []string
	err := s.db.WithContext(ctx).
		Raw("SELECT DISTINCT regiao_administrativa FROM malha_fundiaria_ceara WHERE regiao_administrativa IS NOT NULL ORDER BY regiao_administrativa").
		Scan(&regions).Error
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

// Municipalities lists municipalities, optionally restricted to one region.
func (s *Service) Municipalities(ctx context.Context, region string) ([]string, error) {
	q := "SELECT DISTINCT nome_municipio FROM malha_fundiaria_ceara WHERE nome_municipio IS NOT NULL"
	args := []any{}
	if region != "" {
		q += " AND " + s.dialect.CaseInsensitiveEq("regiao_administrativa")
		args = append(args, region)
	}
	q += " ORDER BY nome_municipio"

	var munis []string
	if err := s.db.WithContext(ctx).Raw(q, args...).Scan(&munis).Error; err != nil {
		return nil, fmt.Errorf("list municipalities: %w", err)
	}
	if region != "" && len(munis) == 0 {
		return nil, fmt.Errorf("region %q: %w", region, ErrNotFound)
	}
	return munis, nil
}

// FeatureCollection renders the parcels matching the filter as GeoJSON in
// WGS84, simplified server-side.
func (s *Service) FeatureCollection(ctx context.Context, f Filter) (*FeatureCollection, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	column, value := "regiao_administrativa", f.Regiao
	if f.Municipio != "" {
		column, value = "nome_municipio", f.Municipio
	}
	tolerance := s.tolerance
	if f.Tolerance != nil {
		tolerance = *f.Tolerance
	}
	decimals := s.decimals
	if f.Decimals != nil {
		decimals = *f.Decimals
	}

	q := fmt.Sprintf(`SELECT lote_id, nome_municipio, nome_proprietario, imovel,
		situacao_juridica, numero_incra, numero_lote, regiao_administrativa,
		modulo_fiscal, area, perimetro_km, categoria, ehquilombo, ehindigena,
		ehassentamento, %s AS geojson
		FROM malha_fundiaria_ceara WHERE %s`,
		s.dialect.SimplifiedGeoJSON("geometry_31984", geometry.SRIDSurvey, decimals),
		s.dialect.CaseInsensitiveEq(column))

	var rows []parcelRow
	if err := s.db.WithContext(ctx).Raw(q, tolerance, value).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query parcels: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s=%s", ErrNotFound, column, value)
	}

	features := make([]Feature, 0, len(rows))
	for _, r := range rows {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: rawGeometry(r.Geojson),
			Properties: map[string]any{
				"lote_id":               r.LoteID,
				"municipio":             strProp(r.NomeMunicipio),
				"proprietario":          strProp(r.NomeProprietario),
				"imovel":                strProp(r.Imovel),
				"situacao_juridica":     strProp(r.SituacaoJuridica),
				"numero_incra":          strProp(r.NumeroIncra),
				"numero_lote":           strProp(r.NumeroLote),
				"regiao_administrativa": strProp(r.RegiaoAdministrativa),
				"modulo_fiscal":         floatProp(r.ModuloFiscal),
				"area":                  floatProp(r.Area),
				"perimetro_km":          floatProp(r.PerimetroKm),
				"categoria":             r.Categoria,
				"ehquilombo":            boolProp(r.EhQuilombo),
				"ehindigena":            boolProp(r.EhIndigena),
				"ehassentamento":        boolProp(r.EhAssentamento),
			},
		})
	}
	return NewFeatureCollection(features), nil
}

// MunicipalityBoundary renders the official municipal polygon.
func (s *Service) MunicipalityBoundary(ctx context.Context, municipio string) (*FeatureCollection, error) {
	if municipio == "" {
		return nil, ErrExclusiveFilter
	}
	q := fmt.Sprintf("SELECT nm_mun, cd_mun, %s AS geojson FROM municipios_ceara WHERE %s",
		s.dialect.SimplifiedGeoJSON("geometry", geometry.SRIDWGS84, s.decimals),
		s.dialect.CaseInsensitiveEq("nm_mun"))

	var rows []boundaryRow
	if err := s.db.WithContext(ctx).Raw(q, s.tolerance, municipio).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query boundary: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: municipio=%s", ErrNotFound, municipio)
	}

	features := make([]Feature, 0, len(rows))
	for _, r := range rows {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: rawGeometry(r.Geojson),
			Properties: map[string]any{
				"nm_mun": r.NomeMunicipio,
				"cd_mun": strProp(r.CodigoIBGE),
			},
		})
	}
	return NewFeatureCollection(features), nil
}

// RegionCollection and MunicipalityCollection feed the precompute pass with
// encoded payloads ready to publish as artifacts.

func (s *Service) RegionCollection(ctx context.Context, region string) ([]byte, error) {
	fc, err := s.FeatureCollection(ctx, Filter{Regiao: region})
	if err != nil {
		return nil, err
	}
	return json.Marshal(fc)
}

func (s *Service) MunicipalityCollection(ctx context.Context, municipio string) ([]byte, error) {
	fc, err := s.FeatureCollection(ctx, Filter{Municipio: municipio})
	if err != nil {
		return nil, err
	}
	return json.Marshal(fc)
}

// rawGeometry passes backend GeoJSON through, mapping NULL to a JSON null.
func rawGeometry(geojson *string) json.RawMessage {
	if geojson == nil || *geojson == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(*geojson)
}

// Property helpers keep the payload JSON-clean: NULL columns and NaN values
// both encode as null.

func strProp(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatProp(v *float64) any {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return *v
}

func boolProp(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}

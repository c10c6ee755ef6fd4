package geoserve

import "encoding/json"

// Feature is one GeoJSON feature. Geometry carries the backend's GeoJSON
// output verbatim; properties are sanitized before encoding.
type Feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

func NewFeatureCollection(features []Feature) *FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

// parcelRow is the scan target for the parcel serving query.
type parcelRow struct {
	LoteID               int64    `gorm:"column:lote_id"`
	NomeMunicipio        *string  `gorm:"column:nome_municipio"`
	NomeProprietario     *string  `gorm:"column:nome_proprietario"`
	Imovel               *string  `gorm:"column:imovel"`
	SituacaoJuridica     *string  `gorm:"column:situacao_juridica"`
	NumeroIncra          *string  `gorm:"column:numero_incra"`
	NumeroLote           *string  `gorm:"column:numero_lote"`
	RegiaoAdministrativa *string  `gorm:"column:regiao_administrativa"`
	ModuloFiscal         *float64 `gorm:"column:modulo_fiscal"`
	Area                 *float64 `gorm:"column:area"`
	PerimetroKm          *float64 `gorm:"column:perimetro_km"`
	Categoria            string   `gorm:"column:categoria"`
	EhQuilombo           *bool    `gorm:"column:ehquilombo"`
	EhIndigena           *bool    `gorm:"column:ehindigena"`
	EhAssentamento       *bool    `gorm:"column:ehassentamento"`
	Geojson              *string  `gorm:"column:geojson"`
}

// boundaryRow is the scan target for the municipal boundary query.
type boundaryRow struct {
	NomeMunicipio string  `gorm:"column:nm_mun"`
	CodigoIBGE    *string `gorm:"column:cd_mun"`
	Geojson       *string `gorm:"column:geojson"`
}

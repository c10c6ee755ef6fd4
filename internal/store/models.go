package store

import "time"

// Parcel is the canonical reconciled row of the malha fundiária. The
// business key is lote_id; on conflict every column is overwritten by the
// incoming value. Geometry fields hold hex EWKB / WKT text in memory and are
// converted by backend SQL at write time.
type Parcel struct {
	ID                    uint       `gorm:"primaryKey"`
	LoteID                int64      `gorm:"column:lote_id"`
	PessoaID              *float64   `gorm:"column:pessoa_id"`
	NomeMunicipio         *string    `gorm:"column:nome_municipio;index"`
	NomeProprietario      *string    `gorm:"column:nome_proprietario"`
	Imovel                *string    `gorm:"column:imovel"`
	NomeDistrito          *string    `gorm:"column:nome_distrito"`
	CodigoDistrito        *float64   `gorm:"column:codigo_distrito"`
	PontoDeReferencia     *string    `gorm:"column:ponto_de_referencia"`
	DataCriacaoLote       *time.Time `gorm:"column:data_criacao_lote"`
	CodigoMunicipio       *float64   `gorm:"column:codigo_municipio"`
	Geometry31984         string     `gorm:"column:geometry_31984;type:GEOMETRY(MULTIPOLYGON, 31984)"`
	Centroide             *string    `gorm:"column:centroide"`
	DataModificacaoLote   *time.Time `gorm:"column:data_modificacao_lote"`
	SituacaoJuridica      *string    `gorm:"column:situacao_juridica"`
	NumeroIncra           *string    `gorm:"column:numero_incra"`
	NumeroTitulo          *string    `gorm:"column:numero_titulo"`
	NumeroLote            *string    `gorm:"column:numero_lote"`
	NomeMunicipioOriginal *string    `gorm:"column:nome_municipio_original"`
	RegiaoAdministrativa  *string    `gorm:"column:regiao_administrativa"`
	ModuloFiscal          *float64   `gorm:"column:modulo_fiscal"`
	Area                  *float64   `gorm:"column:area"`
	PerimetroKm           *float64   `gorm:"column:perimetro_km"`
	Categoria             string     `gorm:"column:categoria"`
	EhQuilombo            *bool      `gorm:"column:ehquilombo"`
	EhIndigena            *bool      `gorm:"column:ehindigena"`
	EhAssentamento        *bool      `gorm:"column:ehassentamento"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
}

func (Parcel) TableName() string { return "malha_fundiaria_ceara" }

// RegionFiscalModule is the reference row joining a municipality to its
// administrative region and fiscal module.
type RegionFiscalModule struct {
	ID                   uint      `gorm:"primaryKey"`
	RegiaoAdministrativa string    `gorm:"column:regiao_administrativa"`
	NomeMunicipio        string    `gorm:"column:nome_municipio"`
	ModuloFiscal         *float64  `gorm:"column:modulo_fiscal"`
	CreatedAt            time.Time `gorm:"column:created_at"`
}

func (RegionFiscalModule) TableName() string {
	return "regioes_municipios_modulos_fiscais_ceara"
}

// MunicipioBoundary stores the municipal polygon served by /geojson_muni.
// Boundaries arrive already in WGS84.
type MunicipioBoundary struct {
	ID            uint      `gorm:"primaryKey"`
	NomeMunicipio string    `gorm:"column:nm_mun"`
	CodigoIBGE    *string   `gorm:"column:cd_mun"`
	Geometry      string    `gorm:"column:geometry;type:GEOMETRY(MULTIPOLYGON, 4326)"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (MunicipioBoundary) TableName() string { return "municipios_ceara" }

// Assentamento is a rural settlement record.
type Assentamento struct {
	ID                    uint      `gorm:"primaryKey"`
	CdSipra               string    `gorm:"column:cd_sipra"`
	NomeMunicipio         *string   `gorm:"column:nome_municipio"`
	NomeMunicipioOriginal *string   `gorm:"column:nome_municipio_original"`
	NomeAssentamento      *string   `gorm:"column:nome_assentamento"`
	Area                  *float64  `gorm:"column:area"`
	Perimetro             *float64  `gorm:"column:perimetro"`
	FormaObtencao         *string   `gorm:"column:forma_obtecao"`
	TipoAssentamento      *string   `gorm:"column:tipo_assentamento"`
	NumFamilias           *int64    `gorm:"column:num_familias"`
	WktGeometry           *string   `gorm:"column:wkt_geometry"`
	Geom                  string    `gorm:"column:geom;type:GEOMETRY(MULTIPOLYGON, 4326)"`
	CreatedAt             time.Time `gorm:"column:created_at"`
}

func (Assentamento) TableName() string { return "assentamentos_ceara" }

// Reservatorio is a monitored reservoir point record.
type Reservatorio struct {
	ID                    uint      `gorm:"primaryKey"`
	IDSagreh              string    `gorm:"column:id_sagreh"`
	Nome                  *string   `gorm:"column:nome"`
	Proprietario          *string   `gorm:"column:proprietario"`
	Gerencia              *string   `gorm:"column:gerencia"`
	RegHidrog             *string   `gorm:"column:reg_hidrog"`
	AnoConstrucao         *int64    `gorm:"column:ano_constr"`
	AreaHa                *float64  `gorm:"column:area_ha"`
	CapacidadeM3          *float64  `gorm:"column:capacid_m3"`
	X                     *float64  `gorm:"column:x"`
	Y                     *float64  `gorm:"column:y"`
	NomeMunicipio         *string   `gorm:"column:nome_municipio"`
	NomeMunicipioOriginal *string   `gorm:"column:nome_municipio_original"`
	Geom                  string    `gorm:"column:geom;type:GEOMETRY(POINT, 4326)"`
	CreatedAt             time.Time `gorm:"column:created_at"`
}

func (Reservatorio) TableName() string { return "reservatorios_ceara" }

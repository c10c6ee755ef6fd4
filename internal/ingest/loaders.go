package ingest

import (
	"fmt"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/geometry"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/normalize"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/reconcile"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/store"
)

// ParcelsFromCSV reads a registry export of the parcel mesh. Values stay in
// raw text form; normalization happens during reconciliation.
func ParcelsFromCSV(path string) ([]reconcile.RawParcel, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]reconcile.RawParcel, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, reconcile.RawParcel{
			LoteID:            t.get(row, "lote_id"),
			PessoaID:          t.get(row, "pessoa_id"),
			Municipio:         t.get(row, "municipio", "nome_municipio"),
			Proprietario:      t.get(row, "proprietario"),
			Imovel:            t.get(row, "imovel"),
			NomeDistrito:      t.get(row, "nome_distrito", "nomedistrito"),
			CodigoDistrito:    t.get(row, "codigo_distrito", "codigodistrito"),
			PontoDeReferencia: t.get(row, "ponto_de_referencia", "pontodereferencia"),
			DataCriacao:       t.get(row, "dhc"),
			CodigoMunicipio:   t.get(row, "codigo_municipio", "codigomunicipio"),
			Geometria:         t.get(row, "multipolygon", "geometria", "wkt"),
			Centroide:         t.get(row, "centroide"),
			DataModificacao:   t.get(row, "dhm"),
			SituacaoJuridica:  t.get(row, "situacao_juridica", "situacaojuridica"),
			NumeroIncra:       t.get(row, "sncr"),
			NumeroTitulo:      t.get(row, "titulo", "numero_titulo"),
			NumeroLote:        t.get(row, "numero", "numero_lote"),
			CPFCNPJ:           t.get(row, "cpfcnpj"),
		})
	}
	return out, nil
}

// RegionModulesFromCSV reads the administrative-region / fiscal-module
// reference table.
func RegionModulesFromCSV(path string) ([]store.RegionFiscalModule, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]store.RegionFiscalModule, 0, len(t.rows))
	for _, row := range t.rows {
		muni := t.get(row, "nome_municipio", "municipio")
		if muni == "" {
			continue
		}
		out = append(out, store.RegionFiscalModule{
			RegiaoAdministrativa: t.get(row, "regiao_administrativa", "regiao"),
			NomeMunicipio:        muni,
			ModuloFiscal:         normalize.Float(t.get(row, "modulo_fiscal")),
		})
	}
	return out, nil
}

// MunicipiosFromCSV reads the municipal boundary dataset (WGS84 WKT).
func MunicipiosFromCSV(path string) ([]store.MunicipioBoundary, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]store.MunicipioBoundary, 0, len(t.rows))
	for _, row := range t.rows {
		name := t.get(row, "nm_mun", "nome_municipio", "municipio")
		if name == "" {
			continue
		}
		ewkb, err := wgs84EWKB(t.get(row, "wkt", "geometry", "wkt_geom"))
		if err != nil {
			return nil, fmt.Errorf("municipality %s: %w", name, err)
		}
		out = append(out, store.MunicipioBoundary{
			NomeMunicipio: name,
			CodigoIBGE:    normalize.String(t.get(row, "cd_mun", "codigo_ibge")),
			Geometry:      ewkb,
		})
	}
	return out, nil
}

// AssentamentosFromCSV reads the rural settlement dataset.
func AssentamentosFromCSV(path string) ([]store.Assentamento, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]store.Assentamento, 0, len(t.rows))
	for _, row := range t.rows {
		code := t.get(row, "cd_sipra")
		if code == "" {
			continue
		}
		wkt := t.get(row, "wkt_geometry", "wkt")
		ewkb, err := wgs84EWKB(wkt)
		if err != nil {
			return nil, fmt.Errorf("settlement %s: %w", code, err)
		}
		muni := t.get(row, "nome_municipio_original", "municipio")
		out = append(out, store.Assentamento{
			CdSipra:               code,
			NomeMunicipio:         normalize.String(normalize.MunicipalitySlug(muni)),
			NomeMunicipioOriginal: normalize.String(muni),
			NomeAssentamento:      normalize.String(t.get(row, "nome_assentamento")),
			Area:                  normalize.Float(t.get(row, "area")),
			Perimetro:             normalize.Float(t.get(row, "perimetro")),
			FormaObtencao:         normalize.String(t.get(row, "forma_obtecao")),
			TipoAssentamento:      normalize.String(t.get(row, "tipo_assentamento")),
			NumFamilias:           normalize.Int(t.get(row, "num_familias")),
			WktGeometry:           normalize.String(wkt),
			Geom:                  ewkb,
		})
	}
	return out, nil
}

// ReservatoriosFromCSV reads the monitored reservoir dataset. The stored
// geometry is the station point; the gateway builds it from x and y.
func ReservatoriosFromCSV(path string) ([]store.Reservatorio, error) {
	t, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]store.Reservatorio, 0, len(t.rows))
	for _, row := range t.rows {
		id := t.get(row, "id_sagreh", "id")
		if id == "" {
			continue
		}
		muni := t.get(row, "municipio", "nome_municipio_original")
		out = append(out, store.Reservatorio{
			IDSagreh:              id,
			Nome:                  normalize.String(t.get(row, "nome", "reservatorio")),
			Proprietario:          normalize.String(t.get(row, "proprietario", "proprietar")),
			Gerencia:              normalize.String(t.get(row, "gerencia")),
			RegHidrog:             normalize.String(t.get(row, "reg_hidrog")),
			AnoConstrucao:         normalize.Int(t.get(row, "ano_constr")),
			AreaHa:                normalize.Float(t.get(row, "area_ha")),
			CapacidadeM3:          normalize.Float(t.get(row, "capacid_m3", "capacidade")),
			X:                     normalize.Float(t.get(row, "x", "longitude")),
			Y:                     normalize.Float(t.get(row, "y", "latitude")),
			NomeMunicipio:         normalize.String(normalize.MunicipalitySlug(muni)),
			NomeMunicipioOriginal: normalize.String(muni),
		})
	}
	return out, nil
}

// wgs84EWKB converts source WKT into hex EWKB tagged 4326. Rows without a
// geometry produce an empty string, stored as NULL.
func wgs84EWKB(wkt string) (string, error) {
	if normalize.IsNullish(wkt) {
		return "", nil
	}
	mp, err := geometry.Decode(wkt)
	if err != nil {
		return "", err
	}
	return geometry.EWKBHex(mp, geometry.SRIDWGS84)
}

// Package store is the canonical-store gateway: idempotent set-based
// upserts keyed by each dataset's business key, plus the staleness bookkeeping
// that decides whether an import needs to run at all.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	dbpkg "github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/db"
	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/normalize"
)

// upsertChunk bounds the bound-parameter count of one statement.
const upsertChunk = 500

type Gateway struct {
	db      *gorm.DB
	dialect dbpkg.Dialect
	log     *slog.Logger
}

func NewGateway(db *gorm.DB, dialect dbpkg.Dialect, log *slog.Logger) *Gateway {
	return &Gateway{db: db, dialect: dialect, log: log}
}

// Migrate creates the dataset tables and their indexes. The unique indexes
// back the ON CONFLICT clauses; spatial indexes are a PostGIS concern.
func (g *Gateway) Migrate() error {
	if g.dialect.Name() == "postgres" {
		if err := g.db.Exec("CREATE EXTENSION IF NOT EXISTS postgis").Error; err != nil {
			return fmt.Errorf("ensure postgis: %w", err)
		}
	}
	if err := g.db.AutoMigrate(
		&Parcel{},
		&RegionFiscalModule{},
		&MunicipioBoundary{},
		&Assentamento{},
		&Reservatorio{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	uniques := map[string]string{
		"malha_fundiaria_ceara":                    "lote_id",
		"regioes_municipios_modulos_fiscais_ceara": "nome_municipio",
		"municipios_ceara":                         "nm_mun",
		"assentamentos_ceara":                      "cd_sipra",
		"reservatorios_ceara":                      "id_sagreh",
	}
	for table, col := range uniques {
		ddl := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)",
			table, col, pq.QuoteIdentifier(table), col)
		if err := g.db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("unique index %s.%s: %w", table, col, err)
		}
	}

	if g.dialect.Name() == "postgres" {
		gists := map[string]string{
			"malha_fundiaria_ceara": "geometry_31984",
			"municipios_ceara":      "geometry",
			"assentamentos_ceara":   "geom",
			"reservatorios_ceara":   "geom",
		}
		for table, col := range gists {
			ddl := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s USING GIST(%s)",
				table, col, pq.QuoteIdentifier(table), col)
			if err := g.db.Exec(ddl).Error; err != nil {
				return fmt.Errorf("gist index %s.%s: %w", table, col, err)
			}
		}
	}
	return nil
}

// ShouldImport reports whether the table needs (re)importing: it is missing,
// or holds no row created inside the freshness window. Fresh data means the
// caller skips the import and reports it as skipped, never re-running
// silently.
func (g *Gateway) ShouldImport(ctx context.Context, table string, window time.Duration) (bool, error) {
	if !g.db.WithContext(ctx).Migrator().HasTable(table) {
		g.log.Info("table missing, import required", "table", table)
		return true, nil
	}
	cutoff := time.Now().Add(-window)
	var recent int64
	err := g.db.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT COUNT(1) FROM (SELECT 1 FROM %s WHERE created_at >= ? LIMIT 1) fresh",
			pq.QuoteIdentifier(table)), cutoff).
		Scan(&recent).Error
	if err != nil {
		return false, fmt.Errorf("freshness check %s: %w", table, err)
	}
	if recent > 0 {
		g.log.Info("recent data found, skipping import", "table", table, "window", window)
		return false, nil
	}
	return true, nil
}

// geomArg binds empty geometry text as NULL so the backend expression
// yields a NULL geometry instead of failing on an empty payload.
func geomArg(hexOrWKT string) any {
	if hexOrWKT == "" {
		return nil
	}
	return hexOrWKT
}

// execUpsert runs one logical batch in a single transaction, chunked to keep
// bound-parameter counts inside driver limits. Any chunk error rolls back
// the whole batch.
func (g *Gateway) execUpsert(ctx context.Context, spec upsertSpec, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(rows); start += upsertChunk {
			end := min(start+upsertChunk, len(rows))
			chunk := rows[start:end]
			stmt := buildUpsert(spec, len(chunk))
			args := make([]any, 0, len(chunk)*len(spec.columns))
			for _, r := range chunk {
				args = append(args, r...)
			}
			if err := tx.Exec(stmt, args...).Error; err != nil {
				return fmt.Errorf("upsert %s: %w", spec.table, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (g *Gateway) parcelSpec() upsertSpec {
	return upsertSpec{
		table:       Parcel{}.TableName(),
		conflictKey: "lote_id",
		columns: []string{
			"lote_id", "pessoa_id", "nome_municipio", "nome_proprietario", "imovel",
			"nome_distrito", "codigo_distrito", "ponto_de_referencia", "data_criacao_lote",
			"codigo_municipio", "geometry_31984", "centroide", "data_modificacao_lote",
			"situacao_juridica", "numero_incra", "numero_titulo", "numero_lote",
			"nome_municipio_original", "regiao_administrativa", "modulo_fiscal",
			"area", "perimetro_km", "categoria", "ehquilombo", "ehindigena",
			"ehassentamento", "created_at",
		},
		exprs: map[string]string{
			"geometry_31984": g.dialect.MultiPolygonFromEWKBHex(),
		},
		noUpdate: []string{"created_at"},
	}
}

// UpsertParcels persists one reconciled batch. All-or-nothing: a write
// failure aborts the whole batch with no partial commit.
func (g *Gateway) UpsertParcels(ctx context.Context, parcels []Parcel) (int, error) {
	now := time.Now()
	rows := make([][]any, 0, len(parcels))
	for _, p := range parcels {
		rows = append(rows, []any{
			p.LoteID, p.PessoaID, p.NomeMunicipio, p.NomeProprietario, p.Imovel,
			p.NomeDistrito, p.CodigoDistrito, p.PontoDeReferencia, p.DataCriacaoLote,
			p.CodigoMunicipio, geomArg(p.Geometry31984), p.Centroide, p.DataModificacaoLote,
			p.SituacaoJuridica, p.NumeroIncra, p.NumeroTitulo, p.NumeroLote,
			p.NomeMunicipioOriginal, p.RegiaoAdministrativa, p.ModuloFiscal,
			p.Area, p.PerimetroKm, p.Categoria, p.EhQuilombo, p.EhIndigena,
			p.EhAssentamento, now,
		})
	}
	return g.execUpsert(ctx, g.parcelSpec(), rows)
}

// ReplaceRegionFiscalModules reloads the reference table inside one
// transaction; the table is small and authoritative per release.
func (g *Gateway) ReplaceRegionFiscalModules(ctx context.Context, rows []RegionFiscalModule) (int, error) {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + pq.QuoteIdentifier(RegionFiscalModule{}.TableName())).Error; err != nil {
			return fmt.Errorf("clear reference table: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (g *Gateway) UpsertMunicipios(ctx context.Context, bounds []MunicipioBoundary) (int, error) {
	spec := upsertSpec{
		table:       MunicipioBoundary{}.TableName(),
		conflictKey: "nm_mun",
		columns:     []string{"nm_mun", "cd_mun", "geometry", "created_at"},
		exprs:       map[string]string{"geometry": g.dialect.MultiPolygonFromEWKBHex()},
		noUpdate:    []string{"created_at"},
	}
	now := time.Now()
	rows := make([][]any, 0, len(bounds))
	for _, b := range bounds {
		rows = append(rows, []any{b.NomeMunicipio, b.CodigoIBGE, geomArg(b.Geometry), now})
	}
	return g.execUpsert(ctx, spec, rows)
}

func (g *Gateway) UpsertAssentamentos(ctx context.Context, items []Assentamento) (int, error) {
	spec := upsertSpec{
		table:       Assentamento{}.TableName(),
		conflictKey: "cd_sipra",
		columns: []string{
			"cd_sipra", "nome_municipio", "nome_municipio_original", "nome_assentamento",
			"area", "perimetro", "forma_obtecao", "tipo_assentamento", "num_familias",
			"wkt_geometry", "geom", "created_at",
		},
		exprs:    map[string]string{"geom": g.dialect.MultiPolygonFromEWKBHex()},
		noUpdate: []string{"created_at"},
	}
	now := time.Now()
	rows := make([][]any, 0, len(items))
	for _, a := range items {
		rows = append(rows, []any{
			a.CdSipra, a.NomeMunicipio, a.NomeMunicipioOriginal, a.NomeAssentamento,
			a.Area, a.Perimetro, a.FormaObtencao, a.TipoAssentamento, a.NumFamilias,
			a.WktGeometry, geomArg(a.Geom), now,
		})
	}
	return g.execUpsert(ctx, spec, rows)
}

func (g *Gateway) UpsertReservatorios(ctx context.Context, items []Reservatorio) (int, error) {
	spec := upsertSpec{
		table:       Reservatorio{}.TableName(),
		conflictKey: "id_sagreh",
		columns: []string{
			"id_sagreh", "nome", "proprietario", "gerencia", "reg_hidrog", "ano_constr",
			"area_ha", "capacid_m3", "x", "y", "nome_municipio", "nome_municipio_original",
			"geom", "created_at",
		},
		// Reservoir geometry is a WGS84 point built from its coordinates.
		exprs:    map[string]string{"geom": g.dialect.PointFromXY()},
		noUpdate: []string{"created_at"},
	}
	now := time.Now()
	rows := make([][]any, 0, len(items))
	for _, r := range items {
		rows = append(rows, []any{
			r.IDSagreh, r.Nome, r.Proprietario, r.Gerencia, r.RegHidrog, r.AnoConstrucao,
			r.AreaHa, r.CapacidadeM3, r.X, r.Y, r.NomeMunicipio, r.NomeMunicipioOriginal,
			r.X, r.Y, now,
		})
	}
	return g.execUpsert(ctx, spec, rows)
}

// FiscalTable is the in-memory join index from municipality slug to
// administrative region and fiscal module.
type FiscalTable struct {
	entries map[string]fiscalEntry
}

type fiscalEntry struct {
	region string
	mf     *float64
}

// Lookup resolves a municipality slug. ok is false for unknown
// municipalities; callers leave region/module NULL in that case.
func (t *FiscalTable) Lookup(slug string) (region string, fiscalModule *float64, ok bool) {
	e, ok := t.entries[slug]
	if !ok {
		return "", nil, false
	}
	return e.region, e.mf, true
}

func (t *FiscalTable) Len() int { return len(t.entries) }

// FiscalTable loads the reference table keyed by normalized municipality
// name, so raw records join regardless of accents and casing.
func (g *Gateway) FiscalTable(ctx context.Context) (*FiscalTable, error) {
	var rows []RegionFiscalModule
	if err := g.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load fiscal reference table: %w", err)
	}
	t := &FiscalTable{entries: make(map[string]fiscalEntry, len(rows))}
	for _, r := range rows {
		t.entries[normalize.MunicipalitySlug(r.NomeMunicipio)] = fiscalEntry{
			region: r.RegiaoAdministrativa,
			mf:     r.ModuloFiscal,
		}
	}
	return t, nil
}

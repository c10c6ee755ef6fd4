package db

import "fmt"

// Dialect abstracts the SQL differences between the two supported spatial
// backends. Every expression takes gorm-style "?" placeholders so the same
// query text binds correctly on either driver. Queries pick one dialect at
// call time and never mix the two.
type Dialect interface {
	Name() string

	// CaseInsensitiveEq returns a predicate matching column against one
	// bound parameter regardless of case.
	CaseInsensitiveEq(column string) string

	// SimplifiedGeoJSON returns an expression rendering the geometry column
	// as GeoJSON text in WGS84, simplified with one bound tolerance
	// parameter, rounded to the given number of coordinate decimals. srid is
	// the stored SRID of the column; columns already in WGS84 skip the
	// reprojection step.
	SimplifiedGeoJSON(column string, srid, decimals int) string

	// MultiPolygonFromEWKBHex returns an expression building a MultiPolygon
	// geometry from one bound hex-EWKB string parameter.
	MultiPolygonFromEWKBHex() string

	// PointFromXY returns an expression building a WGS84 point from two
	// bound coordinate parameters (lon, lat).
	PointFromXY() string
}

// PostgresDialect targets PostGIS.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) CaseInsensitiveEq(column string) string {
	return column + " ILIKE ?"
}

func (PostgresDialect) SimplifiedGeoJSON(column string, srid, decimals int) string {
	geom := column
	if srid != 4326 {
		geom = fmt.Sprintf("ST_Transform(%s, 4326)", column)
	}
	return fmt.Sprintf("ST_AsGeoJSON(ST_SimplifyPreserveTopology(%s, ?), %d)", geom, decimals)
}

func (PostgresDialect) MultiPolygonFromEWKBHex() string {
	return "ST_Multi(ST_GeomFromEWKB(decode(?, 'hex')))"
}

func (PostgresDialect) PointFromXY() string {
	return "ST_SetSRID(ST_MakePoint(?, ?), 4326)"
}

// SpatiaLiteDialect targets SQLite with the SpatiaLite extension loaded.
type SpatiaLiteDialect struct{}

func (SpatiaLiteDialect) Name() string { return "spatialite" }

func (SpatiaLiteDialect) CaseInsensitiveEq(column string) string {
	return "LOWER(" + column + ") = LOWER(?)"
}

func (SpatiaLiteDialect) SimplifiedGeoJSON(column string, srid, decimals int) string {
	geom := column
	if srid != 4326 {
		geom = fmt.Sprintf("ST_Transform(%s, 4326)", column)
	}
	return fmt.Sprintf("AsGeoJSON(SimplifyPreserveTopology(%s, ?), %d)", geom, decimals)
}

func (SpatiaLiteDialect) MultiPolygonFromEWKBHex() string {
	return "CastToMultiPolygon(GeomFromEWKB(?))"
}

func (SpatiaLiteDialect) PointFromXY() string {
	return "MakePoint(?, ?, 4326)"
}

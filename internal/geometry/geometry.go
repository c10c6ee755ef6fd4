// Package geometry bridges the text/binary well-known encodings used at
// ingestion boundaries and the geometry handle persisted to the spatial
// backend. Reprojection stays in backend SQL; only planar measurement and
// encoding happen here.
package geometry

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/wkbhex"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// SRIDs at the two system boundaries. Survey data is stored in SIRGAS 2000 /
// UTM zone 24S; public GeoJSON output is WGS84.
const (
	SRIDSurvey = 31984
	SRIDWGS84  = 4326
)

var ErrUnsupportedType = errors.New("unsupported geometry type")

// Decode accepts WKT text, hex-encoded WKB, or hex-encoded EWKB and returns
// the geometry normalized to a MultiPolygon. Polygon inputs are promoted;
// any other geometry type is rejected.
func Decode(raw string) (*geom.MultiPolygon, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty geometry")
	}

	var g geom.T
	var err error
	if isHex(s) {
		g, err = ewkbhex.Decode(s)
		if err != nil {
			g, err = wkbhex.Decode(s)
		}
		if err != nil {
			return nil, fmt.Errorf("decode hex geometry: %w", err)
		}
	} else {
		g, err = wkt.Unmarshal(s)
		if err != nil {
			return nil, fmt.Errorf("decode wkt geometry: %w", err)
		}
	}
	return toMultiPolygon(g)
}

// toMultiPolygon promotes a Polygon to a single-member MultiPolygon; the
// canonical column type is fixed to MultiPolygon.
func toMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		return t, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(t.Layout())
		mp.SetSRID(t.SRID())
		if err := mp.Push(t); err != nil {
			return nil, fmt.Errorf("promote polygon: %w", err)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, g)
	}
}

// AreaHa is the planar area in hectares, computed in the geometry's native
// coordinate system (square meters / 10000 for the survey CRS).
func AreaHa(mp *geom.MultiPolygon) float64 {
	return mp.Area() / 10000.0
}

// PerimeterKm is the planar boundary length in kilometers.
func PerimeterKm(mp *geom.MultiPolygon) float64 {
	return mp.Length() / 1000.0
}

// EWKBHex encodes the geometry as hex EWKB carrying the given SRID, the form
// the upsert SQL feeds to GeomFromEWKB on both backends.
func EWKBHex(mp *geom.MultiPolygon, srid int) (string, error) {
	mp.SetSRID(srid)
	return ewkbhex.Encode(mp, ewkbhex.NDR)
}

// isHex reports whether the string can only be a hex-encoded WKB/EWKB
// payload. WKT never consists solely of hex digits.
func isHex(s string) bool {
	if len(s) < 2 || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s[:2])
	if err != nil {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

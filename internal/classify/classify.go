// Package classify maps parcel area against the municipal fiscal module
// (módulo fiscal, MF), the locally defined reference land area.
package classify

// Size categories persisted to the canonical table. The strings are part of
// the public dataset contract and stay in Portuguese.
const (
	SemClassificacao     = "Sem Classificação"
	PequenaMenorUmModulo = "Pequena Propriedade < 1 MF"
	Pequena              = "Pequena Propriedade"
	Media                = "Média Propriedade"
	Grande               = "Grande Propriedade"
)

// Classify returns the size category for a parcel area (hectares) relative
// to the fiscal module. Either value absent means the parcel cannot be
// classified. Bounds: [MF, 4MF] small, (4MF, 15MF] medium, above large.
func Classify(areaHa, fiscalModule *float64) string {
	if areaHa == nil || fiscalModule == nil {
		return SemClassificacao
	}
	ha, mf := *areaHa, *fiscalModule
	switch {
	case ha > 0 && ha < mf:
		return PequenaMenorUmModulo
	case ha >= mf && ha <= 4*mf:
		return Pequena
	case ha > 4*mf && ha <= 15*mf:
		return Media
	case ha > 15*mf:
		return Grande
	default:
		return SemClassificacao
	}
}

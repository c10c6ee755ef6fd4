package classify_test

import (
	"testing"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/classify"
)

func f(v float64) *float64 { return &v }

// TestBoundaries pins the inclusive/exclusive thresholds at each category
// edge for a fiscal module of 10 ha.
func TestBoundaries(t *testing.T) {
	mf := f(10)
	tests := []struct {
		area *float64
		want string
	}{
		{f(0.5), classify.PequenaMenorUmModulo},
		{f(9.999), classify.PequenaMenorUmModulo},
		{f(10), classify.Pequena},  // inclusive lower bound at 1 MF
		{f(40), classify.Pequena},  // inclusive at 4 MF
		{f(40.01), classify.Media}, // exclusive above 4 MF
		{f(150), classify.Media},   // inclusive at 15 MF
		{f(150.01), classify.Grande},
		{f(0), classify.SemClassificacao},
		{f(-1), classify.SemClassificacao},
	}
	for _, tt := range tests {
		if got := classify.Classify(tt.area, mf); got != tt.want {
			t.Errorf("Classify(%v, 10) = %q, want %q", *tt.area, got, tt.want)
		}
	}
}

func TestMissingInputs(t *testing.T) {
	if got := classify.Classify(nil, f(10)); got != classify.SemClassificacao {
		t.Errorf("Classify(nil, 10) = %q, want %q", got, classify.SemClassificacao)
	}
	if got := classify.Classify(f(100), nil); got != classify.SemClassificacao {
		t.Errorf("Classify(100, nil) = %q, want %q", got, classify.SemClassificacao)
	}
	if got := classify.Classify(nil, nil); got != classify.SemClassificacao {
		t.Errorf("Classify(nil, nil) = %q, want %q", got, classify.SemClassificacao)
	}
}

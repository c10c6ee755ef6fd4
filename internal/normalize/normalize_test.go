package normalize_test

import (
	"testing"
	"time"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/normalize"
)

// TestNullSafety verifies that every normalizer returns nil for the known
// null markers instead of erroring out.
func TestNullSafety(t *testing.T) {
	for _, v := range []string{"", "NULL", "none", "NA", "n/a", "NaN", "  null  "} {
		if got := normalize.Float(v); got != nil {
			t.Errorf("Float(%q) = %v, want nil", v, *got)
		}
		if got := normalize.Int(v); got != nil {
			t.Errorf("Int(%q) = %v, want nil", v, *got)
		}
		if got := normalize.Timestamp(v); got != nil {
			t.Errorf("Timestamp(%q) = %v, want nil", v, *got)
		}
		if got := normalize.Bool(v); got != nil {
			t.Errorf("Bool(%q) = %v, want nil", v, *got)
		}
	}
}

func TestFloatLocaleSeparators(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10.5", 10.5},
		{"10,5", 10.5},
		{"1.234,56", 1234.56},
		{" 42 ", 42},
		{"1 234,5", 1234.5},
	}
	for _, tt := range tests {
		got := normalize.Float(tt.in)
		if got == nil {
			t.Errorf("Float(%q) = nil, want %v", tt.in, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("Float(%q) = %v, want %v", tt.in, *got, tt.want)
		}
	}
	if got := normalize.Float("abc"); got != nil {
		t.Errorf("Float(\"abc\") = %v, want nil", *got)
	}
}

func TestIntTruncatesThroughFloat(t *testing.T) {
	if got := normalize.Int("10,0"); got == nil || *got != 10 {
		t.Errorf("Int(\"10,0\") = %v, want 10", got)
	}
	if got := normalize.Int("3.7"); got == nil || *got != 3 {
		t.Errorf("Int(\"3.7\") = %v, want 3", got)
	}
	if got := normalize.Int("x"); got != nil {
		t.Errorf("Int(\"x\") = %v, want nil", *got)
	}
}

func TestTimestampLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-04-01", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"2023-04-01 10:20:30", time.Date(2023, 4, 1, 10, 20, 30, 0, time.UTC)},
		{"01/04/2023", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"01/04/2023 10:20:30", time.Date(2023, 4, 1, 10, 20, 30, 0, time.UTC)},
		{"2023/04/01", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"01-04-2023", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"01-04-2023 10:20:30", time.Date(2023, 4, 1, 10, 20, 30, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := normalize.Timestamp(tt.in)
		if got == nil {
			t.Errorf("Timestamp(%q) = nil, want %v", tt.in, tt.want)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Timestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := normalize.Timestamp("04/31/2023"); got != nil {
		t.Errorf("Timestamp(US-ordered date) = %v, want nil", got)
	}
}

// TestTimestampFractionalSeconds covers registry stamps with nanosecond
// padding; they are truncated to microseconds before matching.
func TestTimestampFractionalSeconds(t *testing.T) {
	got := normalize.Timestamp("2023-04-01 10:20:30.123456789")
	if got == nil {
		t.Fatal("Timestamp with fractional seconds = nil")
	}
	want := time.Date(2023, 4, 1, 10, 20, 30, 123456000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBoolTokens(t *testing.T) {
	for _, v := range []string{"t", "TRUE", "1", "y", "Yes", "s", "SIM"} {
		got := normalize.Bool(v)
		if got == nil || !*got {
			t.Errorf("Bool(%q) = %v, want true", v, got)
		}
	}
	for _, v := range []string{"f", "false", "0", "nao", "2"} {
		got := normalize.Bool(v)
		if got == nil || *got {
			t.Errorf("Bool(%q) = %v, want false", v, got)
		}
	}
}

func TestStringTrims(t *testing.T) {
	if got := normalize.String("  abc  "); got == nil || *got != "abc" {
		t.Errorf("String = %v, want \"abc\"", got)
	}
	if got := normalize.String("   "); got != nil {
		t.Errorf("String(blank) = %q, want nil", *got)
	}
}

func TestMunicipalitySlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Santa Quitéria", "santa_quiteria"},
		{"IRAUÇUBA", "iraucuba"},
		{"Fortaleza", "fortaleza"},
		{"  São Gonçalo do Amarante ", "sao_goncalo_do_amarante"},
	}
	for _, tt := range tests {
		if got := normalize.MunicipalitySlug(tt.in); got != tt.want {
			t.Errorf("MunicipalitySlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMunicipalityTitle(t *testing.T) {
	if got := normalize.MunicipalityTitle("SANTA QUITÉRIA"); got != "Santa Quitéria" {
		t.Errorf("MunicipalityTitle = %q, want %q", got, "Santa Quitéria")
	}
}

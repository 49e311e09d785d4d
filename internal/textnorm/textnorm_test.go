package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "CABINA De Fotos", "cabina de fotos"},
		{"strips accents", "Cabína 360 y quinceañera", "cabina 360 y quinceanera"},
		{"collapses whitespace", "  letras   gigantes \t 6 ", "letras gigantes 6"},
		{"keeps digits and slashes", "20/05/2026", "20/05/2026"},
		{"mixed", "  Sí, QUIERO la Lluvia Metálica  ", "si, quiero la lluvia metalica"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

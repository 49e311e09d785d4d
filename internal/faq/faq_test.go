package faq

import (
	"strings"
	"testing"

	"github.com/festibooth/boothbot/internal/textnorm"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantMatch     bool
		wantSubstring string
	}{
		{"deposit question", "¿Cuánto es de anticipo?", true, "$500"},
		{"reserve question", "como puedo reservar", true, "anticipo"},
		{"purchase intent not a question", "quiero apartar la fecha", false, ""},
		{"reserve intent not a question", "quiero reservar", false, ""},
		{"duration question", "¿cuántas horas incluye?", true, "3 horas"},
		{"booth contents", "¿Qué incluye la cabina?", true, "impresiones"},
		{"coverage", "¿Hasta dónde llegan?", true, "Monterrey"},
		{"payment", "¿Aceptan tarjeta?", true, "transferencia"},
		{"schedule", "¿A qué hora atienden?", true, "9:00"},
		{"human handoff", "quiero hablar con una persona", true, "asesor"},
		{"invoice", "¿dan factura?", true, "factur"},
		{"no match", "quiero una cabina de fotos", false, ""},
		{"empty", "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, ok := Match(textnorm.Normalize(tt.input))
			if ok != tt.wantMatch {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.input, ok, tt.wantMatch)
			}
			if ok && !strings.Contains(answer, tt.wantSubstring) {
				t.Errorf("Match(%q) answer %q missing %q", tt.input, answer, tt.wantSubstring)
			}
		})
	}
}

func TestMatchOrderSpecificFirst(t *testing.T) {
	// A question mentioning both the booth contents and location should
	// hit the earlier, more specific rule.
	answer, ok := Match(textnorm.Normalize("¿Qué incluye la cabina y hasta dónde llegan?"))
	if !ok {
		t.Fatal("expected a match")
	}
	if !strings.Contains(answer, "impresiones") {
		t.Errorf("expected booth-contents answer first, got %q", answer)
	}
}

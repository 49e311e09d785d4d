package quote

import (
	"strconv"
	"strings"
	"testing"

	"github.com/festibooth/boothbot/internal/catalog"
)

func TestComputeSparklerTable(t *testing.T) {
	for qty, price := range catalog.SparklerPrices {
		q := Compute(ParseSelection("chisperos " + itoa(qty)).Selection)
		if q.Subtotal != price {
			t.Errorf("chisperos %d: subtotal = %d, want %d", qty, q.Subtotal, price)
		}
		if len(q.Recognized) != 1 || q.Recognized[0] != catalog.KeySparklers {
			t.Errorf("chisperos %d: recognized = %v", qty, q.Recognized)
		}
	}
}

func TestComputeSparklerInvalidQuantities(t *testing.T) {
	for _, qty := range []int{1, 3, 5, 7, 9, 11, 12, 100} {
		q := Compute("chisperos " + itoa(qty))
		if q.Subtotal != 0 {
			t.Errorf("chisperos %d: subtotal = %d, want 0 (excluded)", qty, q.Subtotal)
		}
		if len(q.Recognized) != 0 {
			t.Errorf("chisperos %d: recognized = %v, want none", qty, q.Recognized)
		}
		if len(q.Lines) != 1 || !strings.Contains(q.Lines[0].Description, "cantidad no v") {
			t.Errorf("chisperos %d: missing invalid-quantity line, got %+v", qty, q.Lines)
		}
	}
}

func TestDiscountTiers(t *testing.T) {
	tests := []struct {
		name        string
		selection   string
		wantPercent int
	}{
		{"one service", "cabina de fotos", 10},
		{"sparklers alone carve-out", "chisperos 2", 0},
		{"two services", "cabina de fotos, scrapbook", 25},
		{"three services", "cabina de fotos, scrapbook, lluvia metalica", 30},
		{"four services", "cabina de fotos, scrapbook, lluvia metalica, letras gigantes 6", 40},
		{"five services", "cabina de fotos, scrapbook, lluvia metalica, letras gigantes 6, chisperos 4", 40},
		{"sparklers with another service", "chisperos 2, scrapbook", 25},
		{"nothing recognized", "pista de hielo", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Compute(tt.selection)
			if q.DiscountPercent != tt.wantPercent {
				t.Errorf("Compute(%q).DiscountPercent = %d, want %d", tt.selection, q.DiscountPercent, tt.wantPercent)
			}
		})
	}
}

func TestComputeFullScenario(t *testing.T) {
	// cabina de fotos (3500) + 6 letras (2400) + 4 chisperos (1500) +
	// carrito con alcohol (2800) = 10200, four services, 40% off.
	selection := "cabina de fotos, letras gigantes 6, chisperos 4, carrito de shots con alcohol"
	q := Compute(selection)
	if q.Subtotal != 10200 {
		t.Errorf("subtotal = %d, want 10200", q.Subtotal)
	}
	if q.DiscountPercent != 40 {
		t.Errorf("discount = %d%%, want 40%%", q.DiscountPercent)
	}
	if q.Total != 6120 {
		t.Errorf("total = %d, want 6120", q.Total)
	}
	if len(q.Recognized) != 4 {
		t.Errorf("recognized = %v, want 4 services", q.Recognized)
	}
}

func TestComputeSparklersOnlyScenario(t *testing.T) {
	q := Compute(ParseSelection("2 chisperos").Selection)
	if q.Subtotal != 1000 || q.DiscountPercent != 0 || q.Total != 1000 {
		t.Errorf("2 chisperos: subtotal=%d discount=%d total=%d, want 1000/0/1000", q.Subtotal, q.DiscountPercent, q.Total)
	}
}

func TestComputeUnrecognizedLine(t *testing.T) {
	q := Compute("cabina de fotos, pista de hielo")
	if q.Subtotal != 3500 {
		t.Errorf("subtotal = %d, want 3500", q.Subtotal)
	}
	found := false
	for _, line := range q.Lines {
		if strings.Contains(line.Description, "no reconocido") {
			found = true
			if line.Recognized {
				t.Error("unrecognized line marked recognized")
			}
		}
	}
	if !found {
		t.Errorf("missing 'no reconocido' line in %+v", q.Lines)
	}
	if len(q.Recognized) != 1 {
		t.Errorf("recognized = %v, want only cabina", q.Recognized)
	}
}

func TestComputeIdempotent(t *testing.T) {
	selection := "cabina 360, letras gigantes 4, scrapbook"
	a := Compute(selection)
	b := Compute(selection)
	if a.Subtotal != b.Subtotal || a.Total != b.Total || a.DiscountPercent != b.DiscountPercent {
		t.Errorf("recompute differs: %+v vs %+v", a, b)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount int
		want   string
	}{
		{0, "$0"},
		{400, "$400"},
		{1000, "$1,000"},
		{10200, "$10,200"},
		{6120, "$6,120"},
		{1234567, "$1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.amount); got != tt.want {
			t.Errorf("FormatMoney(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

package quote

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/festibooth/boothbot/internal/catalog"
)

// Line is one priced (or rejected) entry of a quotation.
type Line struct {
	Description string
	Amount      int
	Recognized  bool
}

// Quote is the result of pricing a canonical selection.
type Quote struct {
	Lines           []Line
	Subtotal        int
	DiscountPercent int
	DiscountAmount  int
	Total           int
	// Recognized lists the distinct recognized service keys, in
	// selection order. The discount tier is driven by its length.
	Recognized []string
}

// HasRecognized reports whether anything in the selection priced out.
func (q Quote) HasRecognized() bool {
	return len(q.Recognized) > 0
}

// Compute prices a canonical comma-joined selection. Unrecognized
// tokens become "no reconocido" lines excluded from the subtotal and
// from the distinct-service count. Sparkler quantities outside the tier
// table are flagged invalid and excluded, never rounded.
func Compute(selection string) Quote {
	var q Quote
	recognized := make(map[string]bool)

	for _, token := range Tokens(selection) {
		base, qty, hasQty := SplitToken(token)

		switch base {
		case catalog.KeyGiantLetters:
			if !hasQty || qty <= 0 {
				q.Lines = append(q.Lines, Line{Description: fmt.Sprintf("%s — falta la cantidad", base)})
				continue
			}
			amount := qty * catalog.LetterUnitPrice
			q.Lines = append(q.Lines, Line{
				Description: fmt.Sprintf("%s (%d) — %s", base, qty, FormatMoney(amount)),
				Amount:      amount,
				Recognized:  true,
			})
			q.Subtotal += amount
			if !recognized[base] {
				recognized[base] = true
				q.Recognized = append(q.Recognized, base)
			}

		case catalog.KeySparklers:
			if !hasQty || qty <= 0 {
				q.Lines = append(q.Lines, Line{Description: fmt.Sprintf("%s — falta la cantidad", base)})
				continue
			}
			price, ok := catalog.SparklerPrices[qty]
			if !ok {
				q.Lines = append(q.Lines, Line{
					Description: fmt.Sprintf("%s (%d) — cantidad no válida, manejamos %s", base, qty, sparklerTierList()),
				})
				continue
			}
			q.Lines = append(q.Lines, Line{
				Description: fmt.Sprintf("%s (%d) — %s", base, qty, FormatMoney(price)),
				Amount:      price,
				Recognized:  true,
			})
			q.Subtotal += price
			if !recognized[base] {
				recognized[base] = true
				q.Recognized = append(q.Recognized, base)
			}

		case catalog.BareCabin, catalog.BareCart:
			// Bare variants never reach quotation; any survivor is a
			// stripped entry awaiting disambiguation.
			continue

		default:
			svc, ok := catalog.Services[base]
			if !ok {
				q.Lines = append(q.Lines, Line{Description: fmt.Sprintf("%s — no reconocido", token)})
				continue
			}
			q.Lines = append(q.Lines, Line{
				Description: fmt.Sprintf("%s — %s", base, FormatMoney(svc.Price)),
				Amount:      svc.Price,
				Recognized:  true,
			})
			q.Subtotal += svc.Price
			if !recognized[base] {
				recognized[base] = true
				q.Recognized = append(q.Recognized, base)
			}
		}
	}

	q.DiscountPercent = discountTier(q.Recognized)
	q.DiscountAmount = q.Subtotal * q.DiscountPercent / 100
	q.Total = q.Subtotal - q.DiscountAmount
	return q
}

// discountTier returns the discount percent for a count of distinct
// recognized services. A single service earns 10% except sparklers
// alone, which earn nothing.
func discountTier(recognized []string) int {
	switch len(recognized) {
	case 0:
		return 0
	case 1:
		if recognized[0] == catalog.KeySparklers {
			return 0
		}
		return 10
	case 2:
		return 25
	case 3:
		return 30
	default:
		return 40
	}
}

// FormatMoney renders a whole-peso amount with thousands separators for
// display, e.g. 10200 -> "$10,200".
func FormatMoney(amount int) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.Itoa(amount)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func sparklerTierList() string {
	tiers := append([]int(nil), catalog.SparklerTiers...)
	sort.Ints(tiers)
	parts := make([]string, len(tiers))
	for i, t := range tiers {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ", ")
}

package quote

import (
	"fmt"

	"github.com/festibooth/boothbot/internal/catalog"
)

// Suggestion is a cross-sell nudge for the current selection.
// ScrapbookVideo marks that the scrapbook preview video should follow
// the text.
type Suggestion struct {
	Text           string
	ScrapbookVideo bool
}

// Advise inspects the current selection and returns at most one
// suggestion: scrapbook for photo-booth customers, or a better discount
// tier when exactly two distinct services are selected. The caller is
// responsible for suggesting at most once per quote follow-up (the
// upsellSuggested flag).
func Advise(selection string) (Suggestion, bool) {
	recognized := Compute(selection).Recognized

	hasBooth := false
	hasScrapbook := false
	for _, key := range recognized {
		switch key {
		case catalog.KeyPhotoBooth:
			hasBooth = true
		case catalog.KeyScrapbook:
			hasScrapbook = true
		}
	}

	if hasBooth && !hasScrapbook {
		return Suggestion{
			Text: fmt.Sprintf("💡 Tip: agrega el scrapbook por %s y llévate un álbum firmado por tus invitados con las fotos de la cabina. Te mando un video de cómo queda 👇",
				FormatMoney(catalog.Services[catalog.KeyScrapbook].Price)),
			ScrapbookVideo: true,
		}, true
	}

	if len(recognized) == 2 {
		return Suggestion{
			Text: "💡 Con un tercer servicio tu descuento sube de 25% a 30%, y con cuatro llega al 40%. ¿Te late agregar algo más?",
		}, true
	}

	return Suggestion{}, false
}

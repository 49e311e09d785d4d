// Package catalog holds the fixed service catalog for the photobooth
// rental business: canonical service tokens, prices, the sparkler tier
// table, synonym spellings, illustrative media, and the recommended
// packages per event type.
//
// Prices are business data in whole pesos; the quotation engine works on
// these plain integer values and formats them only for display.
package catalog

import "github.com/festibooth/boothbot/internal/models"

// Canonical service keys. The parser rewrites every recognized spelling
// to one of these before the quotation engine sees it.
const (
	KeyPhotoBooth   = "cabina de fotos"
	KeyBooth360     = "cabina 360"
	KeyGiantLetters = "letras gigantes"
	KeySparklers    = "chisperos"
	KeyCartAlcohol  = "carrito de shots con alcohol"
	KeyCartNoAlc    = "carrito de shots sin alcohol"
	KeyScrapbook    = "scrapbook"
	KeyMetallicRain = "lluvia metalica"
)

// Bare tokens that require a qualifier before they can be quoted.
const (
	BareCabin = "cabina"
	BareCart  = "carrito de shots"
)

// Service is one catalog entry. Price is the flat price; PerUnit is set
// instead for quantity-priced services (giant letters).
type Service struct {
	Key          string
	Price        int
	PerUnit      int
	MediaURL     string
	MediaCaption string
	MediaIsVideo bool
}

// LetterUnitPrice is the per-letter price for giant letters.
const LetterUnitPrice = 400

// SparklerPrices is the discrete price table keyed by accepted even
// quantities. Quantities outside this table are invalid, never rounded.
var SparklerPrices = map[int]int{
	2:  1000,
	4:  1500,
	6:  2000,
	8:  2500,
	10: 3000,
}

// SparklerTiers lists the accepted sparkler quantities in order.
var SparklerTiers = []int{2, 4, 6, 8, 10}

// Services is the catalog indexed by canonical key.
var Services = map[string]Service{
	KeyPhotoBooth: {
		Key:          KeyPhotoBooth,
		Price:        3500,
		MediaURL:     "https://media.festibooth.mx/cabina-fotos.jpg",
		MediaCaption: "Nuestra cabina de fotos con props ilimitados",
	},
	KeyBooth360: {
		Key:          KeyBooth360,
		Price:        4500,
		MediaURL:     "https://media.festibooth.mx/cabina-360.mp4",
		MediaCaption: "Cabina 360 en acción",
		MediaIsVideo: true,
	},
	KeyGiantLetters: {
		Key:          KeyGiantLetters,
		PerUnit:      LetterUnitPrice,
		MediaURL:     "https://media.festibooth.mx/letras-gigantes.jpg",
		MediaCaption: "Letras gigantes iluminadas",
	},
	KeySparklers: {
		Key:          KeySparklers,
		MediaURL:     "https://media.festibooth.mx/chisperos.mp4",
		MediaCaption: "Chisperos para tu entrada o primer baile",
		MediaIsVideo: true,
	},
	KeyCartAlcohol: {
		Key:          KeyCartAlcohol,
		Price:        2800,
		MediaURL:     "https://media.festibooth.mx/carrito-shots.jpg",
		MediaCaption: "Carrito de shots con alcohol",
	},
	KeyCartNoAlc: {
		Key:          KeyCartNoAlc,
		Price:        2200,
		MediaURL:     "https://media.festibooth.mx/carrito-shots.jpg",
		MediaCaption: "Carrito de shots sin alcohol",
	},
	KeyScrapbook: {
		Key:          KeyScrapbook,
		Price:        800,
		MediaURL:     "https://media.festibooth.mx/scrapbook.mp4",
		MediaCaption: "Scrapbook de recuerdos firmado por tus invitados",
		MediaIsVideo: true,
	},
	KeyMetallicRain: {
		Key:          KeyMetallicRain,
		Price:        700,
		MediaURL:     "https://media.festibooth.mx/lluvia-metalica.jpg",
		MediaCaption: "Lluvia metálica para el último baile",
	},
}

// Synonyms maps normalized alternate spellings to canonical keys. Keys
// and values here are already accent-stripped and lower-cased; the
// parser normalizes input before the lookup.
var Synonyms = map[string]string{
	"cabina fotografica":         KeyPhotoBooth,
	"cabina de foto":             KeyPhotoBooth,
	"photobooth":                 KeyPhotoBooth,
	"cabina de fotografia":       KeyPhotoBooth,
	"cabina trescientos sesenta": KeyBooth360,
	"cabina de 360":              KeyBooth360,
	"plataforma 360":             KeyBooth360,
	"letras":                     KeyGiantLetters,
	"letras luminosas":           KeyGiantLetters,
	"letra gigante":              KeyGiantLetters,
	"chispero":                   KeySparklers,
	"chisperos frios":            KeySparklers,
	"fuegos frios":               KeySparklers,
	"carrito shots":              BareCart,
	"carro de shots":             BareCart,
	"carrito de shot":            BareCart,
	"album":                      KeyScrapbook,
	"album de firmas":            KeyScrapbook,
	"libro de firmas":            KeyScrapbook,
	"lluvia metalica plateada":   KeyMetallicRain,
	"lluvia de papel metalico":   KeyMetallicRain,
}

// Packages are the recommended bundles shown after the event type is
// classified. The bundle itself is presentation only; a customer who
// taps "me interesa" goes straight to date selection.
var Packages = map[models.EventType]models.RecommendedPackage{
	models.EventTypeWedding: {
		Name:        "Paquete Boda",
		Description: "Cabina de fotos + letras gigantes (4) + chisperos (4) + scrapbook. Todo lo esencial para tu boda con 40% de descuento aplicado.",
		MediaURL:    "https://media.festibooth.mx/paquete-boda.jpg",
	},
	models.EventTypeQuinceanera: {
		Name:        "Paquete XV",
		Description: "Cabina 360 + chisperos (4) + lluvia metálica. El momento viral de tus XV con 30% de descuento aplicado.",
		MediaURL:    "https://media.festibooth.mx/paquete-xv.jpg",
	},
	models.EventTypeOther: {
		Name:        "Paquete Fiesta",
		Description: "Cabina de fotos + carrito de shots. La combinación favorita para cualquier celebración con 25% de descuento aplicado.",
		MediaURL:    "https://media.festibooth.mx/paquete-fiesta.jpg",
	},
}

// PackageFor returns the recommended package for an event type,
// defaulting to the generic party bundle.
func PackageFor(et models.EventType) models.RecommendedPackage {
	if pkg, ok := Packages[et]; ok {
		return pkg
	}
	return Packages[models.EventTypeOther]
}

// IsCartVariant reports whether key is one of the shot-cart variants.
func IsCartVariant(key string) bool {
	return key == KeyCartAlcohol || key == KeyCartNoAlc
}

// IsCabinVariant reports whether key is one of the cabin variants.
func IsCabinVariant(key string) bool {
	return key == KeyPhotoBooth || key == KeyBooth360
}

// OtherCabinVariant returns the sibling cabin variant.
func OtherCabinVariant(key string) string {
	if key == KeyPhotoBooth {
		return KeyBooth360
	}
	return KeyPhotoBooth
}

// OtherCartVariant returns the sibling shot-cart variant.
func OtherCartVariant(key string) string {
	if key == KeyCartAlcohol {
		return KeyCartNoAlc
	}
	return KeyCartAlcohol
}

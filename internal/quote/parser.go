// Package quote implements the service parser and quotation engine for
// the photobooth sales funnel.
//
// The parser rewrites free-text service lists into canonical
// comma-joined tokens; the engine prices a canonical selection and
// applies the tiered discount.
package quote

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/festibooth/boothbot/internal/catalog"
	"github.com/festibooth/boothbot/internal/textnorm"
)

// Op discriminates how a parsed selection should be applied to the
// existing draft.
type Op int

// Selection operations.
const (
	OpSet Op = iota
	OpAdd
	OpRemove
)

// ParseResult is the outcome of normalizing a free-text service list.
// Pending flags mark services that were mentioned without a required
// qualifier; the matching bare token is stripped from Selection and the
// funnel branches to the corresponding disambiguation state.
type ParseResult struct {
	Selection        string
	PendingCabin     bool
	PendingLetters   bool
	PendingSparklers bool
	PendingCart      bool
}

// HasPending reports whether any disambiguation is required.
func (r ParseResult) HasPending() bool {
	return r.PendingCabin || r.PendingLetters || r.PendingSparklers || r.PendingCart
}

var (
	addVerbRe    = regexp.MustCompile(`^(?:quiero )?(?:agrega(?:r)?(?:me)?|anad(?:e|ir)|suma(?:r)?|pon(?:er)?(?:me)?|tambien quiero)\b`)
	removeVerbRe = regexp.MustCompile(`^(?:ya no quiero|quita(?:r)?(?:me)?|elimina(?:r)?|remueve|borra(?:r)?)\b`)
	qtyPrefixRe  = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	qtySuffixRe  = regexp.MustCompile(`^(.+?)\s+(\d+)$`)
	articleRe    = regexp.MustCompile(`^(?:el|la|los|las|un|una|unos|unas|de|mi|mis)\s+`)
)

// SplitCommand detects a leading add/remove verb and returns the
// operation together with the remaining text. Text without a verb is a
// full selection (OpSet).
func SplitCommand(raw string) (Op, string) {
	n := textnorm.Normalize(raw)
	if m := addVerbRe.FindString(n); m != "" {
		return OpAdd, strings.TrimSpace(n[len(m):])
	}
	if m := removeVerbRe.FindString(n); m != "" {
		return OpRemove, strings.TrimSpace(n[len(m):])
	}
	return OpSet, n
}

// ParseSelection normalizes a free-text service list into a canonical
// selection. Rules, in order: quantity-before-noun forms become
// noun-before-quantity, synonym spellings merge to one canonical
// spelling, and tokens lacking a required qualifier set a pending flag
// and are stripped from the draft.
func ParseSelection(raw string) ParseResult {
	var res ParseResult
	var tokens []string
	seen := make(map[string]int) // base key -> index in tokens

	for _, part := range splitParts(textnorm.Normalize(raw)) {
		token, pending := canonicalizePart(part)
		switch pending {
		case pendingNone:
		case pendingCabin:
			res.PendingCabin = true
			continue
		case pendingLetters:
			res.PendingLetters = true
			continue
		case pendingSparklers:
			res.PendingSparklers = true
			continue
		case pendingCart:
			res.PendingCart = true
			continue
		}
		if token == "" {
			continue
		}
		base, _, _ := SplitToken(token)
		if idx, dup := seen[base]; dup {
			tokens[idx] = token
			continue
		}
		seen[base] = len(tokens)
		tokens = append(tokens, token)
	}

	res.Selection = strings.Join(tokens, ", ")
	return res
}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingCabin
	pendingLetters
	pendingSparklers
	pendingCart
)

// splitParts breaks a normalized list on commas and " y " connectors.
func splitParts(n string) []string {
	n = strings.ReplaceAll(n, " y ", ",")
	var parts []string
	for _, p := range strings.Split(n, ",") {
		p = strings.TrimSpace(p)
		p = articleRe.ReplaceAllString(p, "")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// canonicalizePart rewrites one list entry into a canonical token, or
// reports the disambiguation it requires.
func canonicalizePart(part string) (string, pendingKind) {
	qty, noun, hasQty := extractQuantity(part)
	key := canonicalizeNoun(noun)

	switch key {
	case catalog.KeyGiantLetters:
		if !hasQty || qty <= 0 {
			return "", pendingLetters
		}
		return fmt.Sprintf("%s %d", catalog.KeyGiantLetters, qty), pendingNone
	case catalog.KeySparklers:
		if !hasQty || qty <= 0 {
			return "", pendingSparklers
		}
		return fmt.Sprintf("%s %d", catalog.KeySparklers, qty), pendingNone
	case catalog.BareCabin:
		return "", pendingCabin
	case catalog.BareCart:
		return "", pendingCart
	case "":
		// Not recognized; keep the raw part so the quote lists it.
		return part, pendingNone
	default:
		return key, pendingNone
	}
}

// extractQuantity pulls a leading or trailing quantity off a part.
func extractQuantity(part string) (qty int, noun string, ok bool) {
	if m := qtyPrefixRe.FindStringSubmatch(part); m != nil {
		q, err := strconv.Atoi(m[1])
		if err == nil {
			return q, strings.TrimSpace(m[2]), true
		}
	}
	if m := qtySuffixRe.FindStringSubmatch(part); m != nil {
		q, err := strconv.Atoi(m[2])
		if err == nil {
			return q, strings.TrimSpace(m[1]), true
		}
	}
	return 0, part, false
}

// canonicalizeNoun maps a normalized noun phrase to a canonical catalog
// key, a bare token requiring disambiguation, or "" when unknown.
func canonicalizeNoun(noun string) string {
	noun = articleRe.ReplaceAllString(noun, "")

	if _, ok := catalog.Services[noun]; ok {
		return noun
	}
	if key, ok := catalog.Synonyms[noun]; ok {
		return key
	}

	switch {
	case strings.Contains(noun, "cabina"):
		if strings.Contains(noun, "360") {
			return catalog.KeyBooth360
		}
		if strings.Contains(noun, "foto") {
			return catalog.KeyPhotoBooth
		}
		return catalog.BareCabin
	case strings.Contains(noun, "letra"):
		return catalog.KeyGiantLetters
	case strings.Contains(noun, "chisper") || strings.Contains(noun, "fuego frio") || strings.Contains(noun, "fuegos frios"):
		return catalog.KeySparklers
	case strings.Contains(noun, "carrito") || strings.Contains(noun, "shots") || strings.Contains(noun, "shot"):
		if strings.Contains(noun, "sin alcohol") {
			return catalog.KeyCartNoAlc
		}
		if strings.Contains(noun, "alcohol") {
			return catalog.KeyCartAlcohol
		}
		return catalog.BareCart
	case strings.Contains(noun, "scrapbook") || strings.Contains(noun, "album") || strings.Contains(noun, "libro de firmas"):
		return catalog.KeyScrapbook
	case strings.Contains(noun, "lluvia"):
		return catalog.KeyMetallicRain
	case strings.Contains(noun, "360"):
		return catalog.KeyBooth360
	}
	return ""
}

// SplitToken separates a canonical token into its base key and optional
// trailing quantity.
func SplitToken(token string) (base string, qty int, hasQty bool) {
	if m := qtySuffixRe.FindStringSubmatch(token); m != nil {
		q, err := strconv.Atoi(m[2])
		if err == nil {
			return strings.TrimSpace(m[1]), q, true
		}
	}
	return token, 0, false
}

// Tokens splits a canonical selection into its tokens.
func Tokens(selection string) []string {
	if strings.TrimSpace(selection) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(selection, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// MergeSelections folds an incoming canonical selection into an existing
// one. A token whose base key already exists replaces the old token
// (updating a quantity, for example); new tokens append in order.
func MergeSelections(existing, incoming string) string {
	tokens := Tokens(existing)
	index := make(map[string]int, len(tokens))
	for i, t := range tokens {
		base, _, _ := SplitToken(t)
		index[base] = i
	}
	for _, t := range Tokens(incoming) {
		base, _, _ := SplitToken(t)
		if i, ok := index[base]; ok {
			tokens[i] = t
			continue
		}
		index[base] = len(tokens)
		tokens = append(tokens, t)
	}
	return strings.Join(tokens, ", ")
}

// RemoveFromSelection filters tokens matching the removal phrase from an
// existing canonical selection. Matching is substring-based on
// normalized text; a phrase resolving to a bare cabin or cart drops
// every variant of that service.
func RemoveFromSelection(existing, phrase string) string {
	p := articleRe.ReplaceAllString(textnorm.Normalize(phrase), "")
	if p == "" {
		return existing
	}
	key := canonicalizeNoun(p)

	var kept []string
	for _, t := range Tokens(existing) {
		base, _, _ := SplitToken(t)
		switch {
		case key == catalog.BareCabin && catalog.IsCabinVariant(base):
		case key == catalog.BareCart && catalog.IsCartVariant(base):
		case key != "" && key == base:
		case strings.Contains(base, p) || strings.Contains(p, base):
		default:
			kept = append(kept, t)
			continue
		}
	}
	return strings.Join(kept, ", ")
}

// StripBareTokens removes any cabin or shot-cart entry without a
// resolved variant from a canonical selection. The funnel applies it
// before re-entering quotation so the invariant that no bare token
// survives outside its disambiguation state holds even for selections
// assembled across turns.
func StripBareTokens(selection string) string {
	var kept []string
	for _, t := range Tokens(selection) {
		base, _, _ := SplitToken(t)
		if base == catalog.BareCabin || base == catalog.BareCart {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, ", ")
}

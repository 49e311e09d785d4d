package funnel

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/festibooth/boothbot/internal/catalog"
	"github.com/festibooth/boothbot/internal/crm"
	"github.com/festibooth/boothbot/internal/dates"
	"github.com/festibooth/boothbot/internal/models"
	"github.com/festibooth/boothbot/internal/quote"
)

var (
	yesRe      = regexp.MustCompile(`\b(si|claro|sale|va|simon|dale|ok|okay|por supuesto|agrega(?:lo|la)?)\b`)
	noRe       = regexp.MustCompile(`\b(no|nel|negativo|asi esta bien|asi dejalo)\b`)
	intRe      = regexp.MustCompile(`\d+`)
	weddingRe  = regexp.MustCompile(`\b(boda|casamiento|me caso|nos casamos|novia|novio)\b`)
	quinceRe   = regexp.MustCompile(`\b(xv|quince|quinceanera|quinceanos)\b`)
	otherRe    = regexp.MustCompile(`\b(otro|cumple|cumpleanos|graduacion|bautizo|posada|empresa|empresarial|aniversario|fiesta)\b`)
	interestRe = regexp.MustCompile(`\b(interesa|me late|lo quiero|reservar|apartar|adelante)\b`)
	customRe   = regexp.MustCompile(`\b(armar|personalizar|cotizar|mi paquete|por separado|individual)\b`)
	modifyRe   = regexp.MustCompile(`\b(modificar|cambiar|ajustar)\b`)
)

// Selection accessors.

func (t *turn) selection() string {
	return t.conv.GetData(models.DataKeySelectedServices)
}

func (t *turn) setSelection(s string) {
	if s == "" {
		t.conv.DeleteData(models.DataKeySelectedServices)
		return
	}
	t.conv.SetData(models.DataKeySelectedServices, s)
}

func (t *turn) flag(key models.DataKey) bool {
	return t.conv.GetData(key) == "1"
}

func (t *turn) setFlag(key models.DataKey, on bool) {
	if on {
		t.conv.SetData(key, "1")
	} else {
		t.conv.DeleteData(key)
	}
}

func firstInt(text string) (int, bool) {
	m := intRe.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// handleInitialContact greets the new sender and asks for the event
// type.
func (f *Funnel) handleInitialContact(t *turn) error {
	if err := f.reply(t, replyGreeting); err != nil {
		return err
	}
	if err := f.replyButtons(t, replyEventTypePrompt, []models.Button{
		{ID: "event_boda", Title: "Boda 💍"},
		{ID: "event_xv", Title: "XV años 👑"},
		{ID: "event_otro", Title: "Otro evento 🎉"},
	}); err != nil {
		return err
	}
	t.conv.CurrentState = models.StateEventTypeWait
	return nil
}

// handleEventTypeWait classifies the event and presents the recommended
// package.
func (f *Funnel) handleEventTypeWait(t *turn) error {
	var et models.EventType
	switch {
	case t.replyID == "event_boda" || weddingRe.MatchString(t.text):
		et = models.EventTypeWedding
	case t.replyID == "event_xv" || quinceRe.MatchString(t.text):
		et = models.EventTypeQuinceanera
	case t.replyID == "event_otro" || otherRe.MatchString(t.text):
		et = models.EventTypeOther
	default:
		return f.llmFallback(t)
	}

	t.conv.SetData(models.DataKeyEventType, string(et))
	pkg := catalog.PackageFor(et)
	if raw, err := json.Marshal(pkg); err == nil {
		t.conv.SetData(models.DataKeyRecommendedPackage, string(raw))
	}

	if pkg.MediaURL != "" {
		if err := f.replyMedia(t, pkg.MediaURL, pkg.Name, false); err != nil {
			return err
		}
	}
	body := fmt.Sprintf("Para tu evento te recomendamos el *%s*:\n%s", pkg.Name, pkg.Description)
	if err := f.replyButtons(t, body, []models.Button{
		{ID: "pkg_interested", Title: "Me interesa"},
		{ID: "pkg_custom", Title: "Armar mi paquete"},
	}); err != nil {
		return err
	}
	t.conv.CurrentState = models.StatePackageConfirmWait
	return nil
}

// handlePackageConfirmWait routes the recommended-vs-custom choice.
func (f *Funnel) handlePackageConfirmWait(t *turn) error {
	switch {
	case t.replyID == "pkg_interested" || interestRe.MatchString(t.text) || yesRe.MatchString(t.text):
		t.conv.CurrentState = models.StateDateWait
		return f.reply(t, replyDatePrompt)
	case t.replyID == "pkg_custom" || customRe.MatchString(t.text):
		t.conv.CurrentState = models.StateServicesWait
		return f.reply(t, replyServicesPrompt)
	default:
		return f.replyButtons(t, "¿Te interesa el paquete recomendado o prefieres armar el tuyo?", []models.Button{
			{ID: "pkg_interested", Title: "Me interesa"},
			{ID: "pkg_custom", Title: "Armar mi paquete"},
		})
	}
}

// handleServicesWait parses the free-text selection and either enters a
// disambiguation state or presents the quotation.
func (f *Funnel) handleServicesWait(t *turn) error {
	op, rest := quote.SplitCommand(t.raw)
	if op == quote.OpRemove {
		t.setSelection(quote.RemoveFromSelection(t.selection(), rest))
		return f.proceedAfterParse(t)
	}

	res := quote.ParseSelection(rest)
	t.setFlag(models.DataKeyPendingCabin, res.PendingCabin || t.flag(models.DataKeyPendingCabin))
	t.setFlag(models.DataKeyPendingLetters, res.PendingLetters || t.flag(models.DataKeyPendingLetters))
	t.setFlag(models.DataKeyPendingSparklers, res.PendingSparklers || t.flag(models.DataKeyPendingSparklers))
	t.setFlag(models.DataKeyPendingCart, res.PendingCart || t.flag(models.DataKeyPendingCart))
	t.setSelection(quote.MergeSelections(t.selection(), res.Selection))

	if res.Selection == "" && !res.HasPending() && t.selection() == "" {
		return f.reply(t, replyNoServices)
	}
	return f.proceedAfterParse(t)
}

// proceedAfterParse routes to the highest-priority disambiguation state
// still pending, or recomputes and presents the quotation.
func (f *Funnel) proceedAfterParse(t *turn) error {
	switch {
	case t.flag(models.DataKeyPendingCabin):
		t.conv.CurrentState = models.StateCabinTypeWait
		return f.reply(t, replyCabinTypePrompt)
	case t.flag(models.DataKeyPendingLetters):
		t.conv.CurrentState = models.StateLetterCountWait
		return f.reply(t, replyLetterCountPrompt)
	case t.flag(models.DataKeyPendingSparklers):
		t.conv.CurrentState = models.StateSparklerCountWait
		return f.reply(t, replySparklerCountPrompt)
	case t.flag(models.DataKeyPendingCart):
		t.conv.CurrentState = models.StateCartVariantWait
		return f.reply(t, replyCartVariantPrompt)
	}

	t.setSelection(quote.StripBareTokens(t.selection()))
	q := quote.Compute(t.selection())
	if !q.HasRecognized() && len(q.Lines) == 0 {
		t.conv.CurrentState = models.StateServicesWait
		return f.reply(t, replyNoServices)
	}
	if err := f.presentQuote(t, q); err != nil {
		return err
	}
	t.conv.CurrentState = models.StateQuoteFollowupWait
	return nil
}

// presentQuote sends the itemized quotation, any not-yet-sent service
// media, at most one upsell nudge, and the follow-up choice buttons.
func (f *Funnel) presentQuote(t *turn, q quote.Quote) error {
	var b strings.Builder
	b.WriteString("Aquí está tu cotización 🧾\n")
	for _, line := range q.Lines {
		b.WriteString("• ")
		b.WriteString(line.Description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nSubtotal: %s", quote.FormatMoney(q.Subtotal))
	if q.DiscountPercent > 0 {
		fmt.Fprintf(&b, "\nDescuento (%d%%): -%s", q.DiscountPercent, quote.FormatMoney(q.DiscountAmount))
	}
	fmt.Fprintf(&b, "\n*Total: %s*", quote.FormatMoney(q.Total))
	if err := f.reply(t, b.String()); err != nil {
		return err
	}

	if err := f.sendNewMedia(t, q.Recognized); err != nil {
		return err
	}

	if !t.flag(models.DataKeyUpsellSuggested) {
		if s, ok := quote.Advise(t.selection()); ok {
			if err := f.reply(t, s.Text); err != nil {
				return err
			}
			if s.ScrapbookVideo {
				svc := catalog.Services[catalog.KeyScrapbook]
				if err := f.replyMedia(t, svc.MediaURL, svc.MediaCaption, svc.MediaIsVideo); err != nil {
					return err
				}
				f.markMediaSent(t, catalog.KeyScrapbook)
			}
			t.setFlag(models.DataKeyUpsellSuggested, true)
		}
	}

	return f.replyButtons(t, "¿Cómo seguimos?", []models.Button{
		{ID: "quote_date", Title: "Reservar fecha"},
		{ID: "quote_modify", Title: "Modificar"},
		{ID: "pkg_interested", Title: "Ver paquete"},
	})
}

// sendNewMedia dispatches illustrative media for recognized services
// whose media has not been sent yet, then records them so a recompute
// never resends.
func (f *Funnel) sendNewMedia(t *turn, recognized []string) error {
	sent := f.mediaSent(t)
	for _, key := range recognized {
		if sent[key] {
			continue
		}
		svc, ok := catalog.Services[key]
		if !ok || svc.MediaURL == "" {
			continue
		}
		if err := f.replyMedia(t, svc.MediaURL, svc.MediaCaption, svc.MediaIsVideo); err != nil {
			return err
		}
		f.markMediaSent(t, key)
		sent[key] = true
	}
	return nil
}

func (f *Funnel) mediaSent(t *turn) map[string]bool {
	sent := make(map[string]bool)
	if raw := t.conv.GetData(models.DataKeyMediaSent); raw != "" {
		var keys []string
		if err := json.Unmarshal([]byte(raw), &keys); err == nil {
			for _, k := range keys {
				sent[k] = true
			}
		}
	}
	return sent
}

func (f *Funnel) markMediaSent(t *turn, key string) {
	sent := f.mediaSent(t)
	if sent[key] {
		return
	}
	sent[key] = true
	keys := make([]string, 0, len(sent))
	for k := range sent {
		keys = append(keys, k)
	}
	if raw, err := json.Marshal(keys); err == nil {
		t.conv.SetData(models.DataKeyMediaSent, string(raw))
	}
}

// resolveVariant handles the shared duplicate-variant logic for cabins
// and shot carts: add when new, confirm when the sibling variant is
// already present, and hand off to a human when both already are.
func (f *Funnel) resolveVariant(t *turn, chosen string, isVariant func(string) bool, pendingFlag models.DataKey, confirmState models.StateType) error {
	hasChosen, hasOther := false, false
	for _, tok := range quote.Tokens(t.selection()) {
		base, _, _ := quote.SplitToken(tok)
		if !isVariant(base) {
			continue
		}
		if base == chosen {
			hasChosen = true
		} else {
			hasOther = true
		}
	}
	t.setFlag(pendingFlag, false)

	switch {
	case hasChosen && hasOther:
		if err := f.reply(t, replyContactSupport); err != nil {
			return err
		}
		return f.proceedAfterParse(t)
	case hasOther:
		t.conv.SetData(models.DataKeyPendingAddition, chosen)
		t.conv.CurrentState = confirmState
		return f.reply(t, fmt.Sprintf("Veo que ya tienes *%s* en tu cotización. ¿Quieres agregar también *%s*? (sí/no)", otherVariantIn(t.selection(), chosen, isVariant), chosen))
	default:
		t.setSelection(quote.MergeSelections(t.selection(), chosen))
		return f.proceedAfterParse(t)
	}
}

// otherVariantIn returns the sibling variant already present in the
// selection.
func otherVariantIn(selection, chosen string, isVariant func(string) bool) string {
	for _, tok := range quote.Tokens(selection) {
		base, _, _ := quote.SplitToken(tok)
		if isVariant(base) && base != chosen {
			return base
		}
	}
	return ""
}

// handleCabinTypeWait resolves which cabin the customer means.
func (f *Funnel) handleCabinTypeWait(t *turn) error {
	var chosen string
	switch {
	case strings.Contains(t.text, "360"):
		chosen = catalog.KeyBooth360
	case strings.Contains(t.text, "foto") || strings.Contains(t.text, "tradicional") || strings.Contains(t.text, "impresion"):
		chosen = catalog.KeyPhotoBooth
	default:
		return f.reply(t, replyCabinRetry)
	}
	return f.resolveVariant(t, chosen, catalog.IsCabinVariant, models.DataKeyPendingCabin, models.StateConfirmAddCabin)
}

// handleConfirmAddCabin resolves the add-second-cabin confirmation.
func (f *Funnel) handleConfirmAddCabin(t *turn) error {
	return f.handleConfirmAddition(t)
}

// handleConfirmAddCart resolves the add-second-cart confirmation.
func (f *Funnel) handleConfirmAddCart(t *turn) error {
	return f.handleConfirmAddition(t)
}

func (f *Funnel) handleConfirmAddition(t *turn) error {
	pending := t.conv.GetData(models.DataKeyPendingAddition)
	switch {
	case yesRe.MatchString(t.text):
		t.setSelection(quote.MergeSelections(t.selection(), pending))
	case noRe.MatchString(t.text):
		// Keep the single variant.
	default:
		return f.reply(t, replyConfirmRetry)
	}
	t.conv.DeleteData(models.DataKeyPendingAddition)
	return f.proceedAfterParse(t)
}

// handleLetterCountWait resolves the giant-letter quantity.
func (f *Funnel) handleLetterCountWait(t *turn) error {
	n, ok := firstInt(t.text)
	if !ok || n <= 0 {
		return f.reply(t, replyLetterInvalid)
	}
	t.setSelection(quote.MergeSelections(t.selection(), fmt.Sprintf("%s %d", catalog.KeyGiantLetters, n)))
	t.setFlag(models.DataKeyPendingLetters, false)
	return f.proceedAfterParse(t)
}

// handleSparklerCountWait resolves the sparkler quantity against the
// accepted tier table. Odd or out-of-table counts re-prompt, never
// round.
func (f *Funnel) handleSparklerCountWait(t *turn) error {
	n, ok := firstInt(t.text)
	if !ok {
		return f.reply(t, replySparklerCountPrompt)
	}
	if _, valid := catalog.SparklerPrices[n]; !valid {
		return f.reply(t, replySparklerInvalid)
	}
	t.setSelection(quote.MergeSelections(t.selection(), fmt.Sprintf("%s %d", catalog.KeySparklers, n)))
	t.setFlag(models.DataKeyPendingSparklers, false)
	return f.proceedAfterParse(t)
}

// handleCartVariantWait resolves the shot-cart alcohol variant.
func (f *Funnel) handleCartVariantWait(t *turn) error {
	var chosen string
	switch {
	case strings.Contains(t.text, "sin"):
		chosen = catalog.KeyCartNoAlc
	case strings.Contains(t.text, "con") || strings.Contains(t.text, "alcohol"):
		chosen = catalog.KeyCartAlcohol
	default:
		return f.reply(t, replyCartRetry)
	}
	return f.resolveVariant(t, chosen, catalog.IsCartVariant, models.DataKeyPendingCart, models.StateConfirmAddCart)
}

// handleQuoteFollowupWait routes the post-quote choice: reserve, take
// the recommended package, or modify the selection with add/remove
// commands. Anything else goes to the LLM fallback.
func (f *Funnel) handleQuoteFollowupWait(t *turn) error {
	switch {
	case t.replyID == "quote_date" || interestRe.MatchString(t.text):
		t.conv.CurrentState = models.StateDateWait
		return f.reply(t, replyDatePrompt)
	case t.replyID == "pkg_interested":
		t.conv.CurrentState = models.StateDateWait
		return f.reply(t, replyDatePrompt)
	case t.replyID == "quote_modify" || modifyRe.MatchString(t.text):
		return f.reply(t, replyModifyPrompt)
	}

	op, rest := quote.SplitCommand(t.raw)
	switch op {
	case quote.OpAdd:
		res := quote.ParseSelection(rest)
		t.setFlag(models.DataKeyPendingCabin, res.PendingCabin)
		t.setFlag(models.DataKeyPendingLetters, res.PendingLetters)
		t.setFlag(models.DataKeyPendingSparklers, res.PendingSparklers)
		t.setFlag(models.DataKeyPendingCart, res.PendingCart)
		t.setSelection(quote.MergeSelections(t.selection(), res.Selection))
		return f.proceedAfterParse(t)
	case quote.OpRemove:
		t.setSelection(quote.RemoveFromSelection(t.selection(), rest))
		return f.proceedAfterParse(t)
	default:
		return f.llmFallback(t)
	}
}

// handleDateWait validates the event date and checks availability. The
// predicates run in a fixed order so each failure gets its own message;
// an availability lookup failure counts as unavailable.
func (f *Funnel) handleDateWait(t *turn) error {
	d, err := dates.Parse(t.raw)
	if err != nil {
		return f.reply(t, replyDateBadFormat)
	}
	switch dates.Validate(d, f.now()) {
	case dates.ErrPastDate:
		return f.reply(t, replyDatePast)
	case dates.ErrTooFarOut:
		return f.reply(t, replyDateTooFar)
	}

	iso := dates.ToISO(d)
	available, err := f.avail.Check(t.ctx, iso)
	if err != nil {
		slog.Error("Funnel availability check failed, treating as unavailable", "error", err, "phone", t.phone, "date", iso)
		available = false
	}
	if !available {
		return f.reply(t, replyDateUnavailable)
	}

	t.conv.SetData(models.DataKeyEventDate, dates.ToDisplay(d))
	t.conv.SetData(models.DataKeyEventDateISO, iso)
	t.conv.CurrentState = models.StateVenueWait
	return f.reply(t, replyVenuePrompt)
}

// handleVenueWait stores the venue, sends deposit instructions, and
// hands the lead to sales.
func (f *Funnel) handleVenueWait(t *turn) error {
	venue := strings.TrimSpace(t.raw)
	if venue == "" {
		return f.reply(t, "¿En qué lugar será el evento?")
	}
	t.conv.SetData(models.DataKeyVenue, venue)
	if err := f.reply(t, replyDeposit); err != nil {
		return err
	}
	t.conv.CurrentState = models.StateFinalized
	f.reportLead(t)
	return nil
}

// handleFinalized silently absorbs further messages; the conversation
// is in sales' hands now.
func (f *Funnel) handleFinalized(t *turn) error {
	slog.Debug("Funnel message after finalization absorbed", "phone", t.phone)
	return nil
}

// reportLead forwards the booking summary to the CRM sink.
func (f *Funnel) reportLead(t *turn) {
	services := t.selection()
	if services == "" {
		var pkg models.RecommendedPackage
		if raw := t.conv.GetData(models.DataKeyRecommendedPackage); raw != "" {
			if err := json.Unmarshal([]byte(raw), &pkg); err == nil {
				services = pkg.Name
			}
		}
	}
	lead := crm.Lead{
		Phone:     t.phone,
		EventType: t.conv.GetData(models.DataKeyEventType),
		EventDate: t.conv.GetData(models.DataKeyEventDate),
		Venue:     t.conv.GetData(models.DataKeyVenue),
		Services:  services,
		CreatedAt: f.now().Format("2006-01-02T15:04:05Z07:00"),
	}
	if sel := t.selection(); sel != "" {
		lead.Total = quote.FormatMoney(quote.Compute(sel).Total)
	}
	f.reporter.Report(t.ctx, lead)
}

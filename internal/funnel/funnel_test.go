package funnel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/festibooth/boothbot/internal/availability"
	"github.com/festibooth/boothbot/internal/crm"
	"github.com/festibooth/boothbot/internal/messaging"
	"github.com/festibooth/boothbot/internal/models"
	"github.com/festibooth/boothbot/internal/store"
)

const testPhone = "5218110001111"

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type fakeCompleter struct {
	out string
	err error
}

func (f *fakeCompleter) GeneratePromptWithContext(ctx context.Context, system, user string) (string, error) {
	return f.out, f.err
}

func newTestFunnel(t *testing.T, opts ...Option) (*Funnel, *messaging.MockService, *store.InMemoryStore) {
	t.Helper()
	st := store.NewInMemoryStore()
	msg := messaging.NewMockService()
	base := []Option{
		WithStore(st),
		WithMessagingService(msg),
		WithClock(func() time.Time { return testNow }),
	}
	f := New(append(base, opts...)...)
	return f, msg, st
}

func send(t *testing.T, f *Funnel, text string) {
	t.Helper()
	if err := f.HandleMessage(context.Background(), models.InboundMessage{
		From: testPhone,
		Kind: models.MessageKindText,
		Text: text,
	}); err != nil {
		t.Fatalf("HandleMessage(%q) failed: %v", text, err)
	}
}

func sendReply(t *testing.T, f *Funnel, id, title string) {
	t.Helper()
	if err := f.HandleMessage(context.Background(), models.InboundMessage{
		From:    testPhone,
		Kind:    models.MessageKindInteractive,
		Text:    title,
		ReplyID: id,
	}); err != nil {
		t.Fatalf("HandleMessage(reply %q) failed: %v", id, err)
	}
}

func currentState(t *testing.T, st *store.InMemoryStore) models.StateType {
	t.Helper()
	conv, err := st.GetConversation(testPhone)
	if err != nil || conv == nil {
		t.Fatalf("conversation lookup failed: conv=%v err=%v", conv, err)
	}
	return conv.CurrentState
}

func lastBodyContaining(msg *messaging.MockService, substr string) bool {
	for _, body := range msg.SentBodies() {
		if strings.Contains(body, substr) {
			return true
		}
	}
	return false
}

// driveToServicesWait walks a fresh sender to the custom-selection
// state.
func driveToServicesWait(t *testing.T, f *Funnel, st *store.InMemoryStore) {
	t.Helper()
	send(t, f, "hola")
	send(t, f, "es para mi boda")
	sendReply(t, f, "pkg_custom", "Armar mi paquete")
	if got := currentState(t, st); got != models.StateServicesWait {
		t.Fatalf("state = %v, want SERVICES_WAIT", got)
	}
}

func TestFullFunnelHappyPath(t *testing.T) {
	reporter := &crm.RecordingReporter{}
	f, msg, st := newTestFunnel(t, WithReporter(reporter))

	send(t, f, "hola")
	if got := currentState(t, st); got != models.StateEventTypeWait {
		t.Fatalf("after greeting state = %v", got)
	}
	if !lastBodyContaining(msg, "FestiBooth") {
		t.Error("missing greeting")
	}

	send(t, f, "es para mi boda")
	if got := currentState(t, st); got != models.StatePackageConfirmWait {
		t.Fatalf("after event type state = %v", got)
	}
	if !lastBodyContaining(msg, "Paquete Boda") {
		t.Error("missing wedding package recommendation")
	}

	sendReply(t, f, "pkg_custom", "Armar mi paquete")
	send(t, f, "cabina de fotos, 6 letras, 4 chisperos, carrito de shots")
	if got := currentState(t, st); got != models.StateCartVariantWait {
		t.Fatalf("expected cart disambiguation, state = %v", got)
	}
	if !lastBodyContaining(msg, "con alcohol o sin alcohol") {
		t.Error("missing cart variant prompt")
	}

	send(t, f, "con alcohol")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("expected quote follow-up, state = %v", got)
	}
	if !lastBodyContaining(msg, "$10,200") {
		t.Error("missing subtotal in quote")
	}
	if !lastBodyContaining(msg, "Descuento (40%)") {
		t.Error("missing 40% discount line")
	}
	if !lastBodyContaining(msg, "$6,120") {
		t.Error("missing discounted total")
	}

	send(t, f, "me interesa")
	if got := currentState(t, st); got != models.StateDateWait {
		t.Fatalf("expected date state, state = %v", got)
	}

	send(t, f, "20 de mayo 2027")
	if got := currentState(t, st); got != models.StateVenueWait {
		t.Fatalf("expected venue state, state = %v", got)
	}

	send(t, f, "Jardín Las Flores, Santiago NL")
	if got := currentState(t, st); got != models.StateFinalized {
		t.Fatalf("expected finalized, state = %v", got)
	}
	if !lastBodyContaining(msg, "anticipo de $500") {
		t.Error("missing deposit instructions")
	}

	if len(reporter.Leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(reporter.Leads))
	}
	lead := reporter.Leads[0]
	if lead.Phone != testPhone || lead.EventType != "boda" || lead.EventDate != "20/05/2027" {
		t.Errorf("unexpected lead: %+v", lead)
	}
	if lead.Total != "$6,120" {
		t.Errorf("lead total = %q, want $6,120", lead.Total)
	}
}

func TestSparklersAloneNoDiscount(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "2 chisperos")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v", got)
	}
	if !lastBodyContaining(msg, "$1,000") {
		t.Error("missing sparkler total")
	}
	if lastBodyContaining(msg, "Descuento") {
		t.Error("sparklers alone must not get a discount line")
	}
}

func TestBareCabinDisambiguation(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "quiero una cabina")
	if got := currentState(t, st); got != models.StateCabinTypeWait {
		t.Fatalf("state = %v, want CABIN_TYPE_WAIT", got)
	}

	send(t, f, "la 360")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v, want QUOTE_FOLLOWUP_WAIT", got)
	}
	if !lastBodyContaining(msg, "cabina 360") {
		t.Error("missing cabina 360 line")
	}

	conv, _ := st.GetConversation(testPhone)
	if conv.GetData(models.DataKeySelectedServices) != "cabina 360" {
		t.Errorf("selection = %q", conv.GetData(models.DataKeySelectedServices))
	}
}

func TestDuplicateCabinVariantNeedsConfirmation(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "cabina de fotos")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v", got)
	}

	send(t, f, "agrega una cabina")
	if got := currentState(t, st); got != models.StateCabinTypeWait {
		t.Fatalf("state = %v, want CABIN_TYPE_WAIT", got)
	}

	send(t, f, "la 360")
	if got := currentState(t, st); got != models.StateConfirmAddCabin {
		t.Fatalf("state = %v, want CONFIRM_ADD_CABIN_WAIT", got)
	}
	if !lastBodyContaining(msg, "agregar tambi") {
		t.Error("missing add-confirmation prompt")
	}

	send(t, f, "sí, claro")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v", got)
	}
	conv, _ := st.GetConversation(testPhone)
	sel := conv.GetData(models.DataKeySelectedServices)
	if !strings.Contains(sel, "cabina de fotos") || !strings.Contains(sel, "cabina 360") {
		t.Errorf("selection = %q, want both cabins", sel)
	}
}

func TestDuplicateCabinDeclined(t *testing.T) {
	f, _, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "cabina de fotos")
	send(t, f, "agrega una cabina")
	send(t, f, "la 360")
	send(t, f, "no, así está bien")

	conv, _ := st.GetConversation(testPhone)
	sel := conv.GetData(models.DataKeySelectedServices)
	if strings.Contains(sel, "cabina 360") {
		t.Errorf("selection = %q, 360 should not be added", sel)
	}
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v", got)
	}
}

func TestSparklerCountValidation(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "chisperos")
	if got := currentState(t, st); got != models.StateSparklerCountWait {
		t.Fatalf("state = %v", got)
	}

	send(t, f, "3")
	if got := currentState(t, st); got != models.StateSparklerCountWait {
		t.Fatalf("odd count must re-prompt, state = %v", got)
	}
	if !lastBodyContaining(msg, "2, 4, 6, 8 o 10") {
		t.Error("missing tier list in corrective message")
	}

	send(t, f, "4")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v", got)
	}
}

func TestLetterCountFlow(t *testing.T) {
	f, _, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "letras")
	if got := currentState(t, st); got != models.StateLetterCountWait {
		t.Fatalf("state = %v", got)
	}
	send(t, f, "son 6")
	conv, _ := st.GetConversation(testPhone)
	if conv.GetData(models.DataKeySelectedServices) != "letras gigantes 6" {
		t.Errorf("selection = %q", conv.GetData(models.DataKeySelectedServices))
	}
}

func TestMultiplePendingResolvedInOrder(t *testing.T) {
	f, _, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "cabina, letras y chisperos")
	if got := currentState(t, st); got != models.StateCabinTypeWait {
		t.Fatalf("state = %v, want cabin first", got)
	}
	send(t, f, "de fotos")
	if got := currentState(t, st); got != models.StateLetterCountWait {
		t.Fatalf("state = %v, want letters next", got)
	}
	send(t, f, "6")
	if got := currentState(t, st); got != models.StateSparklerCountWait {
		t.Fatalf("state = %v, want sparklers next", got)
	}
	send(t, f, "4")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v, want quote", got)
	}
}

func TestDateValidationMessages(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)
	send(t, f, "scrapbook")
	send(t, f, "me interesa")
	if got := currentState(t, st); got != models.StateDateWait {
		t.Fatalf("state = %v", got)
	}

	send(t, f, "el sabado que viene")
	if !lastBodyContaining(msg, "No reconocí la fecha") {
		t.Error("missing bad-format message")
	}

	send(t, f, "31/02/2027")
	if !lastBodyContaining(msg, "No reconocí la fecha") {
		t.Error("impossible calendar date must be a format error")
	}

	send(t, f, "01/01/2020")
	if !lastBodyContaining(msg, "ya pasó") {
		t.Error("missing past-date message")
	}

	send(t, f, "01/01/2030")
	if !lastBodyContaining(msg, "2 años") {
		t.Error("missing window message")
	}

	if got := currentState(t, st); got != models.StateDateWait {
		t.Fatalf("invalid dates must keep DATE_WAIT, state = %v", got)
	}
}

func TestDateUnavailableFailsClosed(t *testing.T) {
	f, msg, st := newTestFunnel(t, WithAvailabilityChecker(availability.Static{Err: errors.New("backend down")}))
	driveToServicesWait(t, f, st)
	send(t, f, "scrapbook")
	send(t, f, "me interesa")

	send(t, f, "20 de mayo 2027")
	if got := currentState(t, st); got != models.StateDateWait {
		t.Fatalf("availability failure must keep DATE_WAIT, state = %v", got)
	}
	if !lastBodyContaining(msg, "ocupada") {
		t.Error("missing unavailable message")
	}
}

func TestMediaNotResentOnRecompute(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "cabina 360")
	send(t, f, "agrega lluvia metalica")

	count := 0
	for _, s := range msg.Sends {
		if strings.Contains(s.URL, "cabina-360") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("cabina 360 media sent %d times, want 1", count)
	}
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v", got)
	}
}

func TestUpsellSuggestedOnlyOnce(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "cabina de fotos")
	send(t, f, "agrega lluvia metalica")

	count := 0
	for _, body := range msg.SentBodies() {
		if strings.Contains(body, "agrega el scrapbook") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("scrapbook upsell sent %d times, want 1", count)
	}
}

func TestRemoveCommand(t *testing.T) {
	f, _, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "cabina de fotos y lluvia metalica")
	send(t, f, "ya no quiero la lluvia metalica")

	conv, _ := st.GetConversation(testPhone)
	sel := conv.GetData(models.DataKeySelectedServices)
	if sel != "cabina de fotos" {
		t.Errorf("selection = %q, want cabina only", sel)
	}
}

func TestFAQShortCircuitKeepsState(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	before := len(msg.Sends)
	send(t, f, "¿cuánto es de anticipo?")
	if got := currentState(t, st); got != models.StateServicesWait {
		t.Fatalf("FAQ must not change state, state = %v", got)
	}
	if len(msg.Sends) != before+1 {
		t.Errorf("expected exactly one FAQ reply, got %d new sends", len(msg.Sends)-before)
	}
	if !strings.Contains(msg.LastSend().Body, "$500") {
		t.Errorf("unexpected FAQ answer: %q", msg.LastSend().Body)
	}
}

func TestFAQNotMatchedInSensitiveState(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)
	send(t, f, "chisperos")

	// "10" is a valid sparkler answer; even a question-looking message
	// must be handled by the state, not the FAQ.
	send(t, f, "10")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v, want quote", got)
	}
	if !lastBodyContaining(msg, "$3,000") {
		t.Error("missing 10-sparkler price")
	}
}

func TestLLMFallback(t *testing.T) {
	f, msg, st := newTestFunnel(t, WithCompleter(&fakeCompleter{out: "Con gusto te ayudo con eso."}))
	driveToServicesWait(t, f, st)
	send(t, f, "cabina de fotos")

	send(t, f, "oye y ustedes decoran pasteles?")
	if msg.LastSend().Body != "Con gusto te ayudo con eso." {
		t.Errorf("expected completion reply, got %q", msg.LastSend().Body)
	}
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("fallback must keep state, got %v", got)
	}
}

func TestLLMFallbackFailureApologizes(t *testing.T) {
	f, msg, st := newTestFunnel(t, WithCompleter(&fakeCompleter{err: errors.New("rate limited")}))
	driveToServicesWait(t, f, st)
	send(t, f, "cabina de fotos")

	send(t, f, "oye y ustedes decoran pasteles?")
	if !strings.Contains(msg.LastSend().Body, "disculpa") {
		t.Errorf("expected apology, got %q", msg.LastSend().Body)
	}
}

func TestFinalizedAbsorbsMessages(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)
	send(t, f, "scrapbook")
	send(t, f, "me interesa")
	send(t, f, "15/08/2027")
	send(t, f, "Salón Diamante")
	if got := currentState(t, st); got != models.StateFinalized {
		t.Fatalf("state = %v", got)
	}

	before := len(msg.Sends)
	send(t, f, "gracias!")
	if len(msg.Sends) != before {
		t.Errorf("finalized conversation replied: %d new sends", len(msg.Sends)-before)
	}
}

func TestStaleReplyDropped(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	send(t, f, "hola")

	// Simulate a newer concurrent turn saving while this turn waits in
	// the typing pause: the wait hook bumps the stored version.
	f.delay = time.Millisecond
	f.wait = func(time.Duration) {
		conv, _ := f.states.Get(testPhone)
		_ = f.states.Put(conv)
	}

	before := len(msg.Sends)
	send(t, f, "boda")
	if len(msg.Sends) != before {
		t.Errorf("stale turn still sent %d messages", len(msg.Sends)-before)
	}
	if got := currentState(t, st); got != models.StateEventTypeWait {
		t.Fatalf("stale turn must not advance state, state = %v", got)
	}
}

func TestPurchaseIntentAdvancesToDateWait(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)
	send(t, f, "cabina de fotos")
	if got := currentState(t, st); got != models.StateQuoteFollowupWait {
		t.Fatalf("state = %v", got)
	}

	// "apartar" is purchase intent here, not a deposit question; the
	// FAQ must not swallow it.
	send(t, f, "quiero apartar la fecha")
	if got := currentState(t, st); got != models.StateDateWait {
		t.Fatalf("purchase intent must advance to DATE_WAIT, state = %v", got)
	}
	if !strings.Contains(msg.LastSend().Body, "fecha") {
		t.Errorf("expected date prompt, got %q", msg.LastSend().Body)
	}
}

func TestReserveIntentFromPackageConfirm(t *testing.T) {
	f, _, st := newTestFunnel(t)
	send(t, f, "hola")
	send(t, f, "es para mi boda")

	send(t, f, "quiero reservar")
	if got := currentState(t, st); got != models.StateDateWait {
		t.Fatalf("reserve intent must advance to DATE_WAIT, state = %v", got)
	}
}

func TestEvictionSweepDeletesIdleConversations(t *testing.T) {
	st := store.NewInMemoryStore()
	now := time.Now()
	_ = st.SaveConversation(models.Conversation{Phone: "111111", CurrentState: models.StateFinalized, UpdatedAt: now.Add(-31 * 24 * time.Hour)})
	_ = st.SaveConversation(models.Conversation{Phone: "222222", CurrentState: models.StateDateWait, UpdatedAt: now})

	e := &Evictor{st: st, ttl: DefaultSessionTTL}
	e.sweep()

	if got, _ := st.GetConversation("111111"); got != nil {
		t.Error("idle conversation must be evicted")
	}
	if got, _ := st.GetConversation("222222"); got == nil {
		t.Error("fresh conversation must survive the sweep")
	}
}

func TestClockStampsConversationTimestamps(t *testing.T) {
	f, _, st := newTestFunnel(t)
	send(t, f, "hola")

	conv, err := st.GetConversation(testPhone)
	if err != nil || conv == nil {
		t.Fatalf("conversation lookup failed: conv=%v err=%v", conv, err)
	}
	if !conv.CreatedAt.Equal(testNow) || !conv.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps ignore the injected clock: created=%v updated=%v", conv.CreatedAt, conv.UpdatedAt)
	}
}

func TestQuoteIdempotentAcrossModify(t *testing.T) {
	f, msg, st := newTestFunnel(t)
	driveToServicesWait(t, f, st)

	send(t, f, "cabina 360, 4 chisperos")
	send(t, f, "agrega 4 chisperos")

	// Quantity unchanged: totals identical both times.
	count := 0
	for _, body := range msg.SentBodies() {
		if strings.Contains(body, "Total: $4,500") {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected identical totals twice, got %d", count)
	}
}

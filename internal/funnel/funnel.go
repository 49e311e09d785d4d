// Package funnel implements the conversational state machine for the
// photobooth sales funnel.
//
// Each inbound message is one turn: load the sender's conversation,
// dispatch on the current state, send replies, and persist at most one
// state write at turn end. Free text the machine does not understand
// falls through to the FAQ matcher (in insensitive states) and then to
// the LLM fallback.
package funnel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/festibooth/boothbot/internal/availability"
	"github.com/festibooth/boothbot/internal/crm"
	"github.com/festibooth/boothbot/internal/faq"
	"github.com/festibooth/boothbot/internal/messaging"
	"github.com/festibooth/boothbot/internal/models"
	"github.com/festibooth/boothbot/internal/store"
	"github.com/festibooth/boothbot/internal/textnorm"
)

// errStaleReply aborts a turn whose conversation moved on while a
// delayed reply was pending. The newer turn's writes win; this turn
// sends nothing further and does not save.
var errStaleReply = errors.New("conversation state changed, dropping stale reply")

// Completer is the text-completion capability used as the fallback for
// unmatched free text. *genai.Client satisfies it.
type Completer interface {
	GeneratePromptWithContext(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// handlerFunc processes one turn in a specific state.
type handlerFunc func(t *turn) error

// Funnel drives the sales conversation.
type Funnel struct {
	states    StateManager
	store     store.Store
	msg       messaging.Service
	completer Completer
	reporter  crm.Reporter
	avail     availability.Checker

	now   func() time.Time
	delay time.Duration
	wait  func(time.Duration)

	handlers map[models.StateType]handlerFunc
}

// Opts holds configuration options for the funnel.
type Opts struct {
	Store       store.Store
	Messaging   messaging.Service
	Completer   Completer
	Reporter    crm.Reporter
	Checker     availability.Checker
	TypingDelay time.Duration
	Now         func() time.Time
}

// Option defines a configuration option for the funnel.
type Option func(*Opts)

// WithStore sets the persistence backend.
func WithStore(st store.Store) Option {
	return func(o *Opts) { o.Store = st }
}

// WithMessagingService sets the outbound message service.
func WithMessagingService(m messaging.Service) Option {
	return func(o *Opts) { o.Messaging = m }
}

// WithCompleter sets the LLM fallback capability.
func WithCompleter(c Completer) Option {
	return func(o *Opts) { o.Completer = c }
}

// WithReporter sets the CRM lead sink.
func WithReporter(r crm.Reporter) Option {
	return func(o *Opts) { o.Reporter = r }
}

// WithAvailabilityChecker sets the booking calendar capability.
func WithAvailabilityChecker(c availability.Checker) Option {
	return func(o *Opts) { o.Checker = c }
}

// WithTypingDelay sets the simulated typing pause before each reply.
// Zero disables the pause (used in tests).
func WithTypingDelay(d time.Duration) Option {
	return func(o *Opts) { o.TypingDelay = d }
}

// WithClock injects the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// New creates a funnel. Store and messaging service are required;
// missing optional collaborators degrade gracefully (no LLM fallback,
// no CRM, every date reported available).
func New(opts ...Option) *Funnel {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		cfg.Store = store.NewInMemoryStore()
	}
	if cfg.Reporter == nil {
		cfg.Reporter = crm.NopReporter{}
	}
	if cfg.Checker == nil {
		cfg.Checker = availability.Static{Available: true}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	states := NewStoreBackedStateManager(cfg.Store)
	states.now = cfg.Now

	f := &Funnel{
		states:    states,
		store:     cfg.Store,
		msg:       cfg.Messaging,
		completer: cfg.Completer,
		reporter:  cfg.Reporter,
		avail:     cfg.Checker,
		now:       cfg.Now,
		delay:     cfg.TypingDelay,
		wait:      time.Sleep,
	}
	f.handlers = map[models.StateType]handlerFunc{
		models.StateInitialContact:     f.handleInitialContact,
		models.StateEventTypeWait:      f.handleEventTypeWait,
		models.StatePackageConfirmWait: f.handlePackageConfirmWait,
		models.StateServicesWait:       f.handleServicesWait,
		models.StateCabinTypeWait:      f.handleCabinTypeWait,
		models.StateConfirmAddCabin:    f.handleConfirmAddCabin,
		models.StateLetterCountWait:    f.handleLetterCountWait,
		models.StateSparklerCountWait:  f.handleSparklerCountWait,
		models.StateCartVariantWait:    f.handleCartVariantWait,
		models.StateConfirmAddCart:     f.handleConfirmAddCart,
		models.StateQuoteFollowupWait:  f.handleQuoteFollowupWait,
		models.StateDateWait:           f.handleDateWait,
		models.StateVenueWait:          f.handleVenueWait,
		models.StateFinalized:          f.handleFinalized,
	}
	return f
}

// turn is the per-message working set handed to state handlers.
type turn struct {
	ctx     context.Context
	phone   string
	raw     string
	text    string // normalized raw
	replyID string // interactive reply id, empty for plain text
	conv    *models.Conversation
	version int64 // StateVersion snapshot at load time
}

// insensitiveStates are the states where an FAQ question may
// short-circuit the flow. States awaiting a specific short answer
// (a quantity, a variant, a yes/no, a date) are excluded so a numeric
// reply is never swallowed by a pattern rule.
var insensitiveStates = map[models.StateType]bool{
	models.StateInitialContact:     true,
	models.StateEventTypeWait:      true,
	models.StatePackageConfirmWait: true,
	models.StateServicesWait:       true,
	models.StateQuoteFollowupWait:  true,
	models.StateFinalized:          true,
}

// HandleMessage processes one inbound message to completion.
func (f *Funnel) HandleMessage(ctx context.Context, msg models.InboundMessage) error {
	phone, err := f.msg.ValidateAndCanonicalizeRecipient(msg.From)
	if err != nil {
		slog.Warn("Funnel HandleMessage rejected sender", "error", err, "from", msg.From)
		return err
	}

	conv, err := f.states.Get(phone)
	if err != nil {
		return err
	}
	created := false
	if conv == nil {
		conv = &models.Conversation{
			Phone:        phone,
			CurrentState: models.StateInitialContact,
			Data:         make(map[models.DataKey]string),
		}
		created = true
	}

	t := &turn{
		ctx:     ctx,
		phone:   phone,
		raw:     msg.Text,
		text:    textnorm.Normalize(msg.Text),
		replyID: msg.ReplyID,
		conv:    conv,
		version: conv.StateVersion,
	}
	slog.Info("Funnel HandleMessage", "phone", phone, "state", conv.CurrentState, "kind", msg.Kind, "new_conversation", created)

	if insensitiveStates[conv.CurrentState] && msg.ReplyID == "" {
		if answer, ok := faq.Match(t.text); ok {
			slog.Debug("Funnel FAQ short-circuit", "phone", phone, "state", conv.CurrentState)
			if err := f.reply(t, answer); err != nil {
				return f.finishStale(t, err)
			}
			// Brand-new senders still get pulled into the funnel after
			// the answer; mid-funnel senders stay where they are.
			if !created {
				return f.save(t)
			}
		}
	}

	handler, ok := f.handlers[conv.CurrentState]
	if !ok {
		slog.Error("Funnel unknown state, resetting", "phone", phone, "state", conv.CurrentState)
		conv.CurrentState = models.StateInitialContact
		handler = f.handleInitialContact
	}

	if err := handler(t); err != nil {
		return f.finishStale(t, err)
	}
	return f.save(t)
}

// finishStale converts a stale-reply abort into a clean drop; any other
// error is returned after a best-effort save is skipped.
func (f *Funnel) finishStale(t *turn, err error) error {
	if errors.Is(err, errStaleReply) {
		slog.Info("Funnel dropped stale turn", "phone", t.phone, "state", t.conv.CurrentState, "version", t.version)
		return nil
	}
	return err
}

// save persists the turn's single state write.
func (f *Funnel) save(t *turn) error {
	return f.states.Put(t.conv)
}

// guard re-checks that the stored conversation still matches the
// version captured at load time. It runs before every reply once the
// typing pause has elapsed; a mismatch means a newer message from the
// same sender was processed and this turn's replies are obsolete.
func (f *Funnel) guard(t *turn) error {
	if f.delay > 0 {
		_ = f.msg.SendTyping(t.ctx, t.phone, true)
		f.wait(f.delay)
		_ = f.msg.SendTyping(t.ctx, t.phone, false)
	}
	stored, err := f.states.Get(t.phone)
	if err != nil {
		// Cannot verify; sending is safer than silence.
		return nil
	}
	if stored != nil && stored.StateVersion != t.version {
		return errStaleReply
	}
	return nil
}

// record logs an outbound attempt in the receipt log. Failures here are
// never allowed to affect the conversation.
func (f *Funnel) record(phone string, sendErr error) {
	status := models.MessageStatusSent
	if sendErr != nil {
		status = models.MessageStatusFailed
	}
	if err := f.store.AddReceipt(models.Receipt{To: phone, Status: status, Time: f.now().Unix()}); err != nil {
		slog.Error("Funnel receipt record failed", "error", err, "phone", phone)
	}
}

// reply sends a text reply through the stale guard. Send failures are
// logged and swallowed; the conversation continues best-effort.
func (f *Funnel) reply(t *turn, body string) error {
	if err := f.guard(t); err != nil {
		return err
	}
	err := f.msg.SendText(t.ctx, t.phone, body)
	f.record(t.phone, err)
	if err != nil {
		slog.Error("Funnel reply send failed", "error", err, "phone", t.phone)
	}
	return nil
}

// replyButtons sends an interactive button reply through the stale guard.
func (f *Funnel) replyButtons(t *turn, body string, buttons []models.Button) error {
	if err := f.guard(t); err != nil {
		return err
	}
	err := f.msg.SendButtons(t.ctx, t.phone, body, buttons)
	f.record(t.phone, err)
	if err != nil {
		slog.Error("Funnel button send failed", "error", err, "phone", t.phone)
	}
	return nil
}

// replyMedia sends an image or video through the stale guard.
func (f *Funnel) replyMedia(t *turn, url, caption string, video bool) error {
	if err := f.guard(t); err != nil {
		return err
	}
	var err error
	if video {
		err = f.msg.SendVideo(t.ctx, t.phone, url, caption)
	} else {
		err = f.msg.SendImage(t.ctx, t.phone, url, caption)
	}
	f.record(t.phone, err)
	if err != nil {
		slog.Error("Funnel media send failed", "error", err, "phone", t.phone, "url", url)
	}
	return nil
}

// llmFallback answers unmatched free text through the completion
// capability, or apologizes when it is missing or failing.
func (f *Funnel) llmFallback(t *turn) error {
	if f.completer == nil {
		return f.reply(t, replyApology)
	}
	out, err := f.completer.GeneratePromptWithContext(t.ctx, genaiSystemPrompt, t.raw)
	if err != nil {
		slog.Error("Funnel LLM fallback failed", "error", err, "phone", t.phone)
		return f.reply(t, replyApology)
	}
	return f.reply(t, out)
}

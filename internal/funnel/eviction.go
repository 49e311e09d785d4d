package funnel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/festibooth/boothbot/internal/store"
)

// DefaultSessionTTL is how long an idle conversation survives before
// the eviction sweep clears it.
const DefaultSessionTTL = 30 * 24 * time.Hour

// evictionCronExpr runs the sweep once an hour.
const evictionCronExpr = "0 * * * *"

// Evictor owns the scheduled idle-conversation sweep. Conversations
// untouched for longer than the TTL are deleted so long-gone customers
// restart from the greeting instead of resuming a stale draft.
type Evictor struct {
	cron *cron.Cron
	st   store.Store
	ttl  time.Duration
}

// StartEviction schedules the hourly sweep and returns the running
// evictor. A non-positive ttl falls back to DefaultSessionTTL.
func StartEviction(st store.Store, ttl time.Duration) (*Evictor, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	// Standard 5-field cron parser (min, hour, dom, month, dow) with recovery.
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	e := &Evictor{
		cron: cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		st:   st,
		ttl:  ttl,
	}
	if _, err := e.cron.AddFunc(evictionCronExpr, e.sweep); err != nil {
		return nil, fmt.Errorf("failed to schedule eviction sweep: %w", err)
	}
	e.cron.Start()
	slog.Info("Eviction sweep scheduled", "ttl", ttl)
	return e, nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (e *Evictor) Stop() {
	e.cron.Stop()
}

// sweep deletes every conversation idle past the TTL.
func (e *Evictor) sweep() {
	cutoff := time.Now().Add(-e.ttl)
	phones, err := e.st.ListIdlePhones(cutoff)
	if err != nil {
		slog.Error("Eviction sweep listing failed", "error", err)
		return
	}
	for _, phone := range phones {
		if err := e.st.DeleteConversation(phone); err != nil {
			slog.Error("Eviction delete failed", "error", err, "phone", phone)
			continue
		}
		slog.Info("Evicted idle conversation", "phone", phone, "cutoff", cutoff)
	}
}

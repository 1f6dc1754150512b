package focus

import (
	"context"
	"log"
	"sync"
	"time"
)

// Store persists the stats record.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
}

// Transition is reported when the countdown switches mode.
type Transition struct {
	From   Mode
	To     State
	Effect Effect
	Stats  Stats
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock overrides the wall clock used to date stats.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		t.now = now
	}
}

// WithTransitionHook registers a callback fired after every mode switch.
// It runs outside the timer lock.
func WithTransitionHook(fn func(Transition)) Option {
	return func(t *Timer) {
		t.onTransition = fn
	}
}

// Timer is a goroutine-safe focus countdown.
type Timer struct {
	mu           sync.Mutex
	state        State
	stats        Stats
	store        Store
	now          func() time.Time
	onTransition func(Transition)
}

// NewTimer loads the persisted stats and returns a paused focus countdown.
// Load failures fall back to fresh stats.
func NewTimer(ctx context.Context, store Store, focusMinutes, breakMinutes int, opts ...Option) *Timer {
	t := &Timer{
		state: NewState(focusMinutes, breakMinutes),
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	var raw []byte
	if store != nil {
		loaded, err := store.Load(ctx)
		if err != nil {
			log.Printf("[warn] load focus stats: %v", err)
		} else {
			raw = loaded
		}
	}
	t.stats = ResumeStats(raw, t.now())
	return t
}

// Dispatch feeds one event to the countdown and returns the new state.
func (t *Timer) Dispatch(ctx context.Context, e Event) State {
	t.mu.Lock()
	from := t.state.Mode
	next, eff := Reduce(t.state, e)
	t.state = next
	t.stats = t.stats.rollTo(t.now())
	if eff.SessionCompleted {
		t.stats = t.stats.Record(eff.Minutes, t.now())
		t.persistLocked(ctx)
	}
	stats := t.stats
	hook := t.onTransition
	t.mu.Unlock()

	if hook != nil && next.Mode != from {
		hook(Transition{From: from, To: next, Effect: eff, Stats: stats})
	}
	return next
}

func (t *Timer) persistLocked(ctx context.Context) {
	if t.store == nil {
		return
	}
	raw, err := t.stats.Marshal()
	if err != nil {
		log.Printf("[warn] encode focus stats: %v", err)
		return
	}
	if err := t.store.Save(ctx, raw); err != nil {
		log.Printf("[warn] save focus stats: %v", err)
	}
}

// Snapshot returns the current countdown and stats. Stats from an earlier
// day are rolled over to today first.
func (t *Timer) Snapshot() (State, Stats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = t.stats.rollTo(t.now())
	return t.state, t.stats
}

// Run ticks the countdown once per second until ctx is cancelled.
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Dispatch(ctx, Tick())
		}
	}
}

package oracle

import (
	"context"
	"sync"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/model"
)

// State is the durable state of a deck.
type State string

// Deck states. Browsing carries the cursor; everything else about the swipe
// gesture (dragging, exit animation) is presentation and lives in the client.
const (
	StateLoading   State = "loading"
	StateBrowsing  State = "browsing"
	StateExhausted State = "exhausted"
)

// Deck consumes a candidate pool one cursor position at a time.
// The cursor never moves backwards within a session; only Restart resets it.
// All methods are safe for concurrent use, though a session is expected to
// issue gestures sequentially.
type Deck struct {
	mu      sync.Mutex
	loader  *Loader
	matcher *Matcher

	// current is the session's cached profile. It has exactly one writer
	// (the match pipeline) and is patched only after a remote write succeeds.
	current *model.Profile

	pool        []model.Profile
	cursor      int
	loaded      bool
	inFlight    bool // a connect pipeline is running
	celebrating bool // match shown, cursor advance deferred until close
}

// NewDeck constructs a deck for the given session profile. The pool is empty
// until Load runs.
func NewDeck(loader *Loader, matcher *Matcher, current *model.Profile) *Deck {
	return &Deck{loader: loader, matcher: matcher, current: current}
}

// Load fetches and filters the candidate pool, resetting the cursor.
func (d *Deck) Load(ctx context.Context) {
	pool := d.loader.LoadPool(ctx, d.current)

	d.mu.Lock()
	d.pool = pool
	d.cursor = 0
	d.loaded = true
	d.celebrating = false
	d.mu.Unlock()
}

// State reports the durable deck state.
func (d *Deck) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case !d.loaded:
		return StateLoading
	case d.cursor >= len(d.pool):
		return StateExhausted
	default:
		return StateBrowsing
	}
}

// Current returns the candidate at the cursor and its position.
// Returns ErrExhausted once the pool is consumed.
func (d *Deck) Current() (model.Profile, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded || d.cursor >= len(d.pool) {
		return model.Profile{}, d.cursor, errs.ErrExhausted
	}
	return d.pool[d.cursor], d.cursor, nil
}

// Remaining reports how many candidates are left including the current one.
func (d *Deck) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := len(d.pool) - d.cursor; n > 0 {
		return n
	}
	return 0
}

// Profile returns the session's cached profile.
func (d *Deck) Profile() *model.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Reject advances past the current candidate with no persistence side effect.
func (d *Deck) Reject() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight || d.celebrating {
		return errs.ErrBusy
	}
	if !d.loaded || d.cursor >= len(d.pool) {
		return errs.ErrExhausted
	}
	d.cursor++
	return nil
}

// Connect runs the match pipeline for the current candidate. Only one connect
// may be in flight per deck; a concurrent call returns ErrBusy so exactly one
// connection is written. On success the deck enters the celebrating state and
// the cursor stays put until CloseCelebration; on failure the cursor also
// stays put so the same candidate can be retried.
func (d *Deck) Connect(ctx context.Context) (*MatchResult, error) {
	d.mu.Lock()
	if d.inFlight || d.celebrating {
		d.mu.Unlock()
		return nil, errs.ErrBusy
	}
	if !d.loaded || d.cursor >= len(d.pool) {
		d.mu.Unlock()
		return nil, errs.ErrExhausted
	}
	target := d.pool[d.cursor]
	current := d.current
	d.inFlight = true
	d.mu.Unlock()

	res, err := d.matcher.Match(ctx, current, target)

	d.mu.Lock()
	d.inFlight = false
	if err == nil {
		d.celebrating = true
	}
	d.mu.Unlock()
	return res, err
}

// CloseCelebration dismisses the match celebration and advances the cursor.
// Calling it outside the celebrating state is a no-op.
func (d *Deck) CloseCelebration() {
	d.mu.Lock()
	if d.celebrating {
		d.celebrating = false
		d.cursor++
	}
	d.mu.Unlock()
}

// Restart re-runs the loader for a fresh pool snapshot and resets the cursor.
// Candidates connected before the restart stay excluded: their edges are still
// present in the connection list the filter consumes.
func (d *Deck) Restart(ctx context.Context) error {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return errs.ErrBusy
	}
	d.mu.Unlock()

	d.Load(ctx)
	return nil
}

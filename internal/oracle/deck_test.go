package oracle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/events"
	"github.com/portaltarot/oraculo/internal/model"
)

func newTestDeck(t *testing.T, me *model.Profile, users *fakeUsers, conns *fakeConns, notifs *fakeNotifs) *Deck {
	t.Helper()
	log := zap.NewNop()
	loader := NewLoader(users, conns, 10, log)
	matcher := NewMatcher(users, conns, notifs, events.NewBus(), log)
	d := NewDeck(loader, matcher, me)
	d.Load(context.Background())
	return d
}

func TestDeck_StatesAndReject(t *testing.T) {
	t.Parallel()

	me := eligible("me")
	users := newFakeUsers(me, eligible("a"), eligible("b"), eligible("c"))
	conns := &fakeConns{}
	d := NewDeck(NewLoader(users, conns, 10, zap.NewNop()), nil, me)

	if d.State() != StateLoading {
		t.Fatalf("want loading before Load, got %s", d.State())
	}
	d.Load(context.Background())
	if d.State() != StateBrowsing {
		t.Fatalf("want browsing, got %s", d.State())
	}

	// Walk to the last candidate, then reject it: cursor reaches the pool
	// length, the deck is exhausted, and nothing was persisted.
	if err := d.Reject(); err != nil {
		t.Fatalf("reject 0: %v", err)
	}
	if err := d.Reject(); err != nil {
		t.Fatalf("reject 1: %v", err)
	}
	if err := d.Reject(); err != nil {
		t.Fatalf("reject 2: %v", err)
	}
	if d.State() != StateExhausted {
		t.Fatalf("want exhausted, got %s", d.State())
	}
	if conns.count() != 0 {
		t.Fatalf("reject must not write connections, got %d", conns.count())
	}
	if err := d.Reject(); !errors.Is(err, errs.ErrExhausted) {
		t.Fatalf("want ErrExhausted past the end, got %v", err)
	}
	if _, _, err := d.Current(); !errors.Is(err, errs.ErrExhausted) {
		t.Fatalf("want ErrExhausted from Current, got %v", err)
	}
}

func TestDeck_ConnectDefersAdvanceUntilCelebrationClose(t *testing.T) {
	t.Parallel()

	me := eligible("me")
	me.XP = 400
	a := eligible("a")
	b := eligible("b")
	users := newFakeUsers(me, a, b)
	conns := &fakeConns{}
	notifs := &fakeNotifs{}
	d := newTestDeck(t, me, users, conns, notifs)

	first, _, err := d.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	res, err := d.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if res.Target.ID != first.ID {
		t.Fatalf("matched wrong candidate")
	}
	if res.NewXP != 410 {
		t.Fatalf("xp=%d, want 410", res.NewXP)
	}
	if conns.count() != 1 || len(notifs.created) != 1 {
		t.Fatalf("want one connection and one notification")
	}

	// The cursor must not move while the celebration is open.
	cur, pos, err := d.Current()
	if err != nil || cur.ID != first.ID || pos != 0 {
		t.Fatalf("cursor moved before celebration close: pos=%d err=%v", pos, err)
	}
	if err := d.Reject(); !errors.Is(err, errs.ErrBusy) {
		t.Fatalf("gestures must be blocked while celebrating, got %v", err)
	}

	d.CloseCelebration()
	cur, pos, err = d.Current()
	if err != nil || pos != 1 || cur.ID == first.ID {
		t.Fatalf("cursor did not advance after close: pos=%d err=%v", pos, err)
	}

	// Closing again is a no-op.
	d.CloseCelebration()
	if _, pos, _ := d.Current(); pos != 1 {
		t.Fatalf("duplicate close advanced the cursor: pos=%d", pos)
	}
}

func TestDeck_ConnectSingleFlight(t *testing.T) {
	t.Parallel()

	me := eligible("me")
	users := newFakeUsers(me, eligible("a"))
	conns := &fakeConns{gate: make(chan struct{}), entered: make(chan struct{})}
	notifs := &fakeNotifs{}
	d := newTestDeck(t, me, users, conns, notifs)

	entered := conns.entered
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := d.Connect(context.Background()); err != nil {
			t.Errorf("first Connect: %v", err)
		}
	}()

	// Second connect while the first is blocked inside the pipeline.
	<-entered
	if _, err := d.Connect(context.Background()); !errors.Is(err, errs.ErrBusy) {
		t.Fatalf("want ErrBusy while a connect is in flight, got %v", err)
	}

	close(conns.gate)
	wg.Wait()

	if conns.count() != 1 {
		t.Fatalf("want exactly one connection, got %d", conns.count())
	}
}

func TestDeck_FailedConnectKeepsCursor(t *testing.T) {
	t.Parallel()

	me := eligible("me")
	a := eligible("a")
	users := newFakeUsers(me, a)
	conns := &fakeConns{createErr: errors.New("db down")}
	notifs := &fakeNotifs{}
	d := newTestDeck(t, me, users, conns, notifs)

	if _, err := d.Connect(context.Background()); err == nil {
		t.Fatalf("want pipeline failure")
	}
	cur, pos, err := d.Current()
	if err != nil || pos != 0 || cur.ID != a.ID {
		t.Fatalf("failed connect must keep the candidate: pos=%d err=%v", pos, err)
	}

	// Retry the same candidate after the backend recovers.
	conns.createErr = nil
	if _, err := d.Connect(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestDeck_RestartExcludesConnected(t *testing.T) {
	t.Parallel()

	me := eligible("me")
	a := eligible("a")
	b := eligible("b")
	users := newFakeUsers(me, a, b)
	conns := &fakeConns{}
	notifs := &fakeNotifs{}
	d := newTestDeck(t, me, users, conns, notifs)

	// Connect to the first candidate, reject the second, exhaust the pool.
	if _, err := d.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	d.CloseCelebration()
	if err := d.Reject(); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if d.State() != StateExhausted {
		t.Fatalf("want exhausted, got %s", d.State())
	}

	if err := d.Restart(context.Background()); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	cur, pos, err := d.Current()
	if err != nil {
		t.Fatalf("Current after restart: %v", err)
	}
	if pos != 0 {
		t.Fatalf("cursor not reset: %d", pos)
	}
	// Connections persist across restarts, so only the rejected candidate
	// comes back.
	if cur.ID != b.ID {
		t.Fatalf("connected candidate reappeared after restart")
	}
	if d.Remaining() != 1 {
		t.Fatalf("remaining=%d, want 1", d.Remaining())
	}
}

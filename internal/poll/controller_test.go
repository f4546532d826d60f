package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// scriptedPoller runs a caller-supplied function per poll and tracks
// concurrency.
type scriptedPoller struct {
	mu         sync.Mutex
	calls      int
	inFlight   int
	maxFlight  int
	lastSince  *time.Time
	fn         func(call int, since *time.Time) (Result, error)
	blockUntil chan struct{} // when set, polls block until closed
}

func (p *scriptedPoller) PollUpdates(ctx context.Context, surveyID uuid.UUID, since *time.Time) (Result, error) {
	p.mu.Lock()
	p.calls++
	call := p.calls
	p.inFlight++
	if p.inFlight > p.maxFlight {
		p.maxFlight = p.inFlight
	}
	p.lastSince = since
	block := p.blockUntil
	fn := p.fn
	p.mu.Unlock()

	if block != nil {
		<-block
	}

	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if fn == nil {
		return Result{}, nil
	}
	return fn(call, since)
}

func (p *scriptedPoller) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type recorder struct {
	ch chan Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Event, 64)}
}

func (r *recorder) listen(ev Event) { r.ch <- ev }

func (r *recorder) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func (r *recorder) expectStatus(t *testing.T, status Status) StatusEvent {
	t.Helper()
	for {
		ev := r.next(t)
		if se, ok := ev.(StatusEvent); ok && se.Status == status {
			return se
		}
	}
}

func (r *recorder) expectUpdate(t *testing.T) UpdateEvent {
	t.Helper()
	for {
		ev := r.next(t)
		if ue, ok := ev.(UpdateEvent); ok {
			return ue
		}
	}
}

func (r *recorder) expectSilence(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case ev := <-r.ch:
		t.Fatalf("expected no event, got %#v", ev)
	case <-time.After(d):
	}
}

func newTestController(t *testing.T, poller Poller, cfg Config, vis VisibilitySource) (*Controller, *recorder, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	ctrl := NewController(zaptest.NewLogger(t), poller, uuid.New(), cfg, vis, clock)
	ctrl.SetListener(rec.listen)
	t.Cleanup(ctrl.Stop)
	return ctrl, rec, clock
}

func TestController_BackoffDoublesAndCaps(t *testing.T) {
	poller := &scriptedPoller{fn: func(call int, since *time.Time) (Result, error) {
		if call <= 3 {
			return Result{}, errors.New("network down")
		}
		return Result{}, nil
	}}
	cfg := Config{BaseInterval: time.Second, MaxInterval: 8 * time.Second}
	ctrl, rec, clock := newTestController(t, poller, cfg, nil)

	ctrl.Start(context.Background())
	rec.expectStatus(t, StatusActive)

	// Three consecutive failures: 1s -> 2s -> 4s -> 8s (cap).
	waits := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for _, wait := range waits {
		clock.BlockUntil(1)
		clock.Advance(wait)
		rec.expectStatus(t, StatusError)
	}

	state := ctrl.GetState()
	assert.Equal(t, 8*time.Second, state.CurrentInterval)
	assert.Equal(t, 3, state.ConsecutiveFailures)

	// One success resets the schedule back to the base interval.
	clock.BlockUntil(1)
	clock.Advance(8 * time.Second)
	rec.expectStatus(t, StatusActive)

	state = ctrl.GetState()
	assert.Equal(t, time.Second, state.CurrentInterval)
	assert.Equal(t, 0, state.ConsecutiveFailures)
}

func TestController_UpdateEventAndSinceTracking(t *testing.T) {
	first := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	poller := &scriptedPoller{fn: func(call int, since *time.Time) (Result, error) {
		if call == 1 {
			return Result{Updated: true, LastResponseAt: &first, NewCount: 2}, nil
		}
		return Result{Updated: false, LastResponseAt: &first}, nil
	}}
	cfg := Config{BaseInterval: time.Second, MaxInterval: 8 * time.Second, ImmediateFirst: true}
	ctrl, rec, clock := newTestController(t, poller, cfg, nil)

	ctrl.Start(context.Background())

	update := rec.expectUpdate(t)
	assert.Equal(t, 2, update.NewCount)
	assert.True(t, first.Equal(update.LastResponseAt))

	state := ctrl.GetState()
	require.NotNil(t, state.LastResponseAt)
	assert.True(t, first.Equal(*state.LastResponseAt))

	// The next poll must carry the advanced baseline.
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	requireEventually(t, func() bool { return poller.callCount() == 2 })

	poller.mu.Lock()
	since := poller.lastSince
	poller.mu.Unlock()
	require.NotNil(t, since)
	assert.True(t, first.Equal(*since))
}

func TestController_PauseResumeNoOverlap(t *testing.T) {
	block := make(chan struct{})
	poller := &scriptedPoller{blockUntil: block}
	cfg := Config{BaseInterval: time.Second, MaxInterval: 8 * time.Second}
	ctrl, rec, clock := newTestController(t, poller, cfg, nil)

	ctrl.Start(context.Background())
	rec.expectStatus(t, StatusActive)

	// First scheduled poll goes in flight and blocks.
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	requireEventually(t, func() bool { return poller.callCount() == 1 })

	ctrl.Pause("test")
	rec.expectStatus(t, StatusPaused)
	ctrl.Resume(true)
	rec.expectStatus(t, StatusActive)

	// Even advancing past where the old tick would have fired must not
	// start a second concurrent poll.
	clock.Advance(5 * time.Second)
	assert.Equal(t, 1, poller.callCount())

	close(block)
	requireEventually(t, func() bool {
		poller.mu.Lock()
		defer poller.mu.Unlock()
		return poller.inFlight == 0
	})

	// Once the blocked poll resolves, polling continues on schedule.
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	requireEventually(t, func() bool { return poller.callCount() == 2 })

	poller.mu.Lock()
	maxFlight := poller.maxFlight
	poller.mu.Unlock()
	assert.Equal(t, 1, maxFlight, "no overlapping polls")
}

func TestController_ForcePollRespectsInFlightGuard(t *testing.T) {
	block := make(chan struct{})
	poller := &scriptedPoller{blockUntil: block}
	cfg := Config{BaseInterval: time.Minute, MaxInterval: 2 * time.Minute, ImmediateFirst: true}
	ctrl, _, _ := newTestController(t, poller, cfg, nil)

	ctrl.Start(context.Background())
	requireEventually(t, func() bool { return poller.callCount() == 1 })

	ctrl.ForcePoll()
	ctrl.ForcePoll()
	assert.Equal(t, 1, poller.callCount())

	close(block)
}

func TestController_StopDiscardsInFlightResult(t *testing.T) {
	block := make(chan struct{})
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	poller := &scriptedPoller{
		blockUntil: block,
		fn: func(call int, since *time.Time) (Result, error) {
			return Result{Updated: true, LastResponseAt: &at, NewCount: 5}, nil
		},
	}
	cfg := Config{BaseInterval: time.Minute, MaxInterval: 2 * time.Minute, ImmediateFirst: true}
	ctrl, rec, _ := newTestController(t, poller, cfg, nil)

	ctrl.Start(context.Background())
	requireEventually(t, func() bool { return poller.callCount() == 1 })
	rec.expectStatus(t, StatusActive)

	ctrl.Stop()
	rec.expectStatus(t, StatusStopped)

	// The poll resolves after Stop; its result must be ignorable.
	close(block)
	rec.expectSilence(t, 100*time.Millisecond)

	state := ctrl.GetState()
	assert.False(t, state.IsRunning)
	assert.Nil(t, state.LastResponseAt)
}

func TestController_StartIsIdempotentWhileRunning(t *testing.T) {
	poller := &scriptedPoller{}
	cfg := Config{BaseInterval: time.Second, MaxInterval: 8 * time.Second}
	ctrl, rec, _ := newTestController(t, poller, cfg, nil)

	ctrl.Start(context.Background())
	rec.expectStatus(t, StatusActive)
	ctrl.Start(context.Background())
	rec.expectSilence(t, 100*time.Millisecond)
}

func TestController_VisibilityPausesAndResumes(t *testing.T) {
	poller := &scriptedPoller{}
	vis := NewSignalVisibility(true)
	cfg := Config{BaseInterval: time.Second, MaxInterval: 8 * time.Second}
	ctrl, rec, _ := newTestController(t, poller, cfg, vis)

	ctrl.Start(context.Background())
	rec.expectStatus(t, StatusActive)

	vis.Set(false)
	rec.expectStatus(t, StatusPaused)
	assert.True(t, ctrl.GetState().IsPaused)

	// Becoming visible again resumes with an immediate poll.
	vis.Set(true)
	rec.expectStatus(t, StatusActive)
	requireEventually(t, func() bool { return poller.callCount() >= 1 })
	assert.False(t, ctrl.GetState().IsPaused)
}

func TestController_StartsPausedWhenHidden(t *testing.T) {
	poller := &scriptedPoller{}
	vis := NewSignalVisibility(false)
	cfg := Config{BaseInterval: time.Second, MaxInterval: 8 * time.Second, ImmediateFirst: true}
	ctrl, rec, _ := newTestController(t, poller, cfg, vis)

	ctrl.Start(context.Background())
	rec.expectStatus(t, StatusPaused)
	assert.Equal(t, 0, poller.callCount())

	vis.Set(true)
	rec.expectStatus(t, StatusActive)
	requireEventually(t, func() bool { return poller.callCount() == 1 })
}

func TestController_StartStatusPrecedesFirstUpdate(t *testing.T) {
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	poller := &scriptedPoller{fn: func(call int, since *time.Time) (Result, error) {
		return Result{Updated: true, LastResponseAt: &at, NewCount: 1}, nil
	}}
	cfg := Config{BaseInterval: time.Second, MaxInterval: 8 * time.Second, ImmediateFirst: true}
	ctrl, rec, _ := newTestController(t, poller, cfg, nil)

	ctrl.Start(context.Background())

	// An immediate first poll must not outrun the start notification.
	first := rec.next(t)
	se, ok := first.(StatusEvent)
	require.True(t, ok, "first event must be the start status, got %#v", first)
	assert.Equal(t, StatusActive, se.Status)

	update := rec.expectUpdate(t)
	assert.Equal(t, 1, update.NewCount)
}

func requireEventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

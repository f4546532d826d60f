// Package poll implements the client-side live-update protocol: a state
// machine that periodically asks the analytics engine whether a survey has
// new responses, backing off exponentially on failure and pausing while the
// consumer is not being watched. It detects changes only; re-fetching the
// analytics themselves is the caller's job.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Default scheduling bounds.
const (
	DefaultBaseInterval = 15 * time.Second
	DefaultMaxInterval  = 120 * time.Second
)

// Status is the externally visible state label of a controller.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	// StatusError is only ever a signal on StatusEvent; the controller
	// itself stays active and keeps retrying with backoff.
	StatusError Status = "error"
)

// Result is what one poll of the server reports.
type Result struct {
	Updated        bool
	LastResponseAt *time.Time
	NewCount       int
}

// Poller performs the actual freshness check against the analytics engine.
type Poller interface {
	PollUpdates(ctx context.Context, surveyID uuid.UUID, since *time.Time) (Result, error)
}

// Event is the tagged union delivered to the controller's listener.
type Event interface{ pollEvent() }

// UpdateEvent fires when the server reports new responses since the last
// known submission. The caller reacts by re-fetching analysis and trend data.
type UpdateEvent struct {
	LastResponseAt time.Time
	NewCount       int
}

// StatusEvent fires on every scheduling-state transition, including the
// error signal after a failed poll.
type StatusEvent struct {
	Status       Status
	Err          error
	NextInterval time.Duration
}

func (UpdateEvent) pollEvent() {}
func (StatusEvent) pollEvent() {}

// Config tunes one controller.
type Config struct {
	BaseInterval   time.Duration
	MaxInterval    time.Duration
	ImmediateFirst bool
}

func (c Config) withDefaults() Config {
	if c.BaseInterval <= 0 {
		c.BaseInterval = DefaultBaseInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = DefaultMaxInterval
	}
	return c
}

// State is a snapshot of the controller's internals for callers.
type State struct {
	LastResponseAt      *time.Time
	CurrentInterval     time.Duration
	ConsecutiveFailures int
	IsRunning           bool
	IsPaused            bool
}

// Controller monitors one survey. Instances are independent; construct one
// per monitored survey and tear it down with Stop.
type Controller struct {
	log      *zap.Logger
	poller   Poller
	surveyID uuid.UUID
	cfg      Config
	vis      VisibilitySource
	clock    clockwork.Clock
	listener func(Event)

	mu             sync.Mutex
	status         Status
	interval       time.Duration
	failures       int
	lastResponseAt *time.Time
	inFlight       bool
	timer          clockwork.Timer
	gen            int
	ctx            context.Context
	visDone        chan struct{}
}

func NewController(log *zap.Logger, poller Poller, surveyID uuid.UUID, cfg Config, vis VisibilitySource, clock clockwork.Clock) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if vis == nil {
		vis = AlwaysVisible()
	}
	return &Controller{
		log:      log,
		poller:   poller,
		surveyID: surveyID,
		cfg:      cfg.withDefaults(),
		vis:      vis,
		clock:    clock,
		status:   StatusStopped,
	}
}

// SetListener registers the single event listener. Must be called before
// Start. Events are delivered from the controller's own goroutines.
func (c *Controller) SetListener(fn func(Event)) {
	c.listener = fn
}

// Start resets the controller to defaults and begins polling. A no-op if the
// controller is already running.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.status != StatusStopped {
		c.mu.Unlock()
		return
	}
	c.ctx = ctx
	c.gen++
	gen := c.gen
	c.interval = c.cfg.BaseInterval
	c.failures = 0
	c.lastResponseAt = nil
	c.inFlight = false
	c.visDone = make(chan struct{})
	done := c.visDone

	status := StatusActive
	if !c.vis.Visible() {
		// Consumer is not being watched yet; the visibility watcher
		// resumes us when it becomes visible.
		status = StatusPaused
	}
	c.status = status
	interval := c.interval
	c.mu.Unlock()

	go c.watchVisibility(done)
	c.log.Debug("Poll controller started", zap.String("surveyID", c.surveyID.String()))

	// The start status goes out before the first poll launches, so listeners
	// never see an update from a poll they were not told is running yet.
	c.emit(StatusEvent{Status: status, NextInterval: interval})

	if status == StatusActive {
		c.mu.Lock()
		// Stop or a visibility change may have won the race while the
		// start event was being delivered; a pause/resume cycle would
		// already have scheduled.
		if c.gen == gen && c.status == StatusActive && c.timer == nil && !c.inFlight {
			if c.cfg.ImmediateFirst {
				c.beginPollLocked()
			} else {
				c.scheduleLocked()
			}
		}
		c.mu.Unlock()
	}
}

// Stop cancels the pending timer, unregisters the visibility watcher and
// resets to stopped. An in-flight poll is not cancelled; its result is
// discarded when it resolves.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.status == StatusStopped {
		c.mu.Unlock()
		return
	}
	c.status = StatusStopped
	c.gen++
	c.stopTimerLocked()
	if c.visDone != nil {
		close(c.visDone)
		c.visDone = nil
	}
	c.inFlight = false
	c.mu.Unlock()

	c.log.Debug("Poll controller stopped", zap.String("surveyID", c.surveyID.String()))
	c.emit(StatusEvent{Status: StatusStopped})
}

// Pause cancels the pending timer without losing state. An in-flight poll
// still completes; only the next one is not scheduled.
func (c *Controller) Pause(reason string) {
	c.mu.Lock()
	if c.status != StatusActive {
		c.mu.Unlock()
		return
	}
	c.status = StatusPaused
	c.stopTimerLocked()
	interval := c.interval
	c.mu.Unlock()

	c.log.Debug("Poll controller paused",
		zap.String("surveyID", c.surveyID.String()),
		zap.String("reason", reason),
	)
	c.emit(StatusEvent{Status: StatusPaused, NextInterval: interval})
}

// Resume re-schedules polling, optionally performing one immediate poll
// first.
func (c *Controller) Resume(immediate bool) {
	c.mu.Lock()
	if c.status != StatusPaused {
		c.mu.Unlock()
		return
	}
	c.status = StatusActive
	switch {
	case c.inFlight:
		// The poll that was in flight when we paused will schedule
		// the next tick when it resolves.
	case immediate:
		c.beginPollLocked()
	default:
		c.scheduleLocked()
	}
	interval := c.interval
	c.mu.Unlock()

	c.emit(StatusEvent{Status: StatusActive, NextInterval: interval})
}

// ForcePoll bypasses the schedule for an immediate out-of-band check. It
// still respects the in-flight guard.
func (c *Controller) ForcePoll() {
	c.mu.Lock()
	if c.status == StatusStopped || c.inFlight {
		c.mu.Unlock()
		return
	}
	c.beginPollLocked()
	c.mu.Unlock()
}

// GetState returns a snapshot of the controller's state.
func (c *Controller) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	var last *time.Time
	if c.lastResponseAt != nil {
		t := *c.lastResponseAt
		last = &t
	}
	return State{
		LastResponseAt:      last,
		CurrentInterval:     c.interval,
		ConsecutiveFailures: c.failures,
		IsRunning:           c.status != StatusStopped,
		IsPaused:            c.status == StatusPaused,
	}
}

// tick fires when the scheduled timer elapses.
func (c *Controller) tick(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.status != StatusActive {
		return
	}
	if c.inFlight {
		// Skip; the in-flight poll schedules the next tick when it
		// resolves.
		return
	}
	c.beginPollLocked()
}

// beginPollLocked launches one poll. Exactly one may be in flight; the
// pending timer is cancelled so the poll's completion is the single place
// the next tick gets scheduled from.
func (c *Controller) beginPollLocked() {
	c.stopTimerLocked()
	c.inFlight = true
	gen := c.gen
	ctx := c.ctx
	since := c.lastResponseAt

	go func() {
		res, err := c.poller.PollUpdates(ctx, c.surveyID, since)
		c.finishPoll(gen, res, err)
	}()
}

func (c *Controller) finishPoll(gen int, res Result, err error) {
	c.mu.Lock()
	if gen != c.gen {
		// The controller was stopped (and possibly restarted) while
		// this poll was in flight; the result is ignorable.
		c.mu.Unlock()
		return
	}
	c.inFlight = false

	var events []Event
	if err != nil {
		c.failures++
		next := c.interval * 2
		if next > c.cfg.MaxInterval {
			next = c.cfg.MaxInterval
		}
		c.interval = next
		events = append(events, StatusEvent{Status: StatusError, Err: err, NextInterval: next})
	} else {
		recovered := c.failures > 0
		c.failures = 0
		c.interval = c.cfg.BaseInterval

		if res.LastResponseAt != nil && (c.lastResponseAt == nil || res.LastResponseAt.After(*c.lastResponseAt)) {
			t := *res.LastResponseAt
			c.lastResponseAt = &t
		}
		if res.Updated && res.LastResponseAt != nil {
			events = append(events, UpdateEvent{LastResponseAt: *res.LastResponseAt, NewCount: res.NewCount})
		}
		if recovered {
			events = append(events, StatusEvent{Status: StatusActive, NextInterval: c.interval})
		}
	}

	if c.status == StatusActive {
		c.scheduleLocked()
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("Survey poll failed",
			zap.String("surveyID", c.surveyID.String()),
			zap.Error(err),
		)
	}
	for _, ev := range events {
		c.emit(ev)
	}
}

func (c *Controller) scheduleLocked() {
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.interval, func() { c.tick(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) watchVisibility(done chan struct{}) {
	ch := c.vis.Changes()
	for {
		select {
		case <-done:
			return
		case visible, ok := <-ch:
			if !ok {
				return
			}
			if visible {
				c.Resume(true)
			} else {
				c.Pause("consumer hidden")
			}
		}
	}
}

func (c *Controller) emit(ev Event) {
	if c.listener != nil {
		c.listener(ev)
	}
}

package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseLoadFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseLoadFailed:
		return "load-failed"
	default:
		return "uninitialized"
	}
}

// ErrSuperseded is returned by Reload when a newer Reload started before
// this one finished; its result was discarded.
var ErrSuperseded = errors.New("load superseded by a newer reload")

// State is a point-in-time copy of the dashboard state. Projects is shared
// between snapshots and must be treated as read-only.
type State struct {
	Projects     []Project
	StatusFilter string
	SearchTerm   string
	Phase        Phase
	Err          error
	LoadedAt     time.Time
	// Loads counts successful loads.
	Loads int
}

// Visible applies the snapshot's own filter and search term.
func (s State) Visible() []Project {
	return Filter(s.Projects, s.StatusFilter, s.SearchTerm)
}

type Controller struct {
	source ProjectSource
	log    *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	subs   []func(State)
}

func NewController(source ProjectSource, defaultStatus string, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if defaultStatus == "" {
		defaultStatus = AllStatuses
	}
	return &Controller{
		source: source,
		log:    log,
		now:    time.Now,
		state:  State{StatusFilter: defaultStatus, Projects: []Project{}},
	}
}

// OnChange registers fn to run after every state change, outside the lock.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start performs the initial load. A failure is recorded in the state and
// logged; the controller stays usable and Reload can retry.
func (c *Controller) Start(ctx context.Context) error {
	return c.Reload(ctx)
}

// Reload fetches a fresh collection. A newer Reload cancels this one, and
// only the latest call's result is applied. On failure the previous
// collection is kept.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state.Phase = PhaseLoading
	c.publishLocked()

	projects, err := c.source.Load(loadCtx)

	c.mu.Lock()
	defer cancel()
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarding superseded load", zap.Uint64("generation", gen))
		return ErrSuperseded
	}
	c.cancel = nil
	if err != nil {
		c.state.Phase = PhaseLoadFailed
		c.state.Err = err
		c.log.Error("load projects", zap.Error(err))
	} else {
		c.state.Projects = projects
		c.state.Phase = PhaseLoaded
		c.state.Err = nil
		c.state.LoadedAt = c.now()
		c.state.Loads++
		c.log.Info("loaded projects", zap.Int("count", len(projects)))
	}
	c.publishLocked()
	return err
}

func (c *Controller) SetStatusFilter(status string) {
	c.mu.Lock()
	c.state.StatusFilter = status
	c.publishLocked()
}

func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	c.state.SearchTerm = term
	c.publishLocked()
}

// publishLocked releases c.mu and notifies subscribers with the new state.
func (c *Controller) publishLocked() {
	snap := c.state
	subs := append([]func(State){}, c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// Package recommendation fetches and caches AI-curated course and job
// suggestions for the current profile.
package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonathan/career-portal/internal/types"
)

// Backend is the subset of the API client the controller needs.
type Backend interface {
	GetRecommendations(ctx context.Context, credential string, force bool) (types.RecommendationSet, error)
}

// State is the controller's position in Idle -> Loading -> {Populated | Failed}.
// Populated and Failed go back to Loading on the next fetch; nothing is terminal.
type State int

const (
	Idle State = iota
	Loading
	Populated
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a consistent view of the controller at one instant.
type Snapshot struct {
	State State
	Set   types.RecommendationSet
	Err   error
}

// Loading reports whether a fetch is outstanding.
func (s Snapshot) Loading() bool {
	return s.State == Loading
}

// Outcome is what a single Fetch call produced.
type Outcome struct {
	Set types.RecommendationSet
	Err error
	// Stale is set when a newer fetch was issued before this one resolved.
	Stale bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers fn to receive a snapshot after every transition.
// Snapshots are delivered in transition order. fn must not call back into the controller.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// Controller owns the current RecommendationSet. Each successful fetch
// replaces the set wholesale; only the latest issued fetch may do so.
type Controller struct {
	backend  Backend
	logger   *slog.Logger
	observer func(Snapshot)

	mu    sync.Mutex
	seq   uint64
	state State
	set   types.RecommendationSet
	err   error

	// notifyMu keeps observer calls in the same order as transitions.
	notifyMu sync.Mutex
}

// NewController creates a recommendation controller in the Idle state.
func NewController(backend Backend, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		backend: backend,
		logger:  logger.With("component", "recommendation"),
		state:   Idle,
		set:     types.EmptyRecommendations(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch loads recommendations with credential. When force is set the
// backend is asked to regenerate, and the displayed set is cleared in the
// same transition that enters Loading, so old suggestions are never shown
// as if they were the pending result.
func (c *Controller) Fetch(ctx context.Context, credential string, force bool) Outcome {
	c.mu.Lock()
	c.seq++
	issued := c.seq
	c.state = Loading
	c.err = nil
	if force {
		c.set = types.EmptyRecommendations()
	}
	c.commit()

	set, err := c.backend.GetRecommendations(ctx, credential, force)

	c.mu.Lock()
	if issued != c.seq {
		c.mu.Unlock()
		c.logger.Debug("dropping stale recommendation response", "issued", issued, "force", force)
		return Outcome{Set: set, Err: err, Stale: true}
	}

	if err != nil {
		c.logger.Warn("recommendation fetch failed", "error", err, "force", force)
		c.state = Failed
		c.set = types.EmptyRecommendations()
		c.err = err
	} else {
		c.state = Populated
		c.set = set
	}
	c.commit()

	return Outcome{Set: set, Err: err}
}

// Clear empties the displayed set without changing the state.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.set = types.EmptyRecommendations()
	c.commit()
}

// Reset returns to Idle with an empty set. In-flight fetches become stale.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.seq++
	c.state = Idle
	c.set = types.EmptyRecommendations()
	c.err = nil
	c.commit()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	set := types.RecommendationSet{
		Courses: append([]types.Course{}, c.set.Courses...),
		Jobs:    append([]types.Job{}, c.set.Jobs...),
	}
	return Snapshot{State: c.state, Set: set, Err: c.err}
}

// commit must be called with mu held. It releases mu and delivers the new
// snapshot to the observer.
func (c *Controller) commit() {
	snap := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	if c.observer != nil {
		c.observer(snap)
	}
}

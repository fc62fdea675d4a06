// Package dashboard sequences the profile and recommendation controllers
// around the session and derives which screen the client shows.
//
// Every operation runs on the caller's goroutine and blocks only on the
// network calls made by the controllers. Operations may be issued from
// several goroutines at once; controller sequence numbers make sure a
// superseded response never overwrites newer data.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jonathan/career-portal/internal/profile"
	"github.com/jonathan/career-portal/internal/recommendation"
	"github.com/jonathan/career-portal/internal/session"
	"github.com/jonathan/career-portal/internal/types"
)

var (
	// ErrNotAuthenticated is returned by operations that need a credential when none is present.
	ErrNotAuthenticated = errors.New("not signed in")
	// ErrNoProfile is returned by CloseEditor when there is no saved profile to go back to.
	ErrNoProfile = errors.New("no saved profile")
	// ErrSessionChanged is returned when the session changed while an operation was in flight.
	ErrSessionChanged = errors.New("session changed during operation")
)

// Session is the part of the session store the orchestrator reads.
type Session interface {
	Current() (string, bool)
	Subscribe(fn func(session.Change)) (unsubscribe func())
}

// Backend is everything the controllers need from the API.
type Backend interface {
	profile.Backend
	recommendation.Backend
}

// View is a consistent snapshot of what the client should display.
type View struct {
	Mode                   Mode
	Authenticated          bool
	Profile                *types.Profile
	Draft                  types.ProfileDraft
	ProfileLoading         bool
	Recommendations        types.RecommendationSet
	RecommendationsLoading bool
	RecommendationsFailed  bool
	Saving                 bool
	// ProfileErr holds the last profile read failure, kept apart from the
	// new-user case even though both open the editor.
	ProfileErr error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRenderer registers fn to receive a View after every state change.
// Views are delivered one at a time in the order they were built.
func WithRenderer(fn func(View)) Option {
	return func(o *Orchestrator) {
		o.renderer = fn
	}
}

// Orchestrator composes the session, profile and recommendation controllers.
type Orchestrator struct {
	session  Session
	profiles *profile.Controller
	recs     *recommendation.Controller
	logger   *slog.Logger
	renderer func(View)

	mu             sync.Mutex
	ctx            context.Context
	unsubscribe    func()
	lastCredential string
	// generation is bumped on every session change; results of work
	// started under an older generation are discarded.
	generation     uint64
	editorOpen     bool
	profileLoading bool
	saving         bool
	profileErr     error
	recSnap        recommendation.Snapshot

	renderMu sync.Mutex
}

// New creates an Orchestrator and its controllers on top of backend.
func New(sess Session, backend Backend, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		session: sess,
		logger:  logger.With("component", "dashboard"),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.profiles = profile.NewController(backend, logger)
	o.recs = recommendation.NewController(backend, logger, recommendation.WithObserver(o.onRecommendations))
	o.recSnap = o.recs.Snapshot()
	return o
}

// Start subscribes to session changes and, if a credential is already
// stored, runs the initial load. ctx is also used for loads triggered by
// later logins.
func (o *Orchestrator) Start(ctx context.Context) {
	if o.subscribe(ctx) {
		o.Load(ctx)
	}
}

// StartFresh is Start with a forced recommendation fetch in place of the
// cached one.
func (o *Orchestrator) StartFresh(ctx context.Context) profile.FetchResult {
	if !o.subscribe(ctx) {
		return profile.FetchResult{Kind: profile.Failed, Err: ErrNotAuthenticated}
	}
	return o.load(ctx, true)
}

// subscribe registers the session observer once and reports whether a
// credential is present.
func (o *Orchestrator) subscribe(ctx context.Context) bool {
	o.mu.Lock()
	o.ctx = ctx
	if o.unsubscribe == nil {
		o.unsubscribe = o.session.Subscribe(o.onSessionChange)
	}
	credential, _ := o.session.Current()
	o.lastCredential = credential
	o.mu.Unlock()

	if credential == "" {
		o.render()
		return false
	}
	return true
}

// Stop removes the session subscription.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unsubscribe != nil {
		o.unsubscribe()
		o.unsubscribe = nil
	}
}

func (o *Orchestrator) onSessionChange(change session.Change) {
	o.mu.Lock()
	switched := change.Credential != o.lastCredential
	o.lastCredential = change.Credential
	o.generation++
	ctx := o.ctx
	o.mu.Unlock()

	if !change.Present {
		o.logger.Debug("session ended, discarding cached state")
		o.reset()
		return
	}
	if switched {
		o.reset()
	}
	o.Load(ctx)
}

// reset discards everything tied to the previous session.
func (o *Orchestrator) reset() {
	o.mu.Lock()
	o.editorOpen = false
	o.profileLoading = false
	o.saving = false
	o.profileErr = nil
	o.mu.Unlock()

	o.profiles.Reset()
	// Reset notifies onRecommendations, which renders.
	o.recs.Reset()
}

// Load fetches the profile and then, if one exists, its recommendations.
// A missing profile opens the editor. A failed read also opens the editor
// when no profile is known, matching the new-user path, but the error is
// kept in the view.
func (o *Orchestrator) Load(ctx context.Context) profile.FetchResult {
	return o.load(ctx, false)
}

func (o *Orchestrator) load(ctx context.Context, forceRecommendations bool) profile.FetchResult {
	credential, ok := o.session.Current()
	if !ok {
		return profile.FetchResult{Kind: profile.Failed, Err: ErrNotAuthenticated}
	}

	o.mu.Lock()
	gen := o.generation
	o.profileLoading = true
	o.mu.Unlock()
	o.render()

	result := o.profiles.Fetch(ctx, credential)
	if result.Stale {
		return result
	}

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		result.Stale = true
		return result
	}
	o.profileLoading = false
	switch result.Kind {
	case profile.Found:
		o.profileErr = nil
		o.editorOpen = false
	case profile.NotFound:
		o.profileErr = nil
		o.editorOpen = true
	case profile.Failed:
		o.profileErr = result.Err
		if _, known := o.profiles.Profile(); !known {
			o.editorOpen = true
		}
	}
	o.mu.Unlock()
	o.render()

	if result.Kind == profile.Found {
		// Issued only after the profile read has resolved.
		o.recs.Fetch(ctx, credential, forceRecommendations)
	}
	return result
}

// Submit sends the current draft. On success the editor closes and the
// profile and recommendations are loaded again from the backend. On
// failure the editor stays open with the draft untouched.
func (o *Orchestrator) Submit(ctx context.Context) error {
	credential, ok := o.session.Current()
	if !ok {
		return ErrNotAuthenticated
	}

	o.mu.Lock()
	gen := o.generation
	o.saving = true
	o.mu.Unlock()
	o.render()

	err := o.profiles.Submit(ctx, credential, o.profiles.Draft())

	o.mu.Lock()
	o.saving = false
	// A re-login with the same credential keeps the save; any other
	// session change means the result belongs to someone else.
	if gen != o.generation && o.lastCredential != credential {
		o.mu.Unlock()
		o.render()
		return ErrSessionChanged
	}
	if err != nil {
		o.mu.Unlock()
		o.render()
		return err
	}
	o.editorOpen = false
	o.mu.Unlock()

	// Suggestions for the old profile must not outlive the save.
	o.recs.Clear()
	o.Load(ctx)
	return nil
}

// Regenerate asks the backend for fresh recommendations. Profile and
// editor state are left alone.
func (o *Orchestrator) Regenerate(ctx context.Context) (recommendation.Outcome, error) {
	credential, ok := o.session.Current()
	if !ok {
		return recommendation.Outcome{}, ErrNotAuthenticated
	}
	return o.recs.Fetch(ctx, credential, true), nil
}

// OpenEditor shows the profile editor. The displayed profile and
// recommendations stay as they are until a submission succeeds.
func (o *Orchestrator) OpenEditor() {
	o.mu.Lock()
	o.editorOpen = true
	o.mu.Unlock()
	o.render()
}

// CloseEditor returns to the dashboard without saving. It is only
// possible when a saved profile exists.
func (o *Orchestrator) CloseEditor() error {
	if _, ok := o.profiles.Profile(); !ok {
		return ErrNoProfile
	}
	o.mu.Lock()
	o.editorOpen = false
	o.mu.Unlock()
	o.render()
	return nil
}

// UpdateDraft edits the in-progress draft.
func (o *Orchestrator) UpdateDraft(fn func(*types.ProfileDraft)) {
	o.profiles.UpdateDraft(fn)
	o.render()
}

// View returns the current view.
func (o *Orchestrator) View() View {
	return o.buildView()
}

func (o *Orchestrator) onRecommendations(snap recommendation.Snapshot) {
	o.mu.Lock()
	o.recSnap = snap
	o.mu.Unlock()
	o.render()
}

func (o *Orchestrator) buildView() View {
	_, authenticated := o.session.Current()
	p, hasProfile := o.profiles.Profile()
	draft := o.profiles.Draft()

	o.mu.Lock()
	defer o.mu.Unlock()

	v := View{
		Authenticated:          authenticated,
		Draft:                  draft,
		ProfileLoading:         o.profileLoading,
		Recommendations:        o.recSnap.Set,
		RecommendationsLoading: o.recSnap.Loading(),
		RecommendationsFailed:  o.recSnap.State == recommendation.Failed,
		Saving:                 o.saving,
		ProfileErr:             o.profileErr,
	}
	if hasProfile {
		v.Profile = &p
	}
	v.Mode = DeriveMode(authenticated, hasProfile, o.editorOpen, v.RecommendationsLoading)
	return v
}

func (o *Orchestrator) render() {
	if o.renderer == nil {
		return
	}
	o.renderMu.Lock()
	defer o.renderMu.Unlock()
	o.renderer(o.buildView())
}

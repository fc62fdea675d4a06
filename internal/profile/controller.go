// Package profile fetches, caches and submits the signed-in user's professional profile.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonathan/career-portal/internal/types"
)

// Backend is the subset of the API client the controller needs.
type Backend interface {
	GetMe(ctx context.Context, credential string) (*types.Profile, error)
	SubmitProfile(ctx context.Context, credential string, draft types.ProfileDraft) error
}

// Kind tags a FetchResult.
type Kind int

const (
	// Found means the backend returned a stored profile.
	Found Kind = iota
	// NotFound means the user has never submitted a profile. It is not an error.
	NotFound
	// Failed means the read itself failed (network, auth, malformed payload).
	Failed
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FetchResult is the outcome of a profile read.
type FetchResult struct {
	Kind    Kind
	Profile *types.Profile
	Err     error
	// Stale is set when a newer fetch was issued before this one resolved.
	// Stale results never touch the cache and should be ignored by callers.
	Stale bool
}

// Controller owns the cached profile and the editor draft.
// Fetches are numbered on issue; only the latest issued fetch may update the cache.
type Controller struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.Mutex
	seq     uint64
	profile *types.Profile
	draft   types.ProfileDraft
}

// NewController creates a profile controller.
func NewController(backend Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		backend: backend,
		logger:  logger.With("component", "profile"),
	}
}

// Fetch reads the profile with credential. Errors are converted to a Failed
// result; the cached profile is left as it was.
func (c *Controller) Fetch(ctx context.Context, credential string) FetchResult {
	c.mu.Lock()
	c.seq++
	issued := c.seq
	c.mu.Unlock()

	p, err := c.backend.GetMe(ctx, credential)

	var result FetchResult
	switch {
	case err != nil:
		result = FetchResult{Kind: Failed, Err: err}
	case p == nil:
		result = FetchResult{Kind: NotFound}
	default:
		result = FetchResult{Kind: Found, Profile: p}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if issued != c.seq {
		c.logger.Debug("dropping stale profile response", "issued", issued, "latest", c.seq, "kind", result.Kind)
		result.Stale = true
		return result
	}

	switch result.Kind {
	case Failed:
		c.logger.Warn("profile fetch failed", "error", err)
	case NotFound:
		c.profile = nil
	case Found:
		stored := *p
		c.profile = &stored
		// The editor starts from the canonical stored form.
		c.draft = stored.Draft()
	}
	return result
}

// Submit validates draft and writes it. The draft is kept whether or not
// the write succeeds, so a failed submission can be retried as is.
// On success callers must Fetch again to get the stored form.
func (c *Controller) Submit(ctx context.Context, credential string, draft types.ProfileDraft) error {
	c.mu.Lock()
	c.draft = draft
	c.mu.Unlock()

	if err := draft.Validate(); err != nil {
		return err
	}

	if err := c.backend.SubmitProfile(ctx, credential, draft); err != nil {
		c.logger.Warn("profile submit failed", "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Profile returns a copy of the cached profile, if one is known.
func (c *Controller) Profile() (types.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return types.Profile{}, false
	}
	return *c.profile, true
}

// Draft returns the current editor draft.
func (c *Controller) Draft() types.ProfileDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the editor draft.
func (c *Controller) SetDraft(draft types.ProfileDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
}

// UpdateDraft applies fn to the editor draft under the controller's lock.
func (c *Controller) UpdateDraft(fn func(*types.ProfileDraft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft)
}

// Reset discards the cached profile and draft. Fetches still in flight
// become stale and will not repopulate the cache.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.profile = nil
	c.draft = types.ProfileDraft{}
}

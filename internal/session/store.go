// Package session holds the bearer credential for the signed-in user.
// The credential is persisted through a Storage so it survives restarts,
// and subscribers are told whenever it appears or goes away.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyCredential is returned by Login when given an empty credential.
var ErrEmptyCredential = errors.New("credential is empty")

// Change describes a session transition delivered to subscribers.
type Change struct {
	Credential string
	Present    bool
}

// Claims is what can be read from a JWT credential without verifying it.
// Verification is the backend's job; the client only uses these for display
// and to drop credentials that have already expired.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the claims carry an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims decodes the registered claims of a JWT credential.
// ok is false for credentials that are not JWTs.
func ParseClaims(credential string) (Claims, bool) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &registered); err != nil {
		return Claims{}, false
	}

	claims := Claims{Subject: registered.Subject}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, true
}

// Store is the process-wide session. Only Login and Logout write the credential.
type Store struct {
	storage Storage
	logger  *slog.Logger
	now     func() time.Time

	mu          sync.RWMutex
	credential  string
	subscribers map[int]func(Change)
	nextSubID   int

	// writeMu serializes Login/Logout so storage and memory never disagree.
	// It is released before subscribers run so they may log out in turn.
	writeMu sync.Mutex
}

// New creates a Store on top of storage. Call Init to load a persisted credential.
func New(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		storage:     storage,
		logger:      logger,
		now:         time.Now,
		subscribers: make(map[int]func(Change)),
	}
}

// Init loads the persisted credential. A missing key means unauthenticated.
// Expired JWT credentials are removed from storage and treated as absent.
// Subscribers are not notified; callers read Current after Init.
func (s *Store) Init(ctx context.Context) error {
	credential, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	if credential != "" {
		if claims, ok := ParseClaims(credential); ok && claims.Expired(s.now()) {
			s.logger.Info("stored credential has expired, discarding", "subject", claims.Subject)
			if err := s.storage.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear expired session: %w", err)
			}
			credential = ""
		}
	}

	s.mu.Lock()
	s.credential = credential
	s.mu.Unlock()
	return nil
}

// Login persists credential and makes it current, then notifies subscribers.
// The durable write completes before anything observes the new credential.
func (s *Store) Login(ctx context.Context, credential string) error {
	if credential == "" {
		return ErrEmptyCredential
	}

	s.writeMu.Lock()
	if err := s.storage.Save(ctx, credential); err != nil {
		s.writeMu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.mu.Lock()
	s.credential = credential
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.logger.Debug("session started")
	s.notify(Change{Credential: credential, Present: true})
	return nil
}

// Logout clears the durable and in-memory credential, then notifies subscribers.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	if err := s.storage.Clear(ctx); err != nil {
		s.writeMu.Unlock()
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.mu.Lock()
	s.credential = ""
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.logger.Debug("session ended")
	s.notify(Change{})
	return nil
}

// Teardown ends the session. It is the lifecycle counterpart of Init.
func (s *Store) Teardown(ctx context.Context) error {
	return s.Logout(ctx)
}

// Current returns the credential and whether one is present.
func (s *Store) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, s.credential != ""
}

// Claims decodes the current credential's claims, if it is a JWT.
func (s *Store) Claims() (Claims, bool) {
	credential, ok := s.Current()
	if !ok {
		return Claims{}, false
	}
	return ParseClaims(credential)
}

// Subscribe registers fn to be called on every session change, in
// subscription order, on the goroutine that called Login or Logout.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	slices.Sort(ids)
	for _, id := range ids {
		s.mu.RLock()
		fn, ok := s.subscribers[id]
		s.mu.RUnlock()
		if ok {
			fn(change)
		}
	}
}

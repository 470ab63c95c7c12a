// Package session keeps the identity and credential of the running client.
//
// A Store is created once per process, restored from its Persister, and then
// shared by everything that needs to know who is logged in. Writers are login
// and logout; every other party reads Current or Subscribe.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/model"
)

// Identity is the local copy of the logged in user.
type Identity struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	AvatarID *int      `json:"avatar_id,omitempty"`
}

// Session is an identity with its bearer credential. The zero value is the
// empty session.
type Session struct {
	Identity   Identity `json:"identity"`
	Credential string   `json:"credential"`
}

// Empty reports whether nobody is logged in.
func (s Session) Empty() bool {
	return s.Credential == ""
}

// Snapshot is what subscribers receive. Loaded stays false until Restore ran.
type Snapshot struct {
	Session
	Loaded bool
}

// Persister stores the session between runs.
type Persister interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Remove(ctx context.Context) error
}

// Mirror keeps a redundant copy of credential and role where navigation
// checks can read it, e.g. cookies.
type Mirror interface {
	Set(s Session) error
	Clear() error
}

// Store is the single writer, many readers holder of the current session.
type Store struct {
	persister Persister
	mirror    Mirror
	log       zerolog.Logger

	mu      sync.Mutex
	current Snapshot
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a Store that has not been restored yet. mirror may be nil.
func New(persister Persister, mirror Mirror, opts ...Option) *Store {
	if persister == nil {
		persister = NewMemoryPersister()
	}
	s := &Store{
		persister: persister,
		mirror:    mirror,
		log:       zerolog.Nop(),
		subs:      map[int]chan Snapshot{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted session. Missing or unreadable data gives the
// empty session and no error.
func (s *Store) Restore(ctx context.Context) Session {
	sess, err := s.persister.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding unreadable session")
		sess = Session{}
	}
	if !sess.Empty() && !model.IsKnownRole(sess.Identity.Role) {
		s.log.Warn().Str("role", sess.Identity.Role).Msg("discarding session with unknown role")
		sess = Session{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{Session: sess, Loaded: true}
	s.broadcastLocked()
	return sess
}

// Establish stores a new login, mirrors it and notifies subscribers.
func (s *Store) Establish(ctx context.Context, identity Identity, credential string) error {
	identity.Role = strings.ToUpper(strings.TrimSpace(identity.Role))
	fields := map[string]string{}
	if strings.TrimSpace(credential) == "" {
		fields["credential"] = "credential is required"
	}
	if !model.IsKnownRole(identity.Role) {
		fields["role"] = "unknown role"
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid session", fields)
	}

	sess := Session{Identity: identity, Credential: credential}
	if err := s.persister.Save(ctx, sess); err != nil {
		return apperror.New(apperror.CodeInternal, "failed to persist session", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Set(sess); err != nil {
			return apperror.New(apperror.CodeInternal, "failed to mirror session", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{Session: sess, Loaded: true}
	s.broadcastLocked()
	return nil
}

// Clear wipes the session everywhere. Clearing an empty session is fine.
func (s *Store) Clear(ctx context.Context) error {
	var firstErr error
	if err := s.persister.Remove(ctx); err != nil {
		firstErr = apperror.New(apperror.CodeInternal, "failed to remove session", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Clear(); err != nil && firstErr == nil {
			firstErr = apperror.New(apperror.CodeInternal, "failed to clear mirrored session", err)
		}
	}

	// memory is cleared even when storage failed, a stale credential must not stay usable
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{Loaded: true}
	s.broadcastLocked()
	return firstErr
}

// Current returns the session at this moment.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Session
}

// Loaded reports whether Restore has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Loaded
}

// Subscribe returns a channel holding the latest snapshot. It receives the
// current snapshot right away and every later change; a slow reader skips
// intermediate values but never sees an outdated one. The channel is closed
// by the returned func or by Close.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.current

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close ends every subscription. The store must not be written afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) broadcastLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.current
	}
}

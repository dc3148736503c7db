// Package session keeps in-flight assessment runs in memory and owns
// their lifecycle: creation, lookup, idle expiry and cancellation of
// background generation work.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/aurahq/aura_service/internal/errors"
	"github.com/aurahq/aura_service/internal/flow"
)

// Kind distinguishes the two assessment flows a session can run.
type Kind string

const (
	KindTopic Kind = "topic"
	KindBook  Kind = "book"
)

// Session is one assessment run. Callers must hold the session lock
// while reading or mutating flow state, the epoch or the cancel hook.
type Session struct {
	ID        string
	Kind      Kind
	Topic     *flow.TopicState
	Book      *flow.BookState
	CreatedAt time.Time

	mu        sync.Mutex
	epoch     int
	cancel    context.CancelFunc
	updatedAt time.Time
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// StartWork cancels any generation still in flight, advances the epoch
// and returns a context plus the epoch tag for the new work. The caller
// must hold the lock.
func (s *Session) StartWork(parent context.Context) (context.Context, int) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.epoch++
	return ctx, s.epoch
}

// Current reports whether work tagged with epoch is still the latest.
// Results from stale epochs must be discarded. The caller must hold the
// lock.
func (s *Session) Current(epoch int) bool {
	return s.epoch == epoch
}

// CancelWork stops any in-flight generation and invalidates its epoch
// so a late result cannot land. The caller must hold the lock.
func (s *Session) CancelWork() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.updatedAt = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.updatedAt)
}

// Store is an in-memory session registry with idle expiry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewStore creates a store whose sessions expire after ttl without
// access. A ttl of zero disables expiry.
func NewStore(ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger.With().Str("component", "session_store").Logger(),
	}
}

// CreateTopic registers a new speech-on-topic session.
func (st *Store) CreateTopic() *Session {
	return st.create(KindTopic)
}

// CreateBook registers a new book-summary session.
func (st *Store) CreateBook() *Session {
	return st.create(KindBook)
}

func (st *Store) create(kind Kind) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.New().String(),
		Kind:      kind,
		CreatedAt: now,
		updatedAt: now,
	}
	switch kind {
	case KindTopic:
		sess.Topic = flow.NewTopicState()
	case KindBook:
		sess.Book = flow.NewBookState()
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	st.logger.Debug().Str("session_id", sess.ID).Str("kind", string(kind)).Msg("session created")
	return sess
}

// Get returns the session and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("session")
	}
	sess.touch(time.Now())
	return sess, nil
}

// GetTopic returns the session and checks it runs the topic flow.
func (st *Store) GetTopic(id string) (*Session, error) {
	sess, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Kind != KindTopic {
		return nil, apperrors.Conflict("session is not a topic assessment")
	}
	return sess, nil
}

// GetBook returns the session and checks it runs the book flow.
func (st *Store) GetBook(id string) (*Session, error) {
	sess, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Kind != KindBook {
		return nil, apperrors.Conflict("session is not a book assessment")
	}
	return sess, nil
}

// Delete removes a session and cancels any work it still has running.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		sess.Lock()
		sess.CancelWork()
		sess.Unlock()
	}
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// StartSweeper expires idle sessions in the background until ctx is
// done. It returns immediately when expiry is disabled.
func (st *Store) StartSweeper(ctx context.Context) {
	if st.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(st.ttl / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				st.sweep(now)
			}
		}
	}()
}

func (st *Store) sweep(now time.Time) {
	st.mu.Lock()
	var expired []*Session
	for id, sess := range st.sessions {
		if sess.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			expired = append(expired, sess)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		sess.Lock()
		sess.CancelWork()
		sess.Unlock()
		st.logger.Info().Str("session_id", sess.ID).Msg("session expired")
	}
}

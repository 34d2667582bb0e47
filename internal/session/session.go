// Package session holds the single authoritative in-memory session and its persisted mirror.
//
// A [Store] publishes every change to its subscribers synchronously and in
// subscription order, and replays the current value to each new subscriber.
// Publication is serialized, so all subscribers observe the same sequence of
// values from the point they subscribed.
//
// Observers run on the publishing goroutine while publication is locked. They
// may call [Store.Current] and [Subscription.Unsubscribe], but must not call
// [Store.Subscribe], [Store.Replace], [Store.Update] or [Store.Clear].
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/storage"
)

// Observer receives every published session. A nil value means "no session".
type Observer func(*models.Session)

// Store owns the current [models.Session].
type Store struct {
	storage storage.Storage
	logger  *log.Logger

	pub sync.Mutex // serializes publication and persistence

	mu        sync.RWMutex // guards current and observers
	current   *models.Session
	observers []*Subscription
}

// Subscription is the handle returned by [Store.Subscribe].
type Subscription struct {
	store  *Store
	fn     Observer
	active atomic.Bool
}

// NewStore creates a store over s. The store holds no session until [Store.Initialize] or [Store.Replace].
func NewStore(s storage.Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{storage: s, logger: logger}
}

// Initialize loads the persisted session and publishes it.
//
// Missing, unreadable or malformed data publishes "no session". It never fails.
func (s *Store) Initialize() {
	s.pub.Lock()
	defer s.pub.Unlock()

	s.publish(s.load())
}

func (s *Store) load() *models.Session {
	userJSON, ok, err := s.storage.Load(storage.UserKey)
	if err != nil {
		s.logger.Warn("failed to read persisted user", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	token, ok, err := s.storage.Load(storage.TokenKey)
	if err != nil {
		s.logger.Warn("failed to read persisted token", "error", err)
		return nil
	}
	if !ok || token == "" {
		s.logger.Debug("persisted user has no token, starting without a session")
		return nil
	}

	session, err := models.ParseSession(userJSON, token)
	if err != nil {
		s.logger.Warn("ignoring malformed persisted user", "error", err)
		return nil
	}

	s.logger.Debug("restored session", "username", session.Username(), "favorites", len(session.Favorites()))
	return session
}

// Current returns the latest published session, or nil. It never blocks on remote calls.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn and immediately delivers the current value to it.
func (s *Store) Subscribe(fn Observer) *Subscription {
	sub := &Subscription{store: s, fn: fn}
	sub.active.Store(true)

	s.pub.Lock()
	defer s.pub.Unlock()

	s.mu.Lock()
	s.observers = append(s.observers, sub)
	current := s.current
	s.mu.Unlock()

	fn(current)
	return sub
}

// Unsubscribe stops delivery to the observer. Calling it more than once has no effect.
func (sub *Subscription) Unsubscribe() {
	if !sub.active.CompareAndSwap(true, false) {
		return
	}

	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.observers {
		if o == sub {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			break
		}
	}
}

// Active reports whether the subscription still receives values.
func (sub *Subscription) Active() bool {
	return sub.active.Load()
}

// Subscribers returns the number of active subscriptions.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// Replace publishes next to every subscriber and then persists it.
//
// All subscribers have received next when Replace returns. A nil next behaves like [Store.Clear].
// A persistence failure is returned wrapped in [shared.ErrStorage]; the published value stays current.
func (s *Store) Replace(next *models.Session) error {
	s.pub.Lock()
	defer s.pub.Unlock()

	s.publish(next)
	return s.persist(next)
}

// Update atomically derives a new session from the current one.
//
// fn receives the current session (possibly nil) and returns the replacement and whether to apply it.
// When fn declines, nothing is published and the current session is returned.
func (s *Store) Update(fn func(*models.Session) (*models.Session, bool)) (*models.Session, error) {
	s.pub.Lock()
	defer s.pub.Unlock()

	current := s.Current()
	next, ok := fn(current)
	if !ok {
		return current, nil
	}

	s.publish(next)
	return next, s.persist(next)
}

// Clear publishes "no session" and removes both persisted slots.
func (s *Store) Clear() error {
	return s.Replace(nil)
}

func (s *Store) publish(next *models.Session) {
	s.mu.Lock()
	s.current = next
	observers := make([]*Subscription, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, sub := range observers {
		if sub.active.Load() {
			sub.fn(next)
		}
	}
}

func (s *Store) persist(next *models.Session) error {
	if next == nil {
		err := errors.Join(s.storage.Remove(storage.UserKey), s.storage.Remove(storage.TokenKey))
		if err != nil {
			s.logger.Error("failed to remove persisted session", "error", err)
			return fmt.Errorf("%w: %w", shared.ErrStorage, err)
		}
		return nil
	}

	userJSON, err := next.MarshalUser()
	if err != nil {
		return fmt.Errorf("%w: encode user: %w", shared.ErrStorage, err)
	}

	if err := s.storage.Save(storage.UserKey, userJSON); err != nil {
		s.logger.Error("failed to persist user", "username", next.Username(), "error", err)
		return fmt.Errorf("%w: %w", shared.ErrStorage, err)
	}

	if next.Token() == "" {
		err = s.storage.Remove(storage.TokenKey)
	} else {
		err = s.storage.Save(storage.TokenKey, next.Token())
	}
	if err != nil {
		s.logger.Error("failed to persist token", "username", next.Username(), "error", err)
		return fmt.Errorf("%w: %w", shared.ErrStorage, err)
	}
	return nil
}

// Package store keeps the latest goal and habit snapshot per user.
//
// All views read from here and derive their aggregates on demand. The
// backend stays authoritative; a snapshot only changes on a successful
// refresh.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"life-goals/internal/model"
)

// ErrStale is returned when a refresh finished after its user was forgotten
// or after a refresh that started later had already been stored.
var ErrStale = errors.New("refresh result discarded")

// Snapshot is one consistent read of a user's goals and habits.
type Snapshot struct {
	Goals     []model.Goal
	Habits    []model.Habit
	FetchedAt time.Time
}

// Goal looks a goal up by id.
func (s Snapshot) Goal(id uint) (model.Goal, bool) {
	for _, g := range s.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return model.Goal{}, false
}

// Habit looks a habit up by id.
func (s Snapshot) Habit(id uint) (model.Habit, bool) {
	for _, h := range s.Habits {
		if h.ID == id {
			return h, true
		}
	}
	return model.Habit{}, false
}

// Fetcher loads the backend collections for one user.
type Fetcher interface {
	ListGoals(ctx context.Context) ([]model.Goal, error)
	ListHabits(ctx context.Context) ([]model.Habit, error)
}

// Listener is notified after a user's snapshot changes.
type Listener func(userID uint, snap Snapshot)

type Store struct {
	mu        sync.RWMutex
	snapshots map[uint]Snapshot
	epochs    map[uint]uint64
	started   map[uint]uint64
	committed map[uint]uint64
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

func New() *Store {
	return &Store{
		snapshots: make(map[uint]Snapshot),
		epochs:    make(map[uint]uint64),
		started:   make(map[uint]uint64),
		committed: make(map[uint]uint64),
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

// Get returns the cached snapshot for a user.
func (s *Store) Get(userID uint) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[userID]
	return snap, ok
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Refresh fetches a new snapshot. On failure the previous snapshot stays
// in place and the error is returned. Results are stored in the order
// the refreshes started; an older result arriving last is discarded.
func (s *Store) Refresh(ctx context.Context, userID uint, f Fetcher) (Snapshot, error) {
	s.mu.Lock()
	epoch := s.epochs[userID]
	s.started[userID]++
	seq := s.started[userID]
	s.mu.Unlock()

	goals, err := f.ListGoals(ctx)
	if err != nil {
		log.Printf("[warn] refresh goals for user %d: %v", userID, err)
		return Snapshot{}, fmt.Errorf("list goals: %w", err)
	}
	habits, err := f.ListHabits(ctx)
	if err != nil {
		log.Printf("[warn] refresh habits for user %d: %v", userID, err)
		return Snapshot{}, fmt.Errorf("list habits: %w", err)
	}

	snap := Snapshot{Goals: goals, Habits: habits, FetchedAt: s.now()}

	s.mu.Lock()
	if s.epochs[userID] != epoch || seq <= s.committed[userID] {
		s.mu.Unlock()
		return Snapshot{}, ErrStale
	}
	s.committed[userID] = seq
	s.snapshots[userID] = snap
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(userID, snap)
	}
	return snap, nil
}

// Forget drops a user's snapshot. Refreshes already in flight for the
// user are discarded when they complete.
func (s *Store) Forget(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
	s.epochs[userID]++
}

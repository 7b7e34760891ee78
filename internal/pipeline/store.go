package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/makeaparody/api/internal/model"
)

// Store keeps the controllers of all live sessions in memory
type Store struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewStore creates an empty store whose controllers share deps
func NewStore(deps Deps) *Store {
	return &Store{
		deps:     deps,
		sessions: make(map[string]*Controller),
	}
}

// Create registers a new idle session
func (s *Store) Create() *Controller {
	ctrl := NewController(uuid.New().String(), s.deps)

	s.mu.Lock()
	s.sessions[ctrl.ID()] = ctrl
	s.mu.Unlock()

	return ctrl
}

// Get returns the session's controller
func (s *Store) Get(id string) (*Controller, error) {
	s.mu.RLock()
	ctrl, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	return ctrl, nil
}

// Delete stops the session's background work and forgets it
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	ctrl, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	ctrl.Close()
	return nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than maxIdle. Sessions with a stage
// in flight are kept.
func (s *Store) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxIdle)

	s.mu.Lock()
	var stale []*Controller
	for id, ctrl := range s.sessions {
		snap := ctrl.Snapshot()
		if snap.State.busy() || snap.State == StatePollingMusic {
			continue
		}
		if snap.UpdatedAt.Before(cutoff) {
			stale = append(stale, ctrl)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ctrl := range stale {
		ctrl.Close()
	}
	return len(stale)
}

// RunJanitor sweeps idle sessions every interval until ctx is done
func (s *Store) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(maxIdle); n > 0 {
				log.Printf("Removed %d idle sessions", n)
			}
		}
	}
}

// CloseAll abandons every session's background work
func (s *Store) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ctrl := range s.sessions {
		ctrl.Close()
		delete(s.sessions, id)
	}
}

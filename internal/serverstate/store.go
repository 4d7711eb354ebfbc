// Package serverstate holds the client-side registry of model-serving
// processes. The backend is the source of truth; the registry folds its
// snapshots and lifecycle deltas into a point-in-time view guarded by a
// monotonic ordering rule.
package serverstate

import (
	"sync"

	"github.com/rs/zerolog"

	"modelsync/pkg/types"
)

// Store is a keyed registry of ServerState with a subscriber mechanism.
// All mutation goes through Ingest; readers get copies.
type Store struct {
	mu        sync.RWMutex
	servers   map[string]types.ServerState
	listeners map[int]func()
	nextID    int
	log       zerolog.Logger
}

// New returns an empty store. Pass zerolog.Nop() when logging is unwanted.
func New(log zerolog.Logger) *Store {
	return &Store{
		servers:   make(map[string]types.ServerState),
		listeners: make(map[int]func()),
		log:       log,
	}
}

// Get returns the state for a model id, if known.
func (s *Store) Get(modelID string) (types.ServerState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.servers[modelID]
	return st, ok
}

// GetAll returns a snapshot copy of the registry. Entries for stopped or
// crashed servers persist until overwritten; callers filter as needed.
func (s *Store) GetAll() map[string]types.ServerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]types.ServerState, len(s.servers))
	for k, v := range s.servers {
		out[k] = v
	}
	return out
}

// IsRunning reports whether the model's server is in the running state
// exactly. Stopping and crashed servers are not running.
func (s *Store) IsRunning(modelID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.servers[modelID]
	return ok && st.Status == types.ServerRunning
}

// Subscribe registers a listener invoked synchronously after every
// accepted event, once per event regardless of how many entries it
// touched. The returned func unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Ingest folds one canonical event into the registry. Writes that fail
// the ordering guard change nothing; any accepted write fans out one
// notification.
func (s *Store) Ingest(ev *types.ServerEvent) {
	if ev == nil {
		return
	}
	s.mu.Lock()
	accepted := false
	switch ev.Kind {
	case types.EventSnapshot:
		// Snapshots list only running servers; absent entries are left
		// alone and age out via their own lifecycle events.
		for _, st := range ev.Servers {
			if s.applyLocked(st) {
				accepted = true
			}
		}
	case types.EventRunning:
		st := s.transitionLocked(ev, types.ServerRunning)
		// Optimistic default until the next explicit health event.
		st.Health = &types.HealthStatus{Status: types.HealthHealthy}
		accepted = s.applyLocked(st)
	case types.EventStopping:
		accepted = s.applyLocked(s.transitionLocked(ev, types.ServerStopping))
	case types.EventStopped:
		accepted = s.applyLocked(s.transitionLocked(ev, types.ServerStopped))
	case types.EventCrashed:
		accepted = s.applyLocked(s.transitionLocked(ev, types.ServerCrashed))
	case types.EventHealthChanged:
		accepted = s.healthLocked(ev)
	}
	var listeners []func()
	if accepted {
		listeners = make([]func(), 0, len(s.listeners))
		for _, fn := range s.listeners {
			listeners = append(listeners, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// transitionLocked projects a lifecycle event onto the existing entry (if
// any), keeping fields the event does not carry. Health is cleared; the
// running case re-sets it above.
func (s *Store) transitionLocked(ev *types.ServerEvent, status types.ServerStatus) types.ServerState {
	st, ok := s.servers[ev.ModelID]
	if !ok {
		st = types.ServerState{ModelID: ev.ModelID}
	}
	st.Status = status
	st.UpdatedAt = ev.UpdatedAt
	st.Health = nil
	if ev.Port != 0 {
		st.Port = ev.Port
	}
	if ev.ModelName != "" {
		st.ModelName = ev.ModelName
	}
	return st
}

// applyLocked enforces the ordering guard: accept iff the incoming
// timestamp is >= the stored one (ties accepted, last-applied wins) or no
// entry exists.
func (s *Store) applyLocked(st types.ServerState) bool {
	if cur, ok := s.servers[st.ModelID]; ok && st.UpdatedAt < cur.UpdatedAt {
		s.log.Debug().
			Str("model_id", st.ModelID).
			Int64("incoming", st.UpdatedAt).
			Int64("stored", cur.UpdatedAt).
			Msg("stale server event rejected")
		return false
	}
	s.servers[st.ModelID] = st
	return true
}

// healthLocked applies a health sub-update. Health never creates an entry
// ex nihilo.
func (s *Store) healthLocked(ev *types.ServerEvent) bool {
	cur, ok := s.servers[ev.ModelID]
	if !ok {
		s.log.Debug().Str("model_id", ev.ModelID).Msg("health event for unknown server dropped")
		return false
	}
	if ev.UpdatedAt < cur.UpdatedAt {
		return false
	}
	cur.Health = ev.Health
	cur.UpdatedAt = ev.UpdatedAt
	s.servers[ev.ModelID] = cur
	return true
}

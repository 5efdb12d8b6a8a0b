package state

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a state change is pushed to
// the remote store. Rapid changes coalesce into one write.
const DefaultDebounce = 500 * time.Millisecond

// RemoteStore is the /state slice of the backend API.
type RemoteStore interface {
	FetchState(ctx context.Context) ([]byte, error)
	SaveState(ctx context.Context, state any) error
	DeleteState(ctx context.Context) error
}

// Store owns the live DashboardState. Every mutation is written to the
// local sqlite store synchronously and to the remote store after a
// debounce window; only the newest full snapshot is ever sent. Persistence
// failures are logged and swallowed, the dashboard keeps working on
// local-only state.
type Store struct {
	remote   RemoteStore
	local    *LocalStore
	debounce time.Duration
	logf     func(format string, args ...any)

	mu    sync.Mutex
	state DashboardState
	timer *time.Timer
}

func NewStore(remote RemoteStore, local *LocalStore, debounce time.Duration) *Store {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Store{
		remote:   remote,
		local:    local,
		debounce: debounce,
		logf:     log.Printf,
		state:    Default(),
	}
}

// SetLogf replaces the store's logger (package log by default).
func (s *Store) SetLogf(logf func(format string, args ...any)) {
	s.logf = logf
}

// Load initializes the state: remote copy first, then the local fallback,
// then hardcoded defaults. An invalid payload at either level is treated
// the same as an absent one.
func (s *Store) Load(ctx context.Context) DashboardState {
	if data, err := s.remote.FetchState(ctx); err == nil && Valid(data) {
		if st, err := Decode(data); err == nil {
			s.set(st)
			return st
		}
	} else if err != nil {
		s.logf("state: remote load failed, trying local: %v", err)
	}

	if s.local != nil {
		if data, err := s.local.Load(); err == nil && Valid(data) {
			if st, err := Decode(data); err == nil {
				s.set(st)
				return st
			}
		} else if err != nil && err != ErrNoState {
			s.logf("state: local load failed: %v", err)
		}
	}

	st := Default()
	s.set(st)
	return st
}

func (s *Store) set(st DashboardState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns a snapshot of the current state.
func (s *Store) State() DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UpdateState merges a patch at the top level: included sections replace
// the current ones wholesale. Partial nested updates go through the
// per-section helpers below.
func (s *Store) UpdateState(p Patch) DashboardState {
	return s.mutate(func(st *DashboardState) { st.apply(p) })
}

func (s *Store) UpdateFilters(p FiltersPatch) DashboardState {
	return s.mutate(func(st *DashboardState) { st.Filters.apply(p) })
}

func (s *Store) UpdatePanels(p PanelsPatch) DashboardState {
	return s.mutate(func(st *DashboardState) { st.PanelStates.apply(p) })
}

func (s *Store) UpdateForms(p FormsPatch) DashboardState {
	return s.mutate(func(st *DashboardState) { st.FormStates.apply(p) })
}

func (s *Store) UpdateLists(p ListsPatch) DashboardState {
	return s.mutate(func(st *DashboardState) { st.ListsState.apply(p) })
}

func (s *Store) mutate(fn func(*DashboardState)) DashboardState {
	s.mu.Lock()
	fn(&s.state)
	st := s.state
	s.saveLocalLocked(st)
	s.scheduleRemoteLocked()
	s.mu.Unlock()
	return st
}

func (s *Store) saveLocalLocked(st DashboardState) {
	if s.local == nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		s.logf("state: encode failed: %v", err)
		return
	}
	if err := s.local.Save(data); err != nil {
		s.logf("state: local save failed: %v", err)
	}
}

// scheduleRemoteLocked restarts the single debounce timer. Whatever the
// state looks like when the timer finally fires is what gets sent.
func (s *Store) scheduleRemoteLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flushRemote)
}

func (s *Store) flushRemote() {
	st := s.State()
	if err := s.remote.SaveState(context.Background(), st); err != nil {
		s.logf("state: remote save failed: %v", err)
	}
}

// Reset clears both stores and returns to defaults immediately, bypassing
// the debounce.
func (s *Store) Reset(ctx context.Context) DashboardState {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = Default()
	st := s.state
	s.mu.Unlock()

	if s.local != nil {
		if err := s.local.Clear(); err != nil {
			s.logf("state: local clear failed: %v", err)
		}
	}
	if err := s.remote.DeleteState(ctx); err != nil {
		s.logf("state: remote clear failed: %v", err)
	}
	return st
}

// Flush sends any pending snapshot now. Used on shutdown so the last
// change inside the debounce window is not lost remotely.
func (s *Store) Flush() {
	s.mu.Lock()
	pending := s.timer != nil && s.timer.Stop()
	s.mu.Unlock()
	if pending {
		s.flushRemote()
	}
}

package chat

import (
	"errors"
	"sync"

	"github.com/jackdwave/ai-chatbot/core"
)

// ErrStateDone is returned by Update or Done after the turn's state has
// already been finalized.
var ErrStateDone = errors.New("chat: state already finalized for this turn")

// StateStore holds the authoritative conversation log for every chat in the
// process, keyed by chat id. Turns for different chats are fully isolated;
// turns for the same chat are serialized by a per-chat lock — the store
// enforces single-writer-at-a-time per conversation instead of assuming the
// caller does.
type StateStore struct {
	mu    sync.Mutex
	chats map[string]*chatEntry
}

type chatEntry struct {
	turnMu sync.Mutex // serializes turns for this chat

	mu    sync.Mutex // guards state
	state core.AIState
}

func (e *chatEntry) snapshot() core.AIState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

func (e *chatEntry) replace(next core.AIState) {
	e.mu.Lock()
	e.state = next.Clone()
	e.mu.Unlock()
}

func NewStateStore() *StateStore {
	return &StateStore{chats: make(map[string]*chatEntry)}
}

// Begin acquires the turn lock for chatID and returns the mutable state
// handle for this turn. Blocks while another turn for the same chat is in
// flight. Every Begin must be balanced by exactly one Done on the handle.
func (s *StateStore) Begin(chatID string) *State {
	e := s.entry(chatID)
	e.turnMu.Lock()
	return &State{
		entry:  e,
		doneCh: make(chan struct{}),
	}
}

// Snapshot returns the last committed state for chatID without entering a
// turn. Used by read-only surfaces (UI state projection).
func (s *StateStore) Snapshot(chatID string) core.AIState {
	return s.entry(chatID).snapshot()
}

func (s *StateStore) entry(chatID string) *chatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.chats[chatID]
	if !ok {
		e = &chatEntry{state: core.AIState{ChatID: chatID}}
		s.chats[chatID] = e
	}
	return e
}

// State is the mutable handle of one logical turn. Get returns an immutable
// snapshot; Update replaces the in-progress snapshot (incremental appends
// within the turn); Done commits the final snapshot, signals waiters and
// releases the turn lock. At most one Done per turn is legal.
type State struct {
	entry  *chatEntry
	mu     sync.Mutex
	done   bool
	doneCh chan struct{}
}

// Get returns a deep-copied snapshot of the current state. Calling Get twice
// without an intervening Update or Done returns equal snapshots.
func (st *State) Get() core.AIState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.entry.snapshot()
}

// Update replaces the in-progress snapshot. Last writer wins: this is a full
// replacement, not a merge.
func (st *State) Update(next core.AIState) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.done {
		return ErrStateDone
	}
	st.entry.replace(next)
	return nil
}

// Done commits the final snapshot for the turn, closes the wait channel and
// releases the per-chat turn lock.
func (st *State) Done(next core.AIState) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.done {
		return ErrStateDone
	}
	st.done = true
	st.entry.replace(next)
	close(st.doneCh)
	st.entry.turnMu.Unlock()
	return nil
}

// Seal finalizes the turn without changing the state. Used by the dispatcher
// when a handler returned without committing, so the turn lock is always
// released and the log stays structurally valid.
func (st *State) Seal() {
	st.mu.Lock()
	if st.done {
		st.mu.Unlock()
		return
	}
	st.done = true
	close(st.doneCh)
	st.entry.turnMu.Unlock()
	st.mu.Unlock()
}

// Finalized reports whether Done or Seal has been called.
func (st *State) Finalized() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.done
}

// Wait returns a channel closed once the turn's state is finalized.
func (st *State) Wait() <-chan struct{} {
	return st.doneCh
}

// Package state models per-chat conversation state and the filters routes
// use to decide in which states they apply.
package state

import (
	"fmt"
	"sync"
)

// State is the conversation state of a chat. The set is closed: only the
// constants below are valid.
type State uint8

const (
	// Idle is the state of a chat with no conversation in progress.
	Idle State = iota
)

var names = [...]string{
	Idle: "idle",
}

func (s State) String() string {
	if int(s) < len(names) {
		return names[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool { return int(s) < len(names) }

// Filter selects the states a route is active in. The zero Filter matches
// nothing.
type Filter struct {
	any    bool
	states []State
}

// Any matches every state.
var Any = Filter{any: true}

// In matches exactly the given states.
func In(states ...State) Filter {
	return Filter{states: append([]State(nil), states...)}
}

// Match reports whether s is selected by f.
func (f Filter) Match(s State) bool {
	if f.any {
		return true
	}
	for _, st := range f.states {
		if st == s {
			return true
		}
	}
	return false
}

// IsAny reports whether f is the wildcard filter.
func (f Filter) IsAny() bool { return f.any }

func (f Filter) String() string {
	if f.any {
		return "*"
	}
	return fmt.Sprint(f.states)
}

// Store keeps the current state of each chat in memory. Chats never seen
// are Idle.
type Store struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{states: make(map[int64]State)}
}

// Get returns the state of chatID.
func (s *Store) Get(chatID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[chatID]
}

// Set moves chatID to st. Setting Idle forgets the chat.
func (s *Store) Set(chatID int64, st State) error {
	if !st.Valid() {
		return fmt.Errorf("state: unknown state %d", uint8(st))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st == Idle {
		delete(s.states, chatID)
		return nil
	}
	s.states[chatID] = st
	return nil
}

// Reset returns chatID to Idle.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
}

// Len returns the number of chats outside Idle.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

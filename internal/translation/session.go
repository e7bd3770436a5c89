package translation

import (
	"errors"
	"fmt"
	"sync"
)

// State is the phase of an in-progress translation interaction.
type State string

const (
	StateIdle          State = "idle"
	StateSelecting     State = "selecting"
	StateFetching      State = "fetching"
	StateShowingResult State = "showing_result"
	StateSaving        State = "saving"
	StateError         State = "error"
)

// Event drives transitions between session states.
type Event string

const (
	EventSelect       Event = "select"        // user starts selecting text
	EventFetch        Event = "fetch"         // selection confirmed, lookup starts
	EventFetchSuccess Event = "fetch_success" // translation arrived
	EventFetchFailure Event = "fetch_failure" // lookup failed
	EventSave         Event = "save"          // user saves the word
	EventSaveSuccess  Event = "save_success"  // save acknowledged
	EventSaveFailure  Event = "save_failure"  // save failed
	EventDismiss      Event = "dismiss"       // user cancels / closes popup
)

// ErrIllegalTransition is returned when an event is not legal in the
// session's current state.
var ErrIllegalTransition = errors.New("illegal session transition")

// transitions enumerates every legal transition. Events absent from a
// state's row are illegal in that state; there are no implicit transitions.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventSelect: StateSelecting,
	},
	StateSelecting: {
		EventFetch:   StateFetching,
		EventDismiss: StateIdle,
	},
	StateFetching: {
		EventFetchSuccess: StateShowingResult,
		EventFetchFailure: StateError,
	},
	StateShowingResult: {
		EventSave:    StateSaving,
		EventDismiss: StateIdle,
	},
	StateSaving: {
		EventSaveSuccess: StateIdle,
		EventSaveFailure: StateError,
	},
	StateError: {
		EventDismiss: StateIdle,
	},
}

// Session tracks one translation interaction from text selection through
// lookup and optional save. One logical session exists per reading view;
// construct it explicitly and discard it with the view.
type Session struct {
	mu     sync.Mutex
	state  State
	result *Result
}

// NewSession returns a session in the idle state.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the translation shown by the session, if any.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Apply advances the session with the given event, returning the new state.
// Illegal events leave the state untouched and return ErrIllegalTransition.
func (s *Session) Apply(event Event) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := transitions[s.state][event]
	if !ok {
		return s.state, fmt.Errorf("%w: %s in state %s", ErrIllegalTransition, event, s.state)
	}

	s.state = next
	if next == StateIdle {
		s.result = nil
	}
	return next, nil
}

// SetResult records the fetched translation. Only meaningful alongside
// EventFetchSuccess.
func (s *Session) SetResult(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

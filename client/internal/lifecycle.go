package internal

import (
	"fmt"
	"sync"
)

// SessionState is the lifecycle state of a client. States only move forward.
type SessionState int32

const (
	NotStarted SessionState = iota
	Started
	Stopping
	Stopped
)

func (s SessionState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Started:
		return "Started"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	}
	return fmt.Sprintf("SessionState(%d)", int32(s))
}

// lifecycle guards the session state. Operations that must only happen while the
// session is Started run under the read lock so a concurrent Stop cannot overtake them.
type lifecycle struct {
	mux   sync.RWMutex
	state SessionState
}

func (l *lifecycle) State() SessionState {
	l.mux.RLock()
	defer l.mux.RUnlock()
	return l.state
}

func (l *lifecycle) transition(to SessionState) error {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.transitionLocked(to)
}

func (l *lifecycle) transitionLocked(to SessionState) error {
	switch to {
	case Started:
		if l.state != NotStarted {
			return ErrAlreadyStarted
		}
	case Stopping:
		switch l.state {
		case NotStarted:
			return ErrNotRunning
		case Stopping, Stopped:
			return ErrAlreadyStopped
		}
	case Stopped:
		if l.state != Stopping {
			return fmt.Errorf("%w: %s -> %s", errInvalidTransition, l.state, to)
		}
	default:
		return fmt.Errorf("%w: %s -> %s", errInvalidTransition, l.state, to)
	}
	l.state = to
	return nil
}

// start runs fn and moves to Started if fn succeeds. A failed fn leaves the session
// NotStarted so Start can be retried with corrected settings.
func (l *lifecycle) start(fn func() error) error {
	l.mux.Lock()
	defer l.mux.Unlock()
	if l.state != NotStarted {
		return ErrAlreadyStarted
	}
	if err := fn(); err != nil {
		return err
	}
	return l.transitionLocked(Started)
}

// whileRunning runs fn if the session is Started and returns ErrNotRunning otherwise.
func (l *lifecycle) whileRunning(fn func() error) error {
	l.mux.RLock()
	defer l.mux.RUnlock()
	if l.state != Started {
		return ErrNotRunning
	}
	return fn()
}

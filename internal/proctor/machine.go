// Package proctor keeps a candidate in full-screen for the length of an
// interview.
//
// Machine is the pure transition table: it holds no timers and does no I/O.
// Monitor drives a Machine from screen and keyboard events plus a one-second
// countdown ticker, and carries out the effects each transition asks for.
package proctor

import (
	"fmt"
	"time"

	"github.com/mentorhub/interviews/internal/models"
)

// CountdownTicks is the number of one-second ticks a candidate has to return
// to full-screen before the interview is terminated.
const CountdownTicks = 3

// ExitKeyWindow is the window in which a second exit key press terminates.
const ExitKeyWindow = time.Second

// State is the proctoring state.
type State int

const (
	// Requesting means full-screen was asked for but is not engaged. Exits
	// from full-screen are ignored here; the exit key still works.
	Requesting State = iota
	// Locked means full-screen is engaged with no violation.
	Locked
	// Warning means the candidate left full-screen and the countdown runs.
	Warning
	// Terminating is final. It is entered at most once.
	Terminating
)

func (s State) String() string {
	switch s {
	case Requesting:
		return "requesting"
	case Locked:
		return "locked"
	case Warning:
		return "warning"
	case Terminating:
		return "terminating"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventKind identifies an input to the machine.
type EventKind int

const (
	FullscreenGranted EventKind = iota
	FullscreenDenied
	FullscreenExited
	FullscreenEntered
	Tick
	ExitKey
)

func (k EventKind) String() string {
	switch k {
	case FullscreenGranted:
		return "fullscreen_granted"
	case FullscreenDenied:
		return "fullscreen_denied"
	case FullscreenExited:
		return "fullscreen_exited"
	case FullscreenEntered:
		return "fullscreen_entered"
	case Tick:
		return "tick"
	case ExitKey:
		return "exit_key"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one input. At is only read for ExitKey.
type Event struct {
	Kind EventKind
	At   time.Time
}

// Effects are the side effects a transition asks the driver to perform.
type Effects struct {
	// StartCountdown starts the repeating one-second ticker.
	StartCountdown bool
	// StopCountdown stops the ticker.
	StopCountdown bool
	// ShowWarning shows the warning with Remaining seconds left.
	ShowWarning bool
	Remaining   int
	// HideWarning removes any visible warning.
	HideWarning bool
	// Terminate ends the interview with Reason.
	Terminate bool
	Reason    string
}

// Machine is the proctoring state machine. It is not safe for concurrent use;
// a single goroutine owns it.
type Machine struct {
	state     State
	remaining int
	lastExit  time.Time
	exitArmed bool
}

// NewMachine returns a machine in Requesting.
func NewMachine() *Machine {
	return &Machine{state: Requesting}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Remaining returns the countdown value while in Warning.
func (m *Machine) Remaining() int { return m.remaining }

// Apply feeds one event to the machine and returns the resulting effects.
// Every event is ignored once the machine is Terminating.
func (m *Machine) Apply(ev Event) Effects {
	if m.state == Terminating {
		return Effects{}
	}

	if ev.Kind == ExitKey {
		if m.exitArmed && ev.At.Sub(m.lastExit) <= ExitKeyWindow {
			return m.terminate(models.ReasonUserExit)
		}
		m.exitArmed = true
		m.lastExit = ev.At
		return Effects{}
	}

	switch m.state {
	case Requesting:
		switch ev.Kind {
		case FullscreenGranted, FullscreenEntered:
			m.state = Locked
		}
		// Denied leaves proctoring disengaged
	case Locked:
		if ev.Kind == FullscreenExited {
			m.state = Warning
			m.remaining = CountdownTicks
			return Effects{StartCountdown: true, ShowWarning: true, Remaining: m.remaining}
		}
	case Warning:
		switch ev.Kind {
		case FullscreenEntered, FullscreenGranted:
			m.state = Locked
			m.remaining = 0
			return Effects{StopCountdown: true, HideWarning: true}
		case Tick:
			m.remaining--
			if m.remaining <= 0 {
				return m.terminate(models.ReasonFullscreenViolation)
			}
			return Effects{ShowWarning: true, Remaining: m.remaining}
		}
	}

	return Effects{}
}

func (m *Machine) terminate(reason string) Effects {
	wasCounting := m.state == Warning
	m.state = Terminating
	m.remaining = 0
	return Effects{
		StopCountdown: wasCounting,
		HideWarning:   true,
		Terminate:     true,
		Reason:        reason,
	}
}

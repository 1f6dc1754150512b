// Package focus implements the focus/break countdown used by focus mode.
//
// The countdown is a pure reducer: Reduce(state, event) returns the next
// state and at most one effect. Timer drives the reducer from a one-second
// ticker and applies the effect to the daily stats.
package focus

import "fmt"

// Mode is the active countdown.
type Mode string

const (
	ModeFocus Mode = "focus"
	ModeBreak Mode = "break"
)

const (
	DefaultFocusMinutes = 25
	DefaultBreakMinutes = 5
)

// State is a snapshot of the countdown.
type State struct {
	Mode         Mode
	Remaining    int
	Running      bool
	FocusMinutes int
	BreakMinutes int
}

// NewState returns a paused focus countdown with the given durations.
func NewState(focusMinutes, breakMinutes int) State {
	focusMinutes = clampMinutes(focusMinutes)
	breakMinutes = clampMinutes(breakMinutes)
	return State{
		Mode:         ModeFocus,
		Remaining:    focusMinutes * 60,
		FocusMinutes: focusMinutes,
		BreakMinutes: breakMinutes,
	}
}

// Duration returns the full length in seconds of the active mode.
func (s State) Duration() int {
	if s.Mode == ModeBreak {
		return s.BreakMinutes * 60
	}
	return s.FocusMinutes * 60
}

// Progress returns the elapsed share of the active countdown in percent.
func (s State) Progress() float64 {
	total := s.Duration()
	if total <= 0 {
		return 0
	}
	return float64(total-s.Remaining) / float64(total) * 100
}

// EventKind names an input to the reducer.
type EventKind int

const (
	EventTick EventKind = iota
	EventStart
	EventPause
	EventReset
	EventSetFocusMinutes
	EventSetBreakMinutes
)

// Event is a reducer input. Minutes is used by the duration edits.
type Event struct {
	Kind    EventKind
	Minutes int
}

func Tick() Event { return Event{Kind: EventTick} }
func Start() Event { return Event{Kind: EventStart} }
func Pause() Event { return Event{Kind: EventPause} }
func Reset() Event { return Event{Kind: EventReset} }
func SetFocusMinutes(m int) Event { return Event{Kind: EventSetFocusMinutes, Minutes: m} }
func SetBreakMinutes(m int) Event { return Event{Kind: EventSetBreakMinutes, Minutes: m} }

// Effect is a side effect requested by a transition.
type Effect struct {
	// SessionCompleted is set when a focus countdown reached zero.
	SessionCompleted bool
	Minutes          int
}

// Reduce applies one event.
func Reduce(s State, e Event) (State, Effect) {
	switch e.Kind {
	case EventTick:
		if !s.Running {
			return s, Effect{}
		}
		if s.Remaining > 1 {
			s.Remaining--
			return s, Effect{}
		}
		if s.Mode == ModeFocus {
			minutes := s.FocusMinutes
			s.Mode = ModeBreak
			s.Remaining = s.BreakMinutes * 60
			return s, Effect{SessionCompleted: true, Minutes: minutes}
		}
		s.Mode = ModeFocus
		s.Remaining = s.FocusMinutes * 60
		return s, Effect{}
	case EventStart:
		s.Running = true
		if s.Remaining <= 0 {
			s.Remaining = s.Duration()
		}
	case EventPause:
		s.Running = false
	case EventReset:
		s.Running = false
		s.Remaining = s.Duration()
	case EventSetFocusMinutes:
		s.FocusMinutes = clampMinutes(e.Minutes)
		if s.Mode == ModeFocus && !s.Running {
			s.Remaining = s.FocusMinutes * 60
		}
	case EventSetBreakMinutes:
		s.BreakMinutes = clampMinutes(e.Minutes)
		if s.Mode == ModeBreak && !s.Running {
			s.Remaining = s.BreakMinutes * 60
		}
	}
	return s, Effect{}
}

// Format renders seconds as MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func clampMinutes(m int) int {
	if m < 1 {
		return 1
	}
	return m
}

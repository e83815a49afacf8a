package proctor

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Step is one scripted event at an offset from the start of the session
type Step struct {
	Offset time.Duration
	Kind   EventKind
}

// Transition records one handled event during a replay
type Transition struct {
	Offset  time.Duration
	Event   EventKind
	From    State
	To      State
	Effects Effects
}

// ReplayResult is the outcome of replaying a script
type ReplayResult struct {
	Transitions []Transition
	Final       State
	Terminated  bool
	Reason      string
	At          time.Duration
}

var scriptEvents = map[string]EventKind{
	"granted": FullscreenGranted,
	"denied":  FullscreenDenied,
	"leave":   FullscreenExited,
	"enter":   FullscreenEntered,
	"esc":     ExitKey,
}

// ParseScript reads one "<offset> <event>" step per line, e.g. "1.5s leave".
// Events are granted, denied, leave, enter and esc. Blank lines and lines
// starting with # are skipped. Offsets must not decrease.
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected \"<offset> <event>\", got %q", line, text)
		}
		offset, err := time.ParseDuration(fields[0])
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("line %d: invalid offset %q", line, fields[0])
		}
		kind, ok := scriptEvents[strings.ToLower(fields[1])]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown event %q", line, fields[1])
		}
		if n := len(steps); n > 0 && offset < steps[n-1].Offset {
			return nil, fmt.Errorf("line %d: offset %s is before previous step", line, offset)
		}
		steps = append(steps, Step{Offset: offset, Kind: kind})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// Replay runs a script through a fresh Machine on a virtual clock. Countdown
// ticks are generated every second while the countdown runs and are handled
// before a scripted event at the same offset.
func Replay(steps []Step) ReplayResult {
	var res ReplayResult
	m := NewMachine()
	base := time.Unix(0, 0).UTC()
	counting := false
	var nextTick time.Duration

	apply := func(offset time.Duration, kind EventKind) {
		from := m.State()
		fx := m.Apply(Event{Kind: kind, At: base.Add(offset)})
		res.Transitions = append(res.Transitions, Transition{
			Offset:  offset,
			Event:   kind,
			From:    from,
			To:      m.State(),
			Effects: fx,
		})
		if fx.StopCountdown {
			counting = false
		}
		if fx.StartCountdown {
			counting = true
			nextTick = offset + time.Second
		}
		if fx.Terminate && !res.Terminated {
			res.Terminated = true
			res.Reason = fx.Reason
			res.At = offset
		}
	}

	for _, step := range steps {
		for counting && nextTick <= step.Offset {
			at := nextTick
			nextTick += time.Second
			apply(at, Tick)
		}
		apply(step.Offset, step.Kind)
	}
	// Let a running countdown finish
	for counting {
		at := nextTick
		nextTick += time.Second
		apply(at, Tick)
	}

	res.Final = m.State()
	return res
}

package proctor

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultSettleDelay is how long the monitor waits after releasing
// full-screen before handing control to the redirect callback.
const DefaultSettleDelay = 500 * time.Millisecond

// ErrStopped is returned by Post after the monitor has finished
var ErrStopped = errors.New("proctor monitor stopped")

// Screen controls full-screen mode
type Screen interface {
	RequestFullscreen(ctx context.Context) error
	ExitFullscreen(ctx context.Context) error
}

// Display shows and hides the countdown warning
type Display interface {
	ShowWarning(remaining int)
	HideWarning()
}

// MonitorConfig configures a Monitor
type MonitorConfig struct {
	Clock       Clock
	Screen      Screen
	Display     Display
	Coordinator *Coordinator
	// Redirect receives the termination reason once the session has ended
	Redirect    func(reason string)
	SettleDelay time.Duration
}

// Monitor runs the proctoring state machine on a single goroutine. Screen
// and keyboard events are posted to it and handled in order, interleaved
// with countdown ticks.
type Monitor struct {
	cfg     MonitorConfig
	machine *Machine
	events  chan Event
	done    chan struct{}
	reason  string
}

// NewMonitor creates a monitor. Run must be called to start it.
func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &Monitor{
		cfg:     cfg,
		machine: NewMachine(),
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
	}
}

// Post queues an event. ExitKey events without a time are stamped with the
// monitor's clock.
func (m *Monitor) Post(ev Event) error {
	if ev.Kind == ExitKey && ev.At.IsZero() {
		ev.At = m.cfg.Clock.Now()
	}
	select {
	case <-m.done:
		return ErrStopped
	default:
	}
	select {
	case m.events <- ev:
		return nil
	case <-m.done:
		return ErrStopped
	}
}

// FullscreenChanged reports a full-screen change from the screen
func (m *Monitor) FullscreenChanged(active bool) error {
	if active {
		return m.Post(Event{Kind: FullscreenEntered})
	}
	return m.Post(Event{Kind: FullscreenExited})
}

// ExitKeyPressed reports one press of the exit key
func (m *Monitor) ExitKeyPressed() error {
	return m.Post(Event{Kind: ExitKey})
}

// State blocks until Run has returned and reports the final state
func (m *Monitor) State() State {
	<-m.done
	return m.machine.State()
}

// Run requests full-screen and processes events until the interview is
// terminated or ctx is cancelled. It returns the termination reason, or
// ctx.Err() when cancelled first.
func (m *Monitor) Run(ctx context.Context) (string, error) {
	defer close(m.done)

	var ticker Ticker
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
	}
	defer stopTicker()

	granted := FullscreenGranted
	if err := m.cfg.Screen.RequestFullscreen(ctx); err != nil {
		slog.Info("Full-screen request rejected, proctoring not engaged", "error", err)
		granted = FullscreenDenied
	}
	if m.handle(ctx, Event{Kind: granted}, &ticker, stopTicker) {
		return m.reason, nil
	}

	for {
		var tick <-chan time.Time
		if ticker != nil {
			tick = ticker.C()
		}

		var ev Event
		select {
		case <-ctx.Done():
			// Events queued before cancellation are still handled
			for {
				select {
				case queued := <-m.events:
					if m.handle(ctx, queued, &ticker, stopTicker) {
						return m.reason, nil
					}
				default:
					return "", ctx.Err()
				}
			}
		case ev = <-m.events:
		case at := <-tick:
			ev = Event{Kind: Tick, At: at}
		}

		if m.handle(ctx, ev, &ticker, stopTicker) {
			return m.reason, nil
		}
	}
}

// handle applies one event and performs its effects. It reports whether the
// session has ended.
func (m *Monitor) handle(ctx context.Context, ev Event, ticker *Ticker, stopTicker func()) bool {
	from := m.machine.State()
	fx := m.machine.Apply(ev)
	if to := m.machine.State(); to != from {
		slog.Debug("Proctoring transition", "event", ev.Kind, "from", from, "to", to)
	}

	if fx.StopCountdown {
		stopTicker()
	}
	if fx.StartCountdown {
		stopTicker()
		*ticker = m.cfg.Clock.NewTicker(time.Second)
	}
	if fx.HideWarning && m.cfg.Display != nil {
		m.cfg.Display.HideWarning()
	}
	if fx.ShowWarning && m.cfg.Display != nil {
		m.cfg.Display.ShowWarning(fx.Remaining)
	}

	if !fx.Terminate {
		return false
	}
	m.terminate(ctx, fx.Reason)
	return true
}

// terminate reports the termination, releases full-screen and redirects
// after the settle delay. The server call runs alongside the delay and is
// waited for before returning.
func (m *Monitor) terminate(ctx context.Context, reason string) {
	m.reason = reason
	slog.Info("Terminating proctored interview", "reason", reason)

	reported := make(chan struct{})
	go func() {
		defer close(reported)
		if m.cfg.Coordinator != nil {
			m.cfg.Coordinator.Terminate(ctx, reason)
		}
	}()

	if err := m.cfg.Screen.ExitFullscreen(context.WithoutCancel(ctx)); err != nil {
		slog.Debug("Failed to release full-screen", "error", err)
	}

	if m.cfg.SettleDelay > 0 {
		<-m.cfg.Clock.After(m.cfg.SettleDelay)
	}
	if m.cfg.Redirect != nil {
		m.cfg.Redirect(reason)
	}

	<-reported
}

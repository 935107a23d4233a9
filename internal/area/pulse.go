package area

import "time"

// Pulse is a periodic on/off toggle driving caret blinking. One instance
// exists per skin and is torn down with it.
//
// The ticker goroutine never touches the phase: it only invokes notify, and
// the receiver (the UI event loop) calls Toggle. Every phase mutation
// therefore happens on the event thread.
type Pulse struct {
	period time.Duration
	notify func()
	phase  bool
	stop   chan struct{}
}

func NewPulse(period time.Duration, notify func()) *Pulse {
	return &Pulse{period: period, notify: notify}
}

// Start begins pulsing with the given initial phase. A running pulse is
// restarted.
func (p *Pulse) Start(initial bool) {
	p.Stop(initial)
	if p.period <= 0 || p.notify == nil {
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	go func() {
		t := time.NewTicker(p.period)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				p.notify()
			}
		}
	}()
}

// Stop ends pulsing and leaves the phase at final.
func (p *Pulse) Stop(final bool) {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	p.phase = final
}

// On reports the current blink phase.
func (p *Pulse) On() bool { return p.phase }

// Running reports whether the pulse is ticking.
func (p *Pulse) Running() bool { return p.stop != nil }

// Toggle flips the phase. Must be called from the event thread, typically
// in response to a notify callback.
func (p *Pulse) Toggle() { p.phase = !p.phase }

// Package scheduler drives the face redraw cadence.
//
// A Scheduler keeps at most one pending tick. Each tick redraws the face
// and, while the face is visible and not in ambient mode, arms the next
// tick on the next interval boundary of the wall clock. All state lives on
// the goroutine running Run; the exported methods only post signals to it.
package scheduler

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/alardizabal/ud851-Sunshine/logger"
)

const (
	DefaultInteractiveRate = 1 * time.Second
	DefaultMuteRate        = 1 * time.Minute
)

// RedrawFunc paints the face for the given instant.
type RedrawFunc func(now time.Time)

// ScheduleState is a point-in-time view of the scheduler.
type ScheduleState struct {
	Interval time.Duration `json:"interval"`
	Visible  bool          `json:"visible"`
	Ambient  bool          `json:"ambient"`
	Muted    bool          `json:"muted"`
	Pending  bool          `json:"pending"`
	NextTick *time.Time    `json:"next_tick,omitempty"`
}

// Eligible reports whether ticks should keep re-arming.
func (s ScheduleState) Eligible() bool {
	return s.Visible && !s.Ambient
}

type signalKind int

const (
	signalTickNow signalKind = iota
	signalVisible
	signalAmbient
	signalMuted
	signalInvalidate
	signalState
)

type signal struct {
	kind  signalKind
	value bool
	reply chan ScheduleState
}

type Scheduler struct {
	clock           clock.Clock
	interactiveRate time.Duration
	muteRate        time.Duration
	redraw          RedrawFunc
	log             *logger.Logger

	signals chan signal
	done    chan struct{}

	// owned by Run
	visible  bool
	ambient  bool
	muted    bool
	timer    clock.Timer
	nextTick time.Time
}

// New builds a scheduler. Non-positive rates fall back to the defaults.
func New(clk clock.Clock, interactiveRate, muteRate time.Duration, redraw RedrawFunc, log *logger.Logger) *Scheduler {
	if interactiveRate <= 0 {
		interactiveRate = DefaultInteractiveRate
	}
	if muteRate <= 0 {
		muteRate = DefaultMuteRate
	}
	return &Scheduler{
		clock:           clk,
		interactiveRate: interactiveRate,
		muteRate:        muteRate,
		redraw:          redraw,
		log:             log,
		signals:         make(chan signal),
		done:            make(chan struct{}),
	}
}

// NextDelay is the time from now until the next multiple of interval
// since the Unix epoch, in whole milliseconds.
func NextDelay(now time.Time, interval time.Duration) time.Duration {
	intervalMs := interval.Milliseconds()
	if intervalMs <= 0 {
		return interval
	}
	rem := now.UnixMilli() % intervalMs
	if rem < 0 {
		rem += intervalMs
	}
	return time.Duration(intervalMs-rem) * time.Millisecond
}

// Run processes signals and ticks until ctx is done. Any pending tick is
// stopped before Run returns. Run must be called once.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)
	defer s.cancelPending()

	for {
		var fired <-chan time.Time
		if s.timer != nil {
			fired = s.timer.C()
		}

		select {
		case <-ctx.Done():
			s.log.Debugw("scheduler_stopped")
			return
		case <-fired:
			s.timer = nil
			s.tick()
		case sig := <-s.signals:
			s.handle(sig)
		}
	}
}

// TickNow redraws immediately and re-arms when eligible.
func (s *Scheduler) TickNow() {
	s.send(signal{kind: signalTickNow})
}

func (s *Scheduler) SetVisible(visible bool) {
	s.send(signal{kind: signalVisible, value: visible})
}

func (s *Scheduler) SetAmbient(ambient bool) {
	s.send(signal{kind: signalAmbient, value: ambient})
}

// SetMuted switches between the interactive and the mute update rate.
func (s *Scheduler) SetMuted(muted bool) {
	s.send(signal{kind: signalMuted, value: muted})
}

// Invalidate redraws once without touching the pending tick.
func (s *Scheduler) Invalidate() {
	s.send(signal{kind: signalInvalidate})
}

// State returns the current state, or the zero state once Run has returned.
func (s *Scheduler) State() ScheduleState {
	reply := make(chan ScheduleState, 1)
	if !s.send(signal{kind: signalState, reply: reply}) {
		return ScheduleState{}
	}
	select {
	case st := <-reply:
		return st
	case <-s.done:
		return ScheduleState{}
	}
}

func (s *Scheduler) send(sig signal) bool {
	select {
	case s.signals <- sig:
		return true
	case <-s.done:
		return false
	}
}

func (s *Scheduler) handle(sig signal) {
	switch sig.kind {
	case signalTickNow:
		s.tick()
	case signalVisible:
		s.visible = sig.value
		s.updateTimer()
	case signalAmbient:
		s.ambient = sig.value
		s.updateTimer()
		if !s.eligible() && s.visible {
			// entering ambient still needs one frame in the low power style
			s.redraw(s.clock.Now())
		}
	case signalMuted:
		if s.muted == sig.value {
			return
		}
		s.muted = sig.value
		s.updateTimer()
	case signalInvalidate:
		s.redraw(s.clock.Now())
	case signalState:
		sig.reply <- s.state()
	}
}

// updateTimer drops the pending tick and restarts ticking when eligible.
func (s *Scheduler) updateTimer() {
	s.cancelPending()
	if s.eligible() {
		s.tick()
	}
}

func (s *Scheduler) tick() {
	s.cancelPending()
	s.log.Debugw("updating_time")
	s.redraw(s.clock.Now())

	if !s.eligible() {
		return
	}
	now := s.clock.Now()
	delay := NextDelay(now, s.interval())
	s.timer = s.clock.NewTimer(delay)
	s.nextTick = now.Add(delay)
}

func (s *Scheduler) cancelPending() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
	s.nextTick = time.Time{}
}

func (s *Scheduler) eligible() bool {
	return s.visible && !s.ambient
}

func (s *Scheduler) interval() time.Duration {
	if s.muted {
		return s.muteRate
	}
	return s.interactiveRate
}

func (s *Scheduler) state() ScheduleState {
	st := ScheduleState{
		Interval: s.interval(),
		Visible:  s.visible,
		Ambient:  s.ambient,
		Muted:    s.muted,
		Pending:  s.timer != nil,
	}
	if s.timer != nil {
		next := s.nextTick
		st.NextTick = &next
	}
	return st
}

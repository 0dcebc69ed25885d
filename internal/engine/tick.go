// Package engine provides the frame-based simulation loop: a fixed
// real-time interval per frame, a speed multiplier that scales how much
// simulated time each frame advances, and daily/periodic callbacks.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Engine drives the colony forward. Simulated time advances by
// Interval×Speed each frame; the wall clock governing season and hour
// advances with it.
type Engine struct {
	mu sync.Mutex

	speed    float64 // Multiplier: 1.0 = real-time, 0 = paused
	interval time.Duration
	simClock time.Time // Simulated wall-clock date/time
	frames   uint64

	running bool
	stopCh  chan struct{}

	// OnFrame runs every frame with the simulated delta and clock.
	OnFrame func(dt float64, now time.Time) error
	// OnDay runs once when the simulated calendar day changes.
	OnDay func(now time.Time)
}

// New creates an engine starting its simulated clock at start.
func New(interval time.Duration, start time.Time) *Engine {
	return &Engine{
		speed:    1.0,
		interval: interval,
		simClock: start,
		stopCh:   make(chan struct{}),
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Zero pauses; negative values
// are clamped to zero.
func (e *Engine) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
	slog.Info("simulation speed changed", "speed", speed)
}

// SimClock returns the current simulated date and time.
func (e *Engine) SimClock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.simClock
}

// Frames returns the number of frames processed.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Run starts the simulation loop. Blocks until Stop is called. A frame
// that overruns its interval is followed immediately by the next one;
// simulated time still advances by the fixed step, so heavy frames slow
// the simulation rather than distort it.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("simulation engine started", "interval", e.interval)

	for {
		select {
		case <-e.stopCh:
			slog.Info("simulation engine stopped", "frames", e.Frames())
			return
		default:
		}

		speed := e.Speed()
		if speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.step(speed)

		elapsed := time.Since(start)
		if elapsed < e.interval {
			time.Sleep(e.interval - elapsed)
		}
	}
}

// Stop halts the simulation loop. Safe to call once.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.running = false
		close(e.stopCh)
	}
}

func (e *Engine) step(speed float64) {
	dt := e.interval.Seconds() * speed

	e.mu.Lock()
	prev := e.simClock
	e.simClock = e.simClock.Add(time.Duration(dt * float64(time.Second)))
	now := e.simClock
	e.frames++
	e.mu.Unlock()

	if e.OnFrame != nil {
		if err := e.OnFrame(dt, now); err != nil {
			slog.Error("frame update failed", "error", err)
		}
	}

	if e.OnDay != nil && prev.YearDay() != now.YearDay() {
		e.OnDay(now)
	}
}

// Package autolock forces the wallet back to its lock screen after too long
// in the background or too long in the foreground.
package autolock

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/walletlock/internal/logging"
	"github.com/dmitrijs2005/walletlock/internal/timex"
)

const DefaultTimeout = 5 * time.Minute

// AppState is the application lifecycle state reported to the monitor.
type AppState int

const (
	Active AppState = iota
	Inactive
	Background
)

func (s AppState) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Background:
		return "background"
	default:
		return "unknown"
	}
}

type Option func(*Monitor)

func WithClock(c timex.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// Monitor calls onLock when the app returns from the background after the
// timeout or has been in the foreground for the timeout without a break.
// onLock runs at most once per Start and never after Stop returns. It must
// not call Stop itself.
type Monitor struct {
	timeout time.Duration
	onLock  func()
	clock   timex.Clock
	log     logging.Logger

	mu           sync.Mutex
	running      bool
	locked       bool
	gen          uint64
	timer        timex.Timer
	inBackground bool
	backgroundAt time.Time

	callbacks sync.WaitGroup
}

// New returns a stopped monitor. A non-positive timeout means DefaultTimeout.
func New(timeout time.Duration, onLock func(), opts ...Option) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Monitor{
		timeout: timeout,
		onLock:  onLock,
		clock:   timex.Real(),
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Monitor) Timeout() time.Duration { return m.timeout }

// Start (re)arms the foreground timer and clears a previous lock.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopTimer()
	m.gen++
	m.running = true
	m.locked = false
	m.inBackground = false
	m.backgroundAt = time.Time{}
	m.arm()
}

// Stop disarms the monitor. When Stop returns no onLock call is running
// and none will start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.running = false
	m.gen++
	m.stopTimer()
	m.mu.Unlock()

	m.callbacks.Wait()
}

// Locked reports whether onLock has fired since the last Start.
func (m *Monitor) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// Transition feeds a lifecycle change into the monitor.
func (m *Monitor) Transition(s AppState) {
	m.mu.Lock()
	if !m.running || m.locked {
		m.mu.Unlock()
		return
	}

	switch s {
	case Background:
		if !m.inBackground {
			m.inBackground = true
			m.backgroundAt = m.clock.Now()
			m.stopTimer()
		}
		m.mu.Unlock()
	case Active:
		if !m.inBackground {
			m.mu.Unlock()
			return
		}
		m.inBackground = false
		elapsed := m.clock.Now().Sub(m.backgroundAt)
		if elapsed >= m.timeout {
			m.fireLocked(m.gen, "background timeout", elapsed)
			return
		}
		m.arm()
		m.mu.Unlock()
	default:
		m.mu.Unlock()
	}
}

// Run applies states until ctx is done or states is closed, then stops
// the monitor.
func (m *Monitor) Run(ctx context.Context, states <-chan AppState) {
	defer m.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			m.Transition(s)
		}
	}
}

// arm must be called with m.mu held.
func (m *Monitor) arm() {
	gen := m.gen
	m.timer = m.clock.AfterFunc(m.timeout, func() {
		m.mu.Lock()
		m.fireLocked(gen, "foreground timeout", m.timeout)
	})
}

func (m *Monitor) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// fireLocked is entered with m.mu held and releases it.
func (m *Monitor) fireLocked(gen uint64, reason string, elapsed time.Duration) {
	if !m.running || m.locked || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.locked = true
	m.stopTimer()
	m.callbacks.Add(1)
	m.mu.Unlock()

	defer m.callbacks.Done()
	m.log.Info(context.Background(), "auto-lock triggered", "reason", reason, "elapsed", elapsed.String())
	if m.onLock != nil {
		m.onLock()
	}
}

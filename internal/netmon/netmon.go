// Package netmon watches connectivity to Hearth and reports transitions.
// It is the producer behind the network-restore reconciliation trigger.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/hearthlink/tether"
)

// Pinger is the slice of the remote API the monitor needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor polls Hearth's ping endpoint and emits a NetworkStatus on every
// transition. Consumers feed the events into Client.SetNetworkStatus.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      *tether.DebugLogger

	mu      sync.Mutex
	current tether.NetworkStatus
	events  chan tether.NetworkStatus
	stop    chan struct{}
	done    chan struct{}
}

// New creates a monitor. A zero interval falls back to 30 seconds.
func New(pinger Pinger, interval time.Duration, log *tether.DebugLogger) *Monitor {
	if interval == 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		log:      log,
		events:   make(chan tether.NetworkStatus, 8),
	}
}

// Start begins polling. Idempotent: a running monitor is stopped first.
func (m *Monitor) Start() {
	m.Stop()

	m.mu.Lock()
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	go m.run(stop, done)
}

// Stop tears down the polling loop. Safe when nothing is running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Events delivers status transitions. The channel is buffered; if a
// consumer stalls, intermediate transitions are dropped in favor of the
// most recent state on the next poll.
func (m *Monitor) Events() <-chan tether.NetworkStatus {
	return m.events
}

// Status returns the last observed connectivity snapshot.
func (m *Monitor) Status() tether.NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Monitor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	m.check()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-stop:
			return
		}
	}
}

func (m *Monitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := tether.NetworkStatus{Connected: true, InternetReachable: true}
	if err := m.pinger.Ping(ctx); err != nil {
		status = tether.NetworkStatus{}
		m.log.LogError("ping", err)
	}

	m.mu.Lock()
	changed := status != m.current
	m.current = status
	m.mu.Unlock()

	if !changed {
		return
	}

	select {
	case m.events <- status:
	default:
	}
}

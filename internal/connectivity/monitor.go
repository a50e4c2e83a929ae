// Package connectivity tracks whether the device can reach the network and
// notifies subscribers when that changes.
package connectivity

import (
	"sync"
	"time"
)

// Status is one connectivity state.
type Status struct {
	Online bool
	Since  time.Time
}

// Monitor publishes connectivity transitions to its subscribers.
// Subscribers that do not keep up miss events; Set never blocks.
type Monitor struct {
	mu     sync.Mutex
	status Status
	subs   map[int]chan Status
	nextID int
	closed bool
	now    func() time.Time
}

// NewMonitor creates a Monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	m := &Monitor{
		subs: make(map[int]chan Status),
		now:  time.Now,
	}
	m.status = Status{Online: online, Since: m.now()}
	return m
}

// Status returns the current state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Online reports whether the device is currently online.
func (m *Monitor) Online() bool {
	return m.Status().Online
}

// Set records the current state. Subscribers are notified only on a transition.
// It reports whether the state changed.
func (m *Monitor) Set(online bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.status.Online == online {
		return false
	}
	m.status = Status{Online: online, Since: m.now()}
	for _, ch := range m.subs {
		select {
		case ch <- m.status:
		default:
		}
	}
	return true
}

// Subscribe returns a channel receiving every later transition, and a cancel
// function that unsubscribes and closes the channel. Cancel is idempotent.
// buffer is the number of transitions kept for a slow reader.
func (m *Monitor) Subscribe(buffer int) (<-chan Status, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Status, buffer)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextID
	m.nextID++
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (m *Monitor) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Close ends every subscription. Later Set calls are ignored.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

// Package lock provides per-key mutual exclusion for storage operations.
// The manager is an injected instance rather than process-global state so
// tests can run isolated stores side by side.
package lock

import (
	"log/slog"
	"sync"
	"time"

	"github.com/branwick/lorekeeper/internal/metrics"
)

// DefaultStallWarn is how long an acquisition may wait before the manager
// logs it as a stalled key.
const DefaultStallWarn = 30 * time.Second

// Manager serializes operations per key. Unrelated keys proceed
// independently. Entries exist only while a key has a holder or waiters;
// an idle key has no entry at all.
type Manager struct {
	mu        sync.Mutex
	entries   map[string]*entry
	stallWarn time.Duration
	logger    *slog.Logger
}

type entry struct {
	sem  chan struct{} // size-1 semaphore
	refs int           // current holder plus queued waiters
}

// NewManager creates a lock manager. A zero stallWarn uses DefaultStallWarn.
func NewManager(stallWarn time.Duration, logger *slog.Logger) *Manager {
	if stallWarn <= 0 {
		stallWarn = DefaultStallWarn
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		entries:   make(map[string]*entry),
		stallWarn: stallWarn,
		logger:    logger,
	}
}

// Do runs fn while holding the lock for key. If the key is idle fn starts
// immediately; otherwise the call queues behind the current holder and
// starts only after it fully finishes. fn's error is returned unchanged,
// and the lock releases whether fn succeeds, fails, or panics. There is
// no timeout: a fn that never returns starves later calls on its key.
func (m *Manager) Do(key string, fn func() error) error {
	e := m.enter(key)

	select {
	case e.sem <- struct{}{}:
	case <-time.After(m.stallWarn):
		m.logger.Warn("lock acquisition stalled", "key", key, "waited", m.stallWarn)
		metrics.Inc(metrics.LockStalls)
		e.sem <- struct{}{}
	}

	defer func() {
		<-e.sem
		m.leave(key, e)
	}()
	return fn()
}

// IsLocked reports whether key currently has an outstanding holder or
// waiter. Diagnostic only: deciding whether to call Do based on this
// check would race.
func (m *Manager) IsLocked(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *Manager) enter(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *Manager) leave(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

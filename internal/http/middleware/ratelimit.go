package middleware

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold is how many keys the in-process counter holds before it drops
// expired windows.
const sweepThreshold = 10000

type window struct {
	start time.Time
	count int64
}

// memoryCounter is the fixed-window counter used when Redis is not configured. It
// only limits within one process.
type memoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{windows: make(map[string]*window), now: time.Now}
}

func (m *memoryCounter) hit(_ context.Context, key string, size time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) > size {
		if len(m.windows) >= sweepThreshold {
			m.sweep(now, size)
		}
		w = &window{start: now}
		m.windows[key] = w
	}
	w.count++
	return w.count, nil
}

func (m *memoryCounter) sweep(now time.Time, size time.Duration) {
	for k, w := range m.windows {
		if now.Sub(w.start) > size {
			delete(m.windows, k)
		}
	}
}

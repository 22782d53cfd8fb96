// Package buffer implements the producer/consumer queue between frame
// producers and the pacing loop. Frames are ordered by their scheduled
// presentation time, not by arrival, so a late-arriving frame with an
// earlier due time is still presented first.
package buffer

import (
	"container/heap"
	"math"
	"sync"
	"time"

	"github.com/aferraro/go-ledpace/ledpace/frame"
)

// Manager is a bounded queue of pending frames. All methods are safe for
// concurrent use; the consumer side is expected to poll AgeOfOldest at high
// frequency and pop at any time relative to insertions.
type Manager struct {
	mu       sync.Mutex
	pending  frameHeap
	capacity int
	dropped  uint64
}

// NewManager creates a manager holding at most capacity frames. A capacity
// of zero or less means unbounded.
func NewManager(capacity int) *Manager {
	return &Manager{capacity: capacity}
}

// Push adds a frame to the queue. When the queue is full the oldest pending
// frame is dropped to make room, since a full queue means the consumer is
// already behind and the oldest frame is the one least worth keeping.
func (m *Manager) Push(b *frame.Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.capacity > 0 && m.pending.Len() >= m.capacity {
		heap.Pop(&m.pending)
		m.dropped++
	}
	heap.Push(&m.pending, b)
}

// AgeOfOldest returns the seconds until the earliest-due pending frame is
// due; non-positive means due or overdue. Returns math.MaxFloat64 when the
// queue is empty so callers waiting on it fall back to their maximum wait.
func (m *Manager) AgeOfOldest() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending.Len() == 0 {
		return math.MaxFloat64
	}
	return m.pending[0].Age(time.Now())
}

// PopOldest removes and returns the earliest-due pending frame, or false
// when the queue is empty.
func (m *Manager) PopOldest() (*frame.Buffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&m.pending).(*frame.Buffer), true
}

// Len returns the number of pending frames.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending.Len()
}

// Dropped returns the number of frames discarded due to overflow.
func (m *Manager) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// frameHeap is a min-heap ordered by due time.
type frameHeap []*frame.Buffer

func (h frameHeap) Len() int            { return len(h) }
func (h frameHeap) Less(i, j int) bool  { return h[i].Due().Before(h[j].Due()) }
func (h frameHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *frameHeap) Push(x interface{}) { *h = append(*h, x.(*frame.Buffer)) }

func (h *frameHeap) Pop() interface{} {
	old := *h
	n := len(old)
	b := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return b
}

// Package history keeps the bounded in-memory log of detection events
// and computes aggregates over it.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-sentry/internal/emotion"
)

// UnknownLabel is the identity label used for faces that did not
// resolve to a registered identity.
const UnknownLabel = "unknown"

// recentWindow is the lookback used by the Stats recent-events count.
const recentWindow = 24 * time.Hour

// Event is one immutable record of a single face resolution in a
// single frame.
type Event struct {
	ID               string        `json:"id"`
	Identity         string        `json:"identity"` // UnknownLabel or a registered name
	Similarity       float64       `json:"similarity"`
	Emotion          emotion.Label `json:"emotion"`
	Motion           float64       `json:"motion"`           // instantaneous displacement
	CumulativeMotion float64       `json:"cumulative_motion"`
	IsKnown          bool          `json:"is_known"`
	Timestamp        time.Time     `json:"timestamp"`
}

// NewEventID returns a fresh event identifier.
func NewEventID() string {
	return uuid.NewString()
}

// Stats are aggregates over the retained event window.
type Stats struct {
	TotalEvents   int                   `json:"total_events"`
	KnownCount    int                   `json:"known_count"`
	UnknownCount  int                   `json:"unknown_count"`
	RecentCount   int                   `json:"recent_count"` // events within the last 24 hours
	AverageMotion float64               `json:"average_motion"`
	EmotionCounts map[emotion.Label]int `json:"emotion_counts"`
}

// Ledger is a bounded, append-only event log. When full, the oldest
// events are evicted first. Append+evict is one atomic operation;
// queries take shared read access.
type Ledger struct {
	mu       sync.RWMutex
	events   []Event // ring storage
	head     int     // index of the oldest event
	size     int
	capacity int
	now      func() time.Time
}

// NewLedger creates a ledger retaining at most capacity events.
func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ledger{
		events:   make([]Event, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Append adds an event, evicting the oldest one when at capacity.
func (l *Ledger) Append(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size < l.capacity {
		l.events[(l.head+l.size)%l.capacity] = e
		l.size++
		return
	}
	l.events[l.head] = e
	l.head = (l.head + 1) % l.capacity
}

// Len returns the number of retained events.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Query returns at most limit events, most recent first. An empty
// identity filter matches everything; limit <= 0 means no limit.
func (l *Ledger) Query(limit int, identity string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, 0, l.size)
	for i := l.size - 1; i >= 0; i-- {
		e := l.events[(l.head+i)%l.capacity]
		if identity != "" && e.Identity != identity {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Stats computes aggregates over the full retained window. Emotion
// counts are zero-filled over the fixed label set.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{
		TotalEvents:   l.size,
		EmotionCounts: make(map[emotion.Label]int, len(emotion.Labels())),
	}
	for _, label := range emotion.Labels() {
		stats.EmotionCounts[label] = 0
	}

	cutoff := l.now().Add(-recentWindow)
	var totalMotion float64
	for i := 0; i < l.size; i++ {
		e := l.events[(l.head+i)%l.capacity]
		if e.IsKnown {
			stats.KnownCount++
		} else {
			stats.UnknownCount++
		}
		if _, ok := stats.EmotionCounts[e.Emotion]; ok {
			stats.EmotionCounts[e.Emotion]++
		}
		if e.Timestamp.After(cutoff) {
			stats.RecentCount++
		}
		totalMotion += e.Motion
	}
	if l.size > 0 {
		stats.AverageMotion = totalMotion / float64(l.size)
	}
	return stats
}

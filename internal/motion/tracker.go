// Package motion measures frame-to-frame displacement of face
// bounding-box centers.
package motion

import (
	"math"
	"sync"
)

// Point is a bounding-box center in pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Tracker keeps the last known center per tracked key (an identity
// name, or a dedicated key when no identity resolved yet) and reports
// instantaneous displacement. Safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	last map[string]Point
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]Point)}
}

// Update records a new center for the key and returns the displacement
// from the previous one. The first sighting of a key returns 0.
// Accumulating the returned delta is the caller's job.
func (t *Tracker) Update(key string, center Point) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.last[key]
	t.last[key] = center
	if !ok {
		return 0
	}
	return prev.Distance(center)
}

// Reset forgets the last center for a key, e.g. when the identity is
// deleted.
func (t *Tracker) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, key)
}

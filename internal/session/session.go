// Package session turns per-frame face matches into a temporal notion
// of presence. Each identity owns a small state machine that promotes
// it from a tentative sighting to a confirmed visit once it has been
// matched continuously for the activation window, accumulating motion
// and emotion evidence along the way.
package session

import (
	"time"

	"github.com/kozaktomas/face-sentry/internal/emotion"
)

// State is the presence phase of one identity.
type State int

const (
	// Idle means the identity has not been sighted recently.
	Idle State = iota
	// Pending means the identity was sighted and the activation window is running.
	Pending
	// Confirmed means the identity was matched continuously for the whole window.
	Confirmed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	default:
		return "idle"
	}
}

// Session is the activation state machine for one identity. The
// activation window is evaluated by wall-clock comparison on each
// sighting, never by a background timer; a long gap between frames
// just means the transition happens later.
//
// Sessions are not safe for concurrent use on their own; the engine
// serializes access.
type Session struct {
	state            State
	since            time.Time
	cumulativeMotion float64
	emotionCounts    map[emotion.Label]int
}

// New creates an idle session.
func New() *Session {
	return &Session{}
}

// ObserveKnown advances the machine for one known sighting and reports
// whether this call performed the Pending to Confirmed transition. On
// that transition the accumulated motion resets to zero and the
// emotion counters are zero-filled over the full label set.
func (s *Session) ObserveKnown(now time.Time, window time.Duration) bool {
	switch s.state {
	case Idle:
		s.state = Pending
		s.since = now
	case Pending:
		if now.Sub(s.since) >= window {
			s.state = Confirmed
			s.since = now
			s.cumulativeMotion = 0
			s.emotionCounts = make(map[emotion.Label]int, len(emotion.Labels()))
			for _, label := range emotion.Labels() {
				s.emotionCounts[label] = 0
			}
			return true
		}
	case Confirmed:
		// stays confirmed; a confirmed visit ends only with an explicit reset
	}
	return false
}

// ObserveMiss clears a running activation window. A confirmed session
// is deliberately untouched: a single missed frame does not end a
// visit.
func (s *Session) ObserveMiss() {
	if s.state == Pending {
		s.state = Idle
		s.since = time.Time{}
	}
}

// AddMotion accumulates an instantaneous displacement.
func (s *Session) AddMotion(delta float64) {
	s.cumulativeMotion += delta
}

// CountEmotion records an observed emotion. Counts are only meaningful
// while confirmed; earlier sightings are ignored.
func (s *Session) CountEmotion(label emotion.Label) {
	if s.state == Confirmed {
		s.emotionCounts[label]++
	}
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Since returns when the current phase was entered. Zero while idle.
func (s *Session) Since() time.Time {
	return s.since
}

// CumulativeMotion returns the motion accumulated since the session
// was confirmed (or since it was created, while still activating).
func (s *Session) CumulativeMotion() float64 {
	return s.cumulativeMotion
}

// EmotionCounts returns a copy of the per-emotion counters. Nil before
// the session was ever confirmed.
func (s *Session) EmotionCounts() map[emotion.Label]int {
	if s.emotionCounts == nil {
		return nil
	}
	counts := make(map[emotion.Label]int, len(s.emotionCounts))
	for label, n := range s.emotionCounts {
		counts[label] = n
	}
	return counts
}

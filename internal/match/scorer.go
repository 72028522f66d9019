// Package match resolves observed feature vectors against the gallery
// and classifies the resulting similarity score.
package match

import (
	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/gallery"
)

// hnswShortlist is how many nearest neighbors the index returns for
// exact rescoring. Small galleries are scanned linearly instead.
const hnswShortlist = 8

// Result is the outcome of matching one observed vector against the
// gallery. Name is empty when the gallery is empty.
type Result struct {
	Name       string
	Similarity float64 // 0-100
}

// Outcome is the classification of a match result against the
// configured thresholds. The grey zone is a first-class value, not a
// fallthrough: matched but neither promoted to known nor logged as a
// genuine unknown.
type Outcome int

const (
	OutcomeUnknown Outcome = iota // similarity below the unknown threshold
	OutcomeGrey                   // between the thresholds
	OutcomeKnown                  // at or above the known threshold
)

func (o Outcome) String() string {
	switch o {
	case OutcomeKnown:
		return "known"
	case OutcomeGrey:
		return "grey"
	default:
		return "unknown"
	}
}

// ScoreFunc computes a 0-100 similarity between two vectors.
type ScoreFunc func(a, b []float32) float64

// Scorer finds the best-matching identity for an observed vector.
type Scorer struct {
	gallery *gallery.Gallery
	cfg     config.MatchConfig
	score   ScoreFunc
	index   *Index
}

// NewScorer creates a scorer over the given gallery using cosine
// similarity.
func NewScorer(g *gallery.Gallery, cfg config.MatchConfig) *Scorer {
	return &Scorer{
		gallery: g,
		cfg:     cfg,
		score:   Similarity,
	}
}

// SetScoreFunc replaces the similarity function. Used by tests to pin
// exact scores.
func (s *Scorer) SetScoreFunc(fn ScoreFunc) {
	s.score = fn
}

// EnableIndex attaches an HNSW index used to shortlist candidates once
// the gallery grows past the configured cutover. Below the cutover the
// exact linear scan is used.
func (s *Scorer) EnableIndex(idx *Index) {
	s.index = idx
}

// Match returns the identity with the highest similarity to the
// observed vector. Ties keep the first identity in registration order.
// An empty gallery yields an empty name and similarity 0.
func (s *Scorer) Match(observed []float32) Result {
	candidates := s.gallery.List()
	if len(candidates) == 0 {
		return Result{}
	}

	if s.index != nil && len(candidates) >= s.cfg.HNSWCutover {
		if shortlist := s.index.Shortlist(observed, hnswShortlist, candidates); len(shortlist) > 0 {
			candidates = shortlist
		}
	}

	best := Result{Similarity: -1}
	for _, id := range candidates {
		if sim := s.score(observed, id.Vector); sim > best.Similarity {
			best = Result{Name: id.Name, Similarity: sim}
		}
	}
	if best.Similarity < 0 {
		best.Similarity = 0
	}
	return best
}

// Classify applies the threshold policy to a match result.
func (s *Scorer) Classify(r Result) Outcome {
	switch {
	case r.Name != "" && r.Similarity >= s.cfg.KnownThreshold:
		return OutcomeKnown
	case r.Similarity < s.cfg.UnknownThreshold:
		return OutcomeUnknown
	default:
		return OutcomeGrey
	}
}

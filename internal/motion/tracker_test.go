package motion

import (
	"math"
	"testing"
)

func TestUpdateFirstSightingIsZero(t *testing.T) {
	tr := NewTracker()
	if d := tr.Update("alice", Point{X: 100, Y: 100}); d != 0 {
		t.Errorf("first sighting should report 0 motion, got %v", d)
	}
}

func TestUpdateEuclideanDistance(t *testing.T) {
	tr := NewTracker()
	tr.Update("alice", Point{X: 0, Y: 0})

	if d := tr.Update("alice", Point{X: 3, Y: 4}); d != 5 {
		t.Errorf("expected distance 5, got %v", d)
	}
	if d := tr.Update("alice", Point{X: 3, Y: 4}); d != 0 {
		t.Errorf("no movement should report 0, got %v", d)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	tr := NewTracker()
	tr.Update("alice", Point{X: 0, Y: 0})
	tr.Update("bob", Point{X: 100, Y: 100})

	if d := tr.Update("alice", Point{X: 10, Y: 0}); d != 10 {
		t.Errorf("alice moved 10, got %v", d)
	}
	if d := tr.Update("bob", Point{X: 100, Y: 90}); d != 10 {
		t.Errorf("bob moved 10, got %v", d)
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()
	tr.Update("alice", Point{X: 0, Y: 0})
	tr.Reset("alice")

	if d := tr.Update("alice", Point{X: 50, Y: 50}); d != 0 {
		t.Errorf("after reset the next sighting is a first sighting, got %v", d)
	}
}

func TestPointDistance(t *testing.T) {
	d := Point{X: 1, Y: 1}.Distance(Point{X: 4, Y: 5})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("expected 5, got %v", d)
	}
}

package emotion

import (
	"context"
	"math/rand/v2"
)

// Random is the stand-in classifier used when no vision model is
// configured. It returns a uniformly random label from the fixed set,
// which keeps the output contract identical to a real model.
type Random struct{}

// NewRandom creates the stand-in classifier.
func NewRandom() *Random {
	return &Random{}
}

func (r *Random) Name() string {
	return "random"
}

func (r *Random) Classify(ctx context.Context, faceJPEG []byte) (Label, error) {
	labels := Labels()
	return labels[rand.IntN(len(labels))], nil
}

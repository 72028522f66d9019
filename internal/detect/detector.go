// Package detect defines the face detection contract the engine
// consumes and an HTTP adapter for an InsightFace-style sidecar.
// Detection and feature extraction themselves are external
// capabilities; the engine only sees bounding boxes, feature vectors
// and cropped face images.
package detect

import (
	"context"
	"errors"

	"github.com/kozaktomas/face-sentry/internal/motion"
)

var (
	// ErrNoFace is returned when an operation requires a face and none was detected.
	ErrNoFace = errors.New("no face detected in image")
	// ErrMultipleFaces is returned when exactly one face is required but several were detected.
	ErrMultipleFaces = errors.New("multiple faces detected, expected one")
	// ErrExtraction is returned when the detector could not produce a usable feature vector.
	ErrExtraction = errors.New("feature extraction failed")
)

// Box is a face bounding box in pixel coordinates.
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Center returns the box center.
func (b Box) Center() motion.Point {
	return motion.Point{
		X: float64(b.Left+b.Right) / 2,
		Y: float64(b.Top+b.Bottom) / 2,
	}
}

// Face is one detected face in a frame: its location, feature vector
// and the cropped face image. Faces are ephemeral; nothing retains
// them past the frame-processing call.
type Face struct {
	Box    Box
	Vector []float32
	Crop   []byte // cropped face JPEG
}

// Detector finds faces in a decodable frame. An empty result is valid.
type Detector interface {
	Detect(ctx context.Context, frame []byte) ([]Face, error)
}

// ExtractSingle runs detection and requires exactly one face, as
// identity registration does. Returns the face's feature vector.
func ExtractSingle(ctx context.Context, d Detector, frame []byte) ([]float32, error) {
	faces, err := d.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}
	switch {
	case len(faces) == 0:
		return nil, ErrNoFace
	case len(faces) > 1:
		return nil, ErrMultipleFaces
	}
	if len(faces[0].Vector) == 0 {
		return nil, ErrExtraction
	}
	return faces[0].Vector, nil
}

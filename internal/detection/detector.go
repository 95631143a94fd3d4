// Package detection turns a meal photo into food labels.
package detection

import (
	"context"
	"fmt"
)

// MinConfidence is the lowest score (0..1) a detection must reach to be
// reported.
const MinConfidence = 0.5

// Detector identifies food items in an image. Labels come back in
// detection order, duplicates included.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]string, error)
}

// ResponseError carries an unusable reply from a detection backend.
type ResponseError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("detector response (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("detector returned status %d", e.StatusCode)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// StaticDetector always reports the same labels. It stands in for a model
// server during local development.
type StaticDetector struct {
	Labels []string
}

var _ Detector = (*StaticDetector)(nil)

// NewStaticDetector defaults to a single "veg briyani" detection.
func NewStaticDetector(labels ...string) *StaticDetector {
	if len(labels) == 0 {
		labels = []string{"veg briyani"}
	}
	return &StaticDetector{Labels: labels}
}

func (d *StaticDetector) Detect(ctx context.Context, _ []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(d.Labels))
	copy(out, d.Labels)
	return out, nil
}

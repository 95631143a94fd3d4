// Package storage persists uploaded meal images.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ImageStore saves image bytes under a key and resolves stored keys to
// URLs. URLs may be relative (local media) or absolute (object storage).
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	URL(ref string) string
}

// NewMealImageKey returns a fresh key of the form meals/<uuid>.jpg.
func NewMealImageKey() string {
	return fmt.Sprintf("meals/%s.jpg", uuid.New().String())
}

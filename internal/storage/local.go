package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images below a media root on the local filesystem.
type LocalStore struct {
	root    string
	baseURL string
}

var _ ImageStore = (*LocalStore)(nil)

// NewLocalStore serves files from root under baseURL (e.g. "/media").
func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory files are written to.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Save(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Clean("/" + key)[1:]
	if clean == "" {
		return "", fmt.Errorf("invalid image key %q", key)
	}

	dst := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return clean, nil
}

func (s *LocalStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + "/" + ref
}

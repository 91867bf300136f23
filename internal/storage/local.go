package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore persists uploaded media and returns retrievable URLs.
type BlobStore interface {
	// Save streams a blob under the given filename and returns its public URL.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	// Delete removes the blob behind a previously returned URL. A missing
	// object is not an error: it may already be gone.
	Delete(ctx context.Context, url string) error
}

// LocalStore keeps blobs on the local filesystem under the public asset root,
// served as static files alongside the gallery media.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates the backing directory when absent.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}

	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "/uploads"
	}
	baseURL = "/" + strings.Trim(baseURL, "/")

	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Save writes the blob under a collision-free name derived from the original
// filename.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctxErr(ctx); err != nil {
		return "", err
	}

	name := sanitizeFilename(filename)
	if name == "" {
		return "", errors.New("storage: filename is required")
	}

	stored := uuid.NewString()[:8] + "-" + name
	target := filepath.Join(s.root, stored)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create blob: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("storage: write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: close blob: %w", err)
	}

	return path.Join(s.baseURL, stored), nil
}

// Delete removes the blob for a URL produced by Save. URLs outside the store's
// base path are rejected; a blob that no longer exists is treated as deleted.
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return fmt.Errorf("storage: url %q is not managed by this store", url)
	}

	name := sanitizeFilename(rel)
	if name == "" || name != rel {
		return fmt.Errorf("storage: invalid blob reference %q", url)
	}

	err := os.Remove(filepath.Join(s.root, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete blob: %w", err)
	}
	return nil
}

// sanitizeFilename strips any path components, defeating traversal attempts.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = path.Base(path.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

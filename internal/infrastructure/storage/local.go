// Package storage provides the file store used for receipts, identity
// documents, and generated papers. The current backing is the local
// filesystem; references handed back to callers are plain file names.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// Store writes uploads into a single directory, renaming each file to a
// fresh UUID so client-supplied names never reach the filesystem.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save streams r into a new file and returns its reference. The original
// name contributes only its extension.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString() + filepath.Ext(name)
	path := filepath.Join(s.dir, ref)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", domain.ErrUnavailable, ref, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: write %s: %v", domain.ErrUnavailable, ref, err)
	}
	return ref, nil
}

// Open returns a reader over a previously saved file.
func (s *Store) Open(ref string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, ref)
		}
		return nil, err
	}
	return f, nil
}

// Package storage holds uploaded policy document files. The core only
// tracks document metadata; file bytes live behind DocumentStore.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DocumentStore is the boundary to the document bucket. Files are keyed by
// policy ID and document ID.
type DocumentStore interface {
	// Save writes the file content and returns the number of bytes stored.
	Save(ctx context.Context, policyID, docID string, r io.Reader) (int64, error)

	// Open returns a reader over the stored file content.
	// Returns os.ErrNotExist if the file is missing.
	Open(ctx context.Context, policyID, docID string) (io.ReadCloser, error)

	// Delete removes the stored file. Deleting a missing file is not an error.
	Delete(ctx context.Context, policyID, docID string) error
}

// LocalStore is a filesystem-backed DocumentStore rooted at a directory.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed and returns the store.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Save(_ context.Context, policyID, docID string, r io.Reader) (int64, error) {
	dir := filepath.Join(s.root, sanitize(policyID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create policy directory: %w", err)
	}

	path := filepath.Join(dir, sanitize(docID))
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create document file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return 0, fmt.Errorf("failed to write document file: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close document file: %w", err)
	}
	return n, nil
}

func (s *LocalStore) Open(_ context.Context, policyID, docID string) (io.ReadCloser, error) {
	path := filepath.Join(s.root, sanitize(policyID), sanitize(docID))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, policyID, docID string) error {
	path := filepath.Join(s.root, sanitize(policyID), sanitize(docID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// sanitize strips path separators so IDs cannot escape the store root.
func sanitize(id string) string {
	id = strings.ReplaceAll(id, "/", "_")
	id = strings.ReplaceAll(id, "\\", "_")
	id = strings.ReplaceAll(id, "..", "_")
	return id
}

package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"FeedSieve/internal/ports"
)

// TokenSuccess marks a fully successful previous run; any other non-empty
// token names the source that failed.
const TokenSuccess = "SUCCESS"

// FileStore keeps the run checkpoint token in a flat file.
type FileStore struct {
	path string
}

var _ ports.StateStore = (*FileStore)(nil)

// NewFileStore wires the checkpoint file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Read returns the stored token, or an empty token when no state exists.
func (s *FileStore) Read(_ context.Context) (string, error) {
	if s.path == "" {
		return "", nil
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read state file: %w", err)
	}

	return strings.TrimSpace(string(raw)), nil
}

// Write replaces the stored token.
func (s *FileStore) Write(_ context.Context, token string) error {
	if s.path == "" {
		return nil
	}

	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

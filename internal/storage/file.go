package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"fairshare/internal/snapshot"
)

// Ensure interface conformance
var _ snapshot.Store = (*FileStore)(nil)

// FileStore persists the snapshot as a single JSON file, mirroring the
// original single-blob persistence model. Saves go through a temp file
// and rename so a crash mid-write never leaves a torn snapshot.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads and parses the snapshot file. Missing or corrupt data
// degrades to an empty snapshot with a warning; startup never fails on
// bad persisted state.
func (f *FileStore) Load(ctx context.Context) (snapshot.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot.Empty(), nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Snapshot file unreadable, starting empty",
			"path", f.path, "error", err)
		return snapshot.Empty(), nil
	}

	var s snapshot.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		slog.WarnContext(ctx, "Snapshot file corrupt, starting empty",
			"path", f.path, "error", err)
		return snapshot.Empty(), nil
	}
	if s.CurrencyCode == "" {
		s.CurrencyCode = snapshot.DefaultCurrency
	}
	return s, nil
}

func (f *FileStore) Save(ctx context.Context, s snapshot.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to file",
		"path", f.path,
		"participants", len(s.Participants),
		"expenses", len(s.Expenses))

	return nil
}

func (f *FileStore) Close() error {
	return nil
}

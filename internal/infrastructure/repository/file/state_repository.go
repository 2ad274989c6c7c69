package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/injury-monitor/internal/domain/state"
)

// StateRepository keeps the snapshot in a single JSON document on disk.
type StateRepository struct {
	mu   sync.Mutex
	path string
}

func NewStateRepository(path string) *StateRepository {
	return &StateRepository{path: path}
}

func (r *StateRepository) Path() string {
	return r.path
}

func (r *StateRepository) Load(_ context.Context) (state.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return state.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file %s: %w", r.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return state.Snapshot{}, nil
	}

	snapshot := state.Snapshot{}
	if err := sonic.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", r.path, err)
	}
	if snapshot == nil {
		snapshot = state.Snapshot{}
	}
	return snapshot, nil
}

// Save writes to a temp file in the same directory and renames it over the old one.
func (r *StateRepository) Save(_ context.Context, snapshot state.Snapshot) error {
	if snapshot == nil {
		snapshot = state.Snapshot{}
	}
	raw, err := sonic.ConfigStd.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace state file %s: %w", r.path, err)
	}
	return nil
}

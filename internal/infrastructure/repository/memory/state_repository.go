package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/injury-monitor/internal/domain/state"
)

// StateRepository keeps the snapshot for the lifetime of the process.
type StateRepository struct {
	mu       sync.RWMutex
	snapshot state.Snapshot
}

func NewStateRepository(seed state.Snapshot) *StateRepository {
	return &StateRepository{snapshot: copySnapshot(seed)}
}

func (r *StateRepository) Load(_ context.Context) (state.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return copySnapshot(r.snapshot), nil
}

func (r *StateRepository) Save(_ context.Context, snapshot state.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot = copySnapshot(snapshot)
	return nil
}

func copySnapshot(in state.Snapshot) state.Snapshot {
	out := make(state.Snapshot, len(in))
	for key, entry := range in {
		out[key] = entry
	}
	return out
}

package state

import "context"

// Store persists the snapshot between runs.
// Load returns an empty snapshot and no error when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

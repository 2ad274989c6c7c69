package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/domain/state"
	qb "github.com/riskibarqy/injury-monitor/internal/platform/querybuilder"
)

const (
	stateTable       = "injury_state"
	stateKeyColumn   = "identity_key"
	stateUpsertBatch = 200
)

// StateRepository keeps one row per identity key in injury_state.
type StateRepository struct {
	db *sqlx.DB
}

func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

func (r *StateRepository) Load(ctx context.Context) (state.Snapshot, error) {
	columns, err := qb.Columns[stateTableModel]()
	if err != nil {
		return nil, fmt.Errorf("state columns: %w", err)
	}
	query, err := qb.SelectAll(stateTable, columns, stateKeyColumn)
	if err != nil {
		return nil, fmt.Errorf("build load state query: %w", err)
	}

	var rows []stateTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	snapshot := make(state.Snapshot, len(rows))
	for _, row := range rows {
		snapshot[row.IdentityKey] = row.toEntry()
	}
	return snapshot, nil
}

// Save upserts every entry in batches inside one transaction. Rows for keys
// missing from snapshot are left untouched.
func (r *StateRepository) Save(ctx context.Context, snapshot state.Snapshot) error {
	if len(snapshot) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save state: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows := stateRowsFromSnapshot(snapshot)
	for start := 0; start < len(rows); start += stateUpsertBatch {
		end := min(start+stateUpsertBatch, len(rows))
		query, args, err := buildStateUpsert(rows[start:end])
		if err != nil {
			return fmt.Errorf("build upsert state query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert state rows %d-%d: %w", start, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save state tx: %w", err)
	}
	return nil
}

func buildStateUpsert(rows []stateTableModel) (string, []any, error) {
	return qb.UpsertModels(stateTable, stateKeyColumn, rows, "updated_at")
}

// stateRowsFromSnapshot orders rows by key so batches are deterministic.
func stateRowsFromSnapshot(snapshot state.Snapshot) []stateTableModel {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]stateTableModel, 0, len(keys))
	for _, key := range keys {
		entry := snapshot[key]
		rows = append(rows, stateTableModel{
			IdentityKey: key,
			Status:      string(entry.Status),
			Injury:      entry.Injury,
			Sport:       string(entry.Sport),
			LastSeen:    entry.LastSeen,
		})
	}
	return rows
}

type stateTableModel struct {
	IdentityKey string `db:"identity_key"`
	Status      string `db:"status"`
	Injury      string `db:"injury"`
	Sport       string `db:"sport"`
	LastSeen    string `db:"last_seen"`
}

func (m stateTableModel) toEntry() state.Entry {
	return state.Entry{
		Status:   injury.Status(m.Status),
		Injury:   m.Injury,
		Sport:    injury.Sport(m.Sport),
		LastSeen: m.LastSeen,
	}
}

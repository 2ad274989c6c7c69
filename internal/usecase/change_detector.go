package usecase

import (
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/domain/state"
)

// DetectChanges flags records whose normalized status differs from the stored one.
// Keys missing from previous are first sightings and never count as a change.
func DetectChanges(records []injury.Record, previous state.Snapshot) []injury.Record {
	out := make([]injury.Record, len(records))
	for i, record := range records {
		record.StatusChanged = false
		record.PreviousStatus = nil

		if entry, ok := previous[record.Key()]; ok {
			stored := storedStatus(entry.Status)
			if stored != record.Status {
				record.StatusChanged = true
				record.PreviousStatus = &stored
			}
		}
		out[i] = record
	}
	return out
}

func storedStatus(status injury.Status) injury.Status {
	if status.Valid() {
		return status
	}
	return injury.NormalizeStatus(string(status))
}

// SnapshotOf builds the state fragment persisted for one sport's records.
func SnapshotOf(records []injury.Record, sport injury.Sport, seenAt string) state.Snapshot {
	out := make(state.Snapshot, len(records))
	for _, record := range records {
		out[record.Key()] = state.Entry{
			Status:   record.Status,
			Injury:   record.Injury,
			Sport:    sport,
			LastSeen: seenAt,
		}
	}
	return out
}

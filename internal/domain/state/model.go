package state

import "github.com/riskibarqy/injury-monitor/internal/domain/injury"

// Entry is the last-known status for one identity key.
type Entry struct {
	Status   injury.Status `json:"status" db:"status"`
	Injury   string        `json:"injury" db:"injury"`
	Sport    injury.Sport  `json:"sport" db:"sport"`
	LastSeen string        `json:"last_seen" db:"last_seen"`
}

// Snapshot maps identity key to its last-known entry.
type Snapshot map[string]Entry

// Merge returns a new snapshot where entries from next replace those in s on key collision.
func (s Snapshot) Merge(next Snapshot) Snapshot {
	out := make(Snapshot, len(s)+len(next))
	for key, entry := range s {
		out[key] = entry
	}
	for key, entry := range next {
		out[key] = entry
	}
	return out
}

package usecase

import "github.com/riskibarqy/injury-monitor/internal/domain/injury"

// Source authority for dedupe. Unlisted sources rank 0.
var sourcePriority = map[string]int{
	"nba_official":     3,
	"mlb_transactions": 3,
	"espn":             2,
	"cbs":              1,
}

func SourcePriority(source string) int {
	return sourcePriority[source]
}

// Dedupe keeps one record per identity key. A later record wins when its source ranks
// strictly higher, or ranks equal and its Updated string sorts after the stored one.
// Output follows first-seen key order.
func Dedupe(records []injury.Record) []injury.Record {
	if len(records) == 0 {
		return []injury.Record{}
	}

	index := make(map[string]int, len(records))
	out := make([]injury.Record, 0, len(records))
	for _, record := range records {
		key := record.Key()
		pos, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, record)
			continue
		}
		if supersedes(record, out[pos]) {
			out[pos] = record
		}
	}
	return out
}

func supersedes(incoming, stored injury.Record) bool {
	incomingRank := SourcePriority(incoming.Source)
	storedRank := SourcePriority(stored.Source)
	if incomingRank != storedRank {
		return incomingRank > storedRank
	}
	return incoming.Updated > stored.Updated
}

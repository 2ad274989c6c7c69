package state

import (
	"testing"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
)

func TestSnapshot_MergeNewWins(t *testing.T) {
	t.Parallel()

	old := Snapshot{
		"a|x": {Status: injury.StatusOut, Sport: injury.SportNBA},
		"b|y": {Status: injury.StatusQuestionable, Sport: injury.SportNBA},
	}
	next := Snapshot{
		"a|x": {Status: injury.StatusProbable, Sport: injury.SportNBA},
		"c|z": {Status: injury.StatusIL10, Sport: injury.SportMLB},
	}

	merged := old.Merge(next)
	if len(merged) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(merged))
	}
	if merged["a|x"].Status != injury.StatusProbable {
		t.Fatalf("expected new value to win, got %s", merged["a|x"].Status)
	}
	if merged["b|y"].Status != injury.StatusQuestionable {
		t.Fatalf("expected untouched old entry to survive, got %s", merged["b|y"].Status)
	}
	if old["a|x"].Status != injury.StatusOut {
		t.Fatalf("merge must not mutate receiver")
	}
}

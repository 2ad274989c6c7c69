package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/domain/state"
)

func TestStateRepository_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	repo := NewStateRepository(filepath.Join(t.TempDir(), "missing.json"))
	snapshot, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snapshot == nil || len(snapshot) != 0 {
		t.Fatalf("expected empty snapshot, got %#v", snapshot)
	}
}

func TestStateRepository_SaveThenLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "state.json")
	repo := NewStateRepository(path)
	want := state.Snapshot{
		"lebron james|los angeles lakers": {
			Status:   injury.StatusOut,
			Injury:   "Ankle",
			Sport:    injury.SportNBA,
			LastSeen: "2026-03-05T18:00:00Z",
		},
	}

	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got["lebron james|los angeles lakers"] != want["lebron james|los angeles lakers"] {
		t.Fatalf("unexpected snapshot: %#v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestStateRepository_ReadsLegacyDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	legacy := `{"ja morant|memphis grizzlies": {"status": "questionable", "injury": "Knee", "sport": "nba", "last_seen": "2026-03-04T12:00:00+00:00"}}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := NewStateRepository(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	entry, ok := got["ja morant|memphis grizzlies"]
	if !ok || entry.Status != injury.StatusQuestionable || entry.Sport != injury.SportNBA {
		t.Fatalf("unexpected entry: %#v", got)
	}
}

func TestStateRepository_CorruptFileFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewStateRepository(path).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestStateRepository_EmptyFileIsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	got, err := NewStateRepository(path).Load(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %#v err=%v", got, err)
	}
}

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/injury-monitor/internal/domain/state"
)

func TestNewClient_RejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("http://localhost:6379"); err == nil {
		t.Fatalf("expected error for non-redis scheme")
	}

	client, err := NewClient("redis://:secret@localhost:6380/2")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	opts := client.Options()
	if opts.Addr != "localhost:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("unexpected options: addr=%s db=%d", opts.Addr, opts.DB)
	}
}

func TestStateRepository_UnreachableServer(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	repo := NewStateRepository(client, "injury-monitor:test")

	if _, err := repo.Load(context.Background()); err == nil {
		t.Fatalf("expected load error against unreachable server")
	}
	if err := repo.Save(context.Background(), state.Snapshot{}); err == nil {
		t.Fatalf("expected save error against unreachable server")
	}
}

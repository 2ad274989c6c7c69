package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/injury-monitor/internal/domain/state"
)

// StateRepository stores the snapshot as one JSON value under a single key.
type StateRepository struct {
	client *goredis.Client
	key    string
}

// NewClient parses a redis:// URL into a client. It does not dial.
func NewClient(redisURL string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return goredis.NewClient(opt), nil
}

func NewStateRepository(client *goredis.Client, key string) *StateRepository {
	return &StateRepository{client: client, key: key}
}

func (r *StateRepository) Load(ctx context.Context) (state.Snapshot, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return state.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state key=%s: %w", r.key, err)
	}

	snapshot := state.Snapshot{}
	if err := sonic.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode state key=%s: %w", r.key, err)
	}
	if snapshot == nil {
		snapshot = state.Snapshot{}
	}
	return snapshot, nil
}

func (r *StateRepository) Save(ctx context.Context, snapshot state.Snapshot) error {
	if snapshot == nil {
		snapshot = state.Snapshot{}
	}
	raw, err := sonic.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set state key=%s: %w", r.key, err)
	}
	return nil
}

package signup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrFlowNotFound means the flow expired or never existed.
var ErrFlowNotFound = errors.New("signup session not found or expired")

// FlowStore persists in-progress flows between requests.
type FlowStore interface {
	Save(ctx context.Context, flow Flow) error
	Get(ctx context.Context, id string) (Flow, error)
	Delete(ctx context.Context, id string) error

	// AcquireSubmit takes the per-flow submit lock; false means a commit is
	// already in flight. ReleaseSubmit frees it so a failed commit can be
	// retried.
	AcquireSubmit(ctx context.Context, id string) (bool, error)
	ReleaseSubmit(ctx context.Context, id string) error
}

type redisFlowStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisFlowStore(rdb *redis.Client, ttl time.Duration) FlowStore {
	return &redisFlowStore{rdb: rdb, ttl: ttl}
}

func flowKey(id string) string {
	return fmt.Sprintf("signup:flow:%s", id)
}

func submitKey(id string) string {
	return fmt.Sprintf("signup:submit:%s", id)
}

func (s *redisFlowStore) Save(ctx context.Context, flow Flow) error {
	payload, err := json.Marshal(flow)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, flowKey(flow.ID), payload, s.ttl).Err()
}

func (s *redisFlowStore) Get(ctx context.Context, id string) (Flow, error) {
	payload, err := s.rdb.Get(ctx, flowKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Flow{}, ErrFlowNotFound
	}
	if err != nil {
		return Flow{}, fmt.Errorf("failed to load signup flow: %w", err)
	}

	var flow Flow
	if err := json.Unmarshal(payload, &flow); err != nil {
		return Flow{}, fmt.Errorf("failed to decode signup flow: %w", err)
	}

	return flow, nil
}

func (s *redisFlowStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, flowKey(id)).Err()
}

func (s *redisFlowStore) AcquireSubmit(ctx context.Context, id string) (bool, error) {
	// lock expires on its own in case a commit dies mid-flight
	wasSet, err := s.rdb.SetNX(ctx, submitKey(id), "locked", time.Minute).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submit lock: %w", err)
	}

	return wasSet, nil
}

func (s *redisFlowStore) ReleaseSubmit(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, submitKey(id)).Err()
}

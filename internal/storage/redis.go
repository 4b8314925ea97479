package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"plandrift/pkg/logging"
)

// DefaultRedisPrefix namespaces every key the store writes.
const DefaultRedisPrefix = "plandrift:"

// RedisClient is the subset of *redis.Client the store uses
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	ZAdd(ctx context.Context, key string, members ...*redis.Z) *redis.IntCmd
	ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Close() error
}

// RedisStore keeps each record as a JSON string and a per-repo sorted set
// of plan ids scored by timestamp.
type RedisStore struct {
	client RedisClient
	prefix string
	logger logging.Logger
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password, prefix string, logger logging.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Debug("Connected to redis plan store at %s", addr)
	return NewRedisStoreWithClient(client, prefix, logger), nil
}

// NewRedisStoreWithClient creates a RedisStore over an existing client
func NewRedisStoreWithClient(client RedisClient, prefix string, logger logging.Logger) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) planKey(planID string) string {
	return s.prefix + "plan:" + planID
}

func (s *RedisStore) repoKey(repo string) string {
	return s.prefix + "repo:" + repo
}

// Save writes the record and indexes it under its repo.
func (s *RedisStore) Save(ctx context.Context, record *PlanRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode plan %s: %w", record.PlanID, err)
	}

	if err := s.client.Set(ctx, s.planKey(record.PlanID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save plan %s: %w", record.PlanID, err)
	}

	member := &redis.Z{Score: float64(record.Timestamp.UnixMicro()), Member: record.PlanID}
	if err := s.client.ZAdd(ctx, s.repoKey(record.RepoName), member).Err(); err != nil {
		return fmt.Errorf("failed to index plan %s: %w", record.PlanID, err)
	}
	return nil
}

// Get loads one record by id.
func (s *RedisStore) Get(ctx context.Context, planID string) (*PlanRecord, error) {
	data, err := s.client.Get(ctx, s.planKey(planID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}

	var record PlanRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt plan %s: %w", planID, err)
	}
	return &record, nil
}

// ListByRepo returns the newest records for repo first. Ids whose record
// has disappeared are skipped.
func (s *RedisStore) ListByRepo(ctx context.Context, repo string, limit int) ([]*PlanRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := s.client.ZRevRange(ctx, s.repoKey(repo), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list plans for %s: %w", repo, err)
	}

	out := make([]*PlanRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("Plan %s is indexed under %s but missing", id, repo)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

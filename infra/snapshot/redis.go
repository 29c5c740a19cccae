package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	core "github.com/kilianp07/minesched/core/snapshot"
)

// RedisStore keeps snapshots in Redis: one JSON value per snapshot plus
// sorted-set indexes scored by creation time.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient creates a client with the same timeouts as other services.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
		PoolSize:     10,
	})
}

// NewRedisStore wraps client. A zero ttl keeps snapshots forever.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "minesched"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) snapKey(id string) string { return s.prefix + ":snapshot:" + id }

func (s *RedisStore) indexKey(kind core.Kind) string {
	if kind == "" {
		return s.prefix + ":snapshots"
	}
	return s.prefix + ":snapshots:" + string(kind)
}

// Save stores the snapshot and indexes it.
func (s *RedisStore) Save(ctx context.Context, snap core.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	score := float64(snap.CreatedAt.UnixNano())
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.snapKey(snap.ID), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(""), redis.Z{Score: score, Member: snap.ID})
		pipe.ZAdd(ctx, s.indexKey(snap.Kind), redis.Z{Score: score, Member: snap.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Get returns the full snapshot.
func (s *RedisStore) Get(ctx context.Context, id string) (core.Snapshot, error) {
	data, err := s.client.Get(ctx, s.snapKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.Snapshot{}, core.ErrNotFound
		}
		return core.Snapshot{}, fmt.Errorf("redis get snapshot %s: %w", id, err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// List returns summaries matching q, newest first. Index entries whose
// value expired are pruned.
func (s *RedisStore) List(ctx context.Context, q core.Query) ([]core.Snapshot, error) {
	start := int64(max(q.Offset, 0))
	stop := int64(-1)
	if q.Limit > 0 {
		stop = start + int64(q.Limit) - 1
	}
	ids, err := s.client.ZRevRange(ctx, s.indexKey(q.Kind), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list snapshots: %w", err)
	}
	out := make([]core.Snapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := s.Get(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			s.unindex(ctx, id, q.Kind)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, snap.Summary())
	}
	return out, nil
}

func (s *RedisStore) unindex(ctx context.Context, id string, kinds ...core.Kind) {
	pipe := s.client.Pipeline()
	pipe.ZRem(ctx, s.indexKey(""), id)
	for _, k := range append(kinds, core.KindGeneration, core.KindManual) {
		pipe.ZRem(ctx, s.indexKey(k), id)
	}
	_, _ = pipe.Exec(ctx)
}

// Delete removes the snapshot and its index entries.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.snapKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete snapshot %s: %w", id, err)
	}
	s.unindex(ctx, id)
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

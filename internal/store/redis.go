// Package store mirrors the suspect-address aggregator into a shared
// Redis instance, grounded on the redis/go-redis/v9 usage in
// other_examples/etalazz-vsa/internal/ratelimiter/persistence/redis.go
// (a narrow client interface plus a HINCRBY-based counter). This mirror is
// never authoritative: spec.md's aggregator (internal/suspects) owns the
// in-process counts for the run that produces the blocklist; the mirror
// only lets a live-mode deployment with several netshield processes watch
// the same blocklist grow across batches.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sandia-netshield/netshield/internal/suspects"
)

const keyPrefix = "netshield:suspects:"

// Cmdable is the minimal redis.Client surface this package needs,
// satisfied by *redis.Client and *redis.ClusterClient alike.
type Cmdable interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// Mirror accumulates suspect counts in Redis under a single run key so
// other processes watching the same key can observe the growing
// blocklist. It is optional: a nil *Mirror's methods are no-ops.
type Mirror struct {
	client Cmdable
	key    string
}

// New returns a Mirror keyed by runID. Pass an address through
// NewClient to obtain a Cmdable, or any fake satisfying Cmdable in tests.
func New(client Cmdable, runID string) *Mirror {
	return &Mirror{client: client, key: keyPrefix + runID}
}

// NewClient builds a *redis.Client for addr, matching the bare
// redis.NewClient(&redis.Options{Addr: addr}) idiom used throughout the
// go-redis ecosystem (and other_examples/etalazz-vsa's redis_e2e_test.go).
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// AddAll increments the shared counter for every entry's address by its
// count, after the run's own suspects.Aggregator has finished this batch.
func (m *Mirror) AddAll(ctx context.Context, entries []suspects.Entry) error {
	if m == nil {
		return nil
	}
	for _, e := range entries {
		if err := m.client.HIncrBy(ctx, m.key, e.Addr, int64(e.Count)).Err(); err != nil {
			return fmt.Errorf("store: mirror suspect %s: %w", e.Addr, err)
		}
	}
	return nil
}

// Snapshot reads back the shared counters, for diagnostics or a
// cross-batch blocklist view; it never feeds back into detection.
func (m *Mirror) Snapshot(ctx context.Context) (map[string]int64, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := m.client.HGetAll(ctx, m.key).Result()
	if err != nil {
		return nil, fmt.Errorf("store: snapshot: %w", err)
	}

	out := make(map[string]int64, len(raw))
	for addr, v := range raw {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			continue
		}
		out[addr] = n
	}
	return out, nil
}

package rsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dictd/lib/dict"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is prepended to the partition letter to form the hash key (DA, DB, ...)
const DefaultPrefix = "D"

// NewRedisSource creates a source reading partitions from Redis hashes.
// The client is owned by the caller.
func NewRedisSource(client redis.UniversalClient, prefix string) dict.ISource {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &redisSource{client: client, prefix: prefix}
}

// redisSource implements dict.ISource with one hash per partition, the term as field
// and the record JSON as value
type redisSource struct {
	client redis.UniversalClient
	prefix string
}

// --------------------------------------------------------------------------
// Interface Methods (docu see dict.ISource)
// --------------------------------------------------------------------------

func (s *redisSource) Name() string {
	return "redis:" + s.prefix + "*"
}

func (s *redisSource) Get(ctx context.Context, term string) (dict.Record, bool, error) {
	partition, ok := dict.PartitionOf(term)
	if !ok {
		return dict.Record{}, false, fmt.Errorf("%w: no partition for %q", dict.ErrPartition, term)
	}

	raw, err := s.client.HGet(ctx, s.Key(partition), term).Bytes()
	if errors.Is(err, redis.Nil) {
		return dict.Record{}, false, nil
	}
	if err != nil {
		return dict.Record{}, false, fmt.Errorf("%w: %v", dict.ErrPartition, err)
	}

	var rec dict.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return dict.Record{}, false, fmt.Errorf("invalid record %q in partition %s: %w", term, partition, err)
	}
	return rec, true, nil
}

// Key returns the hash key of a partition
func (s *redisSource) Key(partition string) string {
	return s.prefix + partition
}

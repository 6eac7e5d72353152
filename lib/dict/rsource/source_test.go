package rsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ValentinKolb/dictd/lib/dict"
	dicttesting "github.com/ValentinKolb/dictd/lib/dict/testing"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// testClient connects to the Redis instance named by DICTD_TEST_REDIS_ADDR. Without it an
// in-process miniredis server is started for the test.
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("DICTD_TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis at %s not reachable: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// seed writes the dataset under a prefix unique to the test and removes it afterwards
func seed(t *testing.T, client *redis.Client, data dicttesting.Dataset) string {
	t.Helper()
	ctx := context.Background()
	prefix := fmt.Sprintf("dictd-test-%d-", time.Now().UnixNano())

	var keys []string
	for partition, entries := range data {
		key := prefix + partition
		keys = append(keys, key)
		for term, raw := range entries {
			if err := client.HSet(ctx, key, term, raw).Err(); err != nil {
				t.Fatalf("HSET %s %s: %v", key, term, err)
			}
		}
	}

	t.Cleanup(func() { client.Del(context.Background(), keys...) })
	return prefix
}

func Test(t *testing.T) {
	client := testClient(t)
	dicttesting.RunSourceTests(t, "RedisSource", func(t *testing.T, data dicttesting.Dataset) dict.ISource {
		return NewRedisSource(client, seed(t, client, data))
	})
}

func TestPartitionError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()

	// a partition key holding a string instead of a hash
	server.Set("DW", "not a hash")
	source := NewRedisSource(client, "")

	_, loaded, err := source.Get(context.Background(), "WORD")
	if loaded || !errors.Is(err, dict.ErrPartition) {
		t.Errorf("Get(WORD) = loaded %v, err %v; want ErrPartition", loaded, err)
	}

	// the server goes away: lookups collapse into NotFound
	server.HSet("DH", "HELLO", `{"MEANINGS": {"noun": ["a greeting"]}}`)
	p := dict.NewProvider(source)
	if res := p.Lookup(context.Background(), "hello"); !res.Found {
		t.Fatalf("hello not found before shutdown")
	}
	server.Close()
	if res := p.Lookup(context.Background(), "hello"); res.Found {
		t.Error("Lookups must be NotFound once Redis is gone")
	}
}

func TestUnreachable(t *testing.T) {
	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer client.Close()

	p := dict.NewProvider(NewRedisSource(client, ""))
	if res := p.Lookup(context.Background(), "hello"); res.Found {
		t.Error("Unreachable Redis must resolve to NotFound")
	}
}

func TestKey(t *testing.T) {
	s := &redisSource{prefix: DefaultPrefix}
	if got := s.Key("H"); got != "DH" {
		t.Errorf("Expected DH, got %s", got)
	}
	if got := NewRedisSource(nil, "").Name(); got != "redis:D*" {
		t.Errorf("Unexpected name %s", got)
	}
}

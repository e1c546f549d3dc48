package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beezio/marketplace/internal/domain/importing"
)

const defaultJobKeyPrefix = "import:job:"

// RedisJobRegistry implements importing.JobRegistry on Redis so that several
// server instances share one in-flight set. Each key carries a TTL, which
// frees keys left behind by a crashed process.
type RedisJobRegistry struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisJobRegistry connects to Redis and verifies the connection
func NewRedisJobRegistry(cfg RedisConfig, ttl time.Duration) (*RedisJobRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisJobRegistryWithClient(client, "", ttl), nil
}

// NewRedisJobRegistryWithClient creates a registry with an existing Redis client
func NewRedisJobRegistryWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisJobRegistry {
	if keyPrefix == "" {
		keyPrefix = defaultJobKeyPrefix
	}
	if ttl <= 0 {
		ttl = importing.DefaultJobTTL
	}
	return &RedisJobRegistry{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Acquire uses SETNX so that exactly one caller wins the key. The token is
// stored as the value.
func (r *RedisJobRegistry) Acquire(ctx context.Context, key importing.JobKey, token string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.keyPrefix+key.String(), token, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire import job %s: %w", key, err)
	}
	return ok, nil
}

// releaseScript deletes KEYS[1] only while its value is ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Release deletes the key if token still holds it
func (r *RedisJobRegistry) Release(ctx context.Context, key importing.JobKey, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.keyPrefix + key.String()}, token).Err(); err != nil {
		return fmt.Errorf("failed to release import job %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key regardless of its token
func (r *RedisJobRegistry) Remove(ctx context.Context, key importing.JobKey) error {
	if err := r.client.Del(ctx, r.keyPrefix+key.String()).Err(); err != nil {
		return fmt.Errorf("failed to remove import job %s: %w", key, err)
	}
	return nil
}

// Contains checks key existence
func (r *RedisJobRegistry) Contains(ctx context.Context, key importing.JobKey) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+key.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check import job %s: %w", key, err)
	}
	return n > 0, nil
}

// HeldBy compares the stored token
func (r *RedisJobRegistry) HeldBy(ctx context.Context, key importing.JobKey, token string) (bool, error) {
	v, err := r.client.Get(ctx, r.keyPrefix+key.String()).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check import job %s: %w", key, err)
	}
	return v == token, nil
}

// InFlight scans the key prefix. SCAN may return a key twice, so results are
// de-duplicated.
func (r *RedisJobRegistry) InFlight(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		seen[strings.TrimPrefix(iter.Val(), r.keyPrefix)] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the Redis client
func (r *RedisJobRegistry) Close() error {
	return r.client.Close()
}

// Client returns the underlying Redis client (for testing/monitoring)
func (r *RedisJobRegistry) Client() *redis.Client {
	return r.client
}

var _ importing.JobRegistry = (*RedisJobRegistry)(nil)

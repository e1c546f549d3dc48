package cache

import (
	"fmt"
	"time"

	"github.com/beezio/marketplace/internal/domain/importing"
	"github.com/beezio/marketplace/internal/infrastructure/config"
	"go.uber.org/zap"
)

// JobRegistryFactory creates job registries based on configuration
type JobRegistryFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// JobRegistryFactoryOption is a functional option for configuring the factory
type JobRegistryFactoryOption func(*JobRegistryFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) JobRegistryFactoryOption {
	return func(f *JobRegistryFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory registry
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) JobRegistryFactoryOption {
	return func(f *JobRegistryFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewJobRegistryFactory creates a new factory
func NewJobRegistryFactory(cfg config.RedisConfig, ttl time.Duration, opts ...JobRegistryFactoryOption) *JobRegistryFactory {
	f := &JobRegistryFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRegistry returns a Redis registry when Redis is enabled and reachable,
// otherwise an in-memory one if fallback is allowed.
//
// An in-memory registry does not share state across instances, so two
// servers may import the same external product concurrently.
func (f *JobRegistryFactory) CreateRegistry() (importing.JobRegistry, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory import job registry")
		return NewInMemoryJobRegistry(f.ttl), nil
	}

	registry, err := NewRedisJobRegistry(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl)
	if err == nil {
		f.logger.Info("using Redis import job registry",
			zap.String("addr", fmt.Sprintf("%s:%d", f.redisConfig.Host, f.redisConfig.Port)))
		return registry, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for import job registry but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory import job registry. "+
		"Duplicate imports across instances are not prevented.",
		zap.Error(err),
	)
	return NewInMemoryJobRegistry(f.ttl), nil
}

package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/beezio/marketplace/internal/domain/importing"
)

// entry represents a held job key with its owner token and expiration
type entry struct {
	token     string
	expiresAt time.Time
}

// InMemoryJobRegistry implements importing.JobRegistry with a mutex-guarded map.
// It is suitable for single-instance deployments and testing.
type InMemoryJobRegistry struct {
	mu        sync.Mutex
	entries   map[string]entry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryJobRegistry creates a registry whose keys expire after ttl.
// It starts a background goroutine to drop expired keys.
func NewInMemoryJobRegistry(ttl time.Duration) *InMemoryJobRegistry {
	if ttl <= 0 {
		ttl = importing.DefaultJobTTL
	}
	r := &InMemoryJobRegistry{
		entries:  make(map[string]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Acquire adds key unless a live entry already holds it
func (r *InMemoryJobRegistry) Acquire(_ context.Context, key importing.JobKey, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key.String()
	now := time.Now()
	if e, exists := r.entries[k]; exists && now.Before(e.expiresAt) {
		return false, nil
	}
	r.entries[k] = entry{token: token, expiresAt: now.Add(r.ttl)}
	return true, nil
}

// Release removes key if token still holds it
func (r *InMemoryJobRegistry) Release(_ context.Context, key importing.JobKey, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, exists := r.entries[key.String()]; exists && e.token == token {
		delete(r.entries, key.String())
	}
	return nil
}

// Remove drops key whoever holds it
func (r *InMemoryJobRegistry) Remove(_ context.Context, key importing.JobKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key.String())
	return nil
}

// Contains reports whether key is held and not expired
func (r *InMemoryJobRegistry) Contains(_ context.Context, key importing.JobKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, exists := r.entries[key.String()]
	return exists && time.Now().Before(e.expiresAt), nil
}

// HeldBy reports whether key is held by token and not expired
func (r *InMemoryJobRegistry) HeldBy(_ context.Context, key importing.JobKey, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, exists := r.entries[key.String()]
	return exists && e.token == token && time.Now().Before(e.expiresAt), nil
}

// InFlight returns the live keys in sorted order
func (r *InMemoryJobRegistry) InFlight(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	keys := make([]string, 0, len(r.entries))
	for k, e := range r.entries {
		if now.Before(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (r *InMemoryJobRegistry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
	})
	return nil
}

func (r *InMemoryJobRegistry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.cleanup()
		}
	}
}

func (r *InMemoryJobRegistry) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for k, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, k)
		}
	}
}

// Size returns the number of entries, expired or not (for testing/monitoring)
func (r *InMemoryJobRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

var _ importing.JobRegistry = (*InMemoryJobRegistry)(nil)

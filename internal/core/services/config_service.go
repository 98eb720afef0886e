package services

import (
	"context"
	"sync"
	"time"

	"campushub/internal/adapters/persistence/repositories"
)

// Config flag keys
const (
	KeyMaintenanceMode  = "maintenance_mode"
	KeyOpenRegistration = "open_registration"
)

const configCacheTTL = 30 * time.Second

// ConfigService is a soft-TTL cache over the system_configs store. Values
// are refreshed in bulk at most once per TTL window; a local write updates
// the cache immediately. Concurrent refreshes are redundant but harmless;
// the values change rarely and staleness within the TTL is acceptable.
type ConfigService struct {
	repo repositories.ConfigRepository

	mu          sync.RWMutex
	cache       map[string]string
	lastRefresh time.Time
}

// NewConfigService creates a new config service
func NewConfigService(repo repositories.ConfigRepository) *ConfigService {
	return &ConfigService{
		repo:  repo,
		cache: make(map[string]string),
	}
}

// Get returns the cached value for a key, refreshing the whole cache from
// the store when the TTL window has passed. Missing keys return "".
func (s *ConfigService) Get(ctx context.Context, key string) string {
	s.mu.RLock()
	stale := time.Since(s.lastRefresh) > configCacheTTL
	value := s.cache[key]
	s.mu.RUnlock()

	if !stale {
		return value
	}

	s.refresh(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[key]
}

// Set writes a value through to the store and updates the cache immediately
func (s *ConfigService) Set(ctx context.Context, key, value string) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	return nil
}

// GetBool interprets a flag value as a boolean ("true" or "1").
// An unreadable or missing flag reads as false.
func (s *ConfigService) GetBool(ctx context.Context, key string) bool {
	value := s.Get(ctx, key)
	return value == "true" || value == "1"
}

// MaintenanceMode reports whether the maintenance flag is set
func (s *ConfigService) MaintenanceMode(ctx context.Context) bool {
	return s.GetBool(ctx, KeyMaintenanceMode)
}

// OpenRegistration reports whether new registrations are accepted
func (s *ConfigService) OpenRegistration(ctx context.Context) bool {
	return s.GetBool(ctx, KeyOpenRegistration)
}

// All returns a snapshot of every cached flag, refreshing first if stale
func (s *ConfigService) All(ctx context.Context) map[string]string {
	s.mu.RLock()
	stale := time.Since(s.lastRefresh) > configCacheTTL
	s.mu.RUnlock()

	if stale {
		s.refresh(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]string, len(s.cache))
	for k, v := range s.cache {
		snapshot[k] = v
	}
	return snapshot
}

// refresh bulk-loads the cache from the store. A failed load keeps the
// previous cache contents and retries on the next stale read.
func (s *ConfigService) refresh(ctx context.Context) {
	configs, err := s.repo.All(ctx)
	if err != nil {
		return
	}

	fresh := make(map[string]string, len(configs))
	for _, cfg := range configs {
		fresh[cfg.Key] = cfg.Value
	}

	s.mu.Lock()
	s.cache = fresh
	s.lastRefresh = time.Now()
	s.mu.Unlock()
}

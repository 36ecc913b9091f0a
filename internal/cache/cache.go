// Package cache provides a generic in-memory LRU cache with TTL and a
// manager that sweeps expired entries on a shared ticker.
package cache

import (
	"log/slog"
	"time"
)

// Cache defines a generic cache interface.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that support expiry sweeps.
type Cleaner interface {
	CleanExpired() int
}

type registered struct {
	name  string
	cache Cleaner
}

// Manager owns the cleanup goroutine for a set of named caches.
type Manager struct {
	caches      []registered
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the sweep set. Must be called before StartCleanup.
func (m *Manager) Register(name string, cache Cleaner) {
	m.caches = append(m.caches, registered{name: name, cache: cache})
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, reg := range m.caches {
				if removed := reg.cache.CleanExpired(); removed > 0 {
					slog.Debug("Cache cleanup completed", "cache", reg.name, "entries_removed", removed)
				}
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop shuts down the cleanup goroutine and waits for it to exit.
// Safe to call when StartCleanup never ran.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	if m.started {
		<-m.cleanupDone
	}
}

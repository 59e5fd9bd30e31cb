package db

import (
	"fmt"
	"sync"
)

// Manager handles database and Redis connections
type Manager struct {
	gorm  *GormDB
	redis *RedisDB
	mu    sync.Mutex
}

// NewManager creates a new connection manager
func NewManager() *Manager {
	return &Manager{}
}

// InitGorm initializes the account store connection
func (m *Manager) InitGorm(databaseURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gorm != nil {
		return fmt.Errorf("database connection already initialized")
	}

	g, err := NewGormDB(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m.gorm = g
	return nil
}

// InitRedis initializes the session store connection
func (m *Manager) InitRedis(cfg RedisConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.redis != nil {
		return fmt.Errorf("redis connection already initialized")
	}

	r, err := NewRedisDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	m.redis = r
	return nil
}

// Gorm returns the account store connection
func (m *Manager) Gorm() *GormDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gorm
}

// Redis returns the session store connection
func (m *Manager) Redis() *RedisDB {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.redis
}

// Close closes all connections
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error

	if m.gorm != nil {
		if err := m.gorm.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		m.gorm = nil
	}

	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
		m.redis = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing connections: %v", errs)
	}

	return nil
}

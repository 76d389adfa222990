package repository

import (
	"context"
	"time"

	"edu_gallery/internal/domain/models"
	"edu_gallery/internal/storage"

	gocache "github.com/patrickmn/go-cache"
)

// MemorySessionCache is the single-process session cache, the direct
// analog of the browser's localStorage copy. Used when no Redis is
// configured.
type MemorySessionCache struct {
	c *gocache.Cache
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{
		c: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (m *MemorySessionCache) StoreSession(_ context.Context, key string, s models.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	m.c.Set(sessionKey(key), s, ttl)
	return nil
}

func (m *MemorySessionCache) GetSession(_ context.Context, key string) (models.Session, error) {
	v, ok := m.c.Get(sessionKey(key))
	if !ok {
		return models.Session{}, storage.ErrSessionNotFound
	}

	s, ok := v.(models.Session)
	if !ok {
		m.c.Delete(sessionKey(key))
		return models.Session{}, storage.ErrSessionNotFound
	}

	return s, nil
}

func (m *MemorySessionCache) ClearSession(_ context.Context, key string) error {
	m.c.Delete(sessionKey(key))
	return nil
}

func (m *MemorySessionCache) StoreAdminSession(_ context.Context, key string, s models.AdminSession) error {
	m.c.Set(adminSessionKey(key), s, gocache.NoExpiration)
	return nil
}

func (m *MemorySessionCache) GetAdminSession(_ context.Context, key string) (models.AdminSession, error) {
	v, ok := m.c.Get(adminSessionKey(key))
	if !ok {
		return models.AdminSession{}, storage.ErrSessionNotFound
	}

	s, ok := v.(models.AdminSession)
	if !ok {
		m.c.Delete(adminSessionKey(key))
		return models.AdminSession{}, storage.ErrSessionNotFound
	}

	return s, nil
}

func (m *MemorySessionCache) ClearAdminSession(_ context.Context, key string) error {
	m.c.Delete(adminSessionKey(key))
	return nil
}

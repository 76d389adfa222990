package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edu_gallery/internal/domain/models"
	"edu_gallery/internal/storage"
	redisapp "edu_gallery/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// RedisSessionCache keeps cached sessions in Redis so several panel
// replicas see the same cache. User entries expire with the session; admin
// entries have no TTL and live until explicit logout.
type RedisSessionCache struct {
	Client *redisapp.Client
}

func NewRedisSessionCache(client *redisapp.Client) *RedisSessionCache {
	return &RedisSessionCache{Client: client}
}

func (r *RedisSessionCache) StoreSession(ctx context.Context, key string, s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	return r.Client.Set(ctx, sessionKey(key), data, ttl).Err()
}

func (r *RedisSessionCache) GetSession(ctx context.Context, key string) (models.Session, error) {
	data, err := r.Client.Get(ctx, sessionKey(key)).Bytes()
	if err == redis.Nil {
		return models.Session{}, storage.ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, err
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt cache entry is as good as no entry.
		r.Client.Del(ctx, sessionKey(key))
		return models.Session{}, storage.ErrSessionNotFound
	}

	return s, nil
}

func (r *RedisSessionCache) ClearSession(ctx context.Context, key string) error {
	return r.Client.Del(ctx, sessionKey(key)).Err()
}

func (r *RedisSessionCache) StoreAdminSession(ctx context.Context, key string, s models.AdminSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal admin session: %w", err)
	}

	// No expiry: admin sessions persist until explicit logout.
	return r.Client.Set(ctx, adminSessionKey(key), data, 0).Err()
}

func (r *RedisSessionCache) GetAdminSession(ctx context.Context, key string) (models.AdminSession, error) {
	data, err := r.Client.Get(ctx, adminSessionKey(key)).Bytes()
	if err == redis.Nil {
		return models.AdminSession{}, storage.ErrSessionNotFound
	}
	if err != nil {
		return models.AdminSession{}, err
	}

	var s models.AdminSession
	if err := json.Unmarshal(data, &s); err != nil {
		r.Client.Del(ctx, adminSessionKey(key))
		return models.AdminSession{}, storage.ErrSessionNotFound
	}

	return s, nil
}

func (r *RedisSessionCache) ClearAdminSession(ctx context.Context, key string) error {
	return r.Client.Del(ctx, adminSessionKey(key)).Err()
}

func sessionKey(key string) string {
	return "session:" + key
}

func adminSessionKey(key string) string {
	return "admin_session:" + key
}

package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu_gallery/internal/domain/models"
	"edu_gallery/internal/storage"
	redisapp "edu_gallery/internal/storage/redis"
)

func newMockedCache(t *testing.T) (*RedisSessionCache, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	return NewRedisSessionCache(redisapp.NewFromClient(db)), mock
}

func TestRedisSessionCache_GetSession(t *testing.T) {
	ctx := context.Background()
	cache, mock := newMockedCache(t)

	want := models.Session{
		Token:     "token-123",
		UserID:    uuid.New(),
		UserName:  "Test User",
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	data, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectGet("session:fp-abc").SetVal(string(data))

	got, err := cache.GetSession(ctx, "fp-abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionCache_GetSessionMiss(t *testing.T) {
	ctx := context.Background()
	cache, mock := newMockedCache(t)

	mock.ExpectGet("session:unknown").RedisNil()

	_, err := cache.GetSession(ctx, "unknown")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionCache_GetSessionCorruptEntry(t *testing.T) {
	ctx := context.Background()
	cache, mock := newMockedCache(t)

	mock.ExpectGet("session:fp-abc").SetVal("{broken")
	mock.ExpectDel("session:fp-abc").SetVal(1)

	_, err := cache.GetSession(ctx, "fp-abc")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionCache_ClearSession(t *testing.T) {
	ctx := context.Background()
	cache, mock := newMockedCache(t)

	mock.ExpectDel("session:fp-abc").SetVal(1)

	assert.NoError(t, cache.ClearSession(ctx, "fp-abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionCache_StoreAdminSession(t *testing.T) {
	ctx := context.Background()
	cache, mock := newMockedCache(t)

	session := models.AdminSession{
		AdminID:   uuid.New(),
		Username:  "admin",
		FullName:  "Admin",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	data, err := json.Marshal(session)
	require.NoError(t, err)

	// Admin sessions are stored without a TTL.
	mock.ExpectSet("admin_session:admin", data, 0).SetVal("OK")

	assert.NoError(t, cache.StoreAdminSession(ctx, "admin", session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSessionCache_AdminSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, mock := newMockedCache(t)

	want := models.AdminSession{
		AdminID:   uuid.New(),
		Username:  "admin",
		FullName:  "Admin",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	data, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectGet("admin_session:admin").SetVal(string(data))
	mock.ExpectDel("admin_session:admin").SetVal(1)

	got, err := cache.GetAdminSession(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.NoError(t, cache.ClearAdminSession(ctx, "admin"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySessionCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemorySessionCache()

	t.Run("user session round trip", func(t *testing.T) {
		session := models.Session{
			Token:     "token-123",
			UserID:    uuid.New(),
			ExpiresAt: time.Now().Add(time.Hour),
		}

		require.NoError(t, cache.StoreSession(ctx, "fp-1", session))

		got, err := cache.GetSession(ctx, "fp-1")
		require.NoError(t, err)
		assert.Equal(t, session, got)

		require.NoError(t, cache.ClearSession(ctx, "fp-1"))
		_, err = cache.GetSession(ctx, "fp-1")
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	})

	t.Run("miss", func(t *testing.T) {
		_, err := cache.GetSession(ctx, "absent")
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	})

	t.Run("user and admin keys do not collide", func(t *testing.T) {
		session := models.Session{Token: "user", ExpiresAt: time.Now().Add(time.Hour)}
		admin := models.AdminSession{AdminID: uuid.New(), Username: "shared"}

		require.NoError(t, cache.StoreSession(ctx, "shared", session))
		require.NoError(t, cache.StoreAdminSession(ctx, "shared", admin))

		gotUser, err := cache.GetSession(ctx, "shared")
		require.NoError(t, err)
		assert.Equal(t, "user", gotUser.Token)

		gotAdmin, err := cache.GetAdminSession(ctx, "shared")
		require.NoError(t, err)
		assert.Equal(t, admin, gotAdmin)
	})

	t.Run("admin session survives until logout", func(t *testing.T) {
		admin := models.AdminSession{AdminID: uuid.New(), Username: "admin"}
		require.NoError(t, cache.StoreAdminSession(ctx, "admin", admin))

		require.NoError(t, cache.ClearAdminSession(ctx, "admin"))
		_, err := cache.GetAdminSession(ctx, "admin")
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	})
}

package repository

import (
	"context"
	"time"

	"edu_gallery/internal/domain/models"

	"github.com/google/uuid"
)

// IdentityProvider is the capability interface over the hosted identity
// backend. Each method maps one-to-one onto a remote call; the service layer
// never assumes any two of them are correlated or transactional.
type IdentityProvider interface {
	ValidateAccessCode(ctx context.Context, code string) (models.User, error)
	UpsertDevice(ctx context.Context, userID uuid.UUID, fingerprint string, info models.DeviceInfo) error
	CreateSession(ctx context.Context, userID uuid.UUID, fingerprint string, duration time.Duration) (models.Session, error)
	ValidateSession(ctx context.Context, token string) error
	ValidateAdminCredentials(ctx context.Context, username, password string) (models.AdminUser, error)
	TouchAdminLastLogin(ctx context.Context, adminID uuid.UUID) error
	CreateUser(ctx context.Context, fullName, email string) (models.User, error)
	LogAccess(ctx context.Context, entry models.AccessLogEntry) error
	LogAppLaunch(ctx context.Context, entry models.AppLaunchEntry) error
}

// SessionCache is the local session store: a cache of backend-issued
// sessions keyed by client (the device fingerprint for users, the username
// for admins), not a source of truth.
type SessionCache interface {
	StoreSession(ctx context.Context, key string, s models.Session) error
	GetSession(ctx context.Context, key string) (models.Session, error)
	ClearSession(ctx context.Context, key string) error

	StoreAdminSession(ctx context.Context, key string, s models.AdminSession) error
	GetAdminSession(ctx context.Context, key string) (models.AdminSession, error)
	ClearAdminSession(ctx context.Context, key string) error
}

// DocumentStore is the config-store boundary the gallery service persists
// through.
type DocumentStore interface {
	Load() (doc *models.Document, recovered bool)
	Save(doc *models.Document) error
}

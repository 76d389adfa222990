package postgresql

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"edu_gallery/internal/domain/models"
	libjwt "edu_gallery/internal/lib/jwt"
	"edu_gallery/internal/storage"
)

// Storage is the PostgreSQL implementation of the identity backend: access
// codes, devices, sessions, admin credentials and access telemetry. Each
// method stands in for one remote call of the hosted service the panel
// originally talked to.
type Storage struct {
	db     *pgxpool.Pool
	sb     sq.StatementBuilderType
	secret string
}

const (
	usersTable        = "users"
	devicesTable      = "devices"
	sessionsTable     = "sessions"
	adminUsersTable   = "admin_users"
	accessLogsTable   = "access_logs"
	interactionsTable = "app_interactions"
)

const uniqueViolation = "23505"

func New(ctx context.Context, dsn, tokenSecret string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		secret: tokenSecret,
	}, nil
}

func (s *Storage) Stop() {
	s.db.Close()
}

// ValidateAccessCode resolves an active user by access code.
func (s *Storage) ValidateAccessCode(ctx context.Context, code string) (models.User, error) {
	const op = "storage.postgresql.ValidateAccessCode"

	query, args, err := s.sb.Select("id", "full_name", "email", "is_active", "created_at").
		From(usersTable).
		Where(sq.Eq{"access_code": code, "is_active": true}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpsertDevice registers a device fingerprint for a user, refreshing the
// stored device info and last-seen timestamp on repeat logins.
func (s *Storage) UpsertDevice(ctx context.Context, userID uuid.UUID, fingerprint string, info models.DeviceInfo) error {
	const op = "storage.postgresql.UpsertDevice"

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := s.sb.Insert(devicesTable).
		Columns("user_id", "fingerprint", "device_info", "first_seen", "last_seen").
		Values(userID, fingerprint, infoJSON, time.Now(), time.Now()).
		Suffix("ON CONFLICT (user_id, fingerprint) DO UPDATE SET device_info = EXCLUDED.device_info, last_seen = EXCLUDED.last_seen").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreateSession mints a session token bound to the device fingerprint and
// records it. Deliberately a separate call from UpsertDevice, with no
// rollback tying the two together.
func (s *Storage) CreateSession(ctx context.Context, userID uuid.UUID, fingerprint string, duration time.Duration) (models.Session, error) {
	const op = "storage.postgresql.CreateSession"

	query, args, err := s.sb.Select("full_name").
		From(usersTable).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	var fullName string
	if err := s.db.QueryRow(ctx, query, args...).Scan(&fullName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	expiresAt := now.Add(duration)

	token, err := libjwt.NewSessionToken(models.User{ID: userID, FullName: fullName}, fingerprint, s.secret, duration)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err = s.sb.Insert(sessionsTable).
		Columns("token", "user_id", "device_fingerprint", "created_at", "expires_at", "revoked").
		Values(token, userID, fingerprint, now, expiresAt, false).
		ToSql()
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Session{
		Token:     token,
		UserID:    userID,
		UserName:  fullName,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// ValidateSession checks the token signature and the stored session row.
func (s *Storage) ValidateSession(ctx context.Context, token string) error {
	const op = "storage.postgresql.ValidateSession"

	if _, err := libjwt.ParseSessionToken(token, s.secret); err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrSessionExpired)
	}

	query, args, err := s.sb.Select("expires_at", "revoked").
		From(sessionsTable).
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var expiresAt time.Time
	var revoked bool
	if err := s.db.QueryRow(ctx, query, args...).Scan(&expiresAt, &revoked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if revoked {
		return fmt.Errorf("%s: %w", op, storage.ErrSessionRevoked)
	}

	if time.Now().After(expiresAt) {
		return fmt.Errorf("%s: %w", op, storage.ErrSessionExpired)
	}

	return nil
}

// ValidateAdminCredentials resolves an admin by username and compares the
// bcrypt hash.
func (s *Storage) ValidateAdminCredentials(ctx context.Context, username, password string) (models.AdminUser, error) {
	const op = "storage.postgresql.ValidateAdminCredentials"

	query, args, err := s.sb.Select("id", "username", "full_name", "email", "password_hash").
		From(adminUsersTable).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("%s: %w", op, err)
	}

	var admin models.AdminUser
	err = s.db.QueryRow(ctx, query, args...).Scan(
		&admin.ID,
		&admin.Username,
		&admin.FullName,
		&admin.Email,
		&admin.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AdminUser{}, fmt.Errorf("%s: %w", op, storage.ErrAdminNotFound)
		}
		return models.AdminUser{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte(password)); err != nil {
		return models.AdminUser{}, fmt.Errorf("%s: %w", op, storage.ErrAdminNotFound)
	}

	return admin, nil
}

func (s *Storage) TouchAdminLastLogin(ctx context.Context, adminID uuid.UUID) error {
	const op = "storage.postgresql.TouchAdminLastLogin"

	query, args, err := s.sb.Update(adminUsersTable).
		Set("last_login", time.Now()).
		Where(sq.Eq{"id": adminID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LogAccess records a gallery-open event.
func (s *Storage) LogAccess(ctx context.Context, entry models.AccessLogEntry) error {
	const op = "storage.postgresql.LogAccess"

	infoJSON, err := json.Marshal(entry.DeviceInfo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := s.sb.Insert(accessLogsTable).
		Columns("user_id", "gallery_id", "gallery_name", "device_fingerprint", "device_info", "session_id", "accessed_at").
		Values(entry.UserID, entry.GalleryID, entry.GalleryName, entry.DeviceFingerprint, infoJSON, nullable(entry.SessionID), time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LogAppLaunch records an app-launch event.
func (s *Storage) LogAppLaunch(ctx context.Context, entry models.AppLaunchEntry) error {
	const op = "storage.postgresql.LogAppLaunch"

	query, args, err := s.sb.Insert(interactionsTable).
		Columns("user_id", "app_url", "app_title", "gallery_id", "device_fingerprint", "launched_at").
		Values(entry.UserID, entry.AppURL, entry.AppTitle, entry.GalleryID, entry.DeviceFingerprint, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreateUser provisions a new end user with a freshly generated access code,
// retrying on the unlikely code collision.
func (s *Storage) CreateUser(ctx context.Context, fullName, email string) (models.User, error) {
	const op = "storage.postgresql.CreateUser"

	for attempt := 0; attempt < 3; attempt++ {
		code, err := GenerateAccessCode(12)
		if err != nil {
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}

		query, args, err := s.sb.Insert(usersTable).
			Columns("id", "full_name", "email", "access_code", "is_active", "created_at").
			Values(uuid.New(), fullName, email, code, true, time.Now()).
			Suffix("RETURNING id, full_name, email, access_code, is_active, created_at").
			ToSql()
		if err != nil {
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}

		var user models.User
		err = s.db.QueryRow(ctx, query, args...).Scan(
			&user.ID,
			&user.FullName,
			&user.Email,
			&user.AccessCode,
			&user.IsActive,
			&user.CreatedAt,
		)
		if err == nil {
			return user, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			continue
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.User{}, fmt.Errorf("%s: could not generate a unique access code", op)
}

// accessCodeAlphabet omits ambiguous characters (0/O, 1/I).
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateAccessCode produces a code like QX7N-M4KP-W2RT.
func GenerateAccessCode(length int) (string, error) {
	var b strings.Builder

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(accessCodeAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(accessCodeAlphabet[n.Int64()])

		if i == 3 || i == 7 {
			b.WriteByte('-')
		}
	}

	return b.String(), nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

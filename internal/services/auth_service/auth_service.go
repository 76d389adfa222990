package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"edu_gallery/internal/domain/models"
	"edu_gallery/internal/lib/fingerprint"
	"edu_gallery/internal/lib/logger/sl"
	"edu_gallery/internal/metrics"
	"edu_gallery/internal/repository"
	"edu_gallery/internal/storage"
)

var (
	ErrInvalidAccessCode   = errors.New("invalid or inactive access code")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrSessionCreateFailed = errors.New("failed to create session")
	ErrNotAuthenticated    = errors.New("not authenticated")
)

// AuthService layers device fingerprinting and local session caching on top
// of the identity backend. The backend is the source of truth; the cache
// only short-circuits the obvious cases (no session, locally expired).
type AuthService struct {
	log             *slog.Logger
	provider        repository.IdentityProvider
	cache           repository.SessionCache
	sessionDuration time.Duration
}

func New(log *slog.Logger, provider repository.IdentityProvider, cache repository.SessionCache, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		log:             log,
		provider:        provider,
		cache:           cache,
		sessionDuration: sessionDuration,
	}
}

// Login validates an access code, registers the device fingerprint and opens
// a time-limited session. Device registration and session creation are two
// independent backend calls; a session failure after a successful device
// upsert is not rolled back.
func (a *AuthService) Login(ctx context.Context, accessCode string, sig fingerprint.Signals) (models.Session, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	log.Info("attempting access-code login")

	user, err := a.provider.ValidateAccessCode(ctx, accessCode)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("access code rejected")
		} else {
			log.Error("access code validation failed", sl.Err(err))
		}
		metrics.LoginsTotal.WithLabelValues("user", "failure").Inc()

		return models.Session{}, fmt.Errorf("%s: %w", op, ErrInvalidAccessCode)
	}

	fp := fingerprint.Fingerprint(sig)
	info := fingerprint.DeriveDeviceInfo(sig)

	if err := a.provider.UpsertDevice(ctx, user.ID, fp, info); err != nil {
		// Device bookkeeping must not block a valid login.
		log.Warn("device upsert failed", sl.Err(err))
	}

	session, err := a.provider.CreateSession(ctx, user.ID, fp, a.sessionDuration)
	if err != nil {
		log.Error("session creation failed", sl.Err(err))
		metrics.LoginsTotal.WithLabelValues("user", "failure").Inc()

		return models.Session{}, fmt.Errorf("%s: %w", op, ErrSessionCreateFailed)
	}

	if err := a.cache.StoreSession(ctx, fp, session); err != nil {
		// The backend session exists; a cold cache only forces an earlier
		// re-validation.
		log.Warn("failed to cache session", sl.Err(err))
	}

	log.Info("user logged in",
		slog.String("user_id", user.ID.String()),
		slog.String("fingerprint", fp),
	)
	metrics.LoginsTotal.WithLabelValues("user", "success").Inc()

	return session, nil
}

// ValidateSession reports whether the cached session for this device is
// still good. A locally expired session is cleared without a backend call;
// an unexpired one is re-validated remotely and cleared on rejection.
func (a *AuthService) ValidateSession(ctx context.Context, deviceFingerprint string) bool {
	const op = "auth.ValidateSession"

	log := a.log.With(slog.String("op", op))

	session, err := a.cache.GetSession(ctx, deviceFingerprint)
	if err != nil {
		return false
	}

	if session.Expired(time.Now()) {
		if err := a.cache.ClearSession(ctx, deviceFingerprint); err != nil {
			log.Warn("failed to clear expired session", sl.Err(err))
		}
		return false
	}

	if err := a.provider.ValidateSession(ctx, session.Token); err != nil {
		log.Info("backend rejected session", sl.Err(err))
		if err := a.cache.ClearSession(ctx, deviceFingerprint); err != nil {
			log.Warn("failed to clear rejected session", sl.Err(err))
		}
		return false
	}

	return true
}

// Session returns the cached, locally unexpired session for a device.
func (a *AuthService) Session(ctx context.Context, deviceFingerprint string) (models.Session, error) {
	const op = "auth.Session"

	session, err := a.cache.GetSession(ctx, deviceFingerprint)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	if session.Expired(time.Now()) {
		_ = a.cache.ClearSession(ctx, deviceFingerprint)
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	return session, nil
}

// Logout drops the cached session. The backend row simply expires.
func (a *AuthService) Logout(ctx context.Context, deviceFingerprint string) error {
	const op = "auth.Logout"

	if err := a.cache.ClearSession(ctx, deviceFingerprint); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AdminLogin checks credentials against the backend and caches an admin
// session with no expiry.
func (a *AuthService) AdminLogin(ctx context.Context, username, password string) (models.AdminSession, error) {
	const op = "auth.AdminLogin"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting admin login")

	admin, err := a.provider.ValidateAdminCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			log.Warn("admin credentials rejected")
		} else {
			log.Error("admin credential check failed", sl.Err(err))
		}
		metrics.LoginsTotal.WithLabelValues("admin", "failure").Inc()

		return models.AdminSession{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := a.provider.TouchAdminLastLogin(ctx, admin.ID); err != nil {
		log.Warn("failed to update admin last login", sl.Err(err))
	}

	session := models.AdminSession{
		AdminID:   admin.ID,
		Username:  admin.Username,
		FullName:  admin.FullName,
		CreatedAt: time.Now(),
	}

	if err := a.cache.StoreAdminSession(ctx, username, session); err != nil {
		log.Error("failed to cache admin session", sl.Err(err))
		return models.AdminSession{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in", slog.String("admin_id", admin.ID.String()))
	metrics.LoginsTotal.WithLabelValues("admin", "success").Inc()

	return session, nil
}

// AdminSession returns the cached admin session, valid until explicit
// logout.
func (a *AuthService) AdminSession(ctx context.Context, username string) (models.AdminSession, error) {
	const op = "auth.AdminSession"

	session, err := a.cache.GetAdminSession(ctx, username)
	if err != nil {
		return models.AdminSession{}, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}

	return session, nil
}

func (a *AuthService) AdminLogout(ctx context.Context, username string) error {
	const op = "auth.AdminLogout"

	if err := a.cache.ClearAdminSession(ctx, username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreateUser provisions a new end user with a generated access code.
func (a *AuthService) CreateUser(ctx context.Context, fullName, email string) (models.User, error) {
	const op = "auth.CreateUser"

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	user, err := a.provider.CreateUser(ctx, fullName, email)
	if err != nil {
		log.Error("failed to create user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))

	return user, nil
}

// LogGalleryAccess is fire-and-forget telemetry: without a cached session it
// does nothing, and backend failures are logged and swallowed.
func (a *AuthService) LogGalleryAccess(ctx context.Context, sig fingerprint.Signals, galleryID, galleryName string) {
	const op = "auth.LogGalleryAccess"

	fp := fingerprint.Fingerprint(sig)

	session, err := a.cache.GetSession(ctx, fp)
	if err != nil {
		return
	}

	entry := models.AccessLogEntry{
		UserID:            session.UserID.String(),
		GalleryID:         galleryID,
		GalleryName:       galleryName,
		DeviceFingerprint: fp,
		DeviceInfo:        fingerprint.DeriveDeviceInfo(sig),
	}

	if err := a.provider.LogAccess(ctx, entry); err != nil {
		a.log.Warn("dropping access log entry", slog.String("op", op), sl.Err(err))
		metrics.TelemetryDropsTotal.Inc()
	}
}

// LogAppLaunch mirrors LogGalleryAccess for app launches.
func (a *AuthService) LogAppLaunch(ctx context.Context, sig fingerprint.Signals, appURL, appTitle, galleryID string) {
	const op = "auth.LogAppLaunch"

	fp := fingerprint.Fingerprint(sig)

	session, err := a.cache.GetSession(ctx, fp)
	if err != nil {
		return
	}

	entry := models.AppLaunchEntry{
		UserID:            session.UserID.String(),
		AppURL:            appURL,
		AppTitle:          appTitle,
		GalleryID:         galleryID,
		DeviceFingerprint: fp,
	}

	if err := a.provider.LogAppLaunch(ctx, entry); err != nil {
		a.log.Warn("dropping app launch entry", slog.String("op", op), sl.Err(err))
		metrics.TelemetryDropsTotal.Inc()
	}
}

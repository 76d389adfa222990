package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"edu_gallery/internal/domain/models"
	"edu_gallery/internal/lib/fingerprint"
	"edu_gallery/internal/lib/logger/sl"
	"edu_gallery/internal/storage"
	"edu_gallery/internal/transport/http/dto"
	"edu_gallery/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "edu_gallery/docs"
)

// fingerprintHeader carries the device fingerprint on session endpoints so
// GET requests stay body-free.
const fingerprintHeader = "X-Device-Fingerprint"

const importSizeLimit = 1 << 20 // 1 MiB is plenty for a gallery config

type GalleryService interface {
	CreateGallery(name string) (string, error)
	DeleteGallery(id string) error
	SelectGallery(id string) error
	Galleries() []dto.GalleryTab
	Apps(galleryID string) ([]models.App, error)
	EnabledApps(galleryID string) (string, []models.App, error)
	AddApp(input dto.AppInput) (models.App, error)
	UpdateApp(appID uuid.UUID, input dto.AppInput) (models.App, error)
	ToggleApp(appID uuid.UUID) (bool, error)
	DeleteApp(appID uuid.UUID) error
	ReorderApp(from, to int) error
	Export() (filename string, data []byte, err error)
	Import(data []byte) error
}

type AuthService interface {
	Login(ctx context.Context, accessCode string, sig fingerprint.Signals) (models.Session, error)
	ValidateSession(ctx context.Context, deviceFingerprint string) bool
	Logout(ctx context.Context, deviceFingerprint string) error
	AdminLogin(ctx context.Context, username, password string) (models.AdminSession, error)
	AdminSession(ctx context.Context, username string) (models.AdminSession, error)
	AdminLogout(ctx context.Context, username string) error
	CreateUser(ctx context.Context, fullName, email string) (models.User, error)
	LogGalleryAccess(ctx context.Context, sig fingerprint.Signals, galleryID, galleryName string)
	LogAppLaunch(ctx context.Context, sig fingerprint.Signals, appURL, appTitle, galleryID string)
}

type Routers struct {
	log            *slog.Logger
	GalleryService GalleryService
	AuthService    AuthService
}

func NewRouter(log *slog.Logger, galleryService GalleryService, authService AuthService) *Routers {
	return &Routers{
		log:            log,
		GalleryService: galleryService,
		AuthService:    authService,
	}
}

// Login godoc
// @Summary Вход по коду доступа
// @Description Проверяет код доступа, регистрирует отпечаток устройства и открывает сессию на 24 часа.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Код доступа и сигналы устройства"
// @Success 200 {object} response.Response{data=dto.LoginResponse}
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(slog.String("op", op))

	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	sess, err := r.AuthService.Login(c.Request().Context(), req.AccessCode, req.Signals)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]interface{}{
		"token": sess.Token,
		"user": dto.LoginResponse{
			UserID:    sess.UserID.String(),
			UserName:  sess.UserName,
			ExpiresAt: sess.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	}))
}

// ValidateSession reports whether the cached session for the device
// fingerprint in the request header is still valid.
func (r *Routers) ValidateSession(c echo.Context) error {
	fp := c.Request().Header.Get(fingerprintHeader)
	if fp == "" {
		return c.JSON(http.StatusOK, response.SuccessResponse(map[string]bool{"valid": false}))
	}

	valid := r.AuthService.ValidateSession(c.Request().Context(), fp)

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]bool{"valid": valid}))
}

func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	fp := c.Request().Header.Get(fingerprintHeader)
	if fp != "" {
		if err := r.AuthService.Logout(c.Request().Context(), fp); err != nil {
			r.log.Warn("logout failed", slog.String("op", op), sl.Err(err))
		}
	}

	return c.JSON(http.StatusOK, response.MessageResponse("logged out"))
}

// AdminLogin godoc
// @Summary Вход администратора
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Учетные данные"
// @Success 200 {object} response.Response{data=dto.AdminLoginResponse}
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/admin/login [post]
func (r *Routers) AdminLogin(c echo.Context) error {
	const op = "http.routers.AdminLogin"

	log := r.log.With(slog.String("op", op))

	var req dto.AdminLoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid admin login request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	adminSess, err := r.AuthService.AdminLogin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAdminAuthenticationFailed)
	}

	sess, err := session.Get("session", c)
	if err == nil {
		sess.Values["admin_username"] = adminSess.Username
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			log.Warn("failed to save cookie session", sl.Err(err))
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.AdminLoginResponse{
		AdminID:  adminSess.AdminID.String(),
		Username: adminSess.Username,
		FullName: adminSess.FullName,
	}))
}

func (r *Routers) AdminLogout(c echo.Context) error {
	const op = "http.routers.AdminLogout"

	sess, err := session.Get("session", c)
	if err == nil {
		if username, ok := sess.Values["admin_username"].(string); ok && username != "" {
			if err := r.AuthService.AdminLogout(c.Request().Context(), username); err != nil {
				r.log.Warn("admin logout failed", slog.String("op", op), sl.Err(err))
			}
		}

		sess.Options.MaxAge = -1
		_ = sess.Save(c.Request(), c.Response())
	}

	return c.JSON(http.StatusOK, response.MessageResponse("logged out"))
}

// CreateUser provisions an end user and returns the generated access code.
func (r *Routers) CreateUser(c echo.Context) error {
	const op = "http.routers.CreateUser"

	log := r.log.With(slog.String("op", op))

	var req dto.CreateUserRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid create user request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	user, err := r.AuthService.CreateUser(c.Request().Context(), req.FullName, req.Email)
	if err != nil {
		log.Error("failed to create user", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not create user"))
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]string{
		"user_id":     user.ID.String(),
		"full_name":   user.FullName,
		"access_code": user.AccessCode,
	}))
}

// Galleries lists the admin tabs in display order.
func (r *Routers) Galleries(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.GalleryService.Galleries()))
}

func (r *Routers) CreateGallery(c echo.Context) error {
	const op = "http.routers.CreateGallery"

	log := r.log.With(slog.String("op", op))

	var req dto.CreateGalleryRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	id, err := r.GalleryService.CreateGallery(req.Name)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryExists) {
			return c.JSON(http.StatusConflict, response.ErrGalleryAlreadyExists)
		}

		log.Error("failed to create gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not create gallery"))
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]string{"gallery_id": id}))
}

func (r *Routers) DeleteGallery(c echo.Context) error {
	const op = "http.routers.DeleteGallery"

	log := r.log.With(slog.String("op", op))

	err := r.GalleryService.DeleteGallery(c.Param("gallery_id"))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrLastGallery):
			return c.JSON(http.StatusConflict, response.ErrLastGallery)
		case errors.Is(err, storage.ErrGalleryNotFound):
			return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
		}

		log.Error("failed to delete gallery", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not delete gallery"))
	}

	return c.JSON(http.StatusOK, response.MessageResponse("gallery deleted"))
}

func (r *Routers) SelectGallery(c echo.Context) error {
	if err := r.GalleryService.SelectGallery(c.Param("gallery_id")); err != nil {
		return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

// AdminApps lists every app of a gallery, disabled ones included.
func (r *Routers) AdminApps(c echo.Context) error {
	apps, err := r.GalleryService.Apps(c.QueryParam("gallery_id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(toAppResponses(apps)))
}

func (r *Routers) AddApp(c echo.Context) error {
	const op = "http.routers.AddApp"

	log := r.log.With(slog.String("op", op))

	var req dto.AppInput

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid app input", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	app, err := r.GalleryService.AddApp(req)
	if err != nil {
		log.Error("failed to add app", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not add app"))
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(toAppResponse(app)))
}

func (r *Routers) UpdateApp(c echo.Context) error {
	const op = "http.routers.UpdateApp"

	log := r.log.With(slog.String("op", op))

	appID, err := uuid.Parse(c.Param("app_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	var req dto.AppInput

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid app input", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	app, err := r.GalleryService.UpdateApp(appID, req)
	if err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrAppNotFound)
		}

		log.Error("failed to update app", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not update app"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(toAppResponse(app)))
}

func (r *Routers) ToggleApp(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("app_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	enabled, err := r.GalleryService.ToggleApp(appID)
	if err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrAppNotFound)
		}

		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not toggle app"))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]bool{"enabled": enabled}))
}

func (r *Routers) DeleteApp(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("app_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.GalleryService.DeleteApp(appID); err != nil {
		if errors.Is(err, storage.ErrAppNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrAppNotFound)
		}

		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not delete app"))
	}

	return c.JSON(http.StatusOK, response.MessageResponse("app deleted"))
}

// ReorderApp is the drag-and-drop mutation: positional within the currently
// selected gallery.
func (r *Routers) ReorderApp(c echo.Context) error {
	var req dto.ReorderRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.GalleryService.ReorderApp(req.From, req.To); err != nil {
		if errors.Is(err, storage.ErrIndexOutOfRange) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("index_out_of_range", "reorder indices are stale"))
		}

		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not reorder apps"))
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

// Export streams the whole document as a dated JSON attachment.
func (r *Routers) Export(c echo.Context) error {
	const op = "http.routers.Export"

	filename, data, err := r.GalleryService.Export()
	if err != nil {
		r.log.Error("export failed", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not export configuration"))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// Import wholesale-replaces the document with the uploaded one.
func (r *Routers) Import(c echo.Context) error {
	const op = "http.routers.Import"

	log := r.log.With(slog.String("op", op))

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, importSizeLimit))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.GalleryService.Import(data); err != nil {
		if errors.Is(err, storage.ErrInvalidDocument) {
			return c.JSON(http.StatusBadRequest, response.ErrInvalidDocument)
		}

		log.Error("import failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("internal_error", "could not import configuration"))
	}

	return c.JSON(http.StatusOK, response.MessageResponse("configuration imported"))
}

// PublicApps is the gallery display read path: enabled apps only.
func (r *Routers) PublicApps(c echo.Context) error {
	galleryID := c.Param("gallery_id")

	name, apps, err := r.GalleryService.EnabledApps(galleryID)
	if err != nil {
		return c.JSON(http.StatusNotFound, response.ErrGalleryNotFound)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]interface{}{
		"gallery_id": galleryID,
		"name":       name,
		"apps":       toAppResponses(apps),
	}))
}

// LogGalleryAccess records a gallery open. Always 202: telemetry never
// fails the caller.
func (r *Routers) LogGalleryAccess(c echo.Context) error {
	galleryID := c.Param("gallery_id")

	var sig fingerprint.Signals
	if err := c.Bind(&sig); err != nil {
		return c.JSON(http.StatusAccepted, response.Response{Status: "success"})
	}

	name, _, err := r.GalleryService.EnabledApps(galleryID)
	if err != nil {
		return c.JSON(http.StatusAccepted, response.Response{Status: "success"})
	}

	r.AuthService.LogGalleryAccess(c.Request().Context(), sig, galleryID, name)

	return c.JSON(http.StatusAccepted, response.Response{Status: "success"})
}

// LogAppLaunch records an app launch, same contract as LogGalleryAccess.
func (r *Routers) LogAppLaunch(c echo.Context) error {
	var req dto.AppLaunchRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusAccepted, response.Response{Status: "success"})
	}

	r.AuthService.LogAppLaunch(c.Request().Context(), req.Signals, req.AppURL, req.AppTitle, req.GalleryID)

	return c.JSON(http.StatusAccepted, response.Response{Status: "success"})
}

func toAppResponse(app models.App) dto.AppResponse {
	return dto.AppResponse{
		ID:          app.ID,
		Title:       app.Title,
		Description: app.Description,
		URL:         app.URL,
		Icon:        app.Icon,
		Color:       app.Color,
		Enabled:     app.Enabled,
	}
}

func toAppResponses(apps []models.App) []dto.AppResponse {
	out := make([]dto.AppResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toAppResponse(app))
	}
	return out
}

package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httprouters "edu_gallery/internal/transport/http"
	appmiddleware "edu_gallery/internal/middleware"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	host    string
	port    string
}

func New(log *slog.Logger, cookieSecret, allowedOrigin, host, port string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cookieSecret))))

	if allowedOrigin != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{allowedOrigin},
			AllowMethods:     []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
			AllowCredentials: true,
		}))
	} else {
		e.Use(middleware.CORS())
	}
	e.Use(middleware.Recover())
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		host:    host,
		port:    port,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// adminOnlyMiddleware gates the admin surface on the cookie session plus the
// cached admin session. Admin sessions carry no expiry; only explicit logout
// or a cache wipe ends them.
func (s *Server) adminOnlyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get("session", c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "session required"})
		}

		username, ok := sess.Values["admin_username"].(string)
		if !ok || username == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		}

		if _, err := s.routers.AuthService.AdminSession(c.Request().Context(), username); err != nil {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "admin access required"})
		}

		return next(c)
	}
}

func (s *Server) BuildRouters() {
	api := s.e.Group("/api/v1")
	{
		api.POST("/login", s.routers.Login)
		api.POST("/logout", s.routers.Logout)
		api.GET("/session/validate", s.routers.ValidateSession)
		api.POST("/admin/login", s.routers.AdminLogin)
		api.POST("/admin/logout", s.routers.AdminLogout)

		// public display surface
		api.GET("/galleries/:gallery_id/apps", s.routers.PublicApps)
		api.POST("/galleries/:gallery_id/access", s.routers.LogGalleryAccess)
		api.POST("/apps/launch", s.routers.LogAppLaunch)

		adminGroup := api.Group("/admin", s.adminOnlyMiddleware)
		{
			adminGroup.GET("/galleries", s.routers.Galleries)
			adminGroup.POST("/galleries", s.routers.CreateGallery)
			adminGroup.DELETE("/galleries/:gallery_id", s.routers.DeleteGallery)
			adminGroup.POST("/galleries/:gallery_id/select", s.routers.SelectGallery)

			adminGroup.GET("/apps", s.routers.AdminApps)
			adminGroup.POST("/apps", s.routers.AddApp)
			adminGroup.PUT("/apps/:app_id", s.routers.UpdateApp)
			adminGroup.POST("/apps/:app_id/toggle", s.routers.ToggleApp)
			adminGroup.DELETE("/apps/:app_id", s.routers.DeleteApp)
			adminGroup.POST("/apps/reorder", s.routers.ReorderApp)

			adminGroup.GET("/export", s.routers.Export)
			adminGroup.POST("/import", s.routers.Import)

			adminGroup.POST("/users", s.routers.CreateUser)
		}

		debug := s.e.Group("/debug")
		{
			debug.GET("/statsviz/", echo.WrapHandler(s.m))
			debug.GET("/statsviz/*", echo.WrapHandler(s.m))
		}

		swagger := s.e.Group("/swag")
		{
			swagger.GET("/swagger/*", echoSwagger.WrapHandler)
		}

		s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
}

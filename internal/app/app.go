package app

import (
	"context"
	"log/slog"
	"time"

	httpapp "edu_gallery/internal/app/http"
	"edu_gallery/internal/config"
	"edu_gallery/internal/repository"
	"edu_gallery/internal/storage/configstore"
	"edu_gallery/internal/storage/postgresql"
	redisapp "edu_gallery/internal/storage/redis"
	httprouters "edu_gallery/internal/transport/http"

	authservice "edu_gallery/internal/services/auth_service"
	galleryservice "edu_gallery/internal/services/gallery_service"
)

type App struct {
	HTTPServer *httpapp.Server
	Storage    *postgresql.Storage
	Redis      *redisapp.Client
}

// New wires the whole service: file-backed config store, postgres identity
// backend, session cache (redis when configured, in-process otherwise) and
// the echo server.
func New(log *slog.Logger, cfg *config.Config) *App {
	storage, err := postgresql.New(context.Background(), cfg.DSN, cfg.TokenSecret)
	if err != nil {
		panic(err)
	}

	var redisClient *redisapp.Client
	var cache repository.SessionCache
	if cfg.Redis.RedisAddr != "" {
		redisClient = redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.HealthCheck(pingCtx)
		cancel()
		if err != nil {
			panic(err)
		}

		cache = repository.NewRedisSessionCache(redisClient)
	} else {
		cache = repository.NewMemorySessionCache()
	}

	store := configstore.New(log, cfg.StorePath)

	galleryService := galleryservice.NewGalleryService(log, store)
	authService := authservice.New(log, storage, cache, cfg.SessionDuration)

	routers := httprouters.NewRouter(log, galleryService, authService)

	server := httpapp.New(log, cfg.HTTP.CookieSecret, cfg.HTTP.AllowedOrigin, cfg.HTTP.Host, cfg.HTTP.Port, routers)

	return &App{
		HTTPServer: server,
		Storage:    storage,
		Redis:      redisClient,
	}
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		panic(err)
	}

	a.Storage.Stop()

	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

package suite

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"edu_gallery/internal/config"
	services "edu_gallery/internal/services/gallery_service"
	"edu_gallery/internal/storage/configstore"
)

type Suite struct {
	*testing.T
	Cfg            *config.Config
	GalleryService *services.GalleryService
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	cfg := config.MustLoadPath(configPath())

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Duration(time.Hour))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := configstore.New(log, filepath.Join(t.TempDir(), "gallery-config.json"))
	galleryService := services.NewGalleryService(log, store)

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
	})

	return ctx, &Suite{
		T:              t,
		Cfg:            cfg,
		GalleryService: galleryService,
	}
}

func configPath() string {
	const key = "CONFIG_PATH"

	if v := os.Getenv(key); v != "" {
		return v
	}

	return "../config/config.yaml"
}

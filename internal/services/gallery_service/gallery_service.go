package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"edu_gallery/internal/domain/models"
	"edu_gallery/internal/repository"
	"edu_gallery/internal/storage"
	"edu_gallery/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// GalleryService owns the in-memory gallery document and is its only write
// path. Every mutator runs under one mutex, mutates a scratch copy, persists
// it through the config store, and commits in memory only after the persist
// succeeds — a failed save leaves the committed document untouched.
type GalleryService struct {
	log      *slog.Logger
	store    repository.DocumentStore
	validate *validator.Validate

	mu      sync.Mutex
	doc     *models.Document
	current string
}

func NewGalleryService(log *slog.Logger, store repository.DocumentStore) *GalleryService {
	doc, ok := store.Load()
	if !ok {
		// The store logs the parse error itself; this is the user-facing
		// notice that the panel is running on defaults.
		log.Warn("stored gallery configuration was unreadable, serving defaults",
			slog.String("op", "service.GalleryService.New"))
	}

	return &GalleryService{
		log:      log,
		store:    store,
		validate: validator.New(),
		doc:      doc,
		current:  doc.FirstID(),
	}
}

// CreateGallery derives a slug ID from the name, inserts an empty gallery at
// the end of the tab order and makes it the current selection.
func (s *GalleryService) CreateGallery(name string) (string, error) {
	const op = "service.GalleryService.CreateGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("name", name),
	)

	id := models.SlugifyGalleryName(name)
	if id == "" {
		return "", fmt.Errorf("%s: empty gallery name", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Galleries[id]; ok {
		log.Warn("gallery already exists", slog.String("gallery_id", id))
		return "", fmt.Errorf("%s: %w", op, storage.ErrGalleryExists)
	}

	next := s.doc.Clone()
	next.Append(id, &models.Gallery{Name: name, Apps: []models.App{}})

	if err := s.commit(next); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.current = id
	log.Info("gallery created", slog.String("gallery_id", id))

	return id, nil
}

// DeleteGallery removes a gallery and all of its apps. The last remaining
// gallery can never be deleted.
func (s *GalleryService) DeleteGallery(id string) error {
	const op = "service.GalleryService.DeleteGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Galleries[id]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	if len(s.doc.Galleries) == 1 {
		log.Warn("refusing to delete the last gallery")
		return fmt.Errorf("%s: %w", op, storage.ErrLastGallery)
	}

	next := s.doc.Clone()
	next.Remove(id)

	if err := s.commit(next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.current == id {
		s.current = s.doc.FirstID()
	}

	log.Info("gallery deleted")

	return nil
}

// SelectGallery moves the current tab pointer. Selection is in-memory only
// and resets to the first gallery on restart.
func (s *GalleryService) SelectGallery(id string) error {
	const op = "service.GalleryService.SelectGallery"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Galleries[id]; !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	s.current = id

	return nil
}

// Galleries lists tabs in display order.
func (s *GalleryService) Galleries() []dto.GalleryTab {
	s.mu.Lock()
	defer s.mu.Unlock()

	tabs := make([]dto.GalleryTab, 0, len(s.doc.Galleries))
	for _, id := range s.doc.OrderedIDs() {
		g := s.doc.Galleries[id]
		tabs = append(tabs, dto.GalleryTab{
			ID:       id,
			Name:     g.Name,
			AppCount: len(g.Apps),
			Current:  id == s.current,
		})
	}

	return tabs
}

// Apps returns every app of a gallery in order, enabled or not. An empty ID
// means the current selection.
func (s *GalleryService) Apps(galleryID string) ([]models.App, error) {
	const op = "service.GalleryService.Apps"

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gallery(galleryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	apps := make([]models.App, len(g.Apps))
	copy(apps, g.Apps)

	return apps, nil
}

// EnabledApps is the public display read path: only enabled apps, in order.
func (s *GalleryService) EnabledApps(galleryID string) (string, []models.App, error) {
	const op = "service.GalleryService.EnabledApps"

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gallery(galleryID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	apps := make([]models.App, 0, len(g.Apps))
	for _, app := range g.Apps {
		if app.Enabled {
			apps = append(apps, app)
		}
	}

	return g.Name, apps, nil
}

// AddApp appends a new app to the current gallery, enabled by default.
func (s *GalleryService) AddApp(input dto.AppInput) (models.App, error) {
	const op = "service.GalleryService.AddApp"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", input.Title),
	)

	app := models.App{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		URL:         input.URL,
		Icon:        input.Icon,
		Color:       input.Color,
		Enabled:     true,
	}

	if err := s.validate.Struct(app); err != nil {
		return models.App{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	g, err := galleryIn(next, s.current)
	if err != nil {
		return models.App{}, fmt.Errorf("%s: %w", op, err)
	}

	g.Apps = append(g.Apps, app)

	if err := s.commit(next); err != nil {
		return models.App{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("app added", slog.String("app_id", app.ID.String()), slog.String("gallery_id", s.current))

	return app, nil
}

// UpdateApp replaces every editable field of an app. The enabled flag is
// owned by ToggleApp and never touched here. Apps are addressed by their
// stable ID, so a concurrent reorder or delete surfaces as ErrAppNotFound
// instead of silently editing the wrong entry.
func (s *GalleryService) UpdateApp(appID uuid.UUID, input dto.AppInput) (models.App, error) {
	const op = "service.GalleryService.UpdateApp"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	g, idx, err := findApp(next, s.current, appID)
	if err != nil {
		return models.App{}, fmt.Errorf("%s: %w", op, err)
	}

	app := g.Apps[idx]
	app.Title = input.Title
	app.Description = input.Description
	app.URL = input.URL
	app.Icon = input.Icon
	app.Color = input.Color

	if err := s.validate.Struct(app); err != nil {
		return models.App{}, fmt.Errorf("%s: %w", op, err)
	}

	g.Apps[idx] = app

	if err := s.commit(next); err != nil {
		return models.App{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("app updated",
		slog.String("op", op),
		slog.String("app_id", appID.String()),
	)

	return app, nil
}

// ToggleApp flips the enabled flag and reports the new state.
func (s *GalleryService) ToggleApp(appID uuid.UUID) (bool, error) {
	const op = "service.GalleryService.ToggleApp"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	g, idx, err := findApp(next, s.current, appID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	g.Apps[idx].Enabled = !g.Apps[idx].Enabled

	if err := s.commit(next); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return g.Apps[idx].Enabled, nil
}

// DeleteApp removes an app, keeping the order of the rest.
func (s *GalleryService) DeleteApp(appID uuid.UUID) error {
	const op = "service.GalleryService.DeleteApp"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	g, idx, err := findApp(next, s.current, appID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g.Apps = append(g.Apps[:idx], g.Apps[idx+1:]...)

	if err := s.commit(next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("app deleted",
		slog.String("op", op),
		slog.String("app_id", appID.String()),
	)

	return nil
}

// ReorderApp removes the app at from and reinserts it at to within the
// current gallery. Equal indices are a no-op.
func (s *GalleryService) ReorderApp(from, to int) error {
	const op = "service.GalleryService.ReorderApp"

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	g, err := galleryIn(next, s.current)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if from < 0 || from >= len(g.Apps) || to < 0 || to >= len(g.Apps) {
		return fmt.Errorf("%s: %w", op, storage.ErrIndexOutOfRange)
	}

	if from == to {
		return nil
	}

	app := g.Apps[from]
	g.Apps = append(g.Apps[:from], g.Apps[from+1:]...)
	g.Apps = append(g.Apps[:to], append([]models.App{app}, g.Apps[to:]...)...)

	if err := s.commit(next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Export serializes the whole document, pretty-printed, with the dated
// filename the admin panel has always produced.
func (s *GalleryService) Export() (string, []byte, error) {
	const op = "service.GalleryService.Export"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	filename := fmt.Sprintf("gallery-config-%s.json", time.Now().Format("2006-01-02"))

	return filename, data, nil
}

// Import parses and validates an uploaded document and wholesale-replaces
// the current one. Invalid input never touches the committed document.
// Selection resets to the first gallery of the import.
func (s *GalleryService) Import(data []byte) error {
	const op = "service.GalleryService.Import"
	log := s.log.With(slog.String("op", op))

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("import rejected: not valid JSON")
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidDocument)
	}

	if len(doc.Galleries) == 0 {
		log.Warn("import rejected: empty document")
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidDocument)
	}

	for id, g := range doc.Galleries {
		if g.Name == "" {
			log.Warn("import rejected: gallery without a name", slog.String("gallery_id", id))
			return fmt.Errorf("%s: %w", op, storage.ErrInvalidDocument)
		}

		if g.Apps == nil {
			g.Apps = []models.App{}
		}

		for i := range g.Apps {
			// Configs exported before apps had stable IDs come without them.
			if g.Apps[i].ID == uuid.Nil {
				g.Apps[i].ID = uuid.New()
			}

			if err := s.validate.Struct(g.Apps[i]); err != nil {
				log.Warn("import rejected: invalid app",
					slog.String("gallery_id", id),
					slog.Int("index", i),
				)
				return fmt.Errorf("%s: %w", op, storage.ErrInvalidDocument)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(&doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.current = doc.FirstID()
	log.Info("configuration imported", slog.Int("galleries", len(doc.Galleries)))

	return nil
}

// commit persists the scratch copy and swaps it in. Callers hold s.mu.
func (s *GalleryService) commit(next *models.Document) error {
	if err := s.store.Save(next); err != nil {
		return err
	}

	s.doc = next

	return nil
}

// gallery resolves an ID (or the current selection for "") against the
// committed document. Callers hold s.mu.
func (s *GalleryService) gallery(id string) (*models.Gallery, error) {
	if id == "" {
		id = s.current
	}

	return galleryIn(s.doc, id)
}

func galleryIn(doc *models.Document, id string) (*models.Gallery, error) {
	g, ok := doc.Galleries[id]
	if !ok {
		return nil, storage.ErrGalleryNotFound
	}

	return g, nil
}

func findApp(doc *models.Document, galleryID string, appID uuid.UUID) (*models.Gallery, int, error) {
	g, err := galleryIn(doc, galleryID)
	if err != nil {
		return nil, 0, err
	}

	for i := range g.Apps {
		if g.Apps[i].ID == appID {
			return g, i, nil
		}
	}

	return nil, 0, storage.ErrAppNotFound
}

package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"edu_gallery/internal/domain/models"
	"edu_gallery/internal/storage"
	"edu_gallery/internal/transport/http/dto"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Load() (*models.Document, bool) {
	args := m.Called()
	return args.Get(0).(*models.Document), args.Bool(1)
}

func (m *MockDocumentStore) Save(doc *models.Document) error {
	args := m.Called(doc)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, doc *models.Document) (*GalleryService, *MockDocumentStore) {
	t.Helper()

	store := new(MockDocumentStore)
	store.On("Load").Return(doc, true).Once()

	return NewGalleryService(testLogger(), store), store
}

func TestGalleryService_WarnsWhenStoredDocumentUnreadable(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	store := new(MockDocumentStore)
	store.On("Load").Return(models.NewDefaultDocument(), false).Once()

	svc := NewGalleryService(log, store)

	// The panel keeps working on the default document, but the fallback is
	// surfaced rather than silently swallowed.
	assert.Contains(t, buf.String(), "serving defaults")
	assert.ElementsMatch(t, []string{"games", "chemistry", "quiz"}, svc.doc.OrderedIDs())

	buf.Reset()
	store.On("Load").Return(models.NewDefaultDocument(), true).Once()
	NewGalleryService(log, store)
	assert.NotContains(t, buf.String(), "serving defaults")
}

func validInput(title string) dto.AppInput {
	return dto.AppInput{
		Title:       title,
		Description: "test app",
		URL:         "https://example.com/" + title,
		Icon:        "gamepad-2",
		Color:       "#ff5500",
	}
}

func TestGalleryService_CreateGallery(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantID    string
		wantErr   error
		wantSaves int
	}{
		{name: "simple name", input: "Robotics", wantID: "robotics", wantSaves: 1},
		{name: "multi word name", input: "Science Experiments", wantID: "science-experiments", wantSaves: 1},
		{name: "duplicate slug", input: "GAMES", wantErr: storage.ErrGalleryExists},
		{name: "blank name", input: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t, models.NewDefaultDocument())
			store.On("Save", mock.Anything).Return(nil)

			id, err := svc.CreateGallery(tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantID == "" {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			store.AssertNumberOfCalls(t, "Save", tt.wantSaves)
		})
	}
}

func TestGalleryService_CreateGallerySelectsNew(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	_, err := svc.CreateGallery("Robotics")
	require.NoError(t, err)

	tabs := svc.Galleries()
	require.Len(t, tabs, 4)
	assert.Equal(t, "robotics", tabs[3].ID)
	assert.True(t, tabs[3].Current)
	assert.False(t, tabs[0].Current)
}

func TestGalleryService_DuplicateLeavesDocumentUntouched(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())

	_, err := svc.CreateGallery("Games")
	require.ErrorIs(t, err, storage.ErrGalleryExists)

	assert.Len(t, svc.Galleries(), 3)
	store.AssertNotCalled(t, "Save", mock.Anything)
}

func TestGalleryService_DeleteGallery(t *testing.T) {
	t.Run("delete non-current gallery", func(t *testing.T) {
		svc, store := newTestService(t, models.NewDefaultDocument())
		store.On("Save", mock.Anything).Return(nil)

		require.NoError(t, svc.DeleteGallery("chemistry"))

		tabs := svc.Galleries()
		require.Len(t, tabs, 2)
		assert.Equal(t, "games", tabs[0].ID)
		assert.True(t, tabs[0].Current)
	})

	t.Run("deleting current falls back to first", func(t *testing.T) {
		svc, store := newTestService(t, models.NewDefaultDocument())
		store.On("Save", mock.Anything).Return(nil)

		require.NoError(t, svc.SelectGallery("quiz"))
		require.NoError(t, svc.DeleteGallery("quiz"))

		tabs := svc.Galleries()
		assert.True(t, tabs[0].Current)
	})

	t.Run("unknown gallery", func(t *testing.T) {
		svc, _ := newTestService(t, models.NewDefaultDocument())

		err := svc.DeleteGallery("nope")
		assert.ErrorIs(t, err, storage.ErrGalleryNotFound)
	})

	t.Run("last gallery is protected", func(t *testing.T) {
		doc := models.NewEmptyDocument()
		doc.Append("solo", &models.Gallery{Name: "Solo", Apps: []models.App{}})
		svc, store := newTestService(t, doc)

		err := svc.DeleteGallery("solo")
		assert.ErrorIs(t, err, storage.ErrLastGallery)
		assert.Len(t, svc.Galleries(), 1)
		store.AssertNotCalled(t, "Save", mock.Anything)
	})
}

func TestGalleryService_AddApp(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	app, err := svc.AddApp(validInput("chess"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, app.ID)
	assert.True(t, app.Enabled)

	apps, err := svc.Apps("games")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, app, apps[0])
}

func TestGalleryService_AddAppValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.AppInput)
	}{
		{"missing title", func(in *dto.AppInput) { in.Title = "" }},
		{"bad url", func(in *dto.AppInput) { in.URL = "not a url" }},
		{"bad color", func(in *dto.AppInput) { in.Color = "red" }},
		{"missing icon", func(in *dto.AppInput) { in.Icon = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t, models.NewDefaultDocument())

			in := validInput("chess")
			tt.mutate(&in)

			_, err := svc.AddApp(in)
			require.Error(t, err)

			apps, _ := svc.Apps("")
			assert.Empty(t, apps)
			store.AssertNotCalled(t, "Save", mock.Anything)
		})
	}
}

func TestGalleryService_UpdateApp(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	app, err := svc.AddApp(validInput("chess"))
	require.NoError(t, err)

	_, err = svc.ToggleApp(app.ID)
	require.NoError(t, err)

	in := validInput("checkers")
	in.Color = "#00ff00"
	updated, err := svc.UpdateApp(app.ID, in)
	require.NoError(t, err)

	assert.Equal(t, app.ID, updated.ID)
	assert.Equal(t, "checkers", updated.Title)
	assert.Equal(t, "#00ff00", updated.Color)
	// Update never resurrects a disabled app.
	assert.False(t, updated.Enabled)
}

func TestGalleryService_UpdateAppStaleID(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	_, err := svc.UpdateApp(uuid.New(), validInput("ghost"))
	assert.ErrorIs(t, err, storage.ErrAppNotFound)
}

func TestGalleryService_ToggleAppIsSelfInverse(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	app, err := svc.AddApp(validInput("chess"))
	require.NoError(t, err)

	enabled, err := svc.ToggleApp(app.ID)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = svc.ToggleApp(app.ID)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestGalleryService_DeleteAppKeepsOrder(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	var ids []uuid.UUID
	for _, title := range []string{"a", "b", "c"} {
		app, err := svc.AddApp(validInput(title))
		require.NoError(t, err)
		ids = append(ids, app.ID)
	}

	require.NoError(t, svc.DeleteApp(ids[1]))

	apps, err := svc.Apps("")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, ids[0], apps[0].ID)
	assert.Equal(t, ids[2], apps[1].ID)
}

func TestGalleryService_ReorderApp(t *testing.T) {
	titles := func(apps []models.App) []string {
		out := make([]string, len(apps))
		for i, a := range apps {
			out[i] = a.Title
		}
		return out
	}

	seed := func(t *testing.T) *GalleryService {
		t.Helper()
		svc, store := newTestService(t, models.NewDefaultDocument())
		store.On("Save", mock.Anything).Return(nil)
		for _, title := range []string{"a", "b", "c", "d"} {
			_, err := svc.AddApp(validInput(title))
			require.NoError(t, err)
		}
		return svc
	}

	t.Run("move forward", func(t *testing.T) {
		svc := seed(t)
		require.NoError(t, svc.ReorderApp(0, 2))

		apps, _ := svc.Apps("")
		assert.Equal(t, []string{"b", "c", "a", "d"}, titles(apps))
	})

	t.Run("move backward", func(t *testing.T) {
		svc := seed(t)
		require.NoError(t, svc.ReorderApp(3, 1))

		apps, _ := svc.Apps("")
		assert.Equal(t, []string{"a", "d", "b", "c"}, titles(apps))
	})

	t.Run("reorder then inverse restores order", func(t *testing.T) {
		svc := seed(t)
		require.NoError(t, svc.ReorderApp(0, 3))
		require.NoError(t, svc.ReorderApp(3, 0))

		apps, _ := svc.Apps("")
		assert.Equal(t, []string{"a", "b", "c", "d"}, titles(apps))
	})

	t.Run("out of range", func(t *testing.T) {
		svc := seed(t)
		assert.ErrorIs(t, svc.ReorderApp(0, 4), storage.ErrIndexOutOfRange)
		assert.ErrorIs(t, svc.ReorderApp(-1, 0), storage.ErrIndexOutOfRange)
	})
}

func TestGalleryService_EnabledAppsFilters(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	visible, err := svc.AddApp(validInput("visible"))
	require.NoError(t, err)
	hidden, err := svc.AddApp(validInput("hidden"))
	require.NoError(t, err)

	_, err = svc.ToggleApp(hidden.ID)
	require.NoError(t, err)

	name, apps, err := svc.EnabledApps("games")
	require.NoError(t, err)
	assert.Equal(t, "Games", name)
	require.Len(t, apps, 1)
	assert.Equal(t, visible.ID, apps[0].ID)

	all, err := svc.Apps("games")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGalleryService_ExportImportRoundTrip(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	_, err := svc.CreateGallery("Robotics")
	require.NoError(t, err)
	_, err = svc.AddApp(validInput("arm"))
	require.NoError(t, err)

	filename, data, err := svc.Export()
	require.NoError(t, err)
	assert.Regexp(t, `^gallery-config-\d{4}-\d{2}-\d{2}\.json$`, filename)

	// Import resets selection to the first gallery; align before comparing.
	require.NoError(t, svc.SelectGallery("games"))
	before := svc.Galleries()

	// Wipe to a single gallery, then restore from the export.
	fresh := models.NewEmptyDocument()
	fresh.Append("solo", &models.Gallery{Name: "Solo", Apps: []models.App{}})
	svc2, store2 := newTestService(t, fresh)
	store2.On("Save", mock.Anything).Return(nil)

	require.NoError(t, svc2.Import(data))
	assert.Equal(t, before, svc2.Galleries())
}

func TestGalleryService_ImportRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{broken"},
		{"empty object", "{}"},
		{"gallery without name", `{"games": {"name": "", "apps": []}}`},
		{"app with bad color", `{"games": {"name": "Games", "apps": [
			{"title": "x", "url": "https://example.com", "icon": "dice", "color": "red", "enabled": true}
		]}}`},
		{"app without url", `{"games": {"name": "Games", "apps": [
			{"title": "x", "url": "", "icon": "dice", "color": "#112233", "enabled": true}
		]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t, models.NewDefaultDocument())

			err := svc.Import([]byte(tt.data))
			require.ErrorIs(t, err, storage.ErrInvalidDocument)

			assert.Len(t, svc.Galleries(), 3)
			store.AssertNotCalled(t, "Save", mock.Anything)
		})
	}
}

func TestGalleryService_ImportAssignsMissingIDs(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	data := `{"games": {"name": "Games", "apps": [
		{"title": "legacy", "url": "https://example.com", "icon": "dice", "color": "#112233", "enabled": true}
	]}}`

	require.NoError(t, svc.Import([]byte(data)))

	apps, err := svc.Apps("games")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.NotEqual(t, uuid.Nil, apps[0].ID)
}

func TestGalleryService_ImportResetsSelection(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(nil)

	require.NoError(t, svc.SelectGallery("quiz"))

	doc := models.NewEmptyDocument()
	doc.Append("first", &models.Gallery{Name: "First", Apps: []models.App{}})
	doc.Append("second", &models.Gallery{Name: "Second", Apps: []models.App{}})
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, svc.Import(data))

	tabs := svc.Galleries()
	require.Len(t, tabs, 2)
	assert.Equal(t, "first", tabs[0].ID)
	assert.True(t, tabs[0].Current)
}

func TestGalleryService_FailedSaveLeavesCommittedDocument(t *testing.T) {
	svc, store := newTestService(t, models.NewDefaultDocument())
	store.On("Save", mock.Anything).Return(errors.New("disk full"))

	_, err := svc.CreateGallery("Robotics")
	require.Error(t, err)

	tabs := svc.Galleries()
	assert.Len(t, tabs, 3)
	assert.True(t, tabs[0].Current)
}

package configstore

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu_gallery/internal/domain/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := New(discardLogger(), filepath.Join(t.TempDir(), "gallery-config.json"))

	doc, recovered := store.Load()

	assert.True(t, recovered)
	assert.Equal(t, []string{"games", "chemistry", "quiz"}, doc.OrderedIDs())
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery-config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := New(discardLogger(), path)
	doc, recovered := store.Load()

	assert.False(t, recovered)
	assert.Equal(t, []string{"games", "chemistry", "quiz"}, doc.OrderedIDs())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "gallery-config.json")
	store := New(discardLogger(), path)

	doc := models.NewEmptyDocument()
	doc.Append("robotics", &models.Gallery{Name: "Robotics", Apps: []models.App{
		{
			ID:      uuid.New(),
			Title:   "Arm Simulator",
			URL:     "https://example.com/arm",
			Icon:    "bot",
			Color:   "#00aaff",
			Enabled: true,
		},
	}})
	doc.Append("games", &models.Gallery{Name: "Games", Apps: []models.App{}})

	require.NoError(t, store.Save(doc))

	loaded, recovered := store.Load()
	assert.True(t, recovered)
	assert.Equal(t, []string{"robotics", "games"}, loaded.OrderedIDs())
	assert.Equal(t, doc.Galleries["robotics"].Apps, loaded.Galleries["robotics"].Apps)
}

func TestStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery-config.json")
	store := New(discardLogger(), path)

	require.NoError(t, store.Save(models.NewDefaultDocument()))

	doc := models.NewEmptyDocument()
	doc.Append("solo", &models.Gallery{Name: "Solo", Apps: []models.App{}})
	require.NoError(t, store.Save(doc))

	loaded, _ := store.Load()
	assert.Equal(t, []string{"solo"}, loaded.OrderedIDs())

	// The temp file used for the atomic write must not be left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

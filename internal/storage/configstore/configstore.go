package configstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"edu_gallery/internal/domain/models"
	"edu_gallery/internal/lib/logger/sl"
)

// Store persists the whole gallery document as one pretty-printed JSON file,
// the server-side stand-in for the admin panel's localStorage blob. Load and
// Save are whole-document operations: no partial writes, no merge, last
// writer wins.
type Store struct {
	log  *slog.Logger
	path string
}

func New(log *slog.Logger, path string) *Store {
	return &Store{
		log:  log,
		path: path,
	}
}

// Load reads and parses the persisted document. A missing file is first
// start; an unparsable file is logged and reported through recovered=false.
// Both fall back to the default three-gallery document, never an error.
func (s *Store) Load() (doc *models.Document, recovered bool) {
	const op = "storage.configstore.Load"

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("cannot read config store, using defaults",
				slog.String("op", op), sl.Err(err))
			return models.NewDefaultDocument(), false
		}
		return models.NewDefaultDocument(), true
	}

	var d models.Document
	if err := json.Unmarshal(data, &d); err != nil {
		s.log.Warn("config store is not valid JSON, using defaults",
			slog.String("op", op), sl.Err(err))
		return models.NewDefaultDocument(), false
	}

	return &d, true
}

// Save overwrites the persisted blob unconditionally. The write goes through
// a temp file and rename so a crash mid-write never leaves a truncated
// document behind.
func (s *Store) Save(doc *models.Document) error {
	const op = "storage.configstore.Save"

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".gallery-config-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

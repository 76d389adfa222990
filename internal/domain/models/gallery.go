package models

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// App is a single launchable entry of a gallery: an external link with
// display metadata and an enabled flag controlling public visibility.
type App struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	URL         string    `json:"url" validate:"required,url"`
	Icon        string    `json:"icon" validate:"required"`
	Color       string    `json:"color" validate:"required,hexcolor"`
	Enabled     bool      `json:"enabled"`
}

// Gallery is a named, ordered collection of apps. The gallery ID is derived
// from the name once at creation and never re-derived.
type Gallery struct {
	Name string `json:"name" validate:"required"`
	Apps []App  `json:"apps" validate:"dive"`
}

// Document is the whole gallery collection. Order carries the tab display
// order because a JSON object does not preserve key order on its own.
type Document struct {
	Order     map[string]int      `json:"-"`
	Galleries map[string]*Gallery `json:"-"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SlugifyGalleryName derives a gallery ID the same way the admin panel always
// did: lowercase, whitespace runs collapsed to single hyphens.
func SlugifyGalleryName(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// NewDefaultDocument is the document used on first start or when the
// persisted blob cannot be parsed.
func NewDefaultDocument() *Document {
	doc := NewEmptyDocument()

	for _, name := range []string{"Games", "Chemistry", "Quiz"} {
		doc.Append(SlugifyGalleryName(name), &Gallery{Name: name, Apps: []App{}})
	}

	return doc
}

func NewEmptyDocument() *Document {
	return &Document{
		Order:     make(map[string]int),
		Galleries: make(map[string]*Gallery),
	}
}

// Append inserts a gallery at the end of the tab order. Existing IDs keep
// their position.
func (d *Document) Append(id string, g *Gallery) {
	if _, ok := d.Galleries[id]; !ok {
		d.Order[id] = len(d.Order)
	}
	d.Galleries[id] = g
}

// Remove deletes a gallery and compacts the tab order.
func (d *Document) Remove(id string) {
	pos, ok := d.Order[id]
	if !ok {
		return
	}

	delete(d.Order, id)
	delete(d.Galleries, id)

	for gid, p := range d.Order {
		if p > pos {
			d.Order[gid] = p - 1
		}
	}
}

// OrderedIDs returns gallery IDs in tab order.
func (d *Document) OrderedIDs() []string {
	ids := make([]string, len(d.Order))
	for id, pos := range d.Order {
		ids[pos] = id
	}
	return ids
}

// FirstID returns the first gallery in tab order, or "" for an empty document.
func (d *Document) FirstID() string {
	ids := d.OrderedIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// Clone deep-copies the document so mutators can work on a scratch copy and
// commit only after a successful persist.
func (d *Document) Clone() *Document {
	out := &Document{
		Order:     make(map[string]int, len(d.Order)),
		Galleries: make(map[string]*Gallery, len(d.Galleries)),
	}

	for id, pos := range d.Order {
		out.Order[id] = pos
	}

	for id, g := range d.Galleries {
		apps := make([]App, len(g.Apps))
		copy(apps, g.Apps)
		out.Galleries[id] = &Gallery{Name: g.Name, Apps: apps}
	}

	return out
}

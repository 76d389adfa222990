package dto

import "github.com/google/uuid"

// GalleryTab is one entry of the admin tab bar, in display order.
type GalleryTab struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AppCount int    `json:"app_count"`
	Current  bool   `json:"current"`
}

type CreateGalleryRequest struct {
	Name string `json:"name" validate:"required"`
}

// AppInput carries every editable app field. Enabled is intentionally
// absent: creation always starts enabled and edits never touch the flag,
// the toggle endpoint owns it.
type AppInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"required,url"`
	Icon        string `json:"icon" validate:"required"`
	Color       string `json:"color" validate:"required,hexcolor"`
}

type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type AppResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Enabled     bool      `json:"enabled"`
}

package dto

import (
	"edu_gallery/internal/lib/fingerprint"
)

type LoginRequest struct {
	AccessCode string              `json:"access_code" validate:"required"`
	Signals    fingerprint.Signals `json:"signals"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	ExpiresAt string `json:"expires_at"`
}

type AdminLoginResponse struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type CreateUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

type AppLaunchRequest struct {
	AppURL    string              `json:"app_url" validate:"required"`
	AppTitle  string              `json:"app_title" validate:"required"`
	GalleryID string              `json:"gallery_id" validate:"required"`
	Signals   fingerprint.Signals `json:"signals"`
}

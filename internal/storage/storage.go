package storage

import "errors"

var (
	ErrGalleryExists   = errors.New("gallery already exists")
	ErrGalleryNotFound = errors.New("gallery not found")
	ErrLastGallery     = errors.New("cannot delete the last gallery")
	ErrAppNotFound     = errors.New("app not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidDocument = errors.New("invalid gallery document")
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAdminNotFound   = errors.New("admin not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionRevoked  = errors.New("session revoked")
)

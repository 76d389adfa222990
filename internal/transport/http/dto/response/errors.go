package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status:  "error",
		Error:   "authentication_failed",
		Details: "Invalid or inactive access code",
	}

	ErrAdminAuthenticationFailed = ErrorResponse{
		Status:  "error",
		Error:   "admin_authentication_failed",
		Details: "Invalid username or password",
	}

	ErrGalleryAlreadyExists = ErrorResponse{
		Status:  "error",
		Error:   "gallery_already_exists",
		Details: "A gallery with this name already exists",
	}

	ErrLastGallery = ErrorResponse{
		Status:  "error",
		Error:   "last_gallery",
		Details: "Cannot delete the last gallery",
	}

	ErrGalleryNotFound = ErrorResponse{
		Status: "error",
		Error:  "gallery_not_found",
	}

	ErrAppNotFound = ErrorResponse{
		Status: "error",
		Error:  "app_not_found",
	}

	ErrInvalidDocument = ErrorResponse{
		Status:  "error",
		Error:   "invalid_document",
		Details: "Invalid configuration file",
	}
)

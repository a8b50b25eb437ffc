package common

import "errors"

// Callers should match these values with errors.Is.
var (

	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// upload-specific errors
	ErrorUnsupportedMediaType = errors.New("unsupported media type")
	ErrorFileTooLarge         = errors.New("file too large")
)

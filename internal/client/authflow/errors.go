package authflow

import "errors"

// ErrBusy rejects a submission while another one is in flight.
var ErrBusy = errors.New("a submission is already in progress")

// Validation errors, raised before any network call.
var (
	ErrFamilyNameTooShort = errors.New("family name must be at least 2 characters")
	ErrUsernameTooShort   = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// Outcome errors. Lookup failures are reported generically.
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrVerificationFailed = errors.New("verification failed")
	ErrUsernameTaken      = errors.New("this username is already taken")
	ErrRegisterFailed     = errors.New("account creation failed")
	ErrAccountNotFound    = errors.New("no account found with this username")
	ErrFamilyNameMismatch = errors.New("family name does not match")
	ErrResetFailed        = errors.New("password reset failed")
	ErrSomethingWrong     = errors.New("something went wrong")
)

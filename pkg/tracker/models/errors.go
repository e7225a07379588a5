package models

import "errors"

// Domain errors returned by the store. The service layer maps these onto
// the wire outcome tags.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser indicates a user with that name already exists.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidCredentials indicates the password verifier did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFileNotFound indicates no catalog row matched.
	ErrFileNotFound = errors.New("file not found")

	// ErrDuplicateFile indicates the (owner, name, type, path) tuple is
	// already registered.
	ErrDuplicateFile = errors.New("file already registered")

	// ErrQuotaExceeded indicates the owner is at MaxFilesPerUser.
	ErrQuotaExceeded = errors.New("file quota exceeded")

	// ErrStorageUnavailable indicates the relational store is unreachable;
	// the health probe will reconnect in the background.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

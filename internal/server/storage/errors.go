package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrProjectNotFound indicates that project was not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectAlreadyExists indicates that project with this id already exists
	ErrProjectAlreadyExists = errors.New("project already exists")

	// ErrRecordNotFound indicates that no readiness record has been
	// computed for the project yet
	ErrRecordNotFound = errors.New("readiness record not found")
)

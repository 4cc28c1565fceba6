package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrInvalidMessage indicates that a message cannot be decoded or has unknown kind
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidReference indicates that a message references an entity or
	// catalog record that does not exist for the user
	ErrInvalidReference = errors.New("invalid reference")

	// ErrEntityExists indicates that a create message collides with an existing entity
	ErrEntityExists = errors.New("entity already exists")

	// ErrForbidden indicates that the user lacks the grant required by a message
	ErrForbidden = errors.New("permission denied")
)

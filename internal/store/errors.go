package store

import "errors"

var (
	// ErrUserExists is returned when registering an already-taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a username is not registered.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadySubscribed is returned on duplicate subscription for a city.
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrNotSubscribed is returned when unsubscribing a handle that is not registered.
	ErrNotSubscribed = errors.New("not subscribed")
)

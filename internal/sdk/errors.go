package sdk

import "errors"

var (
	// ErrDuplicateCredential is returned when a live client already holds the credential.
	ErrDuplicateCredential = errors.New("a client for this api key already exists")
	// ErrInvalidMode is returned for a mode other than on_demand or polling.
	ErrInvalidMode = errors.New("mode must be one of on_demand or polling")
	// ErrEmptyCredential is returned when no api key is given.
	ErrEmptyCredential = errors.New("api key is required")
	// ErrReleased is returned by a client that has been released.
	ErrReleased = errors.New("client has been released")
)

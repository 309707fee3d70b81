package session

import "errors"

var (
	ErrNotSetUp          = errors.New("game has not been set up")
	ErrAlreadySetUp      = errors.New("game is already set up")
	ErrTerminated        = errors.New("game has ended")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoActiveSession   = errors.New("game not started")
	ErrMissingDependency = errors.New("missing session dependency")
	ErrEmptyItem         = errors.New("item is required")
	ErrItemNotHeld       = errors.New("item not in inventory")
)

package editor

import "errors"

// User precondition failures. They leave the session unchanged.
var (
	ErrNoClass     = errors.New("no class selected")
	ErrNoImage     = errors.New("no image loaded")
	ErrNoSelection = errors.New("no polygon selected")
)

package errs

import (
	"errors"
)

var (
	// ErrNetwork indicates that the player script could not be fetched.
	ErrNetwork = errors.New("player script unavailable")
	// ErrFormat indicates that the player script no longer matches the known grammar.
	ErrFormat = errors.New("player script format not recognized")
	// ErrInvalidURL indicates that a playback or manifest URL could not be parsed.
	ErrInvalidURL = errors.New("invalid url")
)

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrScriptUnavailable means neither the script service nor audio
	// transcription could produce a usable script for the episode.
	ErrScriptUnavailable = errors.New("script unavailable")
	// ErrTranscriptionFailed means speech-to-text produced no usable text.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

// StorageError wraps a failed object-store operation with the key it
// touched. Terminal for the stage that triggered it.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

package core

import (
	"errors"
)

// ErrorKind classifies the recoverable conditions of the engine.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindCorruptState
	KindDegenerateRotationInput
	KindNotReady
	KindLoadInProgress
	KindInvalidScale
)

var (
	ErrCorruptState            = errors.New("persisted view state is corrupt")
	ErrDegenerateRotationInput = errors.New("rotation drag vector has near-zero length")
	ErrNotReady                = errors.New("geometry not loaded yet")
	ErrLoadInProgress          = errors.New("geometry load already in progress")
	ErrInvalidScale            = errors.New("scale factor must be greater than zero")
	ErrUnknown                 = errors.New("unknown")
)

func (k ErrorKind) String() string {
	switch k {
	case KindCorruptState:
		return "CorruptState"
	case KindDegenerateRotationInput:
		return "DegenerateRotationInput"
	case KindNotReady:
		return "NotReady"
	case KindLoadInProgress:
		return "LoadInProgress"
	case KindInvalidScale:
		return "InvalidScale"
	default:
		return "Unknown"
	}
}

// KindOf maps an error, possibly wrapped, back to its kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrCorruptState):
		return KindCorruptState
	case errors.Is(err, ErrDegenerateRotationInput):
		return KindDegenerateRotationInput
	case errors.Is(err, ErrNotReady):
		return KindNotReady
	case errors.Is(err, ErrLoadInProgress):
		return KindLoadInProgress
	case errors.Is(err, ErrInvalidScale):
		return KindInvalidScale
	default:
		return KindUnknown
	}
}

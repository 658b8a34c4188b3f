package storage

import "errors"

var ErrInvalidKey = errors.New("storage key must be a non-empty name without path separators")

// KeyValueStore persists string values under string keys. A missing key is
// reported with ok == false and a nil error.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

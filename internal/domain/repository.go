package domain

import (
	"context"
	"errors"
)

// ErrStateNotFound is returned by a StateStore when the key has never been written.
var ErrStateNotFound = errors.New("state not found")

// StateStore is a key-value store holding the encoded quest state.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

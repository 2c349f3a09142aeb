// Package domain describes the activity records that the surrounding
// application persists and the key-value store they live in.
package domain

import (
	"context"
	"errors"
)

// Store keys. Each holds one JSON document.
const (
	KeyHabits       = "flowstate-habits"
	KeyTodos        = "flowstate-todos"
	KeyCoachingData = "flowstate-coaching-data"
	KeyTimeBlocks   = "flowstate-timeblocks"
)

// Keys returns every key the core reads.
func Keys() []string {
	return []string{KeyHabits, KeyTodos, KeyCoachingData, KeyTimeBlocks}
}

var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrMalformedData    = errors.New("malformed stored data")
)

// KeyValueStore reads and writes JSON blobs by key.
type KeyValueStore interface {
	// Get returns the raw value or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

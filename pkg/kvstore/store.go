package kvstore

import "context"

// Store persists opaque values under string keys.
// Get returns ErrNotFound when the key is absent. Delete of an absent key
// is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

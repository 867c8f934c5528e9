package store

import "context"

/**
 * Store persists plan state between tiers and across processes. Keys are
 * namespaced by prefix so one backend can hold several record kinds.
 */
type Store interface {
	// Get returns nil without error when the key does not exist.
	Get(ctx context.Context, prefix, key string) ([]byte, error)
	Set(ctx context.Context, prefix, key string, value []byte) error
	/**
	 * Remove a prefix and key
	 * removing an unknown prefix + key is NOT an error
	 */
	Remove(ctx context.Context, prefix, key string) error

	List(ctx context.Context, prefix string, iterator func(key string) bool) error
}

// Package store persists per-browser state the way the SPA used
// localStorage: a handful of string keys scoped to a stable browser ID.
// The in-memory store backs single-node deployments and tests; the Redis
// store is for running more than one frontend instance.
package store

import "context"

// Keys persisted per browser.
const (
	KeyAccessToken    = "access_token"
	KeyRefreshToken   = "refresh_token"
	KeyCart           = "cart"
	KeyNewsletterSeen = "newsletter_seen"
)

// Store is a namespaced key/value store. Writes are last-writer-wins; two
// tabs sharing a browser ID can race exactly like two tabs sharing
// localStorage did.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, browserID, key string) (string, bool, error)
	Set(ctx context.Context, browserID, key, value string) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, browserID string, keys ...string) error
}

// Package session owns the persisted session triple: access token, refresh
// token, and the cached user profile. The Store interface is the opaque
// key-value device underneath; Manager is its only writer.
package session

import "context"

// Storage keys for the session triple. They match the keys the mobile
// clients use so a store can be shared across client generations.
const (
	KeyAccessToken  = "userToken"
	KeyRefreshToken = "refreshToken"
	KeyUserData     = "userData"
)

// Store is an opaque asynchronous key-value store. Implementations must
// return ErrNotFound for a clean miss; any other error means the storage
// device itself failed. Callers rely on that distinction: a missing token
// and an unreadable store are different situations.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

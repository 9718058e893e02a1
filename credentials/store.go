package credentials

import "context"

// Store keeps credentials server side, keyed by user id.
// Concurrent writes for the same user are last-writer-wins.
type Store interface {
	Get(ctx context.Context, userID string) (StoredCredential, error)
	Put(ctx context.Context, credential StoredCredential) error
	Delete(ctx context.Context, userID string) error
}

package credentials

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/csv-sheet-sync/internal/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is a process local Store
type InMemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]StoredCredential // userID -> credential
}

// NewInMemoryStore creates an empty in-memory credential store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		credentials: make(map[string]StoredCredential),
	}
}

// Get returns the credential stored for userID
func (s *InMemoryStore) Get(_ context.Context, userID string) (StoredCredential, error) {
	if userID == "" {
		return StoredCredential{}, fmt.Errorf("userID is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	credential, ok := s.credentials[userID]
	if !ok {
		return StoredCredential{}, apperrors.ErrCredentialNotFound
	}
	return credential, nil
}

// Put creates or replaces the credential for its user
func (s *InMemoryStore) Put(_ context.Context, credential StoredCredential) error {
	if credential.UserID == "" {
		return fmt.Errorf("userID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials[credential.UserID] = credential
	return nil
}

// Delete removes the credential for userID
func (s *InMemoryStore) Delete(_ context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.credentials, userID) // already gone is not an error
	return nil
}

package ports

import "github.com/erptask/taskdeck/internal/core/domain"

// CredentialStore holds the process-wide session credential and mirrors it to
// durable storage. Token and user live in one document so they are always
// set and cleared atomically.
type CredentialStore interface {
	// Load restores the credential from durable storage into memory.
	// A missing or corrupt file yields (nil, nil), never a fatal error.
	Load() (*domain.Credential, error)
	// Set persists the credential and updates the in-memory copy.
	Set(cred *domain.Credential) error
	// Clear removes both the in-memory and the durable copy.
	Clear() error
	// Get is a synchronous read of the current in-memory credential.
	Get() *domain.Credential
}

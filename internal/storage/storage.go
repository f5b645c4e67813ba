// Package storage defines the Storage interface, the contract every
// contact store backend must satisfy.
//
// The registry and the HTTP layer only ever see this interface, so the
// SQLite, PostgreSQL and in-memory backends are interchangeable and tests
// can run against the in-memory one without a database.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// Backend errors. Implementations wrap driver failures with context but
// always return these sentinels (matchable with errors.Is) for the three
// conditions callers need to tell apart.
var (
	ErrNotFound      = errors.New("storage: contact not found")
	ErrInvalidID     = errors.New("storage: malformed contact id")
	ErrDuplicateName = errors.New("storage: contact name already exists")
)

// Storage is the database contract. A single value is shared by all
// request goroutines, so implementations must be safe for concurrent use.
type Storage interface {
	// CreateContact inserts a new contact under a freshly generated id.
	// Returns ErrDuplicateName if the name is taken.
	CreateContact(ctx context.Context, name, number string) (types.Contact, error)

	// GetContactByID fetches a single contact.
	// Returns ErrInvalidID or ErrNotFound.
	GetContactByID(ctx context.Context, id string) (types.Contact, error)

	// GetContactByName fetches the contact with exactly this name.
	// Returns ErrNotFound if there is none.
	GetContactByName(ctx context.Context, name string) (types.Contact, error)

	// GetContacts returns every contact, never nil.
	GetContacts(ctx context.Context) ([]types.Contact, error)

	// UpdateContactByID replaces name and number of an existing contact
	// and returns the stored record.
	// Returns ErrInvalidID, ErrNotFound or ErrDuplicateName.
	UpdateContactByID(ctx context.Context, id string, contact types.Contact) (types.Contact, error)

	// DeleteContactByID removes a contact permanently.
	// Returns ErrInvalidID or ErrNotFound.
	DeleteContactByID(ctx context.Context, id string) error

	// CountContacts returns the number of stored contacts.
	CountContacts(ctx context.Context) (int64, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// NewID returns a fresh contact identifier.
func NewID() string {
	return uuid.NewString()
}

// ParseID checks that id is a well-formed contact identifier and returns
// it in canonical form.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}

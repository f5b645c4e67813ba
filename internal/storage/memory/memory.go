// Package memory provides an in-process implementation of storage.Storage.
// Contents are lost when the process exits; it backs the test suites and
// throwaway local runs (storage.driver: memory).
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aanand-mishra/phonebook-api/internal/storage"
	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// Memory implements [storage.Storage].
type Memory struct {
	mu       sync.Mutex
	index    map[string]int // id -> position in contacts
	names    map[string]string
	contacts []types.Contact
}

var _ storage.Storage = (*Memory)(nil)

// New returns a store seeded with cs. Seed contacts without an id get one.
func New(cs ...types.Contact) *Memory {
	m := &Memory{
		index: make(map[string]int, len(cs)),
		names: make(map[string]string, len(cs)),
	}
	for _, c := range cs {
		if c.ID == "" {
			c.ID = storage.NewID()
		}
		m.index[c.ID] = len(m.contacts)
		m.names[c.Name] = c.ID
		m.contacts = append(m.contacts, c)
	}
	return m
}

func (m *Memory) CreateContact(_ context.Context, name, number string) (types.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.names[name]; taken {
		return types.Contact{}, storage.ErrDuplicateName
	}

	var c types.Contact
retry:
	c = types.Contact{ID: storage.NewID(), Name: name, Number: number}
	if _, loaded := m.index[c.ID]; loaded {
		goto retry
	}

	m.index[c.ID] = len(m.contacts)
	m.names[name] = c.ID
	m.contacts = append(m.contacts, c)
	return c, nil
}

func (m *Memory) GetContactByID(_ context.Context, id string) (types.Contact, error) {
	id, err := storage.ParseID(id)
	if err != nil {
		return types.Contact{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return types.Contact{}, storage.ErrNotFound
	}
	return m.contacts[i], nil
}

func (m *Memory) GetContactByName(_ context.Context, name string) (types.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.names[name]
	if !ok {
		return types.Contact{}, storage.ErrNotFound
	}
	return m.contacts[m.index[id]], nil
}

func (m *Memory) GetContacts(_ context.Context) ([]types.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// copy, callers must not alias the backing slice
	return append(make([]types.Contact, 0, len(m.contacts)), m.contacts...), nil
}

func (m *Memory) UpdateContactByID(_ context.Context, id string, contact types.Contact) (types.Contact, error) {
	id, err := storage.ParseID(id)
	if err != nil {
		return types.Contact{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return types.Contact{}, storage.ErrNotFound
	}
	if owner, taken := m.names[contact.Name]; taken && owner != id {
		return types.Contact{}, storage.ErrDuplicateName
	}

	delete(m.names, m.contacts[i].Name)
	m.names[contact.Name] = id
	m.contacts[i] = types.Contact{ID: id, Name: contact.Name, Number: contact.Number}
	return m.contacts[i], nil
}

func (m *Memory) DeleteContactByID(_ context.Context, id string) error {
	id, err := storage.ParseID(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return storage.ErrNotFound
	}

	delete(m.index, id)
	delete(m.names, m.contacts[i].Name)
	m.contacts = slices.Delete(m.contacts, i, i+1)
	for j := i; j < len(m.contacts); j++ {
		m.index[m.contacts[j].ID] = j
	}
	return nil
}

func (m *Memory) CountContacts(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.contacts)), nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

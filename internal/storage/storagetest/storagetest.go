// Package storagetest holds the behaviour every storage.Storage backend
// must share. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/phonebook-api/internal/storage"
	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// Run exercises a backend. newStore must return an empty store; it is
// called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Helper()

	t.Run("CreateAndGet", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()

		created, err := s.CreateContact(ctx, "Ada Lovelace", "040-1234567")
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, "Ada Lovelace", created.Name)
		assert.Equal(t, "040-1234567", created.Number)

		got, err := s.GetContactByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)

		byName, err := s.GetContactByName(ctx, "Ada Lovelace")
		require.NoError(t, err)
		assert.Equal(t, created, byName)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()

		_, err := s.CreateContact(ctx, "Ada Lovelace", "040-1234567")
		require.NoError(t, err)
		_, err = s.CreateContact(ctx, "Ada Lovelace", "040-7654321")
		require.ErrorIs(t, err, storage.ErrDuplicateName)

		// names are case-sensitive
		_, err = s.CreateContact(ctx, "ada lovelace", "040-7654321")
		require.NoError(t, err)

		n, err := s.CountContacts(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()

		_, err := s.GetContactByID(ctx, storage.NewID())
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.GetContactByName(ctx, "Nobody")
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.GetContactByID(ctx, "not-an-id")
		require.ErrorIs(t, err, storage.ErrInvalidID)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()

		contacts, err := s.GetContacts(ctx)
		require.NoError(t, err)
		require.NotNil(t, contacts)
		assert.Empty(t, contacts)
	})

	t.Run("ListAndCount", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()

		want := []string{"Arto Hellas", "Dan Abramov", "Mary Poppendieck"}
		for _, name := range want {
			_, err := s.CreateContact(ctx, name, "39-44-5323523")
			require.NoError(t, err)
		}

		contacts, err := s.GetContacts(ctx)
		require.NoError(t, err)
		names := make([]string, 0, len(contacts))
		for _, c := range contacts {
			names = append(names, c.Name)
		}
		assert.ElementsMatch(t, want, names)

		n, err := s.CountContacts(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, len(contacts), n)
	})

	t.Run("Update", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()

		ada, err := s.CreateContact(ctx, "Ada Lovelace", "040-1234567")
		require.NoError(t, err)
		dan, err := s.CreateContact(ctx, "Dan Abramov", "12-43-234345")
		require.NoError(t, err)

		updated, err := s.UpdateContactByID(ctx, ada.ID, types.Contact{Name: "Ada King", Number: "040-0000000"})
		require.NoError(t, err)
		assert.Equal(t, types.Contact{ID: ada.ID, Name: "Ada King", Number: "040-0000000"}, updated)

		// the old name is free again
		_, err = s.GetContactByName(ctx, "Ada Lovelace")
		require.ErrorIs(t, err, storage.ErrNotFound)

		// unchanged name is not a conflict with itself
		_, err = s.UpdateContactByID(ctx, ada.ID, types.Contact{Name: "Ada King", Number: "040-1111111"})
		require.NoError(t, err)

		_, err = s.UpdateContactByID(ctx, dan.ID, types.Contact{Name: "Ada King", Number: "040-1111111"})
		require.ErrorIs(t, err, storage.ErrDuplicateName)

		_, err = s.UpdateContactByID(ctx, storage.NewID(), types.Contact{Name: "Ghost", Number: "00000000"})
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.UpdateContactByID(ctx, "42", types.Contact{Name: "Ghost", Number: "00000000"})
		require.ErrorIs(t, err, storage.ErrInvalidID)

		got, err := s.GetContactByID(ctx, dan.ID)
		require.NoError(t, err)
		assert.Equal(t, dan, got)
	})

	t.Run("Delete", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()

		ada, err := s.CreateContact(ctx, "Ada Lovelace", "040-1234567")
		require.NoError(t, err)
		dan, err := s.CreateContact(ctx, "Dan Abramov", "12-43-234345")
		require.NoError(t, err)

		require.NoError(t, s.DeleteContactByID(ctx, ada.ID))

		_, err = s.GetContactByID(ctx, ada.ID)
		require.ErrorIs(t, err, storage.ErrNotFound)
		require.ErrorIs(t, s.DeleteContactByID(ctx, ada.ID), storage.ErrNotFound)
		require.ErrorIs(t, s.DeleteContactByID(ctx, "bogus"), storage.ErrInvalidID)

		got, err := s.GetContactByID(ctx, dan.ID)
		require.NoError(t, err)
		assert.Equal(t, dan, got)

		// a deleted name can be reused
		_, err = s.CreateContact(ctx, "Ada Lovelace", "040-1234567")
		require.NoError(t, err)
	})

	t.Run("ConcurrentCreateSameName", func(t *testing.T) {
		s, ctx := newStore(t), context.Background()

		const workers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.CreateContact(ctx, "Race Condition", "55555555")
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, storage.ErrDuplicateName)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		n, err := s.CountContacts(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(context.Background()))
	})
}

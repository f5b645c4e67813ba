// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process. The contacts table carries a UNIQUE constraint
// on name, so the one-contact-per-name rule holds even when two requests
// race to create the same name.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Registers the "sqlite3" driver with database/sql. We also use its
	// error type to recognise constraint violations.
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/phonebook-api/internal/config"
	"github.com/aanand-mishra/phonebook-api/internal/storage"
	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.Storage.DSN, creates the contacts
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	// sql.Open only validates the driver name and DSN; the first real
	// connection happens on the first query.
	db, err := sql.Open("sqlite3", cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows one writer at a time. A single connection turns
	// concurrent writes into a queue instead of SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)

	// Idempotent, safe to run on every startup.
	//
	// Schema:
	//   id     — UUID in canonical text form, assigned by New/CreateContact
	//   name   — unique, case-sensitive (SQLite's default BINARY collation)
	//   number — free-form phone number text
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id     TEXT PRIMARY KEY,
			name   TEXT NOT NULL UNIQUE,
			number TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateContact inserts a new row with a freshly generated id.
//
// Values go through ? placeholders; the driver sends them separately from
// the SQL text so user input is never interpreted as SQL.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateContact(ctx context.Context, name, number string) (types.Contact, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO contacts (id, name, number) VALUES (?, ?, ?)",
	)
	if err != nil {
		return types.Contact{}, fmt.Errorf("CreateContact: prepare: %w", err)
	}
	defer stmt.Close()

	contact := types.Contact{ID: storage.NewID(), Name: name, Number: number}

	if _, err := stmt.ExecContext(ctx, contact.ID, contact.Name, contact.Number); err != nil {
		if isUniqueViolation(err) {
			return types.Contact{}, storage.ErrDuplicateName
		}
		return types.Contact{}, fmt.Errorf("CreateContact: exec: %w", err)
	}

	return contact, nil
}

// GetContactByID fetches exactly one contact matched by primary key.
func (s *SQLite) GetContactByID(ctx context.Context, id string) (types.Contact, error) {
	id, err := storage.ParseID(id)
	if err != nil {
		return types.Contact{}, err
	}

	return s.getContact(ctx, "GetContactByID",
		"SELECT id, name, number FROM contacts WHERE id = ? LIMIT 1", id)
}

// GetContactByName fetches the contact whose name matches exactly.
func (s *SQLite) GetContactByName(ctx context.Context, name string) (types.Contact, error) {
	return s.getContact(ctx, "GetContactByName",
		"SELECT id, name, number FROM contacts WHERE name = ? LIMIT 1", name)
}

func (s *SQLite) getContact(ctx context.Context, op, query string, arg any) (types.Contact, error) {
	stmt, err := s.Db.PrepareContext(ctx, query)
	if err != nil {
		return types.Contact{}, fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	var contact types.Contact

	// QueryRow never returns nil; "no match" surfaces from Scan as
	// sql.ErrNoRows.
	err = stmt.QueryRowContext(ctx, arg).Scan(
		&contact.ID,
		&contact.Name,
		&contact.Number,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Contact{}, storage.ErrNotFound
		}
		return types.Contact{}, fmt.Errorf("%s: scan: %w", op, err)
	}

	return contact, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetContacts returns all contact rows in insertion order.
//
// Returns [] rather than nil so the JSON body is never null.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetContacts(ctx context.Context) ([]types.Contact, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, number FROM contacts ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("GetContacts: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetContacts: query: %w", err)
	}
	defer rows.Close()

	contacts := make([]types.Contact, 0)

	for rows.Next() {
		var contact types.Contact

		if err := rows.Scan(
			&contact.ID,
			&contact.Name,
			&contact.Number,
		); err != nil {
			return nil, fmt.Errorf("GetContacts: scan row: %w", err)
		}

		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetContacts: rows iteration: %w", err)
	}

	return contacts, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateContactByID replaces a contact's name and number.
// Returns the stored record so the caller can echo it back to the client.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdateContactByID(ctx context.Context, id string, contact types.Contact) (types.Contact, error) {
	id, err := storage.ParseID(id)
	if err != nil {
		return types.Contact{}, err
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE contacts SET name = ?, number = ? WHERE id = ?",
	)
	if err != nil {
		return types.Contact{}, fmt.Errorf("UpdateContactByID: prepare: %w", err)
	}
	defer stmt.Close()

	// argument order matches the ? order: name, number, id
	result, err := stmt.ExecContext(ctx, contact.Name, contact.Number, id)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Contact{}, storage.ErrDuplicateName
		}
		return types.Contact{}, fmt.Errorf("UpdateContactByID: exec: %w", err)
	}

	if err := expectOneRow(result, "UpdateContactByID"); err != nil {
		return types.Contact{}, err
	}

	return s.GetContactByID(ctx, id)
}

// DeleteContactByID removes a contact row by primary key.
func (s *SQLite) DeleteContactByID(ctx context.Context, id string) error {
	id, err := storage.ParseID(id)
	if err != nil {
		return err
	}

	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM contacts WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteContactByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteContactByID: exec: %w", err)
	}

	return expectOneRow(result, "DeleteContactByID")
}

func (s *SQLite) CountContacts(ctx context.Context) (int64, error) {
	var n int64
	if err := s.Db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&n); err != nil {
		return 0, fmt.Errorf("CountContacts: %w", err)
	}
	return n, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}

// expectOneRow turns "no row matched the WHERE clause" into ErrNotFound.
func expectOneRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

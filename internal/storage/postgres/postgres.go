// Package postgres implements storage.Storage on PostgreSQL through a
// pgx connection pool. Select it with storage.driver: postgres and a
// postgres:// URL in storage.dsn.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/phonebook-api/internal/config"
	"github.com/aanand-mishra/phonebook-api/internal/storage"
	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS contacts (
		id         UUID        PRIMARY KEY,
		name       TEXT        NOT NULL UNIQUE,
		number     TEXT        NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

type Postgres struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Postgres)(nil)

// New connects to cfg.Storage.DSN and makes sure the contacts table exists.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) CreateContact(ctx context.Context, name, number string) (types.Contact, error) {
	contact := types.Contact{ID: storage.NewID(), Name: name, Number: number}

	_, err := p.pool.Exec(ctx,
		"INSERT INTO contacts (id, name, number) VALUES ($1, $2, $3)",
		contact.ID, contact.Name, contact.Number,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Contact{}, storage.ErrDuplicateName
		}
		return types.Contact{}, fmt.Errorf("CreateContact: %w", err)
	}

	return contact, nil
}

func (p *Postgres) GetContactByID(ctx context.Context, id string) (types.Contact, error) {
	id, err := storage.ParseID(id)
	if err != nil {
		return types.Contact{}, err
	}

	return p.getContact(ctx, "GetContactByID",
		"SELECT id::text, name, number FROM contacts WHERE id = $1", id)
}

func (p *Postgres) GetContactByName(ctx context.Context, name string) (types.Contact, error) {
	return p.getContact(ctx, "GetContactByName",
		"SELECT id::text, name, number FROM contacts WHERE name = $1", name)
}

func (p *Postgres) getContact(ctx context.Context, op, query string, arg string) (types.Contact, error) {
	var contact types.Contact
	err := p.pool.QueryRow(ctx, query, arg).Scan(&contact.ID, &contact.Name, &contact.Number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Contact{}, storage.ErrNotFound
		}
		return types.Contact{}, fmt.Errorf("%s: %w", op, err)
	}
	return contact, nil
}

func (p *Postgres) GetContacts(ctx context.Context) ([]types.Contact, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT id::text, name, number FROM contacts ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("GetContacts: query: %w", err)
	}

	contacts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Contact, error) {
		var c types.Contact
		err := row.Scan(&c.ID, &c.Name, &c.Number)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("GetContacts: scan: %w", err)
	}

	if contacts == nil {
		contacts = make([]types.Contact, 0)
	}
	return contacts, nil
}

func (p *Postgres) UpdateContactByID(ctx context.Context, id string, contact types.Contact) (types.Contact, error) {
	id, err := storage.ParseID(id)
	if err != nil {
		return types.Contact{}, err
	}

	var updated types.Contact
	err = p.pool.QueryRow(ctx,
		"UPDATE contacts SET name = $1, number = $2 WHERE id = $3 RETURNING id::text, name, number",
		contact.Name, contact.Number, id,
	).Scan(&updated.ID, &updated.Name, &updated.Number)
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return types.Contact{}, storage.ErrNotFound
	case isUniqueViolation(err):
		return types.Contact{}, storage.ErrDuplicateName
	default:
		return types.Contact{}, fmt.Errorf("UpdateContactByID: %w", err)
	}
}

func (p *Postgres) DeleteContactByID(ctx context.Context, id string) error {
	id, err := storage.ParseID(id)
	if err != nil {
		return err
	}

	tag, err := p.pool.Exec(ctx, "DELETE FROM contacts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("DeleteContactByID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *Postgres) CountContacts(ctx context.Context) (int64, error) {
	var n int64
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contacts").Scan(&n); err != nil {
		return 0, fmt.Errorf("CountContacts: %w", err)
	}
	return n, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

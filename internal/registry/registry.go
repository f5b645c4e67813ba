// Package registry owns the rules for contact records: what a valid
// contact looks like, and how create behaves when the name already exists.
//
// Everything else in the service is plumbing between HTTP and storage.
// Validation always runs before storage is touched, and storage errors
// are translated into the four kinds declared in errors.go so callers
// never see driver details.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/phonebook-api/internal/storage"
	"github.com/aanand-mishra/phonebook-api/internal/types"
)

// Outcome tells Create's caller which path was taken.
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Info is a point-in-time summary of the phonebook.
type Info struct {
	Count int64
	Time  time.Time
}

// Registry validates contact writes and applies the upsert policy on top
// of a storage backend. Safe for concurrent use.
type Registry struct {
	store    storage.Storage
	validate *validator.Validate
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Registry)

// WithClock overrides the time source used by Info.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

func New(store storage.Storage, opts ...Option) *Registry {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	r := &Registry{
		store:    store,
		validate: validate,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) List(ctx context.Context) ([]types.Contact, error) {
	contacts, err := r.store.GetContacts(ctx)
	if err != nil {
		return nil, r.translate(err)
	}
	return contacts, nil
}

func (r *Registry) Get(ctx context.Context, id string) (types.Contact, error) {
	contact, err := r.store.GetContactByID(ctx, id)
	if err != nil {
		return types.Contact{}, r.translate(err)
	}
	return contact, nil
}

// Create stores a new contact, or, if one with this name already exists,
// overwrites its number. The Outcome says which happened.
func (r *Registry) Create(ctx context.Context, name, number string) (types.Contact, Outcome, error) {
	if err := r.check(name, number); err != nil {
		return types.Contact{}, 0, err
	}

	existing, err := r.store.GetContactByName(ctx, name)
	switch {
	case err == nil:
		return r.upsert(ctx, existing, number)
	case !errors.Is(err, storage.ErrNotFound):
		return types.Contact{}, 0, r.translate(err)
	}

	created, err := r.store.CreateContact(ctx, name, number)
	if err == nil {
		return created, OutcomeCreated, nil
	}
	if !errors.Is(err, storage.ErrDuplicateName) {
		return types.Contact{}, 0, r.translate(err)
	}

	// Lost a race with a concurrent create of the same name. The winner's
	// record exists now, so fall back to the update path once.
	r.log.DebugContext(ctx, "create lost race, updating instead", slog.String("name", name))
	existing, err = r.store.GetContactByName(ctx, name)
	if err != nil {
		return types.Contact{}, 0, r.translate(err)
	}
	return r.upsert(ctx, existing, number)
}

func (r *Registry) upsert(ctx context.Context, existing types.Contact, number string) (types.Contact, Outcome, error) {
	updated, err := r.store.UpdateContactByID(ctx, existing.ID,
		types.Contact{Name: existing.Name, Number: number})
	if err != nil {
		return types.Contact{}, 0, r.translate(err)
	}
	return updated, OutcomeUpdated, nil
}

// Update replaces name and number of the contact with this id.
func (r *Registry) Update(ctx context.Context, id, name, number string) (types.Contact, error) {
	if err := r.check(name, number); err != nil {
		return types.Contact{}, err
	}

	updated, err := r.store.UpdateContactByID(ctx, id, types.Contact{Name: name, Number: number})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateName) {
			return types.Contact{}, duplicateName(name)
		}
		return types.Contact{}, r.translate(err)
	}
	return updated, nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteContactByID(ctx, id); err != nil {
		return r.translate(err)
	}
	return nil
}

func (r *Registry) Info(ctx context.Context) (Info, error) {
	n, err := r.store.CountContacts(ctx)
	if err != nil {
		return Info{}, r.translate(err)
	}
	return Info{Count: n, Time: r.now()}, nil
}

// Ping reports whether storage is reachable.
func (r *Registry) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Validate checks a contact against the create/update rules without
// touching storage. Returns nil or a *ValidationError.
func (r *Registry) Validate(contact types.Contact) error {
	err := r.validate.Struct(contact)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fromValidator(verrs)
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func (r *Registry) check(name, number string) error {
	return r.Validate(types.Contact{Name: name, Number: number})
}

func (r *Registry) translate(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrInvalidID):
		return ErrInvalidID
	case errors.Is(err, storage.ErrDuplicateName):
		return &ValidationError{Fields: []types.FieldError{{
			Field: "name", Rule: "unique", Message: "field name must be unique",
		}}}
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// Package types holds the data structures shared across the application.
// Keeping them in one place prevents import cycles: handlers, the
// registry, storage backends and response helpers all import types
// without depending on each other.
package types

// Contact is a single phonebook entry.
//
// Struct tags serve two purposes:
//
//  1. json:"..."     controls the wire shape: { "id", "name", "number" }.
//  2. validate:"..." rules checked by go-playground/validator before any
//     write reaches storage. "min" counts characters, not bytes.
//
// ID is assigned by the storage layer and never validated on input.
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"   validate:"required,min=3"`
	Number string `json:"number" validate:"required,min=8"`
}

// FieldError describes one failed validation rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

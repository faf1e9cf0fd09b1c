// FILE: internal/entity/errors.go
package entity

import "errors"

var (
	// ErrSchemaEmpty is returned when extraction yields a form with zero fields.
	ErrSchemaEmpty = errors.New("no usable form fields found")

	// ErrSessionNotFound covers stale, expired, or never-created session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrFormIncomplete is returned when a confirmation arrives before every field is filled.
	ErrFormIncomplete = errors.New("form not fully filled")

	// ErrNotConfirmed gates the download on the confirmation handshake.
	ErrNotConfirmed = errors.New("form not confirmed")
)

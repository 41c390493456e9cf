// Package apperr is the error taxonomy every layer translates into before
// an error crosses the HTTP boundary. Storage and driver errors never leak
// out raw; they are mapped here at the repository edge.
package apperr

import (
	"errors"

	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindConflict
	KindNotFound
)

type Error struct {
	Kind    Kind
	Message string
	// Fields carries field-level validation detail, nil for other kinds.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error { return e.Err }

func Authentication(msg string) *Error {
	if msg == "" {
		msg = "invalid credentials"
	}
	return &Error{Kind: KindAuthentication, Message: msg}
}

func Authorization(msg string) *Error {
	if msg == "" {
		msg = "forbidden"
	}
	return &Error{Kind: KindAuthorization, Message: msg}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// KindOf reports the taxonomy kind of err, defaulting to KindInternal for
// anything untranslated.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FromStorage translates a gorm error for the named entity. Requires the
// dialector's error translation to be enabled so duplicate-key violations
// surface as gorm.ErrDuplicatedKey.
func FromStorage(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(entity + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(entity + " already taken")
	default:
		return Internal(err)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies an Error.
type Code string

const (
	CodeValidation    Code = "VALIDATION"     // malformed input, rejected before the store
	CodeNotFound      Code = "NOT_FOUND"      // lookup yielded nothing where one was required
	CodeAlreadyExists Code = "ALREADY_EXISTS" // unique constraint on explicit creation
	CodeStore         Code = "STORE"          // transaction or query failure, rolled back
	CodeRemote        Code = "REMOTE"         // remote bookmark source failure
)

// Error is the structured error returned by storage, search and the remote source.
type Error struct {
	Code    Code
	Op      string // operation that failed, e.g. "bookmarks.create"
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidation creates an error for input rejected at the boundary.
func NewValidation(op, msg string) *Error {
	return &Error{Code: CodeValidation, Op: op, Message: msg}
}

// NewNotFound creates an error for a missing bookmark or tag.
func NewNotFound(op, what string) *Error {
	return &Error{Code: CodeNotFound, Op: op, Message: fmt.Sprintf("%s not found", what)}
}

// NewAlreadyExists creates an error for a duplicate unique key.
func NewAlreadyExists(op, what string) *Error {
	return &Error{Code: CodeAlreadyExists, Op: op, Message: fmt.Sprintf("%s already exists", what)}
}

// NewStore wraps a database failure.
func NewStore(op string, err error) *Error {
	return &Error{Code: CodeStore, Op: op, Err: err}
}

// NewRemote wraps a remote source failure.
func NewRemote(op string, err error) *Error {
	return &Error{Code: CodeRemote, Op: op, Err: err}
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

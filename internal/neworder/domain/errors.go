package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a New-Order failure for the caller: NotFound aborts the
// request for good, Conflict and Timeout are retryable, InvalidInput never
// reached the store.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindTimeout
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTimeout:
		return "timeout"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "internal"
	}
}

// Error carries the failure kind plus the table and key that identify what
// the transaction tripped over. Every kind implies a full rollback; there is
// no partial-success state to report.
type Error struct {
	Kind  Kind
	Table string
	Key   string
	msg   string
	cause error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Table != "" {
		s += " " + e.Table
	}
	if e.Key != "" {
		s += " (" + e.Key + ")"
	}
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.cause }

func NewNotFound(table, keyFormat string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Table: table, Key: fmt.Sprintf(keyFormat, args...)}
}

func NewInvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, msg: fmt.Sprintf(format, args...)}
}

func NewConflict(table string, cause error) *Error {
	return &Error{Kind: KindConflict, Table: table, cause: cause}
}

func NewTimeout(table string, cause error) *Error {
	return &Error{Kind: KindTimeout, Table: table, cause: cause}
}

func NewInternal(cause error) *Error {
	return &Error{Kind: KindInternal, cause: cause}
}

// KindOf extracts the failure kind from an error chain, defaulting to
// KindInternal for errors this package did not produce.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Retryable reports whether the caller may usefully retry the request:
// only lock contention and store timeouts qualify.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindConflict || k == KindTimeout
}

// Package errs holds the error type shared by every gobi component.
//
// An *Error carries a process exit code next to its message. Errors combine
// with Merge, which forms a monoid with the zero Error as identity, so batch
// operations can report every failure at once instead of stopping at the
// first one.
package errs

import (
	"errors"
	"fmt"
)

// CollapsedCode is used when two errors with different codes are merged.
const CollapsedCode = 1

// Separator joins the messages of merged errors.
const Separator = "\n"

// Error is a failure with an exit code.
type Error struct {
	Code int
	Msg  string

	causes []error
}

// New returns an error with the given code and message.
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Newf formats the message of a new error.
func Newf(code int, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error carrying msg that keeps cause reachable through
// errors.Is and inherits its code.
func Wrap(cause error, msg string) *Error {
	return &Error{Code: Code(cause), Msg: msg, causes: []error{cause}}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(cause error, format string, args ...any) *Error {
	return Wrap(cause, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

// Unwrap exposes the wrapped and merged causes.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	return e.causes
}

// IsZero reports whether e is the identity: no code and no message.
func (e *Error) IsZero() bool {
	return e == nil || (e.Code == 0 && e.Msg == "")
}

// Merge combines two errors. The code survives when both agree and collapses
// to CollapsedCode otherwise; messages are joined with Separator. A nil or
// zero operand is the identity and returns the other operand unchanged.
func Merge(a, b *Error) *Error {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	code := a.Code
	if a.Code != b.Code {
		code = CollapsedCode
	}
	return &Error{
		Code:   code,
		Msg:    a.Msg + Separator + b.Msg,
		causes: []error{a, b},
	}
}

// From converts any error into an *Error. Foreign errors get code 1 unless
// they wrap an *Error, whose code is kept.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Code: Code(err), Msg: err.Error(), causes: []error{err}}
}

// Code returns the exit code for err: 0 for nil, the code of the outermost
// *Error in the chain, or 1.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) && e.Code != 0 {
		return e.Code
	}
	return 1
}

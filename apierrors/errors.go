/*
Package apierrors classifies every failure the console can see while talking to the restaurant API.
Callers pass an Op naming the gateway action and a Kind from the small taxonomy below, and test
the result with IsKind or errors.As.
*/
package apierrors

import (
	"errors"
	"fmt"
	"strings"
)

// Op names the gateway action that failed, e.g. "reservations.create".
type Op string

// Kind classifies an error.
type Kind uint16

const (
	KOther            Kind = 0 // KOther indicates the error kind was not defined.
	KClientValidation Kind = 1 // A required field was missing or malformed before any network call.
	KTransport        Kind = 2 // The request could not be completed; there was no response at all.
	KRemote           Kind = 3 // The server answered with a non-success status.
	KDecode           Kind = 4 // The body was present but not the structured type the operation needs.
)

func (k Kind) String() string {
	switch k {
	case KClientValidation:
		return "ClientValidation"
	case KTransport:
		return "Transport"
	case KRemote:
		return "Remote"
	case KDecode:
		return "Decode"
	}
	return "Other"
}

// Error is the error type returned by the gateway and store.
type Error struct {
	Op   Op
	Kind Kind
	// Status is the HTTP status for KRemote errors.
	Status int
	// Field is the offending input field for KClientValidation errors.
	Field string
	// Err carries the human readable cause.
	Err error
}

func (e *Error) Error() string {
	b := new(strings.Builder)
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

// Message is the cause without the Op prefix, suitable for showing to staff.
func (e *Error) Message() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E constructs an Error wrapping err. It panics on a nil err.
func E(op Op, k Kind, err error) error {
	if err == nil {
		panic("cannot pass a nil error")
	}
	return &Error{Op: op, Kind: k, Err: err}
}

// ES constructs an Error from a format string. It panics when the message is blank.
func ES(op Op, k Kind, s string, args ...interface{}) error {
	str := fmt.Sprintf(s, args...)
	if strings.TrimSpace(str) == "" {
		panic("apierrors.ES() cannot have an empty string error")
	}
	return &Error{Op: op, Kind: k, Err: errors.New(str)}
}

// Validation reports a missing or malformed field.
func Validation(op Op, field, msg string) error {
	return &Error{Op: op, Kind: KClientValidation, Field: field, Err: errors.New(msg)}
}

// Remote reports a non-success response with the message extracted from its body.
func Remote(op Op, status int, msg string) error {
	return &Error{Op: op, Kind: KRemote, Status: status, Err: errors.New(msg)}
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// KindOf returns the kind of err, or KOther when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KOther
}

// StatusOf returns the remote HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsClientError reports whether err is a remote 4xx response.
func IsClientError(err error) bool {
	s := StatusOf(err)
	return IsKind(err, KRemote) && s >= 400 && s < 500
}

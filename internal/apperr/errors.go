package apperr

import (
	"fmt"
	"runtime"
	"strings"
)

// Error extends the standard error interface with a CodeError
// classification, call-site tracing, and a parent hierarchy so a failure
// deep in the isolation layer can be inspected by a caller three levels up
// without losing its origin.
type Error interface {
	error

	// Code returns the classification of this error, ignoring any parent.
	Code() CodeError
	// IsCode reports whether this error (not its parents) carries code.
	IsCode(code CodeError) bool
	// HasCode reports whether this error or any parent carries code.
	HasCode(code CodeError) bool

	// Add attaches additional parent errors, skipping nil values.
	Add(parent ...error)
	// HasParent reports whether any parent error is attached.
	HasParent() bool

	// Trace returns the "file:line" of the call site that created
	// the error, or an empty string if tracing was not captured.
	Trace() string

	// Unwrap satisfies errors.Is/errors.As for the parent chain.
	Unwrap() []error
}

type ers struct {
	code    CodeError
	message string
	parent  []error
	frame   runtime.Frame
}

// New creates an Error with the given code and message, capturing the
// immediate caller's file and line for diagnostics.
func New(code CodeError, message string, parent ...error) Error {
	e := &ers{
		code:    code,
		message: message,
	}

	if pc, file, line, ok := runtime.Caller(1); ok {
		e.frame = runtime.Frame{File: file, Line: line, PC: pc}
	}

	e.Add(parent...)
	return e
}

// Wrap is a convenience for attaching code+message to an existing error as
// its sole parent.
func Wrap(code CodeError, message string, err error) Error {
	return New(code, message, err)
}

func (e *ers) Error() string {
	var b strings.Builder

	if e.message != "" {
		b.WriteString(e.message)
	} else if e.code != UnknownError {
		fmt.Fprintf(&b, "error code %d", e.code.Uint16())
	}

	for _, p := range e.parent {
		if p == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(p.Error())
	}

	return b.String()
}

func (e *ers) Code() CodeError {
	return e.code
}

func (e *ers) IsCode(code CodeError) bool {
	return e.code == code
}

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}

	for _, p := range e.parent {
		if ap, ok := p.(Error); ok && ap.HasCode(code) {
			return true
		}
	}

	return false
}

func (e *ers) Add(parent ...error) {
	for _, p := range parent {
		if p == nil {
			continue
		}
		e.parent = append(e.parent, p)
	}
}

func (e *ers) HasParent() bool {
	return len(e.parent) > 0
}

func (e *ers) Trace() string {
	if e.frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", e.frame.File, e.frame.Line)
}

func (e *ers) Unwrap() []error {
	return e.parent
}

// IsCode reports whether err is an Error carrying exactly code at its own
// level (not checking parents). Returns false for plain errors.
func IsCode(err error, code CodeError) bool {
	if e, ok := err.(Error); ok {
		return e.IsCode(code)
	}
	return false
}

// HasCode reports whether err is an Error carrying code anywhere in its
// hierarchy. Returns false for plain errors.
func HasCode(err error, code CodeError) bool {
	if e, ok := err.(Error); ok {
		return e.HasCode(code)
	}
	return false
}

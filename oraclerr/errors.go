// Package oraclerr defines the failure taxonomy for chess-oracle.
//
// Every error produced by the fixture store, result codec, process driver,
// or suite runner maps to exactly one FailureClass, which determines the
// harness exit code and keeps engine defects distinguishable from defects in
// the harness or its test data.
package oraclerr

import (
	"errors"
	"fmt"
)

// FailureClass is a stable failure category.
type FailureClass string

const (
	// Engine defects: the system under test produced a wrong or unreadable answer.
	FatalTreeDefect     FailureClass = "FATAL_TREE_DEFECT"
	SoftBreakdownDefect FailureClass = "SOFT_BREAKDOWN_DEFECT"
	MoveSetDefect       FailureClass = "MOVESET_DEFECT"
	BestMoveDefect      FailureClass = "BESTMOVE_DEFECT"
	ProtocolViolation   FailureClass = "PROTOCOL_VIOLATION"
	MissingField        FailureClass = "MISSING_FIELD"
	SchemaError         FailureClass = "SCHEMA_ERROR"
	EngineUnavailable   FailureClass = "ENGINE_UNAVAILABLE"

	// Harness defects: the test itself is broken, not the system under test.
	FixtureNotFound  FailureClass = "FIXTURE_NOT_FOUND"
	MalformedFixture FailureClass = "MALFORMED_FIXTURE"
	CLIUsage         FailureClass = "CLI_USAGE"
	InternalIO       FailureClass = "INTERNAL_IO"
	InternalError    FailureClass = "INTERNAL_ERROR"
)

// ExitCode returns the harness process exit code for this failure class.
// Engine defects exit 1 so the harness works as a CI gate; harness defects
// exit 10 to keep "the test is broken" visibly distinct from "the engine is
// wrong".
func (fc FailureClass) ExitCode() int {
	switch fc {
	case CLIUsage:
		return 2
	case FixtureNotFound, MalformedFixture, InternalIO, InternalError:
		return 10
	default:
		return 1
	}
}

// Error is the structured error type for all chess-oracle failures. Key
// identifies the affected unit: a position, a depth, a move, or a field name.
type Error struct {
	Class   FailureClass
	Key     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if e.Key != "" {
		return fmt.Sprintf("oraclerr: %s at %s: %s", e.Class, e.Key, msg)
	}
	return fmt.Sprintf("oraclerr: %s: %s", e.Class, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given class, unit key, and message.
func New(class FailureClass, key, message string) *Error {
	return &Error{Class: class, Key: key, Message: message}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(class FailureClass, key, message string, cause error) *Error {
	return &Error{Class: class, Key: key, Message: message, Cause: cause}
}

// ClassOf extracts the failure class from err, unwrapping as needed.
// Unclassified errors map to InternalError.
func ClassOf(err error) FailureClass {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Class
	}
	return InternalError
}

// Package errors provides structured error handling for the Canopy runtime.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindParse indicates a size-expression parsing failure.
	KindParse
	// KindHook indicates a hook-contract violation.
	KindHook
	// KindBuild indicates a component build failure.
	KindBuild
	// KindLayout indicates a layout resolution error.
	KindLayout
	// KindHost indicates a host adapter error.
	KindHost
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindHook:
		return "hook"
	case KindBuild:
		return "build"
	case KindLayout:
		return "layout"
	case KindHost:
		return "host"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// RuntimeError represents a structured error in the Canopy runtime.
type RuntimeError struct {
	// Op is the operation that failed (e.g., "core.Commit").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// SizeParseError represents a failure to parse or evaluate a size expression.
//
// The size resolver surfaces this to its caller instead of defaulting to
// zero; silently swallowing it would hide layout bugs.
type SizeParseError struct {
	// Input is the original expression text.
	Input string
	// Pos is the byte offset where parsing failed, or -1 when the failure
	// is not positional (e.g., division by zero during evaluation).
	Pos int
	// Reason describes what went wrong.
	Reason string
}

func (e *SizeParseError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("invalid size %q at offset %d: %s", e.Input, e.Pos, e.Reason)
	}
	return fmt.Sprintf("invalid size %q: %s", e.Input, e.Reason)
}

// HookError represents a hook-contract violation: a hook called outside an
// active render, or a slot-count mismatch between renders of one instance.
// These are programmer errors and are raised as panics, not returned.
type HookError struct {
	// Op is the hook that was misused (e.g., "core.UseState").
	Op string
	// Reason describes the violated contract.
	Reason string
	// Component is the component type name, if known.
	Component string
}

func (e *HookError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("%s in %s: %s", e.Op, e.Component, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// BuildError represents a failure during a component function invocation.
type BuildError struct {
	// Component is the type or function name of the component that failed.
	Component string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in component %s: %v", e.Component, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in component %s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("unknown error in component %s", e.Component)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "inspect.serveTree").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the Canopy runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *RuntimeError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a component build fails.
	HandleBuildError(err *BuildError)
}

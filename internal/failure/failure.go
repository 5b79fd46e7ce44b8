// Package failure classifies the errors produced by the translation and
// build pipeline.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds.
var (
	// ErrValidation is returned for bad input before any file is created.
	ErrValidation = errors.New("validation error")

	// ErrIO is returned when a file cannot be opened, read or written.
	ErrIO = errors.New("i/o error")

	// ErrStage is returned when an external step exits with a non-zero status.
	ErrStage = errors.New("stage failure")

	// ErrAllocation exists for classification only. Go aborts the process on
	// out-of-memory, so nothing in this module produces it.
	ErrAllocation = errors.New("allocation error")
)

// Stage names a phase of the build pipeline.
type Stage string

const (
	StageTranslate      Stage = "translate"
	StageCompile        Stage = "compile"
	StageSupportResolve Stage = "support-resolve"
	StageSupportCompile Stage = "support-compile"
	StageLink           Stage = "link"
)

// Error carries the kind of a pipeline failure plus whatever context the
// failing step had at hand.
type Error struct {
	Kind    error
	Stage   Stage
	Op      string
	Path    string
	Command string
	Output  string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Stage != "" {
		b.WriteString(" (" + string(e.Stage) + ")")
	}
	if e.Op != "" {
		b.WriteString(": " + e.Op)
	}
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	if e.Command != "" {
		b.WriteString(": " + e.Command)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the kind so errors.Is(err, ErrStage) works.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validationf creates a validation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: fmt.Sprintf(format, args...)}
}

// IO wraps a filesystem error.
func IO(op, path string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Path: path, Err: err}
}

// StageFailed wraps a failed pipeline stage.
func StageFailed(stage Stage, command, output string, err error) error {
	return &Error{Kind: ErrStage, Stage: stage, Command: command, Output: output, Err: err}
}

// StageOf reports the stage of a stage failure, or "" if err is not one.
func StageOf(err error) Stage {
	var fe *Error
	if errors.As(err, &fe) && errors.Is(fe.Kind, ErrStage) {
		return fe.Stage
	}
	return ""
}

// OutputOf returns the captured tool output attached to err, if any.
func OutputOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Output
	}
	return ""
}

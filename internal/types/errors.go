package types

import (
	"errors"
	"fmt"
)

// ErrorKind names the stage of the pipeline a failure came from.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindUpstream   ErrorKind = "upstream"
	KindParse      ErrorKind = "parse"
	KindPayload    ErrorKind = "payload"
	KindRender     ErrorKind = "render"
	KindIO         ErrorKind = "io"
)

// Sentinels for errors.Is checks against a *GenerationError.
var (
	ErrValidation = errors.New("validation error")
	ErrUpstream   = errors.New("upstream error")
	ErrParse      = errors.New("parse error")
	ErrPayload    = errors.New("payload error")
	ErrRender     = errors.New("render error")
	ErrIO         = errors.New("i/o error")
)

// GenerationError represents a failure somewhere between the prompt and the rendered file.
type GenerationError struct {
	Kind ErrorKind
	Err  error
	// Raw holds the model output for parse failures.
	Raw string
}

func (e *GenerationError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("%v\nRaw model output:\n%s", e.Err, e.Raw)
	}
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *GenerationError) Is(target error) bool {
	switch e.Kind {
	case KindValidation:
		return target == ErrValidation
	case KindUpstream:
		return target == ErrUpstream
	case KindParse:
		return target == ErrParse
	case KindPayload:
		return target == ErrPayload
	case KindRender:
		return target == ErrRender
	case KindIO:
		return target == ErrIO
	}
	return false
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(kind ErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// KindOf returns the kind of the first GenerationError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

package build

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMultipleReferences reports a template carrying more than one
	// schema reference.
	ErrMultipleReferences = errors.New("template references more than one schema")

	// ErrOutputCollision reports two templates mapping to the same output.
	ErrOutputCollision = errors.New("output path already produced by another template")

	// ErrNoSections reports a builder without section patterns.
	ErrNoSections = errors.New("build: no section patterns configured")
)

// TemplateError wraps a failure that aborted a single template.
type TemplateError struct {
	Template  string
	Specifier string
	Err       error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("build: %s: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// BuildError collects every template failure of one build.
type BuildError struct {
	Failures []*TemplateError
}

func (e *BuildError) Error() string {
	var b strings.Builder
	if len(e.Failures) == 1 {
		b.WriteString("build: 1 template failed")
	} else {
		fmt.Fprintf(&b, "build: %d templates failed", len(e.Failures))
	}
	for _, failure := range e.Failures {
		fmt.Fprintf(&b, "\n  %s: %v", failure.Template, failure.Err)
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BuildError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, failure := range e.Failures {
		out[i] = failure
	}
	return out
}

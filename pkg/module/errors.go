package module

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved is matched by every *UnresolvedError.
	ErrUnresolved = errors.New("module: specifier could not be resolved")

	// ErrMissingDefaultExport is matched by a *MissingExportError for the
	// default export.
	ErrMissingDefaultExport = errors.New("module: missing default export")

	// ErrEmptyDocument reports a document without any value.
	ErrEmptyDocument = errors.New("module: document is empty")
)

// UnresolvedError reports a specifier no resolution strategy could map to a
// module.
type UnresolvedError struct {
	Specifier string
	Importer  string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("could not resolve %q from %q", e.Specifier, e.Importer)
}

// Is lets errors.Is(err, ErrUnresolved) match.
func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolved
}

// MissingExportError reports a module that lacks the requested export.
type MissingExportError struct {
	Module string
	Export string
}

func (e *MissingExportError) Error() string {
	return fmt.Sprintf("no matching export in %q for import %q", e.Module, e.Export)
}

// Is lets errors.Is(err, ErrMissingDefaultExport) match misses on the
// default export.
func (e *MissingExportError) Is(target error) bool {
	return target == ErrMissingDefaultExport && e.Export == DefaultExport
}

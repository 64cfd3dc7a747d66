// Package faults defines the stable error taxonomy shared by the engine.
// Every user-visible error carries a Kind so callers can distinguish
// "fix your input" from "service degraded, data still usable" from
// "nothing useful was produced".
package faults

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Kind is the stable classification of a failure.
type Kind string

const (
	// KindValidation covers local, non-retryable input problems. No provider
	// or registry call is made once a validation fault is raised.
	KindValidation Kind = "validation"
	// KindProvider covers a single extraction provider failing. Non-fatal as
	// long as at least one provider succeeds.
	KindProvider Kind = "provider"
	// KindExtraction covers total extraction failure (all providers failed).
	KindExtraction Kind = "extraction_failed"
	// KindEnrichment covers registry lookup failures. Non-fatal and recorded
	// for display.
	KindEnrichment Kind = "enrichment"
	// KindIllegalTransition covers review commands rejected by the state
	// machine. State is left unchanged.
	KindIllegalTransition Kind = "illegal_transition"
	// KindNotFound covers lookups of unknown documents or fields.
	KindNotFound Kind = "not_found"
)

// Well-known fault codes.
const (
	CodeInvalidICO        = "invalid_ico"
	CodeUnsupportedFile   = "unsupported_file"
	CodeFileTooLarge      = "file_too_large"
	CodeCostExceeded      = "cost_exceeded"
	CodeDocumentCompleted = "document_completed"
	CodeBadTransition     = "bad_transition"
	CodeRegistryLookup    = "registry_lookup"
	CodeAllProvidersFail  = "all_providers_failed"
	CodeDocumentNotFound  = "document_not_found"
	CodeFieldNotFound     = "field_not_found"
)

// Fault is an error with a stable kind and code.
type Fault struct {
	Kind Kind
	Code string
	Err  error
}

func (f *Fault) Error() string { return f.Err.Error() }

func (f *Fault) Unwrap() error { return f.Err }

// New creates a fault with a fresh eris error for stack capture.
func New(kind Kind, code, msg string) *Fault {
	return &Fault{Kind: kind, Code: code, Err: eris.New(msg)}
}

// Newf creates a fault with a formatted message.
func Newf(kind Kind, code, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Code: code, Err: eris.Errorf(format, args...)}
}

// Wrap annotates an existing error with a kind and code.
func Wrap(kind Kind, code string, err error, msg string) *Fault {
	return &Fault{Kind: kind, Code: code, Err: eris.Wrap(err, msg)}
}

// KindOf extracts the kind from an error chain. Unclassified errors
// return an empty kind.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// CodeOf extracts the code from an error chain, or "".
func CodeOf(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return ""
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

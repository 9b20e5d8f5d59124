package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies row- and key-level failures per the taxonomy:
// validation and referential errors are row-level and never abort a batch;
// transient/permanent external errors are key-level during enrichment;
// invariant violations are fatal to the enclosing unit.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindReferential       ErrorKind = "referential"
	KindTransientExternal ErrorKind = "transient_external"
	KindPermanentExternal ErrorKind = "permanent_external"
	KindInvariant         ErrorKind = "invariant"
)

// KindError wraps an error with its taxonomy kind so handling code can
// branch on classification without string matching.
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *KindError) Unwrap() error { return e.Err }

// Errf builds a classified error.
func Errf(kind ErrorKind, format string, args ...any) error {
	return &KindError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WrapKind attaches a kind to an existing error, keeping the chain.
func WrapKind(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// KindOf extracts the taxonomy kind from an error chain. Unclassified
// errors report KindValidation at the row level by convention, so callers
// that require a specific kind should check ok.
func KindOf(err error) (ErrorKind, bool) {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind, true
	}
	return "", false
}

// ErrNoRecord is returned when a human-source row targets a material
// identifier with no canonical record. Human sheets update, never create.
var ErrNoRecord = errors.New("no canonical record for identifier")

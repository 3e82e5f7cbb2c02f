package common

import "fmt"

// Kind discriminates the closed set of pipeline failures.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindAuthentication Kind = "authentication"
	KindPartialDelete  Kind = "partial_delete"
	KindStorage        Kind = "storage"
)

// Error is the tagged error returned by services. Message is safe to show to
// clients; Err holds the underlying cause and is never exposed.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Drift reports that the metadata catalog and the blob store disagree,
	// e.g. a record whose blob is missing.
	Drift bool

	// Reconcile is set on partial deletes. RecordID and StorageKey name the
	// half that still needs attention.
	Reconcile  bool
	RecordID   string
	StorageKey string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so that the kind sentinels
// below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels, for errors.Is(err, common.ErrNotFound) style checks.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrPartialDelete  = &Error{Kind: KindPartialDelete}
	ErrStorage        = &Error{Kind: KindStorage}
)

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }

func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// PartialDelete reports that the blob half of a record was removed (or was
// already gone) but the record itself could not be.
func PartialDelete(recordID, storageKey string, err error) *Error {
	return &Error{
		Kind:       KindPartialDelete,
		Message:    "file was only partially deleted",
		Err:        err,
		Reconcile:  true,
		RecordID:   recordID,
		StorageKey: storageKey,
	}
}

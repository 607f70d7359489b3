package model // import "github.com/joincivil/civil-content-registry/pkg/model"

import (
	"github.com/pkg/errors"
)

var (
	// ErrEmptyFingerprint is returned when the fingerprint is the zero hash
	ErrEmptyFingerprint = errors.New("empty fingerprint")
	// ErrEmptyContent is returned when there is no content to fingerprint
	ErrEmptyContent = errors.New("empty content")
	// ErrInvalidCategory is returned when the category is not a supported category
	ErrInvalidCategory = errors.New("invalid category")
	// ErrEmptyMetadata is returned when the metadata pointer is empty
	ErrEmptyMetadata = errors.New("empty metadata pointer")
	// ErrDuplicateFingerprint is returned when the fingerprint is already registered
	ErrDuplicateFingerprint = errors.New("duplicate fingerprint")
	// ErrUnauthorized is returned when a non-owner calls an admin operation
	ErrUnauthorized = errors.New("caller is not the registry owner")
	// ErrSystemPaused is returned by Register while the registry is paused
	ErrSystemPaused = errors.New("system paused")
	// ErrReadOnly is returned for writes to a registry mirrored from the ledger
	ErrReadOnly = errors.New("registry is a read-only ledger mirror")
	// ErrDependencyUnavailable wraps failures of external collaborators
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// ErrorKind classifies registry errors by how a caller can recover from them
type ErrorKind string

const (
	// ErrorKindNone is returned for a nil error
	ErrorKindNone ErrorKind = ""
	// ErrorKindValidation is bad input, fixable by the caller
	ErrorKindValidation ErrorKind = "validation"
	// ErrorKindConflict is a duplicate registration
	ErrorKindConflict ErrorKind = "conflict"
	// ErrorKindAuthorization is an admin call by a non-owner
	ErrorKindAuthorization ErrorKind = "authorization"
	// ErrorKindAvailability is a paused registry
	ErrorKindAvailability ErrorKind = "availability"
	// ErrorKindReadOnly is a write to a ledger mirror
	ErrorKindReadOnly ErrorKind = "read_only"
	// ErrorKindDependency is a failed external collaborator
	ErrorKindDependency ErrorKind = "dependency"
	// ErrorKindInternal is anything else
	ErrorKindInternal ErrorKind = "internal"
)

// KindOfError returns the ErrorKind for an error, looking through wrapping
func KindOfError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrEmptyFingerprint), errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrEmptyMetadata), errors.Is(err, ErrEmptyContent):
		return ErrorKindValidation
	case errors.Is(err, ErrDuplicateFingerprint):
		return ErrorKindConflict
	case errors.Is(err, ErrUnauthorized):
		return ErrorKindAuthorization
	case errors.Is(err, ErrSystemPaused):
		return ErrorKindAvailability
	case errors.Is(err, ErrReadOnly):
		return ErrorKindReadOnly
	case errors.Is(err, ErrDependencyUnavailable):
		return ErrorKindDependency
	}
	return ErrorKindInternal
}

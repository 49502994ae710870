// Package errs defines the sentinel errors returned by schema validation and
// by the compiled codec. Errors from schema validation, package bitio and the
// compiled codec wrap one of these sentinels, so callers can classify
// failures with errors.Is while still getting a human-readable message via
// Error(). Errors produced by a compression codec (package compress) do not
// wrap a sentinel, and package recordset returns them as they are.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaInvalid is returned by DefineSchemas when a declared schema
	// violates one of its invariants (bad bit width, dangling or non-Boolean
	// dependency, circular dependency, default outside its own constraints,
	// list String/Blob without includeSize).
	ErrSchemaInvalid = errors.New("schema invalid")

	// ErrOutOfRange is returned by Encode when a value falls outside the
	// range its field declares: a numeric value outside [min, max], a
	// list/string/blob length outside [minLength, maxLength], or an integer
	// value outside the representable range of its bit width.
	ErrOutOfRange = errors.New("value out of range")

	// ErrMalformed is returned by Encode when a String value fails its
	// pattern, and by Decode when the input bytes cannot be interpreted:
	// invalid UTF-8, a variable-length integer that never terminates, or a
	// truncated length prefix.
	ErrMalformed = errors.New("malformed data")

	// ErrOverflow is returned by Encode into a fixed-capacity Writer when
	// the output would exceed the writer's capacity.
	ErrOverflow = errors.New("buffer overflow")

	// ErrUnderflow is returned by Decode when the Reader is asked to
	// consume more bytes or bits than remain in the backing slice.
	ErrUnderflow = errors.New("buffer underflow")
)

// Field wraps one of the sentinels above with the offending field name and
// a short cause. errors.Is(err, errs.ErrOutOfRange) still works after wrapping.
func Field(sentinel error, field, cause string) error {
	return fmt.Errorf("%w: field %q: %s", sentinel, field, cause)
}

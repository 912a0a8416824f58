// errors.go: the error taxonomy for the interop engine.
//
// Every public operation that can fail returns an error synchronously at the
// call site. Errors are never swallowed or retried: a failure here is either a
// programmer error (unknown name, wrong arity) or an ABI-level fault (null
// handle, implausible size), neither of which is transient.
//
// Sentinels support errors.Is; the structured kinds (ArityError, BoundsError,
// CorruptSizeError, ConversionError) support errors.As and carry the
// offending values.
package glaze

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned when a type name has no registry entry.
	ErrUnknownType = errors.New("unknown type")

	// ErrUnknownInstance is returned when a named instance does not exist.
	ErrUnknownInstance = errors.New("unknown instance")

	// ErrUnknownMember is returned when a member name is not present in a
	// type's member table.
	ErrUnknownMember = errors.New("unknown member")

	// ErrNotImplemented marks operations the protocol enumerates but does
	// not support yet (map values, direct optional/variant member
	// assignment). It is distinct from a generic failure so callers can tell
	// "never supported" from "supported but broken".
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidHandle is returned the first time a null pointer comes back
	// from a native accessor that must not produce one.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrReadOnly is returned when assigning to a member without a setter.
	ErrReadOnly = errors.New("member is read-only")

	// ErrDeadObject is returned when a wrapper is used after its owning root
	// has been destroyed.
	ErrDeadObject = errors.New("object has been destroyed")

	// ErrInvalidFuture is returned for a shared future never attached to a
	// computation.
	ErrInvalidFuture = errors.New("invalid shared future")

	// ErrUnsupportedPlatform is returned by Open on platforms without the
	// dlopen backend.
	ErrUnsupportedPlatform = errors.New("shared-library backend not available on this platform")
)

// ArityError reports a call with the wrong number of arguments. It is raised
// before any native call executes.
type ArityError struct {
	Function string
	Want     int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("function %s expects %d argument(s), got %d", e.Function, e.Want, e.Got)
}

// BoundsError reports an index outside a container's valid range.
type BoundsError struct {
	Index int
	Min   int
	Max   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("index %d out of range [%d, %d]", e.Index, e.Min, e.Max)
}

// CorruptSizeError reports a container size the engine refuses to trust:
// either beyond the host integer range or matching a known garbage bit
// pattern. Trusting it would turn an ABI misalignment into a wild read.
type CorruptSizeError struct {
	Size uint64
}

func (e *CorruptSizeError) Error() string {
	return fmt.Sprintf("implausible container size %#x; refusing to index", e.Size)
}

// ConversionError reports a host value that cannot be converted to the
// native representation a descriptor demands.
type ConversionError struct {
	Value any
	Want  string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %T to %s", e.Value, e.Want)
}

// optionals.go: wrapper over a native optional value.
package glaze

import (
	"fmt"
	"unsafe"
)

// OptionalRef wraps a native optional in place.
type OptionalRef struct {
	nat  Native
	ptr  unsafe.Pointer
	elem *Descriptor
	life *liveness
	root any // owning root wrapper; nil when this wrapper is the root
}

// anchor is the reference borrowed children must hold to keep the owning
// root reachable.
func (o *OptionalRef) anchor() any {
	if o.root != nil {
		return o.root
	}
	return o
}

// Elem returns the element type descriptor.
func (o *OptionalRef) Elem() *Descriptor { return o.elem }

// HasValue reports whether the optional is engaged.
func (o *OptionalRef) HasValue() (bool, error) {
	if err := o.life.check(); err != nil {
		return false, err
	}
	return o.nat.OptionalHasValue(o.ptr, o.elem)
}

// Get returns the contained value, or an error when disengaged. The element
// kind decides the host type best-effort, through the shared marshaller.
func (o *OptionalRef) Get() (any, error) {
	has, err := o.HasValue()
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("optional has no value")
	}
	p, err := o.nat.OptionalValue(o.ptr, o.elem)
	if err != nil {
		return nil, err
	}
	return toHost(o.nat, o.elem, p, o.life, o.anchor())
}

// Set engages the optional with v, converting through the shared marshaller.
// Temporaries are destroyed after the native call, success or failure.
func (o *OptionalRef) Set(v any) error {
	if err := o.life.check(); err != nil {
		return err
	}
	src, cleanup, err := fromHost(o.nat, o.elem, v)
	if err != nil {
		return err
	}
	defer cleanup()
	return o.nat.OptionalSet(o.ptr, o.elem, src)
}

// Reset disengages the optional.
func (o *OptionalRef) Reset() error {
	if err := o.life.check(); err != nil {
		return err
	}
	return o.nat.OptionalReset(o.ptr, o.elem)
}

// variants.go: wrapper over a native variant value.
//
// A variant holds one active alternative among N statically known types,
// identified by a 0-based index. The four primitives (Index, alternative
// metadata, Get, Set) talk to the native side; everything else here —
// typed access, matching, symbolic lookup — is pure composition on top and
// introduces no new native calls.
package glaze

import (
	"fmt"
	"unsafe"
)

// Variant wraps a native variant in place. Alternative count and types come
// from the descriptor, never from instance state.
type Variant struct {
	nat  Native
	ptr  unsafe.Pointer
	desc *Descriptor
	alts []*Descriptor
	life *liveness
	root any // owning root wrapper; nil when this wrapper is the root
}

// anchor is the reference borrowed children must hold to keep the owning
// root reachable.
func (v *Variant) anchor() any {
	if v.root != nil {
		return v.root
	}
	return v
}

// Index returns the 0-based index of the active alternative.
func (v *Variant) Index() (int, error) {
	if err := v.life.check(); err != nil {
		return 0, err
	}
	i, err := v.nat.VariantIndex(v.ptr, v.desc)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(v.alts) {
		return 0, fmt.Errorf("variant reports index %d outside its %d alternatives", i, len(v.alts))
	}
	return i, nil
}

// AlternativeCount returns the number of declared alternatives.
func (v *Variant) AlternativeCount() int { return len(v.alts) }

// AlternativeType returns the descriptor of alternative i (0-based).
func (v *Variant) AlternativeType(i int) (*Descriptor, error) {
	if i < 0 || i >= len(v.alts) {
		return nil, &BoundsError{Index: i, Min: 0, Max: len(v.alts) - 1}
	}
	return v.alts[i], nil
}

// HoldsAlternative reports whether alternative i is currently active.
func (v *Variant) HoldsAlternative(i int) (bool, error) {
	cur, err := v.Index()
	if err != nil {
		return false, err
	}
	return cur == i, nil
}

// Get reads the active alternative's value through the shared marshaller.
func (v *Variant) Get() (any, error) {
	i, err := v.Index()
	if err != nil {
		return nil, err
	}
	p, err := v.nat.VariantValue(v.ptr, v.desc)
	if err != nil {
		return nil, err
	}
	return toHost(v.nat, v.alts[i], p, v.life, v.anchor())
}

// Set makes alternative i active with the given value. Primitives pass by
// reference, strings materialize a temporary native string destroyed after
// the call regardless of outcome, structs pass through; other alternative
// kinds are not implemented and error rather than corrupt state.
func (v *Variant) Set(i int, val any) error {
	if err := v.life.check(); err != nil {
		return err
	}
	if i < 0 || i >= len(v.alts) {
		return &BoundsError{Index: i, Min: 0, Max: len(v.alts) - 1}
	}
	alt := v.alts[i]
	if k, err := alt.Kind(); err != nil {
		return err
	} else if k != KindPrimitive && k != KindString && k != KindComplex && k != KindStruct {
		return fmt.Errorf("%w: setting variant alternative of kind %s", ErrNotImplemented, k)
	}
	src, cleanup, err := fromHost(v.nat, alt, val)
	if err != nil {
		return err
	}
	defer cleanup()
	return v.nat.VariantSet(v.ptr, v.desc, i, src)
}

// SetByName assigns the alternative whose decoded shape renders as name
// (e.g. "i32", "string", "Person").
func (v *Variant) SetByName(name string, val any) error {
	for i, alt := range v.alts {
		if alt.String() == name {
			return v.Set(i, val)
		}
	}
	return fmt.Errorf("variant has no alternative named %q", name)
}

// GetAs returns the active value when it has type T; ok is false otherwise.
func GetAs[T any](v *Variant) (T, bool, error) {
	var zero T
	val, err := v.Get()
	if err != nil {
		return zero, false, err
	}
	t, ok := val.(T)
	return t, ok, nil
}

// Match invokes the handler registered for the active alternative index.
// Indices without a handler are a no-op.
func (v *Variant) Match(handlers map[int]func(any) error) error {
	i, err := v.Index()
	if err != nil {
		return err
	}
	h, ok := handlers[i]
	if !ok {
		return nil
	}
	val, err := v.Get()
	if err != nil {
		return err
	}
	return h(val)
}

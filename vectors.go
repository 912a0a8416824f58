// vectors.go: host-side wrappers over native growable arrays.
//
// A Vector is the generic wrapper, parameterized at runtime by its element
// descriptor; VectorOf[T] is the specialized wrapper the marshaller picks
// for the known fast-path element widths (f32, f64, i32, complex64,
// complex128), whose element access skips the generic dispatch entirely.
//
// The length/capacity view is re-fetched on every call — the native side may
// reallocate between calls. Iteration is the exception and the critical fast
// path: Each fetches the view once and walks by pointer arithmetic, an order
// of magnitude faster than per-element indexed access. Mutating a vector
// while an iteration over it is live is undefined behavior, exactly as with
// native iterator invalidation; the same applies to slices returned by
// Slice.
package glaze

import (
	"fmt"
	"unsafe"
)

// Vector wraps a native growable array plus its element descriptor.
// Indexing is 1-based: valid indices are 1..Len().
type Vector struct {
	nat      Native
	ptr      unsafe.Pointer
	elem     *Descriptor
	elemSize uintptr
	life     *liveness
	root     any // owning root wrapper; nil when this wrapper is the root
}

// anchor is the reference borrowed children must hold to keep the owning
// root reachable.
func (v *Vector) anchor() any {
	if v.root != nil {
		return v.root
	}
	return v
}

type vectorLike interface{ base() *Vector }

func (v *Vector) base() *Vector { return v }

func underlyingVector(v any) *Vector {
	if vl, ok := v.(vectorLike); ok {
		return vl.base()
	}
	return nil
}

// wrapVector picks the specialized wrapper for fast-path element kinds and
// falls back to the generic wrapper, which re-derives the element type on
// every access.
func wrapVector(nat Native, p unsafe.Pointer, elem *Descriptor, life *liveness, root any) (any, error) {
	size, err := nat.ValueSize(elem)
	if err != nil {
		return nil, err
	}
	gen := Vector{nat: nat, ptr: p, elem: elem, elemSize: size, life: life, root: root}
	dec, err := elem.Decode()
	if err != nil {
		return nil, err
	}
	switch t := dec.(type) {
	case PrimitiveDesc:
		switch t.Prim {
		case F32:
			return &VectorOf[float32]{Vector: gen}, nil
		case F64:
			return &VectorOf[float64]{Vector: gen}, nil
		case I32:
			return &VectorOf[int32]{Vector: gen}, nil
		}
	case ComplexDesc:
		if t.Prim == F32 {
			return &VectorOf[complex64]{Vector: gen}, nil
		}
		return &VectorOf[complex128]{Vector: gen}, nil
	}
	return &gen, nil
}

// Elem returns the element type descriptor.
func (v *Vector) Elem() *Descriptor { return v.elem }

// view fetches a fresh (data, size, capacity) snapshot.
func (v *Vector) view() (VectorView, error) {
	if err := v.life.check(); err != nil {
		return VectorView{}, err
	}
	vw, err := v.nat.VectorView(v.ptr, v.elem)
	if err != nil {
		return VectorView{}, err
	}
	if err := checkNativeCount(uint64(vw.Len)); err != nil {
		return VectorView{}, err
	}
	return vw, nil
}

// Len returns the current element count.
func (v *Vector) Len() (int, error) {
	vw, err := v.view()
	if err != nil {
		return 0, err
	}
	return vw.Len, nil
}

func (v *Vector) index(vw VectorView, i int) (unsafe.Pointer, error) {
	if i < 1 || i > vw.Len {
		return nil, &BoundsError{Index: i, Min: 1, Max: vw.Len}
	}
	return elemAt(vw.Data, i-1, v.elemSize), nil
}

// Get returns element i (1-based).
func (v *Vector) Get(i int) (any, error) {
	vw, err := v.view()
	if err != nil {
		return nil, err
	}
	p, err := v.index(vw, i)
	if err != nil {
		return nil, err
	}
	return toHost(v.nat, v.elem, p, v.life, v.anchor())
}

// Set assigns element i (1-based). Only primitive and complex element kinds
// are directly assignable.
func (v *Vector) Set(i int, val any) error {
	vw, err := v.view()
	if err != nil {
		return err
	}
	p, err := v.index(vw, i)
	if err != nil {
		return err
	}
	return storeElem(v.nat, v.elem, p, val)
}

// Push appends one element, converting val to the element type. Any cached
// view or live iteration is invalidated.
func (v *Vector) Push(val any) error {
	if err := v.life.check(); err != nil {
		return err
	}
	src, cleanup, err := fromHost(v.nat, v.elem, val)
	if err != nil {
		return err
	}
	defer cleanup()
	return v.nat.VectorPush(v.ptr, v.elem, src)
}

// Resize grows or shrinks the vector to n elements, value-initializing new
// slots. Any cached view or live iteration is invalidated.
func (v *Vector) Resize(n int) error {
	if n < 0 {
		return &BoundsError{Index: n, Min: 0, Max: int(^uint(0) >> 1)}
	}
	if err := v.life.check(); err != nil {
		return err
	}
	return v.nat.VectorResize(v.ptr, v.elem, n)
}

// Each iterates all elements in order. The view is fetched once at the start
// and cached as iterator state; do not mutate the vector from fn.
func (v *Vector) Each(fn func(i int, val any) error) error {
	vw, err := v.view()
	if err != nil {
		return err
	}
	p := vw.Data
	for i := 1; i <= vw.Len; i++ {
		val, err := toHost(v.nat, v.elem, p, v.life, v.anchor())
		if err != nil {
			return err
		}
		if err := fn(i, val); err != nil {
			return err
		}
		p = unsafe.Add(p, v.elemSize)
	}
	return nil
}

// storeElem writes a host value directly into element storage. Mirrors the
// writable subset of the member-set dispatch.
func storeElem(nat Native, elem *Descriptor, p unsafe.Pointer, val any) error {
	dec, err := elem.Decode()
	if err != nil {
		return err
	}
	switch t := dec.(type) {
	case PrimitiveDesc:
		return primStore(t.Prim, p, val)
	case ComplexDesc:
		if t.Prim == F32 {
			c, ok := toComplex64(val)
			if !ok {
				return &ConversionError{Value: val, Want: "complex<f32>"}
			}
			storeC64(p, c)
			return nil
		}
		c, ok := toComplex128(val)
		if !ok {
			return &ConversionError{Value: val, Want: "complex<f64>"}
		}
		storeC128(p, c)
		return nil
	case StringDesc:
		s, ok := val.(string)
		if !ok {
			return &ConversionError{Value: val, Want: "string"}
		}
		return nat.StringSet(p, s)
	}
	return fmt.Errorf("%w: assigning %s vector elements", ErrNotImplemented, dec.descKind())
}

// FastElem enumerates the element types with specialized wrappers.
type FastElem interface {
	~float32 | ~float64 | ~int32 | ~complex64 | ~complex128
}

// VectorOf is the type-specialized vector wrapper. Its accessors bypass the
// generic descriptor dispatch: element width is fixed by T.
type VectorOf[T FastElem] struct {
	Vector
}

// At returns element i (1-based) without generic dispatch.
func (v *VectorOf[T]) At(i int) (T, error) {
	var zero T
	vw, err := v.view()
	if err != nil {
		return zero, err
	}
	p, err := v.index(vw, i)
	if err != nil {
		return zero, err
	}
	return *(*T)(p), nil
}

// Put assigns element i (1-based) without generic dispatch.
func (v *VectorOf[T]) Put(i int, x T) error {
	vw, err := v.view()
	if err != nil {
		return err
	}
	p, err := v.index(vw, i)
	if err != nil {
		return err
	}
	*(*T)(p) = x
	return nil
}

// Append pushes x through the typed path.
func (v *VectorOf[T]) Append(x T) error {
	if err := v.life.check(); err != nil {
		return err
	}
	return v.nat.VectorPush(v.ptr, v.elem, unsafe.Pointer(&x))
}

// EachValue iterates with a single view fetch; do not mutate from fn.
func (v *VectorOf[T]) EachValue(fn func(i int, x T) error) error {
	vw, err := v.view()
	if err != nil {
		return err
	}
	p := vw.Data
	for i := 1; i <= vw.Len; i++ {
		if err := fn(i, *(*T)(p)); err != nil {
			return err
		}
		p = unsafe.Add(p, unsafe.Sizeof(*new(T)))
	}
	return nil
}

// Slice exposes the backing memory as a Go slice without copying: the host's
// array capability (slicing, range, reductions) over native storage. The
// slice carries no liveness of its own — it is valid only until the next
// mutating operation, and only while the wrapper is kept reachable by the
// caller. The wrapper in turn holds its owning root, so keeping the wrapper
// alive is sufficient; runtime.KeepAlive(v) after the last use of the slice
// makes that explicit.
func (v *VectorOf[T]) Slice() ([]T, error) {
	vw, err := v.view()
	if err != nil {
		return nil, err
	}
	if vw.Len == 0 {
		return nil, nil
	}
	return unsafe.Slice((*T)(vw.Data), vw.Len), nil
}

// Values copies the elements into a fresh Go slice.
func (v *VectorOf[T]) Values() ([]T, error) {
	s, err := v.Slice()
	if err != nil {
		return nil, err
	}
	out := make([]T, len(s))
	copy(out, s)
	return out, nil
}

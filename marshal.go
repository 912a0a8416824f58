// marshal.go: descriptor-driven conversion between host values and native
// memory.
//
// The whole engine funnels through two polymorphic functions. toHost takes a
// descriptor and a raw pointer from a getter and builds the correct host
// value (direct load for primitives, wrapper construction for everything
// else). fromHost takes a host value and a target descriptor and produces a
// pointer to the exact native representation, plus a cleanup for any
// temporary it materialized. Having exactly one copy of the dispatch keeps
// struct fields, variant alternatives and function arguments behaving
// identically.
package glaze

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"
)

// toHost builds the host value for the memory at p, interpreted per d.
// life is the owning root's liveness token; constructed wrappers borrow it.
// root is the owning root wrapper: borrowed wrappers hold it so that a live
// child keeps the root (and its finalizer) from being collected. nil means
// the constructed wrapper is itself a root. Function descriptors never reach
// here — they are intercepted one level up and produce a callable wrapper
// instead of a value.
func toHost(nat Native, d *Descriptor, p unsafe.Pointer, life *liveness, root any) (any, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: null value pointer", ErrInvalidHandle)
	}
	dec, err := d.Decode()
	if err != nil {
		return nil, err
	}
	switch t := dec.(type) {
	case PrimitiveDesc:
		return primLoad(t.Prim, p), nil
	case StringDesc:
		return &StringRef{nat: nat, ptr: p, life: life, root: root}, nil
	case ComplexDesc:
		if t.Prim == F32 {
			return loadC64(p), nil
		}
		return loadC128(p), nil
	case VectorDesc:
		return wrapVector(nat, p, t.Elem, life, root)
	case StructDesc:
		info, err := resolveStructInfo(nat, t)
		if err != nil {
			return nil, err
		}
		return borrowStruct(nat, p, info, life, root), nil
	case OptionalDesc:
		return &OptionalRef{nat: nat, ptr: p, elem: t.Elem, life: life, root: root}, nil
	case VariantDesc:
		return &Variant{nat: nat, ptr: p, desc: d, alts: t.Alternatives, life: life, root: root}, nil
	case SharedFutureDesc:
		return &SharedFutureRef{nat: nat, ptr: p, life: life, root: root}, nil
	case MapDesc:
		return nil, fmt.Errorf("%w: map values", ErrNotImplemented)
	case FunctionDesc:
		return nil, fmt.Errorf("glaze: internal: function descriptor reached value marshalling")
	}
	return nil, fmt.Errorf("%w: descriptor kind", ErrNotImplemented)
}

// fromHost converts v into the native representation d demands and returns a
// pointer suitable for a setter or argument slot. The cleanup must always be
// run after the native call completes, success or failure; it destroys any
// temporary native objects created for the conversion. Pass-through pointers
// (struct, variant, vector wrappers) are not destroyed.
func fromHost(nat Native, d *Descriptor, v any) (unsafe.Pointer, func(), error) {
	dec, err := d.Decode()
	if err != nil {
		return nil, nil, err
	}
	noop := func() {}
	switch t := dec.(type) {
	case PrimitiveDesc:
		buf := new([8]byte)
		p := unsafe.Pointer(&buf[0])
		if err := primStore(t.Prim, p, v); err != nil {
			return nil, nil, err
		}
		return p, func() { runtime.KeepAlive(buf) }, nil
	case ComplexDesc:
		buf := new([16]byte)
		p := unsafe.Pointer(&buf[0])
		switch t.Prim {
		case F32:
			c, ok := toComplex64(v)
			if !ok {
				return nil, nil, &ConversionError{Value: v, Want: "complex<f32>"}
			}
			storeC64(p, c)
		default:
			c, ok := toComplex128(v)
			if !ok {
				return nil, nil, &ConversionError{Value: v, Want: "complex<f64>"}
			}
			storeC128(p, c)
		}
		return p, func() { runtime.KeepAlive(buf) }, nil
	case StringDesc:
		switch s := v.(type) {
		case string:
			return nat.NewTempString(s)
		case *StringRef:
			if err := s.life.check(); err != nil {
				return nil, nil, err
			}
			return s.ptr, noop, nil
		}
		return nil, nil, &ConversionError{Value: v, Want: "string"}
	case StructDesc:
		s, ok := v.(*Struct)
		if !ok {
			return nil, nil, &ConversionError{Value: v, Want: t.TypeName}
		}
		if err := s.life.check(); err != nil {
			return nil, nil, err
		}
		return s.ptr, noop, nil
	case VariantDesc:
		vr, ok := v.(*Variant)
		if !ok {
			return nil, nil, &ConversionError{Value: v, Want: "variant"}
		}
		if err := vr.life.check(); err != nil {
			return nil, nil, err
		}
		return vr.ptr, noop, nil
	case VectorDesc:
		return vectorArg(nat, t.Elem, v)
	case OptionalDesc, MapDesc, SharedFutureDesc, FunctionDesc:
		return nil, nil, fmt.Errorf("%w: converting %s arguments", ErrNotImplemented, dec.descKind())
	}
	return nil, nil, fmt.Errorf("%w: descriptor kind", ErrNotImplemented)
}

// vectorArg passes an existing vector wrapper through, or materializes a
// temporary native vector from a Go slice. The temporary is destroyed by the
// returned cleanup, matched by element type.
func vectorArg(nat Native, elem *Descriptor, v any) (unsafe.Pointer, func(), error) {
	if vec := underlyingVector(v); vec != nil {
		if err := vec.life.check(); err != nil {
			return nil, nil, err
		}
		return vec.ptr, func() {}, nil
	}
	elems, err := sliceElems(v)
	if err != nil {
		return nil, nil, err
	}
	tmp, destroy, err := nat.NewTempVector(elem)
	if err != nil {
		return nil, nil, err
	}
	for i, ev := range elems {
		src, cleanup, err := fromHost(nat, elem, ev)
		if err != nil {
			destroy()
			return nil, nil, fmt.Errorf("vector element %d: %w", i, err)
		}
		err = nat.VectorPush(tmp, elem, src)
		cleanup()
		if err != nil {
			destroy()
			return nil, nil, fmt.Errorf("vector element %d: %w", i, err)
		}
	}
	return tmp, destroy, nil
}

// sliceElems flattens the supported Go slice kinds into []any.
func sliceElems(v any) ([]any, error) {
	box := func(n int, at func(int) any) []any {
		out := make([]any, n)
		for i := range out {
			out[i] = at(i)
		}
		return out
	}
	switch s := v.(type) {
	case []any:
		return s, nil
	case []float32:
		return box(len(s), func(i int) any { return s[i] }), nil
	case []float64:
		return box(len(s), func(i int) any { return s[i] }), nil
	case []int32:
		return box(len(s), func(i int) any { return s[i] }), nil
	case []int64:
		return box(len(s), func(i int) any { return s[i] }), nil
	case []complex64:
		return box(len(s), func(i int) any { return s[i] }), nil
	case []complex128:
		return box(len(s), func(i int) any { return s[i] }), nil
	case []string:
		return box(len(s), func(i int) any { return s[i] }), nil
	}
	return nil, &ConversionError{Value: v, Want: "vector"}
}

// ---- primitive load/store with host-value coercion -------------------------

func primLoad(k PrimKind, p unsafe.Pointer) any {
	switch k {
	case Bool:
		return loadBool(p)
	case I8:
		return loadI8(p)
	case I16:
		return loadI16(p)
	case I32:
		return loadI32(p)
	case I64:
		return loadI64(p)
	case U8:
		return loadU8(p)
	case U16:
		return loadU16(p)
	case U32:
		return loadU32(p)
	case U64:
		return loadU64(p)
	case F32:
		return loadF32(p)
	case F64:
		return loadF64(p)
	}
	return nil
}

func primStore(k PrimKind, p unsafe.Pointer, v any) error {
	switch k {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return &ConversionError{Value: v, Want: "bool"}
		}
		storeBool(p, b)
		return nil
	case F32:
		f, ok := toFloat(v)
		if !ok {
			return &ConversionError{Value: v, Want: "f32"}
		}
		storeF32(p, float32(f))
		return nil
	case F64:
		f, ok := toFloat(v)
		if !ok {
			return &ConversionError{Value: v, Want: "f64"}
		}
		storeF64(p, f)
		return nil
	}
	// Integer widths: range-checked before the store, never truncated
	// silently.
	if k >= U8 && k <= U64 {
		u, ok := toUint(v)
		if !ok {
			return &ConversionError{Value: v, Want: k.String()}
		}
		var max uint64
		switch k {
		case U8:
			max = math.MaxUint8
		case U16:
			max = math.MaxUint16
		case U32:
			max = math.MaxUint32
		case U64:
			max = math.MaxUint64
		}
		if u > max {
			return fmt.Errorf("value %d out of range for %s", u, k)
		}
		switch k {
		case U8:
			storeU8(p, uint8(u))
		case U16:
			storeU16(p, uint16(u))
		case U32:
			storeU32(p, uint32(u))
		case U64:
			storeU64(p, u)
		}
		return nil
	}
	i, ok := toInt(v)
	if !ok {
		return &ConversionError{Value: v, Want: k.String()}
	}
	var min, max int64
	switch k {
	case I8:
		min, max = math.MinInt8, math.MaxInt8
	case I16:
		min, max = math.MinInt16, math.MaxInt16
	case I32:
		min, max = math.MinInt32, math.MaxInt32
	case I64:
		min, max = math.MinInt64, math.MaxInt64
	default:
		return &ConversionError{Value: v, Want: k.String()}
	}
	if i < min || i > max {
		return fmt.Errorf("value %d out of range for %s", i, k)
	}
	switch k {
	case I8:
		storeI8(p, int8(i))
	case I16:
		storeI16(p, int16(i))
	case I32:
		storeI32(p, int32(i))
	case I64:
		storeI64(p, i)
	}
	return nil
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func toUint(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case int, int8, int16, int32, int64:
		i, _ := toInt(v)
		if i < 0 {
			return 0, false
		}
		return uint64(i), true
	case float64:
		if x < 0 || x != math.Trunc(x) {
			return 0, false
		}
		return uint64(x), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func toComplex64(v any) (complex64, bool) {
	switch x := v.(type) {
	case complex64:
		return x, true
	case complex128:
		return complex64(x), true
	}
	return 0, false
}

func toComplex128(v any) (complex128, bool) {
	switch x := v.(type) {
	case complex128:
		return x, true
	case complex64:
		return complex128(x), true
	}
	if f, ok := toFloat(v); ok {
		return complex(f, 0), true
	}
	return 0, false
}

// descriptor.go: the decoded, strongly-typed view of a type descriptor.
//
// A Descriptor is a cheap handle over one process-lifetime glz_type_descriptor
// record. Decode reinterprets the payload exactly once per call and returns a
// tagged sum — one concrete Go type per discriminant — so the rest of the
// engine branches on Go types instead of raw bytes. Compound descriptors hold
// further *Descriptor handles and decode lazily, which keeps mutually
// recursive struct graphs cycle-safe.
//
// Descriptors are singletons per type shape: pointer equality on the
// underlying record implies type equality.
package glaze

import "fmt"

// Kind is the descriptor discriminant.
type Kind uint8

const (
	KindPrimitive Kind = iota + 1
	KindString
	KindVector
	KindMap
	KindComplex
	KindStruct
	KindOptional
	KindFunction
	KindSharedFuture
	KindVariant
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	case KindMap:
		return "map"
	case KindComplex:
		return "complex"
	case KindStruct:
		return "struct"
	case KindOptional:
		return "optional"
	case KindFunction:
		return "function"
	case KindSharedFuture:
		return "shared_future"
	case KindVariant:
		return "variant"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// PrimKind identifies one primitive width.
type PrimKind uint8

const (
	Bool PrimKind = iota + 1
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
)

func (p PrimKind) String() string {
	names := [...]string{"bool", "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64"}
	if i := int(p) - 1; i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("prim(%d)", uint8(p))
}

// Size returns the in-memory width of the primitive in bytes.
func (p PrimKind) Size() uintptr {
	switch p {
	case Bool, I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	}
	return 0
}

// Descriptor is a handle over one raw descriptor record.
type Descriptor struct {
	raw *rawDescriptor
}

func wrapDesc(raw *rawDescriptor) *Descriptor {
	if raw == nil {
		return nil
	}
	return &Descriptor{raw: raw}
}

// Kind reads the discriminant without decoding the payload.
func (d *Descriptor) Kind() (Kind, error) {
	if d == nil || d.raw == nil {
		return 0, fmt.Errorf("%w: null type descriptor", ErrInvalidHandle)
	}
	k := Kind(d.raw.index)
	if k < KindPrimitive || k > KindVariant {
		return 0, fmt.Errorf("unsupported type descriptor discriminant %d", d.raw.index)
	}
	return k, nil
}

// Desc is the decoded form of a descriptor: exactly one concrete type per
// discriminant.
type Desc interface{ descKind() Kind }

type PrimitiveDesc struct{ Prim PrimKind }

type StringDesc struct{ View bool }

type VectorDesc struct{ Elem *Descriptor }

type MapDesc struct{ Key, Value *Descriptor }

type ComplexDesc struct{ Prim PrimKind } // F32 or F64

type StructDesc struct {
	TypeName string
	Hash     uint64
	info     *rawTypeInfo // may be null for forward-declared graphs
}

type OptionalDesc struct{ Elem *Descriptor }

// FunctionDesc describes a member function. A nil Return means void.
type FunctionDesc struct {
	Params []*Descriptor
	Return *Descriptor
	Const  bool
}

type SharedFutureDesc struct{ Value *Descriptor }

type VariantDesc struct{ Alternatives []*Descriptor }

func (PrimitiveDesc) descKind() Kind    { return KindPrimitive }
func (StringDesc) descKind() Kind       { return KindString }
func (VectorDesc) descKind() Kind       { return KindVector }
func (MapDesc) descKind() Kind          { return KindMap }
func (ComplexDesc) descKind() Kind      { return KindComplex }
func (StructDesc) descKind() Kind       { return KindStruct }
func (OptionalDesc) descKind() Kind     { return KindOptional }
func (FunctionDesc) descKind() Kind     { return KindFunction }
func (SharedFutureDesc) descKind() Kind { return KindSharedFuture }
func (VariantDesc) descKind() Kind      { return KindVariant }

func primFromRaw(code uint64) (PrimKind, error) {
	if code < rawPrimBool || code > rawPrimF64 {
		return 0, fmt.Errorf("unsupported primitive kind %d", code)
	}
	return PrimKind(code), nil
}

// Decode reinterprets the payload per the discriminant. A null descriptor or
// an unknown discriminant is an error, never a usable-looking zero value.
func (d *Descriptor) Decode() (Desc, error) {
	k, err := d.Kind()
	if err != nil {
		return nil, err
	}
	switch k {
	case KindPrimitive:
		p, err := primFromRaw(d.raw.primitive().kind)
		if err != nil {
			return nil, err
		}
		return PrimitiveDesc{Prim: p}, nil
	case KindString:
		return StringDesc{View: d.raw.str().isView != 0}, nil
	case KindVector:
		v := d.raw.vector()
		if v.element == nil {
			return nil, fmt.Errorf("%w: vector element descriptor", ErrInvalidHandle)
		}
		return VectorDesc{Elem: wrapDesc(v.element)}, nil
	case KindMap:
		m := d.raw.mp()
		if m.key == nil || m.value == nil {
			return nil, fmt.Errorf("%w: map key/value descriptor", ErrInvalidHandle)
		}
		return MapDesc{Key: wrapDesc(m.key), Value: wrapDesc(m.value)}, nil
	case KindComplex:
		p, err := primFromRaw(d.raw.cplx().kind)
		if err != nil {
			return nil, err
		}
		if p != F32 && p != F64 {
			return nil, fmt.Errorf("complex element must be f32 or f64, got %s", p)
		}
		return ComplexDesc{Prim: p}, nil
	case KindStruct:
		s := d.raw.strct()
		return StructDesc{
			TypeName: goString(s.typeName),
			Hash:     s.typeHash,
			info:     s.info,
		}, nil
	case KindOptional:
		o := d.raw.optional()
		if o.element == nil {
			return nil, fmt.Errorf("%w: optional element descriptor", ErrInvalidHandle)
		}
		return OptionalDesc{Elem: wrapDesc(o.element)}, nil
	case KindFunction:
		f := d.raw.function()
		if err := checkNativeCount(f.paramCount); err != nil {
			return nil, err
		}
		params := make([]*Descriptor, 0, f.paramCount)
		for _, raw := range descSlice(f.params, int(f.paramCount)) {
			if raw == nil {
				return nil, fmt.Errorf("%w: function parameter descriptor", ErrInvalidHandle)
			}
			params = append(params, wrapDesc(raw))
		}
		return FunctionDesc{Params: params, Return: wrapDesc(f.ret), Const: f.isConst != 0}, nil
	case KindSharedFuture:
		sf := d.raw.future()
		if sf.value == nil {
			return nil, fmt.Errorf("%w: shared-future value descriptor", ErrInvalidHandle)
		}
		return SharedFutureDesc{Value: wrapDesc(sf.value)}, nil
	case KindVariant:
		v := d.raw.variant()
		if err := checkNativeCount(v.count); err != nil {
			return nil, err
		}
		alts := make([]*Descriptor, 0, v.count)
		for _, raw := range descSlice(v.alternatives, int(v.count)) {
			if raw == nil {
				return nil, fmt.Errorf("%w: variant alternative descriptor", ErrInvalidHandle)
			}
			alts = append(alts, wrapDesc(raw))
		}
		// v.currentIndex is deliberately ignored: instance state comes from
		// variant_index, the descriptor is shared across instances.
		return VariantDesc{Alternatives: alts}, nil
	}
	return nil, fmt.Errorf("unsupported type descriptor kind %s", k)
}

// String renders a compact shape description, useful in error messages and
// the inspector.
func (d *Descriptor) String() string {
	dec, err := d.Decode()
	if err != nil {
		return "<invalid>"
	}
	switch t := dec.(type) {
	case PrimitiveDesc:
		return t.Prim.String()
	case StringDesc:
		if t.View {
			return "string_view"
		}
		return "string"
	case VectorDesc:
		return "vector<" + t.Elem.String() + ">"
	case MapDesc:
		return "map<" + t.Key.String() + ", " + t.Value.String() + ">"
	case ComplexDesc:
		return "complex<" + t.Prim.String() + ">"
	case StructDesc:
		return t.TypeName
	case OptionalDesc:
		return "optional<" + t.Elem.String() + ">"
	case FunctionDesc:
		s := "("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		ret := "void"
		if t.Return != nil {
			ret = t.Return.String()
		}
		return s + ") -> " + ret
	case SharedFutureDesc:
		return "shared_future<" + t.Value.String() + ">"
	case VariantDesc:
		s := "variant<"
		for i, a := range t.Alternatives {
			if i > 0 {
				s += ", "
			}
			s += a.String()
		}
		return s + ">"
	}
	return "<unknown>"
}

// scalarWidth returns the in-memory width of a by-value scalar slot: the
// primitive kind's width, or 8/16 bytes for complex values. Non-scalar
// descriptors have no by-value width and error.
func scalarWidth(d *Descriptor) (uintptr, error) {
	dec, err := d.Decode()
	if err != nil {
		return 0, err
	}
	switch t := dec.(type) {
	case PrimitiveDesc:
		if n := t.Prim.Size(); n != 0 {
			return n, nil
		}
		return 0, fmt.Errorf("primitive kind %d has no width", t.Prim)
	case ComplexDesc:
		if t.Prim == F32 {
			return 8, nil
		}
		return 16, nil
	}
	return 0, fmt.Errorf("%s values have no by-value width", dec.descKind())
}

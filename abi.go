// abi.go: the raw, bit-exact layout of the interop protocol.
//
// What this file does
// -------------------
// Every record the native side shares with us (type descriptors, member
// tables, vector views) is read through raw pointer casts, not parsed. This
// file is the single place where those casts happen: it declares Go mirrors
// of the C structs, the payload accessors that reinterpret a descriptor's
// 32-byte union region per discriminant, and the plausibility checks that
// keep a misaligned ABI from turning into a wild read. No other file in the
// package touches descriptor bytes directly.
//
// Layout contract (must match glz_* structs on the native side exactly):
//   - glz_type_descriptor: 4-byte index, 4 bytes explicit padding, 32-byte
//     payload region sized for the largest union member (function desc).
//   - glz_member_info: 48 bytes, pointers 8-byte aligned, kind u32 + pad.
//   - glz_type_info: name, size, member_count, members — four words.
//   - glz_vector_view: data, size, capacity — three words.
//
// Any native-side field reorder breaks this silently; verifyABISizes is the
// runtime cross-check (the compile-time asserts below catch Go-side drift).
package glaze

import "unsafe"

// Discriminant values of glz_type_descriptor.index.
const (
	rawKindPrimitive    = 1
	rawKindString       = 2
	rawKindVector       = 3
	rawKindMap          = 4
	rawKindComplex      = 5
	rawKindStruct       = 6
	rawKindOptional     = 7
	rawKindFunction     = 8
	rawKindSharedFuture = 9
	rawKindVariant      = 10
)

// Primitive kind codes shared by glz_primitive_desc and glz_complex_desc.
const (
	rawPrimBool = 1
	rawPrimI8   = 2
	rawPrimI16  = 3
	rawPrimI32  = 4
	rawPrimI64  = 5
	rawPrimU8   = 6
	rawPrimU16  = 7
	rawPrimU32  = 8
	rawPrimU64  = 9
	rawPrimF32  = 10
	rawPrimF64  = 11
)

// Member kind codes of glz_member_info.kind.
const (
	rawMemberData     = 0
	rawMemberFunction = 1
)

// rawDescriptor mirrors glz_type_descriptor: discriminant plus a fixed
// payload region whose interpretation is determined solely by the
// discriminant. Compound payloads hold pointers to other descriptors, never
// owned copies; descriptor lifetime is process-duration, so these pointers
// never dangle.
type rawDescriptor struct {
	index   uint32
	padding uint32
	data    [32]byte
}

// Per-discriminant payload mirrors (glz_*_desc).
type rawPrimitiveDesc struct{ kind uint64 }

type rawStringDesc struct{ isView uint64 }

type rawVectorDesc struct{ element *rawDescriptor }

type rawMapDesc struct{ key, value *rawDescriptor }

type rawComplexDesc struct{ kind uint64 }

type rawStructDesc struct {
	typeName *byte
	info     *rawTypeInfo
	typeHash uint64
}

type rawOptionalDesc struct{ element *rawDescriptor }

type rawFunctionDesc struct {
	params     **rawDescriptor
	paramCount uint64
	ret        *rawDescriptor
	isConst    uint64
}

type rawSharedFutureDesc struct{ value *rawDescriptor }

// rawVariantDesc carries the alternative list plus a currentIndex slot the
// source protocol placed in the otherwise-static descriptor. It is decoded
// for layout fidelity only: instance state always comes from variant_index.
type rawVariantDesc struct {
	alternatives **rawDescriptor
	count        uint64
	currentIndex uint64
}

// rawMemberInfo mirrors glz_member_info. setter is null for member functions
// and for intentionally read-only fields; functionPtr is non-null only for
// member functions.
type rawMemberInfo struct {
	name        *byte
	typ         *rawDescriptor
	getter      unsafe.Pointer
	setter      unsafe.Pointer
	kind        uint32
	pad         uint32
	functionPtr unsafe.Pointer
}

// rawTypeInfo mirrors glz_type_info.
type rawTypeInfo struct {
	name        *byte
	size        uintptr
	memberCount uintptr
	members     *rawMemberInfo
}

// rawVectorView mirrors glz_vector_view: a transient (data, size, capacity)
// snapshot of a native growable array. Never cached across mutations.
type rawVectorView struct {
	data     unsafe.Pointer
	size     uintptr
	capacity uintptr
}

// Compile-time layout asserts. Each pair fails to build unless the sizes
// match in both directions.
var (
	_ [40 - unsafe.Sizeof(rawDescriptor{})]byte
	_ [unsafe.Sizeof(rawDescriptor{}) - 40]byte
	_ [48 - unsafe.Sizeof(rawMemberInfo{})]byte
	_ [unsafe.Sizeof(rawMemberInfo{}) - 48]byte
	_ [32 - unsafe.Sizeof(rawTypeInfo{})]byte
	_ [unsafe.Sizeof(rawTypeInfo{}) - 32]byte
	_ [24 - unsafe.Sizeof(rawVectorView{})]byte
	_ [unsafe.Sizeof(rawVectorView{}) - 24]byte
	_ [32 - unsafe.Sizeof(rawFunctionDesc{})]byte
	_ [unsafe.Sizeof(rawFunctionDesc{}) - 32]byte
	_ [24 - unsafe.Sizeof(rawVariantDesc{})]byte
	_ [unsafe.Sizeof(rawVariantDesc{}) - 24]byte
)

// verifyABISizes is the runtime twin of the compile-time asserts above,
// in the spirit of the native side's verify_struct_sizes utility. Open runs
// it before trusting any shared-library data.
func verifyABISizes() error {
	checks := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"glz_type_descriptor", unsafe.Sizeof(rawDescriptor{}), 40},
		{"glz_member_info", unsafe.Sizeof(rawMemberInfo{}), 48},
		{"glz_type_info", unsafe.Sizeof(rawTypeInfo{}), 32},
		{"glz_vector_view", unsafe.Sizeof(rawVectorView{}), 24},
	}
	for _, c := range checks {
		if c.got != c.want {
			return &CorruptSizeError{Size: uint64(c.got)}
		}
	}
	return nil
}

// ---- payload accessors -----------------------------------------------------

func (d *rawDescriptor) payload() unsafe.Pointer { return unsafe.Pointer(&d.data[0]) }

func (d *rawDescriptor) primitive() *rawPrimitiveDesc { return (*rawPrimitiveDesc)(d.payload()) }
func (d *rawDescriptor) str() *rawStringDesc          { return (*rawStringDesc)(d.payload()) }
func (d *rawDescriptor) vector() *rawVectorDesc       { return (*rawVectorDesc)(d.payload()) }
func (d *rawDescriptor) mp() *rawMapDesc              { return (*rawMapDesc)(d.payload()) }
func (d *rawDescriptor) cplx() *rawComplexDesc        { return (*rawComplexDesc)(d.payload()) }
func (d *rawDescriptor) strct() *rawStructDesc        { return (*rawStructDesc)(d.payload()) }
func (d *rawDescriptor) optional() *rawOptionalDesc   { return (*rawOptionalDesc)(d.payload()) }
func (d *rawDescriptor) function() *rawFunctionDesc   { return (*rawFunctionDesc)(d.payload()) }
func (d *rawDescriptor) future() *rawSharedFutureDesc { return (*rawSharedFutureDesc)(d.payload()) }
func (d *rawDescriptor) variant() *rawVariantDesc     { return (*rawVariantDesc)(d.payload()) }

// descSlice views a native **rawDescriptor array of length n.
func descSlice(base **rawDescriptor, n int) []*rawDescriptor {
	if base == nil || n == 0 {
		return nil
	}
	return unsafe.Slice(base, n)
}

// memberSlice views a type's member array.
func memberSlice(info *rawTypeInfo) ([]rawMemberInfo, error) {
	if info == nil {
		return nil, ErrInvalidHandle
	}
	if err := checkNativeCount(uint64(info.memberCount)); err != nil {
		return nil, err
	}
	if info.memberCount == 0 || info.members == nil {
		return nil, nil
	}
	return unsafe.Slice(info.members, info.memberCount), nil
}

// goString copies a NUL-terminated native string.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// resultBufferSize is the fixed scratch size handed to the call trampoline
// for placement-constructing non-trivial return values. Part of the wire
// protocol; both sides assume it.
const resultBufferSize = 256

// ---- size-corruption heuristic --------------------------------------------

// Known debug-heap fill patterns; a size matching one of these means we are
// reading a freed or never-initialized object.
var sizeSentinels = [...]uint64{
	0xcccccccccccccccc,
	0xcdcdcdcdcdcdcdcd,
	0xdddddddddddddddd,
	0xfeeefeeefeeefeee,
	0xdeadbeefdeadbeef,
}

// maxNativeCount caps any element/member count we are willing to believe.
const maxNativeCount = uint64(1) << 48

func checkNativeCount(n uint64) error {
	if n >= maxNativeCount {
		return &CorruptSizeError{Size: n}
	}
	for _, s := range sizeSentinels {
		if n == s || n == s&0xffffffff {
			return &CorruptSizeError{Size: n}
		}
	}
	return nil
}

// ---- typed loads/stores ----------------------------------------------------
//
// The marshaller dispatches on the decoded descriptor and ends up here for
// the actual memory access. Keeping the casts in this file preserves the
// "one audited unsafe module" rule.

func loadBool(p unsafe.Pointer) bool       { return *(*bool)(p) }
func loadI8(p unsafe.Pointer) int8         { return *(*int8)(p) }
func loadI16(p unsafe.Pointer) int16       { return *(*int16)(p) }
func loadI32(p unsafe.Pointer) int32       { return *(*int32)(p) }
func loadI64(p unsafe.Pointer) int64       { return *(*int64)(p) }
func loadU8(p unsafe.Pointer) uint8        { return *(*uint8)(p) }
func loadU16(p unsafe.Pointer) uint16      { return *(*uint16)(p) }
func loadU32(p unsafe.Pointer) uint32      { return *(*uint32)(p) }
func loadU64(p unsafe.Pointer) uint64      { return *(*uint64)(p) }
func loadF32(p unsafe.Pointer) float32     { return *(*float32)(p) }
func loadF64(p unsafe.Pointer) float64     { return *(*float64)(p) }
func loadC64(p unsafe.Pointer) complex64   { return *(*complex64)(p) }
func loadC128(p unsafe.Pointer) complex128 { return *(*complex128)(p) }
func loadPtr(p unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(p)
}

func storeBool(p unsafe.Pointer, v bool)       { *(*bool)(p) = v }
func storeI8(p unsafe.Pointer, v int8)         { *(*int8)(p) = v }
func storeI16(p unsafe.Pointer, v int16)       { *(*int16)(p) = v }
func storeI32(p unsafe.Pointer, v int32)       { *(*int32)(p) = v }
func storeI64(p unsafe.Pointer, v int64)       { *(*int64)(p) = v }
func storeU8(p unsafe.Pointer, v uint8)        { *(*uint8)(p) = v }
func storeU16(p unsafe.Pointer, v uint16)      { *(*uint16)(p) = v }
func storeU32(p unsafe.Pointer, v uint32)      { *(*uint32)(p) = v }
func storeU64(p unsafe.Pointer, v uint64)      { *(*uint64)(p) = v }
func storeF32(p unsafe.Pointer, v float32)     { *(*float32)(p) = v }
func storeF64(p unsafe.Pointer, v float64)     { *(*float64)(p) = v }
func storeC64(p unsafe.Pointer, v complex64)   { *(*complex64)(p) = v }
func storeC128(p unsafe.Pointer, v complex128) { *(*complex128)(p) = v }

// elemAt computes the address of element i in a contiguous array.
func elemAt(base unsafe.Pointer, i int, size uintptr) unsafe.Pointer {
	return unsafe.Add(base, uintptr(i)*size)
}

// native.go: the audited call surface between the host-side engine and a
// native side.
//
// Two implementations exist: Library (a dlopen'd shared library speaking the
// glz_* ABI) and Registry (the same protocol served in-process against
// registered Go types). Wrappers and the marshaller only ever talk through
// this interface, so they cannot tell the backends apart — which is the
// point: one engine, two memory models.
package glaze

import (
	"fmt"
	"unsafe"
)

// VectorView is a transient snapshot of a native growable array. The native
// side may reallocate between calls; a view must never be cached across
// mutating operations.
type VectorView struct {
	Data unsafe.Pointer
	Len  int
	Cap  int
}

// Native is the set of entry points the protocol defines. Every method is a
// synchronous call that blocks until the native side returns; the interface
// adds no cross-thread protocol beyond what the backend guarantees.
type Native interface {
	// Instance lifecycle and lookup.
	CreateInstance(typeName string) (unsafe.Pointer, error)
	DestroyInstance(typeName string, obj unsafe.Pointer) error
	TypeInfo(typeName string) (*TypeInfo, error)
	TypeInfoByHash(hash uint64) (*TypeInfo, error)
	Instance(name string) (unsafe.Pointer, error)
	InstanceType(name string) (string, error)

	// Member access. GetMember returns a pointer into the object's storage;
	// interpretation is driven by the member's descriptor.
	GetMember(obj unsafe.Pointer, m *Member) (unsafe.Pointer, error)
	SetMember(obj unsafe.Pointer, m *Member, src unsafe.Pointer) error
	// CallMember invokes a member function through its trampoline. The
	// returned bool reports whether ret holds a result (false for void);
	// failure is an error, never a disguised null.
	CallMember(obj unsafe.Pointer, typeName string, m *Member, args []unsafe.Pointer, ret unsafe.Pointer) (bool, error)

	// Growable arrays.
	VectorView(vec unsafe.Pointer, elem *Descriptor) (VectorView, error)
	VectorResize(vec unsafe.Pointer, elem *Descriptor, n int) error
	VectorPush(vec unsafe.Pointer, elem *Descriptor, src unsafe.Pointer) error

	// Strings.
	StringBytes(s unsafe.Pointer) (unsafe.Pointer, int, error)
	StringSet(s unsafe.Pointer, v string) error

	// Optionals.
	OptionalHasValue(opt unsafe.Pointer, elem *Descriptor) (bool, error)
	OptionalValue(opt unsafe.Pointer, elem *Descriptor) (unsafe.Pointer, error)
	OptionalSet(opt unsafe.Pointer, elem *Descriptor, src unsafe.Pointer) error
	OptionalReset(opt unsafe.Pointer, elem *Descriptor) error

	// Variants. Alternative metadata (count, type-at-index) is static and
	// descriptor-derived; only the instance state crosses the boundary.
	VariantIndex(v unsafe.Pointer, d *Descriptor) (int, error)
	VariantValue(v unsafe.Pointer, d *Descriptor) (unsafe.Pointer, error)
	VariantSet(v unsafe.Pointer, d *Descriptor, alt int, src unsafe.Pointer) error

	// Shared futures.
	FutureValid(f unsafe.Pointer) (bool, error)
	FutureReady(f unsafe.Pointer) (bool, error)
	FutureWait(f unsafe.Pointer) error
	FutureValue(f unsafe.Pointer, dst unsafe.Pointer) error
	FutureValueType(f unsafe.Pointer) (*Descriptor, error)

	// Marshalling support: temporaries for converted arguments, result
	// buffers for non-trivial returns, and value widths for element math.
	NewTempString(v string) (unsafe.Pointer, func(), error)
	NewTempVector(elem *Descriptor) (unsafe.Pointer, func(), error)
	AllocResult(ret *Descriptor) (unsafe.Pointer, func(), error)
	ValueSize(d *Descriptor) (uintptr, error)
}

// NativeCloser is a backend with an explicit teardown, as returned by Open.
type NativeCloser interface {
	Native
	Close() error
}

// MemberKind distinguishes data members from member functions.
type MemberKind uint8

const (
	DataMember MemberKind = iota
	FunctionMember
)

func (k MemberKind) String() string {
	if k == FunctionMember {
		return "function"
	}
	return "data"
}

// Member is one decoded member record: a field or function of a registered
// type. Records are built once at registration/decode time and never mutated.
type Member struct {
	Name     string
	Type     *Descriptor
	Kind     MemberKind
	ReadOnly bool

	raw *rawMemberInfo // shared-library accessors; nil for in-process members
	acc *goAccessor    // in-process accessors; nil for shared-library members
}

// TypeInfo is one decoded registry entry. Member lookup is a linear scan:
// member counts are small and resolved records are cached by the wrappers.
type TypeInfo struct {
	Name    string
	Size    uintptr
	Members []*Member

	raw *rawTypeInfo
}

// Member finds a member record by name.
func (t *TypeInfo) Member(name string) (*Member, error) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no member %q", ErrUnknownMember, t.Name, name)
}

// decodeTypeInfo converts a raw native type-info record into its host form.
// Used only by the shared-library backend; the in-process registry builds
// TypeInfo directly.
func decodeTypeInfo(raw *rawTypeInfo) (*TypeInfo, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: null type info", ErrInvalidHandle)
	}
	members, err := memberSlice(raw)
	if err != nil {
		return nil, err
	}
	info := &TypeInfo{
		Name:    goString(raw.name),
		Size:    raw.size,
		Members: make([]*Member, 0, len(members)),
		raw:     raw,
	}
	for i := range members {
		rm := &members[i]
		if rm.typ == nil {
			return nil, fmt.Errorf("member %q of %s: %w: null descriptor",
				goString(rm.name), info.Name, ErrInvalidHandle)
		}
		kind := DataMember
		if rm.kind == rawMemberFunction {
			kind = FunctionMember
		}
		info.Members = append(info.Members, &Member{
			Name:     goString(rm.name),
			Type:     wrapDesc(rm.typ),
			Kind:     kind,
			ReadOnly: kind == DataMember && rm.setter == nil,
			raw:      rm,
		})
	}
	return info, nil
}

// resolveStructInfo resolves a struct descriptor to its TypeInfo: the direct
// info pointer when present, otherwise the by-hash fallback (forward-declared
// or mutually-recursive graphs), finally by name. A miss is a hard error —
// proceeding with a null info would mean dereferencing garbage later.
func resolveStructInfo(nat Native, sd StructDesc) (*TypeInfo, error) {
	if sd.info != nil {
		return decodeTypeInfo(sd.info)
	}
	if sd.Hash != 0 {
		if info, err := nat.TypeInfoByHash(sd.Hash); err == nil {
			return info, nil
		}
	}
	info, err := nat.TypeInfo(sd.TypeName)
	if err != nil {
		return nil, fmt.Errorf("could not resolve type %q (hash %#x): %w", sd.TypeName, sd.Hash, err)
	}
	return info, nil
}

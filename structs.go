// structs.go: host-side wrapper over a native struct instance.
//
// A Struct pairs a raw object pointer with its decoded type info and a
// backend handle. Owned wrappers (created through New) destroy the native
// instance when collected or explicitly destroyed; borrowed wrappers (nested
// fields, registered globals, aliasing views) share their root's liveness
// token and never destruct. Member lookup is a linear scan over the member
// table, cached per wrapper after the first hit — the same caching
// philosophy the symbol table uses.
package glaze

import (
	"fmt"
	"unsafe"
)

// Struct is a live view over one native struct instance.
type Struct struct {
	nat   Native
	ptr   unsafe.Pointer
	info  *TypeInfo
	owned bool
	life  *liveness
	root  any // owning root wrapper; nil when this wrapper is itself the root
	cache map[string]*Member
}

// New creates an owned instance of a registered type. The native destructor
// runs when the wrapper becomes unreachable, or earlier via Destroy.
func New(nat Native, typeName string) (*Struct, error) {
	info, err := nat.TypeInfo(typeName)
	if err != nil {
		return nil, err
	}
	ptr, err := nat.CreateInstance(typeName)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, fmt.Errorf("%w: create_instance(%q) returned null", ErrInvalidHandle, typeName)
	}
	s := &Struct{
		nat:   nat,
		ptr:   ptr,
		info:  info,
		owned: true,
		life:  newLiveness(),
	}
	own(s, ptr, s.life, func() {
		_ = nat.DestroyInstance(typeName, ptr)
	})
	return s, nil
}

// GlobalInstance looks up a named instance registered by the native side.
// The returned wrapper borrows: the native side owns the storage.
func GlobalInstance(nat Native, name string) (*Struct, error) {
	typeName, err := nat.InstanceType(name)
	if err != nil {
		return nil, err
	}
	info, err := nat.TypeInfo(typeName)
	if err != nil {
		return nil, err
	}
	ptr, err := nat.Instance(name)
	if err != nil {
		return nil, err
	}
	if ptr == nil {
		return nil, fmt.Errorf("%w: instance %q resolved to null", ErrInvalidHandle, name)
	}
	return borrowStruct(nat, ptr, info, newLiveness(), nil), nil
}

// borrowStruct wraps existing native storage without taking ownership. root
// is the owning root wrapper; holding it keeps the root reachable (and its
// finalizer unfired) for as long as this borrowed view is.
func borrowStruct(nat Native, ptr unsafe.Pointer, info *TypeInfo, life *liveness, root any) *Struct {
	return &Struct{nat: nat, ptr: ptr, info: info, life: life, root: root}
}

// anchor is the reference borrowed children must hold: the ultimate owning
// root, or this wrapper when it is itself the root.
func (s *Struct) anchor() any {
	if s.root != nil {
		return s.root
	}
	return s
}

// TypeName returns the registered type name.
func (s *Struct) TypeName() string { return s.info.Name }

// Info returns the decoded type info.
func (s *Struct) Info() *TypeInfo { return s.info }

// Owned reports whether this wrapper destroys the instance.
func (s *Struct) Owned() bool { return s.owned }

// Pointer exposes the raw object pointer, for aliasing checks and the
// inspector. Using it after Destroy is the caller's hazard.
func (s *Struct) Pointer() unsafe.Pointer { return s.ptr }

// Destroy runs the native destructor now and marks every wrapper borrowed
// from this root dead. Only owned wrappers may be destroyed.
func (s *Struct) Destroy() error {
	if !s.owned {
		return fmt.Errorf("cannot destroy a borrowed wrapper of %s", s.info.Name)
	}
	if err := s.life.check(); err != nil {
		return err
	}
	disown(s, s.ptr)
	return nil
}

// member resolves a member record, consulting the per-wrapper cache first.
func (s *Struct) member(name string) (*Member, error) {
	if m, ok := s.cache[name]; ok {
		return m, nil
	}
	m, err := s.info.Member(name)
	if err != nil {
		return nil, err
	}
	if s.cache == nil {
		s.cache = make(map[string]*Member, len(s.info.Members))
	}
	s.cache[name] = m
	return m, nil
}

// Get reads a data member through the descriptor-driven marshaller, or
// returns a *MemberFunction for function members.
func (s *Struct) Get(name string) (any, error) {
	if err := s.life.check(); err != nil {
		return nil, err
	}
	m, err := s.member(name)
	if err != nil {
		return nil, err
	}
	if m.Kind == FunctionMember {
		return &MemberFunction{nat: s.nat, obj: s, member: m, Name: name}, nil
	}
	p, err := s.nat.GetMember(s.ptr, m)
	if err != nil {
		return nil, err
	}
	return toHost(s.nat, m.Type, p, s.life, s.anchor())
}

// Set assigns a data member. Writable kinds are primitive, string and
// complex; optional and variant members must be mutated through their
// wrappers, and direct assignment reports not-implemented rather than
// silently doing nothing.
func (s *Struct) Set(name string, v any) error {
	if err := s.life.check(); err != nil {
		return err
	}
	m, err := s.member(name)
	if err != nil {
		return err
	}
	if m.Kind == FunctionMember {
		return fmt.Errorf("cannot assign to member function %s.%s", s.info.Name, name)
	}
	k, err := m.Type.Kind()
	if err != nil {
		return err
	}
	switch k {
	case KindPrimitive, KindComplex:
		if m.ReadOnly {
			return fmt.Errorf("%w: %s.%s", ErrReadOnly, s.info.Name, name)
		}
		src, cleanup, err := fromHost(s.nat, m.Type, v)
		if err != nil {
			return err
		}
		defer cleanup()
		return s.nat.SetMember(s.ptr, m, src)
	case KindString:
		// Strings mutate in place through the string entry points; the
		// member needs no setter of its own, but read-only still binds.
		if m.ReadOnly {
			return fmt.Errorf("%w: %s.%s", ErrReadOnly, s.info.Name, name)
		}
		p, err := s.nat.GetMember(s.ptr, m)
		if err != nil {
			return err
		}
		str, ok := v.(string)
		if !ok {
			return &ConversionError{Value: v, Want: "string"}
		}
		return s.nat.StringSet(p, str)
	case KindOptional, KindVariant:
		return fmt.Errorf("%w: direct assignment to %s member %s.%s (mutate through the wrapper)",
			ErrNotImplemented, k, s.info.Name, name)
	}
	return fmt.Errorf("%w: assigning %s members", ErrNotImplemented, k)
}

// Call invokes member function name with args.
func (s *Struct) Call(name string, args ...any) (any, error) {
	fn, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	mf, ok := fn.(*MemberFunction)
	if !ok {
		return nil, fmt.Errorf("%s.%s is a data member, not a function", s.info.Name, name)
	}
	return mf.Call(args...)
}

// Members lists the member records in declaration order.
func (s *Struct) Members() []*Member { return s.info.Members }

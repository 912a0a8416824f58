// registry.go: the in-process backend.
//
// Registry serves the whole protocol against plain Go types: registration
// walks a struct with reflection, builds real descriptor records in Go
// memory, and wires field offsets and method trampolines into the same
// Member records the shared-library backend decodes from native tables.
// Everything above the Native interface is shared; a wrapper cannot tell
// whether its object lives in a dlopen'd library or a Go allocation.
//
// Descriptor records are interned per Go type and anchored in the registry
// for its lifetime: the 32-byte payload region is opaque bytes to the
// garbage collector, so every pointer written into a payload must also be
// reachable through a scanned reference held here.
package glaze

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unsafe"
)

// goAccessor is the in-process counterpart of a native member record:
// a field offset for data members, a trampoline for function members.
type goAccessor struct {
	offset uintptr
	invoke func(obj unsafe.Pointer, args []unsafe.Pointer, ret unsafe.Pointer) callResult
}

// sliceHeader mirrors the runtime slice layout; a registered []T field is
// read through it to produce vector views.
type sliceHeader struct {
	data unsafe.Pointer
	len  int
	cap  int
}

type regType struct {
	name string
	rt   reflect.Type
	hash uint64
	info *TypeInfo
	desc *rawDescriptor
}

type regInstance struct {
	typeName string
	ptr      unsafe.Pointer
	anchor   reflect.Value
}

type optionalLayout struct {
	optType reflect.Type
	valOff  uintptr
	valType reflect.Type
}

type variantLayout struct {
	altOffs  []uintptr
	altTypes []reflect.Type
}

// Registry is the in-process Native implementation. Safe for concurrent use;
// registration and access take the same lock, reads share it.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]*regType
	byHash    map[uint64]*regType
	byGoType  map[reflect.Type]*regType
	descFor   map[reflect.Type]*rawDescriptor
	goTypeOf  map[*rawDescriptor]reflect.Type
	optMeta   map[*rawDescriptor]optionalLayout // keyed by the element descriptor
	varMeta   map[*rawDescriptor]variantLayout  // keyed by the variant descriptor
	instances map[string]regInstance
	live      map[unsafe.Pointer]reflect.Value
	keep      []any // anchors for payload-referenced allocations

	temps sync.Map // temp/result allocations kept alive until their cleanup runs
}

// NewRegistry returns an empty in-process backend.
func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]*regType),
		byHash:    make(map[uint64]*regType),
		byGoType:  make(map[reflect.Type]*regType),
		descFor:   make(map[reflect.Type]*rawDescriptor),
		goTypeOf:  make(map[*rawDescriptor]reflect.Type),
		optMeta:   make(map[*rawDescriptor]optionalLayout),
		varMeta:   make(map[*rawDescriptor]variantLayout),
		instances: make(map[string]regInstance),
		live:      make(map[unsafe.Pointer]reflect.Value),
	}
}

// RegisterType registers struct type T under name. Field and method types
// are described recursively; struct-typed fields auto-register under their
// Go type name. Registration is idempotent for the same (type, name) pair.
func RegisterType[T any](r *Registry, name string) error {
	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.registerLocked(rt, name)
	return err
}

// RegisterInstance publishes a named instance. v must be a pointer to a
// struct; an unregistered type auto-registers under its Go type name.
func (r *Registry) RegisterInstance(name string, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("instance %q must be a non-nil struct pointer, got %T", name, v)
	}
	rt := rv.Elem().Type()
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.registerLocked(rt, r.nameForLocked(rt))
	if err != nil {
		return err
	}
	r.instances[name] = regInstance{
		typeName: t.name,
		ptr:      unsafe.Pointer(rv.Pointer()),
		anchor:   rv,
	}
	return nil
}

// TypeNames lists the registered type names, sorted.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// InstanceNames lists the published instance names, sorted.
func (r *Registry) InstanceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.instances))
	for n := range r.instances {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) nameForLocked(rt reflect.Type) string {
	if t, ok := r.byGoType[rt]; ok {
		return t.name
	}
	return rt.Name()
}

func typeHash(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	s := h.Sum64()
	if s == 0 {
		s = 1 // zero means "no hash" on the wire
	}
	return s
}

// registerLocked builds the full type record: struct descriptor first (so
// recursive graphs resolve through the name/hash indirection), then the
// member table.
func (r *Registry) registerLocked(rt reflect.Type, name string) (*regType, error) {
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot register %s: not a struct type", rt)
	}
	if name == "" {
		return nil, fmt.Errorf("cannot register anonymous struct type %s", rt)
	}
	if existing, ok := r.byGoType[rt]; ok {
		if existing.name != name {
			return nil, fmt.Errorf("type %s already registered as %q, cannot re-register as %q",
				rt, existing.name, name)
		}
		return existing, nil
	}
	if prior, ok := r.byName[name]; ok && prior.rt != rt {
		return nil, fmt.Errorf("type name %q already bound to %s", name, prior.rt)
	}

	t := &regType{name: name, rt: rt, hash: typeHash(name)}
	if clash, ok := r.byHash[t.hash]; ok && clash.rt != rt {
		return nil, fmt.Errorf("type hash collision between %q and %q", name, clash.name)
	}
	r.byName[name] = t
	r.byHash[t.hash] = t
	r.byGoType[rt] = t

	nameBytes := append([]byte(name), 0)
	d := &rawDescriptor{index: rawKindStruct}
	*d.strct() = rawStructDesc{
		typeName: &nameBytes[0],
		info:     nil, // in-process lookups go through the hash/name fallback
		typeHash: t.hash,
	}
	r.keep = append(r.keep, nameBytes, d)
	r.descFor[rt] = d
	r.goTypeOf[d] = rt
	t.desc = d

	info, err := r.buildMembersLocked(t)
	if err != nil {
		// Leave the maps populated: a half-registered recursive type cannot
		// be rolled back safely, and every later lookup will re-report.
		return nil, fmt.Errorf("register %q: %w", name, err)
	}
	t.info = info
	return t, nil
}

func (r *Registry) buildMembersLocked(t *regType) (*TypeInfo, error) {
	info := &TypeInfo{Name: t.name, Size: t.rt.Size()}

	for i := 0; i < t.rt.NumField(); i++ {
		f := t.rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, readonly, skip := parseFieldTag(f)
		if skip {
			continue
		}
		d, err := r.descriptorForLocked(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		info.Members = append(info.Members, &Member{
			Name:     name,
			Type:     wrapDesc(d),
			Kind:     DataMember,
			ReadOnly: readonly,
			acc:      &goAccessor{offset: f.Offset},
		})
	}

	pt := reflect.PointerTo(t.rt)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		member, err := r.buildMethodLocked(t, m)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Name, err)
		}
		info.Members = append(info.Members, member)
	}
	return info, nil
}

var errType = reflect.TypeFor[error]()

func (r *Registry) buildMethodLocked(t *regType, m reflect.Method) (*Member, error) {
	mt := m.Type // receiver is In(0)
	if mt.IsVariadic() {
		return nil, fmt.Errorf("variadic methods are not supported")
	}

	paramTypes := make([]reflect.Type, 0, mt.NumIn()-1)
	paramDescs := make([]*rawDescriptor, 0, mt.NumIn()-1)
	for i := 1; i < mt.NumIn(); i++ {
		pd, err := r.descriptorForLocked(mt.In(i))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		paramTypes = append(paramTypes, mt.In(i))
		paramDescs = append(paramDescs, pd)
	}

	// Out shapes: (), (T), (error), (T, error).
	errIdx, retIdx := -1, -1
	var retType reflect.Type
	switch mt.NumOut() {
	case 0:
	case 1:
		if mt.Out(0) == errType {
			errIdx = 0
		} else {
			retIdx, retType = 0, mt.Out(0)
		}
	case 2:
		if mt.Out(1) != errType {
			return nil, fmt.Errorf("second return value must be error, got %s", mt.Out(1))
		}
		retIdx, retType = 0, mt.Out(0)
		errIdx = 1
	default:
		return nil, fmt.Errorf("too many return values (%d)", mt.NumOut())
	}

	var retDesc *rawDescriptor
	if retType != nil {
		var err error
		retDesc, err = r.descriptorForLocked(retType)
		if err != nil {
			return nil, fmt.Errorf("return value: %w", err)
		}
	}

	fd := &rawDescriptor{index: rawKindFunction}
	fn := rawFunctionDesc{paramCount: uint64(len(paramDescs)), ret: retDesc}
	if len(paramDescs) > 0 {
		fn.params = &paramDescs[0]
	}
	*fd.function() = fn
	r.keep = append(r.keep, fd, paramDescs)

	rt := t.rt
	qualified := t.name + "." + m.Name
	call := m.Func
	invoke := func(obj unsafe.Pointer, args []unsafe.Pointer, ret unsafe.Pointer) (res callResult) {
		defer func() {
			if p := recover(); p != nil {
				res = callResult{status: callFailed, err: fmt.Errorf("%s panicked: %v", qualified, p)}
			}
		}()
		in := make([]reflect.Value, 0, len(paramTypes)+1)
		in = append(in, reflect.NewAt(rt, obj))
		for i, pt := range paramTypes {
			in = append(in, reflect.NewAt(pt, args[i]).Elem())
		}
		out := call.Call(in)
		if errIdx >= 0 {
			if e, _ := out[errIdx].Interface().(error); e != nil {
				return callResult{status: callFailed, err: e}
			}
		}
		if retIdx < 0 {
			return callResult{status: callVoid}
		}
		reflect.NewAt(retType, ret).Elem().Set(out[retIdx])
		return callResult{status: callOK}
	}

	return &Member{
		Name: m.Name,
		Type: wrapDesc(fd),
		Kind: FunctionMember,
		acc:  &goAccessor{invoke: invoke},
	}, nil
}

func parseFieldTag(f reflect.StructField) (name string, readonly, skip bool) {
	name = f.Name
	tag, ok := f.Tag.Lookup("glaze")
	if !ok {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		return "", false, true
	}
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "readonly" {
			readonly = true
		}
	}
	return name, readonly, false
}

// glazePkg identifies this package's generic value types by path, so the
// detection below survives module renames.
var glazePkg = reflect.TypeFor[Optional[bool]]().PkgPath()

func isGlazeGeneric(rt reflect.Type, prefix string) bool {
	return rt.Kind() == reflect.Struct && rt.PkgPath() == glazePkg &&
		strings.HasPrefix(rt.Name(), prefix)
}

// descriptorForLocked interns one descriptor record per Go type.
func (r *Registry) descriptorForLocked(rt reflect.Type) (*rawDescriptor, error) {
	if d, ok := r.descFor[rt]; ok {
		return d, nil
	}
	d, err := r.buildDescriptorLocked(rt)
	if err != nil {
		return nil, err
	}
	r.descFor[rt] = d
	r.goTypeOf[d] = rt
	r.keep = append(r.keep, d)
	return d, nil
}

func primKindFor(rt reflect.Type) (uint64, bool) {
	switch rt.Kind() {
	case reflect.Bool:
		return rawPrimBool, true
	case reflect.Int8:
		return rawPrimI8, true
	case reflect.Int16:
		return rawPrimI16, true
	case reflect.Int32:
		return rawPrimI32, true
	case reflect.Int64, reflect.Int:
		return rawPrimI64, true
	case reflect.Uint8:
		return rawPrimU8, true
	case reflect.Uint16:
		return rawPrimU16, true
	case reflect.Uint32:
		return rawPrimU32, true
	case reflect.Uint64, reflect.Uint:
		return rawPrimU64, true
	case reflect.Float32:
		return rawPrimF32, true
	case reflect.Float64:
		return rawPrimF64, true
	}
	return 0, false
}

func (r *Registry) buildDescriptorLocked(rt reflect.Type) (*rawDescriptor, error) {
	if code, ok := primKindFor(rt); ok {
		d := &rawDescriptor{index: rawKindPrimitive}
		d.primitive().kind = code
		return d, nil
	}

	switch {
	case rt.Kind() == reflect.Complex64:
		d := &rawDescriptor{index: rawKindComplex}
		d.cplx().kind = rawPrimF32
		return d, nil
	case rt.Kind() == reflect.Complex128:
		d := &rawDescriptor{index: rawKindComplex}
		d.cplx().kind = rawPrimF64
		return d, nil
	case rt.Kind() == reflect.String:
		return &rawDescriptor{index: rawKindString}, nil
	case rt.Kind() == reflect.Slice:
		elem, err := r.descriptorForLocked(rt.Elem())
		if err != nil {
			return nil, fmt.Errorf("slice element: %w", err)
		}
		d := &rawDescriptor{index: rawKindVector}
		d.vector().element = elem
		return d, nil
	case rt.Kind() == reflect.Map:
		key, err := r.descriptorForLocked(rt.Key())
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		val, err := r.descriptorForLocked(rt.Elem())
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		d := &rawDescriptor{index: rawKindMap}
		*d.mp() = rawMapDesc{key: key, value: val}
		return d, nil
	case isGlazeGeneric(rt, "Optional["):
		return r.buildOptionalLocked(rt)
	case isGlazeGeneric(rt, "Union2[") || isGlazeGeneric(rt, "Union3[") || isGlazeGeneric(rt, "Union4["):
		return r.buildVariantLocked(rt)
	case rt.Kind() == reflect.Pointer && isGlazeGeneric(rt.Elem(), "Future["):
		val := rt.Elem().Field(1) // futureCore, then val
		vd, err := r.descriptorForLocked(val.Type)
		if err != nil {
			return nil, fmt.Errorf("future value: %w", err)
		}
		d := &rawDescriptor{index: rawKindSharedFuture}
		d.future().value = vd
		return d, nil
	case rt.Kind() == reflect.Struct:
		t, err := r.registerLocked(rt, r.nameForLocked(rt))
		if err != nil {
			return nil, err
		}
		return t.desc, nil
	}
	return nil, fmt.Errorf("unsupported Go type %s", rt)
}

func (r *Registry) buildOptionalLocked(rt reflect.Type) (*rawDescriptor, error) {
	val := rt.Field(1) // has bool, then val T
	elem, err := r.descriptorForLocked(val.Type)
	if err != nil {
		return nil, fmt.Errorf("optional element: %w", err)
	}
	d := &rawDescriptor{index: rawKindOptional}
	d.optional().element = elem
	r.optMeta[elem] = optionalLayout{optType: rt, valOff: val.Offset, valType: val.Type}
	return d, nil
}

func (r *Registry) buildVariantLocked(rt reflect.Type) (*rawDescriptor, error) {
	n := rt.NumField() - 1 // idx int32, then one field per alternative
	alts := make([]*rawDescriptor, 0, n)
	layout := variantLayout{}
	for i := 1; i <= n; i++ {
		f := rt.Field(i)
		ad, err := r.descriptorForLocked(f.Type)
		if err != nil {
			return nil, fmt.Errorf("alternative %d: %w", i-1, err)
		}
		alts = append(alts, ad)
		layout.altOffs = append(layout.altOffs, f.Offset)
		layout.altTypes = append(layout.altTypes, f.Type)
	}
	d := &rawDescriptor{index: rawKindVariant}
	*d.variant() = rawVariantDesc{alternatives: &alts[0], count: uint64(n)}
	r.keep = append(r.keep, alts)
	r.varMeta[d] = layout
	return d, nil
}

// goType resolves a descriptor back to the Go type it was built from.
func (r *Registry) goType(d *Descriptor) (reflect.Type, error) {
	if d == nil || d.raw == nil {
		return nil, fmt.Errorf("%w: null type descriptor", ErrInvalidHandle)
	}
	r.mu.RLock()
	rt, ok := r.goTypeOf[d.raw]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: descriptor not built by this registry", ErrInvalidHandle)
	}
	return rt, nil
}

// ---- Native implementation --------------------------------------------------

func (r *Registry) lookupType(typeName string) (*regType, error) {
	r.mu.RLock()
	t, ok := r.byName[typeName]
	r.mu.RUnlock()
	if !ok || t.info == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return t, nil
}

func (r *Registry) CreateInstance(typeName string) (unsafe.Pointer, error) {
	t, err := r.lookupType(typeName)
	if err != nil {
		return nil, err
	}
	v := reflect.New(t.rt)
	p := unsafe.Pointer(v.Pointer())
	r.mu.Lock()
	r.live[p] = v
	r.mu.Unlock()
	return p, nil
}

func (r *Registry) DestroyInstance(typeName string, obj unsafe.Pointer) error {
	r.mu.Lock()
	_, ok := r.live[obj]
	delete(r.live, obj)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: destroying unknown %s instance", ErrInvalidHandle, typeName)
	}
	return nil
}

func (r *Registry) TypeInfo(typeName string) (*TypeInfo, error) {
	t, err := r.lookupType(typeName)
	if err != nil {
		return nil, err
	}
	return t.info, nil
}

func (r *Registry) TypeInfoByHash(hash uint64) (*TypeInfo, error) {
	r.mu.RLock()
	t, ok := r.byHash[hash]
	r.mu.RUnlock()
	if !ok || t.info == nil {
		return nil, fmt.Errorf("%w: hash %#x", ErrUnknownType, hash)
	}
	return t.info, nil
}

func (r *Registry) Instance(name string) (unsafe.Pointer, error) {
	r.mu.RLock()
	inst, ok := r.instances[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, name)
	}
	return inst.ptr, nil
}

func (r *Registry) InstanceType(name string) (string, error) {
	r.mu.RLock()
	inst, ok := r.instances[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownInstance, name)
	}
	return inst.typeName, nil
}

func (r *Registry) GetMember(obj unsafe.Pointer, m *Member) (unsafe.Pointer, error) {
	if m.acc == nil {
		return nil, fmt.Errorf("%w: member %q belongs to another backend", ErrInvalidHandle, m.Name)
	}
	if m.Kind == FunctionMember {
		return nil, fmt.Errorf("member function %q has no storage", m.Name)
	}
	return unsafe.Add(obj, m.acc.offset), nil
}

func (r *Registry) SetMember(obj unsafe.Pointer, m *Member, src unsafe.Pointer) error {
	dst, err := r.GetMember(obj, m)
	if err != nil {
		return err
	}
	if m.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, m.Name)
	}
	rt, err := r.goType(m.Type)
	if err != nil {
		return err
	}
	reflect.NewAt(rt, dst).Elem().Set(reflect.NewAt(rt, src).Elem())
	return nil
}

func (r *Registry) CallMember(obj unsafe.Pointer, typeName string, m *Member, args []unsafe.Pointer, ret unsafe.Pointer) (bool, error) {
	if m.acc == nil || m.acc.invoke == nil {
		return false, fmt.Errorf("%w: %s.%s is not callable here", ErrInvalidHandle, typeName, m.Name)
	}
	res := m.acc.invoke(obj, args, ret)
	switch res.status {
	case callOK:
		return true, nil
	case callVoid:
		return false, nil
	}
	if res.err != nil {
		return false, res.err
	}
	return false, fmt.Errorf("%s.%s failed", typeName, m.Name)
}

func (r *Registry) VectorView(vec unsafe.Pointer, elem *Descriptor) (VectorView, error) {
	h := (*sliceHeader)(vec)
	return VectorView{Data: h.data, Len: h.len, Cap: h.cap}, nil
}

func (r *Registry) sliceValue(vec unsafe.Pointer, elem *Descriptor) (reflect.Value, reflect.Type, error) {
	elemRT, err := r.goType(elem)
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return reflect.NewAt(reflect.SliceOf(elemRT), vec).Elem(), elemRT, nil
}

func (r *Registry) VectorResize(vec unsafe.Pointer, elem *Descriptor, n int) error {
	sv, elemRT, err := r.sliceValue(vec, elem)
	if err != nil {
		return err
	}
	switch {
	case n == sv.Len():
	case n < sv.Len():
		sv.SetLen(n)
	case n <= sv.Cap():
		// Regrowing within capacity re-exposes stale slots; value-initialize
		// them like a native resize would.
		old := sv.Len()
		sv.SetLen(n)
		zero := reflect.Zero(elemRT)
		for i := old; i < n; i++ {
			sv.Index(i).Set(zero)
		}
	default:
		ns := reflect.MakeSlice(sv.Type(), n, n)
		reflect.Copy(ns, sv)
		sv.Set(ns)
	}
	return nil
}

func (r *Registry) VectorPush(vec unsafe.Pointer, elem *Descriptor, src unsafe.Pointer) error {
	sv, elemRT, err := r.sliceValue(vec, elem)
	if err != nil {
		return err
	}
	sv.Set(reflect.Append(sv, reflect.NewAt(elemRT, src).Elem()))
	return nil
}

func (r *Registry) StringBytes(s unsafe.Pointer) (unsafe.Pointer, int, error) {
	str := *(*string)(s)
	if len(str) == 0 {
		return nil, 0, nil
	}
	return unsafe.Pointer(unsafe.StringData(str)), len(str), nil
}

func (r *Registry) StringSet(s unsafe.Pointer, v string) error {
	*(*string)(s) = v
	return nil
}

func (r *Registry) optionalLayout(elem *Descriptor) (optionalLayout, error) {
	if elem == nil || elem.raw == nil {
		return optionalLayout{}, fmt.Errorf("%w: null element descriptor", ErrInvalidHandle)
	}
	r.mu.RLock()
	l, ok := r.optMeta[elem.raw]
	r.mu.RUnlock()
	if !ok {
		return optionalLayout{}, fmt.Errorf("%w: optional layout for %s", ErrInvalidHandle, elem)
	}
	return l, nil
}

func (r *Registry) OptionalHasValue(opt unsafe.Pointer, elem *Descriptor) (bool, error) {
	if _, err := r.optionalLayout(elem); err != nil {
		return false, err
	}
	return *(*bool)(opt), nil
}

func (r *Registry) OptionalValue(opt unsafe.Pointer, elem *Descriptor) (unsafe.Pointer, error) {
	l, err := r.optionalLayout(elem)
	if err != nil {
		return nil, err
	}
	if !*(*bool)(opt) {
		return nil, fmt.Errorf("%w: disengaged optional", ErrInvalidHandle)
	}
	return unsafe.Add(opt, l.valOff), nil
}

func (r *Registry) OptionalSet(opt unsafe.Pointer, elem *Descriptor, src unsafe.Pointer) error {
	l, err := r.optionalLayout(elem)
	if err != nil {
		return err
	}
	dst := unsafe.Add(opt, l.valOff)
	reflect.NewAt(l.valType, dst).Elem().Set(reflect.NewAt(l.valType, src).Elem())
	*(*bool)(opt) = true
	return nil
}

func (r *Registry) OptionalReset(opt unsafe.Pointer, elem *Descriptor) error {
	l, err := r.optionalLayout(elem)
	if err != nil {
		return err
	}
	reflect.NewAt(l.optType, opt).Elem().Set(reflect.Zero(l.optType))
	return nil
}

func (r *Registry) variantLayout(d *Descriptor) (variantLayout, error) {
	if d == nil || d.raw == nil {
		return variantLayout{}, fmt.Errorf("%w: null variant descriptor", ErrInvalidHandle)
	}
	r.mu.RLock()
	l, ok := r.varMeta[d.raw]
	r.mu.RUnlock()
	if !ok {
		return variantLayout{}, fmt.Errorf("%w: variant layout for %s", ErrInvalidHandle, d)
	}
	return l, nil
}

func (r *Registry) VariantIndex(v unsafe.Pointer, d *Descriptor) (int, error) {
	if _, err := r.variantLayout(d); err != nil {
		return 0, err
	}
	return int(*(*int32)(v)), nil
}

func (r *Registry) VariantValue(v unsafe.Pointer, d *Descriptor) (unsafe.Pointer, error) {
	l, err := r.variantLayout(d)
	if err != nil {
		return nil, err
	}
	idx := int(*(*int32)(v))
	if idx < 0 || idx >= len(l.altOffs) {
		return nil, &BoundsError{Index: idx, Min: 0, Max: len(l.altOffs) - 1}
	}
	return unsafe.Add(v, l.altOffs[idx]), nil
}

func (r *Registry) VariantSet(v unsafe.Pointer, d *Descriptor, alt int, src unsafe.Pointer) error {
	l, err := r.variantLayout(d)
	if err != nil {
		return err
	}
	if alt < 0 || alt >= len(l.altOffs) {
		return &BoundsError{Index: alt, Min: 0, Max: len(l.altOffs) - 1}
	}
	dst := unsafe.Add(v, l.altOffs[alt])
	rt := l.altTypes[alt]
	reflect.NewAt(rt, dst).Elem().Set(reflect.NewAt(rt, src).Elem())
	*(*int32)(v) = int32(alt)
	return nil
}

// futureAt dereferences the field slot holding a *Future value and returns
// its type-erased header.
func futureAt(f unsafe.Pointer) *futureCore {
	if f == nil {
		return nil
	}
	p := loadPtr(f)
	if p == nil {
		return nil
	}
	return (*futureCore)(p)
}

func (r *Registry) FutureValid(f unsafe.Pointer) (bool, error) {
	core := futureAt(f)
	return core != nil && core.done != nil, nil
}

func (r *Registry) FutureReady(f unsafe.Pointer) (bool, error) {
	core := futureAt(f)
	if core == nil || core.done == nil {
		return false, nil
	}
	select {
	case <-core.done:
		return true, nil
	default:
		return false, nil
	}
}

func (r *Registry) FutureWait(f unsafe.Pointer) error {
	core := futureAt(f)
	if core == nil || core.done == nil {
		return ErrInvalidFuture
	}
	<-core.done
	return nil
}

func (r *Registry) FutureValue(f unsafe.Pointer, dst unsafe.Pointer) error {
	core := futureAt(f)
	if core == nil || core.done == nil {
		return ErrInvalidFuture
	}
	<-core.done
	reflect.NewAt(core.vtype, dst).Elem().Set(reflect.NewAt(core.vtype, core.value()).Elem())
	return nil
}

func (r *Registry) FutureValueType(f unsafe.Pointer) (*Descriptor, error) {
	core := futureAt(f)
	if core == nil || core.done == nil {
		return nil, ErrInvalidFuture
	}
	r.mu.Lock()
	d, err := r.descriptorForLocked(core.vtype)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return wrapDesc(d), nil
}

func (r *Registry) NewTempString(v string) (unsafe.Pointer, func(), error) {
	p := new(string)
	*p = v
	key := unsafe.Pointer(p)
	r.temps.Store(key, p)
	return key, func() { r.temps.Delete(key) }, nil
}

func (r *Registry) NewTempVector(elem *Descriptor) (unsafe.Pointer, func(), error) {
	elemRT, err := r.goType(elem)
	if err != nil {
		return nil, nil, err
	}
	sp := reflect.New(reflect.SliceOf(elemRT))
	key := unsafe.Pointer(sp.Pointer())
	r.temps.Store(key, sp)
	return key, func() { r.temps.Delete(key) }, nil
}

func (r *Registry) AllocResult(ret *Descriptor) (unsafe.Pointer, func(), error) {
	rt, err := r.goType(ret)
	if err != nil {
		return nil, nil, err
	}
	pv := reflect.New(rt)
	key := unsafe.Pointer(pv.Pointer())
	r.temps.Store(key, pv)
	return key, func() { r.temps.Delete(key) }, nil
}

func (r *Registry) ValueSize(d *Descriptor) (uintptr, error) {
	rt, err := r.goType(d)
	if err != nil {
		return 0, err
	}
	return rt.Size(), nil
}

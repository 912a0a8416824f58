//go:build linux && cgo
// +build linux,cgo

// ffi.go: the shared-library backend. All cgo in the package lives here.
//
// Library opens a glaze-enabled shared object and serves the Native interface
// by resolving glz_* entry points on first use. Symbols are cached in an
// internally synchronized table keyed by name; concurrent resolution from
// multiple goroutines is safe. Calls go through static C shims that cast a
// cached void* to the right function-pointer type — cgo cannot call a raw
// pointer directly.
//
// Pointer discipline per the cgo rules: argument vectors handed to
// call_member_function_with_type are C allocations, and scalar arguments are
// copied into C scratch before the call so no Go pointer is ever stored in C
// memory.
package glaze

/*
#define _GNU_SOURCE
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
#include <string.h>
#include <stdint.h>

static void* gi_dlopen(const char* path) {
	return dlopen(path, RTLD_LAZY | RTLD_LOCAL);
}
static const char* gi_dlerror(void) {
	return dlerror();
}
static int gi_dlclose(void* h) {
	return dlclose(h);
}
// Clear dlerror, call dlsym, and return the error (if any) alongside the symbol.
static void* gi_dlsym_clear(void* h, const char* name, char** err) {
	dlerror(); // clear
	void* p = dlsym(h, name);
	char* e = dlerror();
	if (e) { if (err) *err = e; return NULL; }
	if (err) *err = NULL;
	return p;
}

// One typedef + one static caller per entry-point signature. The casts are
// centralized here so the Go side only ever deals in void*.
typedef void*       (*gi_ptr_from_str_fn)(const char*);
typedef const char* (*gi_str_from_str_fn)(const char*);
typedef void*       (*gi_ptr_from_u64_fn)(uint64_t);
typedef void        (*gi_destroy_instance_fn)(const char*, void*);
typedef void*       (*gi_getter_fn)(void*);
typedef void        (*gi_setter_fn)(void*, const void*);
typedef void*       (*gi_call_member_fn)(void*, const char*, void*, void**, void*);
typedef void        (*gi_vector_view_fn)(void*, const void*, void*);
typedef void        (*gi_vector_resize_fn)(void*, const void*, size_t);
typedef void        (*gi_vector_push_fn)(void*, const void*, const void*);
typedef const char* (*gi_string_c_str_fn)(void*);
typedef size_t      (*gi_string_size_fn)(void*);
typedef void        (*gi_string_set_fn)(void*, const char*, size_t);
typedef int         (*gi_flag_with_desc_fn)(void*, const void*);
typedef void*       (*gi_ptr_with_desc_fn)(void*, const void*);
typedef void        (*gi_set_with_desc_fn)(void*, const void*, const void*);
typedef void        (*gi_void_with_desc_fn)(void*, const void*);
typedef uint64_t    (*gi_u64_with_desc_fn)(void*, const void*);
typedef void        (*gi_variant_set_fn)(void*, const void*, uint64_t, const void*);
typedef int         (*gi_future_flag_fn)(void*);
typedef void        (*gi_future_wait_fn)(void*);
typedef void        (*gi_future_get_fn)(void*, void*);
typedef void*       (*gi_future_type_fn)(void*);
typedef void*       (*gi_create_string_fn)(const char*, size_t);
typedef void        (*gi_destroy_fn)(void*);
typedef void*       (*gi_create_with_desc_fn)(const void*);
typedef void        (*gi_destroy_with_desc_fn)(void*, const void*);

static void* gi_ptr_from_str(void* fn, const char* s) {
	return ((gi_ptr_from_str_fn)fn)(s);
}
static const char* gi_str_from_str(void* fn, const char* s) {
	return ((gi_str_from_str_fn)fn)(s);
}
static void* gi_ptr_from_u64(void* fn, uint64_t h) {
	return ((gi_ptr_from_u64_fn)fn)(h);
}
static void gi_destroy_instance(void* fn, const char* t, void* p) {
	((gi_destroy_instance_fn)fn)(t, p);
}
static void* gi_call_getter(void* fn, void* obj) {
	return ((gi_getter_fn)fn)(obj);
}
static void gi_call_setter(void* fn, void* obj, const void* src) {
	((gi_setter_fn)fn)(obj, src);
}
static void* gi_call_member(void* fn, void* obj, const char* t, void* m, void** args, void* ret) {
	return ((gi_call_member_fn)fn)(obj, t, m, args, ret);
}
static void gi_vector_view(void* fn, void* v, const void* d, void* out) {
	((gi_vector_view_fn)fn)(v, d, out);
}
static void gi_vector_resize(void* fn, void* v, const void* d, size_t n) {
	((gi_vector_resize_fn)fn)(v, d, n);
}
static void gi_vector_push(void* fn, void* v, const void* d, const void* src) {
	((gi_vector_push_fn)fn)(v, d, src);
}
static const char* gi_string_c_str(void* fn, void* s) {
	return ((gi_string_c_str_fn)fn)(s);
}
static size_t gi_string_size(void* fn, void* s) {
	return ((gi_string_size_fn)fn)(s);
}
static void gi_string_set(void* fn, void* s, const char* data, size_t n) {
	((gi_string_set_fn)fn)(s, data, n);
}
static int gi_flag_with_desc(void* fn, void* p, const void* d) {
	return ((gi_flag_with_desc_fn)fn)(p, d);
}
static void* gi_ptr_with_desc(void* fn, void* p, const void* d) {
	return ((gi_ptr_with_desc_fn)fn)(p, d);
}
static void gi_set_with_desc(void* fn, void* p, const void* d, const void* src) {
	((gi_set_with_desc_fn)fn)(p, d, src);
}
static void gi_void_with_desc(void* fn, void* p, const void* d) {
	((gi_void_with_desc_fn)fn)(p, d);
}
static uint64_t gi_u64_with_desc(void* fn, void* p, const void* d) {
	return ((gi_u64_with_desc_fn)fn)(p, d);
}
static void gi_variant_set(void* fn, void* p, const void* d, uint64_t i, const void* src) {
	((gi_variant_set_fn)fn)(p, d, i, src);
}
static int gi_future_flag(void* fn, void* f) {
	return ((gi_future_flag_fn)fn)(f);
}
static void gi_future_wait(void* fn, void* f) {
	((gi_future_wait_fn)fn)(f);
}
static void gi_future_get(void* fn, void* f, void* dst) {
	((gi_future_get_fn)fn)(f, dst);
}
static void* gi_future_type(void* fn, void* f) {
	return ((gi_future_type_fn)fn)(f);
}
static void* gi_create_string(void* fn, const char* data, size_t n) {
	return ((gi_create_string_fn)fn)(data, n);
}
static void gi_destroy(void* fn, void* p) {
	((gi_destroy_fn)fn)(p);
}
static void* gi_create_with_desc(void* fn, const void* d) {
	return ((gi_create_with_desc_fn)fn)(d);
}
static void gi_destroy_with_desc(void* fn, void* p, const void* d) {
	((gi_destroy_with_desc_fn)fn)(p, d);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Library is the Native implementation backed by a dlopen'd shared object.
type Library struct {
	path   string
	handle unsafe.Pointer
	closed atomic.Bool

	mu   sync.RWMutex
	syms map[string]unsafe.Pointer
}

// Open loads a glaze-enabled shared library and verifies the record layouts
// before trusting any data from it.
func Open(path string) (NativeCloser, error) {
	if err := verifyABISizes(); err != nil {
		return nil, err
	}
	cs := C.CString(path)
	defer C.free(unsafe.Pointer(cs))
	h := C.gi_dlopen(cs)
	if h == nil {
		return nil, fmt.Errorf("dlopen(%q) failed: %s", path, dlerr())
	}
	return &Library{
		path:   path,
		handle: h,
		syms:   make(map[string]unsafe.Pointer),
	}, nil
}

func dlerr() string {
	if e := C.gi_dlerror(); e != nil {
		return C.GoString(e)
	}
	return "unknown error"
}

// Close releases the library handle. Wrappers over its objects must not be
// used afterwards.
func (l *Library) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	if rc := C.gi_dlclose(l.handle); rc != 0 {
		return fmt.Errorf("dlclose(%q) failed: %s", l.path, dlerr())
	}
	return nil
}

// sym resolves an entry point, consulting the cache first. The cache is the
// shared mutable table the protocol requires to be internally synchronized.
func (l *Library) sym(name string) (unsafe.Pointer, error) {
	if l.closed.Load() {
		return nil, fmt.Errorf("%w: library %q is closed", ErrInvalidHandle, l.path)
	}
	l.mu.RLock()
	p, ok := l.syms[name]
	l.mu.RUnlock()
	if ok {
		return p, nil
	}
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	var cerr *C.char
	p = C.gi_dlsym_clear(l.handle, cs, &cerr)
	if p == nil {
		return nil, fmt.Errorf("dlsym(%q) failed: %s", name, C.GoString(cerr))
	}
	l.mu.Lock()
	l.syms[name] = p
	l.mu.Unlock()
	return p, nil
}

func withCStr(s string, fn func(*C.char)) {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	fn(cs)
}

func (l *Library) CreateInstance(typeName string) (unsafe.Pointer, error) {
	fn, err := l.sym("glz_create_instance")
	if err != nil {
		return nil, err
	}
	var p unsafe.Pointer
	withCStr(typeName, func(cs *C.char) {
		p = C.gi_ptr_from_str(fn, cs)
	})
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return p, nil
}

func (l *Library) DestroyInstance(typeName string, obj unsafe.Pointer) error {
	fn, err := l.sym("glz_destroy_instance")
	if err != nil {
		return err
	}
	withCStr(typeName, func(cs *C.char) {
		C.gi_destroy_instance(fn, cs, obj)
	})
	return nil
}

func (l *Library) TypeInfo(typeName string) (*TypeInfo, error) {
	fn, err := l.sym("glz_get_type_info")
	if err != nil {
		return nil, err
	}
	var p unsafe.Pointer
	withCStr(typeName, func(cs *C.char) {
		p = C.gi_ptr_from_str(fn, cs)
	})
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return decodeTypeInfo((*rawTypeInfo)(p))
}

func (l *Library) TypeInfoByHash(hash uint64) (*TypeInfo, error) {
	fn, err := l.sym("glz_get_type_info_by_hash")
	if err != nil {
		return nil, err
	}
	p := C.gi_ptr_from_u64(fn, C.uint64_t(hash))
	if p == nil {
		return nil, fmt.Errorf("%w: hash %#x", ErrUnknownType, hash)
	}
	return decodeTypeInfo((*rawTypeInfo)(p))
}

func (l *Library) Instance(name string) (unsafe.Pointer, error) {
	fn, err := l.sym("glz_get_instance")
	if err != nil {
		return nil, err
	}
	var p unsafe.Pointer
	withCStr(name, func(cs *C.char) {
		p = C.gi_ptr_from_str(fn, cs)
	})
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, name)
	}
	return p, nil
}

func (l *Library) InstanceType(name string) (string, error) {
	fn, err := l.sym("glz_get_instance_type")
	if err != nil {
		return "", err
	}
	var t *C.char
	withCStr(name, func(cs *C.char) {
		t = C.gi_str_from_str(fn, cs)
	})
	if t == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownInstance, name)
	}
	return C.GoString(t), nil
}

func (l *Library) GetMember(obj unsafe.Pointer, m *Member) (unsafe.Pointer, error) {
	if m.raw == nil {
		return nil, fmt.Errorf("%w: member %q belongs to another backend", ErrInvalidHandle, m.Name)
	}
	if m.Kind == FunctionMember || m.raw.getter == nil {
		return nil, fmt.Errorf("member %q has no getter", m.Name)
	}
	p := C.gi_call_getter(m.raw.getter, obj)
	if p == nil {
		return nil, fmt.Errorf("%w: getter for %q returned null", ErrInvalidHandle, m.Name)
	}
	return p, nil
}

func (l *Library) SetMember(obj unsafe.Pointer, m *Member, src unsafe.Pointer) error {
	if m.raw == nil {
		return fmt.Errorf("%w: member %q belongs to another backend", ErrInvalidHandle, m.Name)
	}
	if m.raw.setter == nil {
		return fmt.Errorf("%w: %s", ErrReadOnly, m.Name)
	}
	C.gi_call_setter(m.raw.setter, obj, src)
	return nil
}

// CallMember invokes the native trampoline. The wire ABI reports failure as
// a null result pointer; with a declared non-void return that null is an
// error here, and for void functions it is the normal outcome.
func (l *Library) CallMember(obj unsafe.Pointer, typeName string, m *Member, args []unsafe.Pointer, ret unsafe.Pointer) (bool, error) {
	if m.raw == nil {
		return false, fmt.Errorf("%w: member %q belongs to another backend", ErrInvalidHandle, m.Name)
	}
	fn, err := l.sym("glz_call_member_function_with_type")
	if err != nil {
		return false, err
	}
	dec, err := wrapDesc(m.raw.typ).Decode()
	if err != nil {
		return false, err
	}
	sig, ok := dec.(FunctionDesc)
	if !ok {
		return false, fmt.Errorf("member %q is not a function", m.Name)
	}

	argv, freeArgs, err := packArgs(sig.Params, args)
	if err != nil {
		return false, err
	}
	defer freeArgs()

	var out unsafe.Pointer
	withCStr(typeName, func(cs *C.char) {
		out = C.gi_call_member(fn, obj, cs, unsafe.Pointer(m.raw), (*unsafe.Pointer)(argv), ret)
	})
	if sig.Return == nil {
		return false, nil
	}
	if out == nil {
		return false, fmt.Errorf("native call %s.%s failed", typeName, m.Name)
	}
	return true, nil
}

// packArgs builds the C argument vector. Scalar and complex arguments are
// copied into C scratch (their marshalling buffers are Go allocations, which
// must not be stored in C memory); everything else is already a native
// pointer and is stored as-is.
func packArgs(params []*Descriptor, args []unsafe.Pointer) (unsafe.Pointer, func(), error) {
	if len(args) == 0 {
		return nil, func() {}, nil
	}
	argv := C.malloc(C.size_t(len(args)) * C.size_t(unsafe.Sizeof(uintptr(0))))
	var scratch []unsafe.Pointer
	free := func() {
		for _, p := range scratch {
			C.free(p)
		}
		C.free(argv)
	}
	slots := unsafe.Slice((*unsafe.Pointer)(argv), len(args))
	for i, p := range args {
		k, err := params[i].Kind()
		if err != nil {
			free()
			return nil, nil, err
		}
		switch k {
		case KindPrimitive, KindComplex:
			w, err := scalarWidth(params[i])
			if err != nil {
				free()
				return nil, nil, err
			}
			buf := C.malloc(16)
			C.memcpy(buf, p, C.size_t(w))
			scratch = append(scratch, buf)
			slots[i] = buf
		default:
			slots[i] = p
		}
	}
	return argv, free, nil
}

// vectorViewSym maps fast-path element kinds to their specialized view entry
// points; anything else goes through the generic view.
func vectorViewSym(elem *Descriptor) string {
	dec, err := elem.Decode()
	if err != nil {
		return "glz_vector_view"
	}
	switch t := dec.(type) {
	case PrimitiveDesc:
		switch t.Prim {
		case F32:
			return "glz_vector_view_f32"
		case F64:
			return "glz_vector_view_f64"
		case I32:
			return "glz_vector_view_i32"
		}
	case ComplexDesc:
		if t.Prim == F32 {
			return "glz_vector_view_c64"
		}
		return "glz_vector_view_c128"
	}
	return "glz_vector_view"
}

func (l *Library) VectorView(vec unsafe.Pointer, elem *Descriptor) (VectorView, error) {
	fn, err := l.sym(vectorViewSym(elem))
	if err != nil {
		// Older libraries predate the specialized views.
		fn, err = l.sym("glz_vector_view")
		if err != nil {
			return VectorView{}, err
		}
	}
	var raw rawVectorView
	C.gi_vector_view(fn, vec, unsafe.Pointer(elem.raw), unsafe.Pointer(&raw))
	if err := checkNativeCount(uint64(raw.size)); err != nil {
		return VectorView{}, err
	}
	return VectorView{Data: raw.data, Len: int(raw.size), Cap: int(raw.capacity)}, nil
}

func (l *Library) VectorResize(vec unsafe.Pointer, elem *Descriptor, n int) error {
	fn, err := l.sym("glz_vector_resize")
	if err != nil {
		return err
	}
	C.gi_vector_resize(fn, vec, unsafe.Pointer(elem.raw), C.size_t(n))
	return nil
}

func (l *Library) VectorPush(vec unsafe.Pointer, elem *Descriptor, src unsafe.Pointer) error {
	fn, err := l.sym("glz_vector_push_back")
	if err != nil {
		return err
	}
	C.gi_vector_push(fn, vec, unsafe.Pointer(elem.raw), src)
	return nil
}

func (l *Library) StringBytes(s unsafe.Pointer) (unsafe.Pointer, int, error) {
	cstr, err := l.sym("glz_string_c_str")
	if err != nil {
		return nil, 0, err
	}
	size, err := l.sym("glz_string_size")
	if err != nil {
		return nil, 0, err
	}
	n := uint64(C.gi_string_size(size, s))
	if err := checkNativeCount(n); err != nil {
		return nil, 0, err
	}
	data := unsafe.Pointer(C.gi_string_c_str(cstr, s))
	if data == nil && n > 0 {
		return nil, 0, fmt.Errorf("%w: null string data with size %d", ErrInvalidHandle, n)
	}
	return data, int(n), nil
}

func (l *Library) StringSet(s unsafe.Pointer, v string) error {
	fn, err := l.sym("glz_string_set")
	if err != nil {
		return err
	}
	withCStr(v, func(cs *C.char) {
		C.gi_string_set(fn, s, cs, C.size_t(len(v)))
	})
	return nil
}

func (l *Library) OptionalHasValue(opt unsafe.Pointer, elem *Descriptor) (bool, error) {
	fn, err := l.sym("glz_optional_has_value")
	if err != nil {
		return false, err
	}
	return C.gi_flag_with_desc(fn, opt, unsafe.Pointer(elem.raw)) != 0, nil
}

func (l *Library) OptionalValue(opt unsafe.Pointer, elem *Descriptor) (unsafe.Pointer, error) {
	fn, err := l.sym("glz_optional_get_value")
	if err != nil {
		return nil, err
	}
	p := C.gi_ptr_with_desc(fn, opt, unsafe.Pointer(elem.raw))
	if p == nil {
		return nil, fmt.Errorf("%w: disengaged optional", ErrInvalidHandle)
	}
	return p, nil
}

func (l *Library) OptionalSet(opt unsafe.Pointer, elem *Descriptor, src unsafe.Pointer) error {
	fn, err := l.sym("glz_optional_set_value")
	if err != nil {
		return err
	}
	C.gi_set_with_desc(fn, opt, unsafe.Pointer(elem.raw), src)
	return nil
}

func (l *Library) OptionalReset(opt unsafe.Pointer, elem *Descriptor) error {
	fn, err := l.sym("glz_optional_reset")
	if err != nil {
		return err
	}
	C.gi_void_with_desc(fn, opt, unsafe.Pointer(elem.raw))
	return nil
}

func (l *Library) VariantIndex(v unsafe.Pointer, d *Descriptor) (int, error) {
	fn, err := l.sym("glz_variant_index")
	if err != nil {
		return 0, err
	}
	idx := uint64(C.gi_u64_with_desc(fn, v, unsafe.Pointer(d.raw)))
	if err := checkNativeCount(idx); err != nil {
		return 0, err
	}
	return int(idx), nil
}

func (l *Library) VariantValue(v unsafe.Pointer, d *Descriptor) (unsafe.Pointer, error) {
	fn, err := l.sym("glz_variant_get")
	if err != nil {
		return nil, err
	}
	p := C.gi_ptr_with_desc(fn, v, unsafe.Pointer(d.raw))
	if p == nil {
		return nil, fmt.Errorf("%w: variant value", ErrInvalidHandle)
	}
	return p, nil
}

func (l *Library) VariantSet(v unsafe.Pointer, d *Descriptor, alt int, src unsafe.Pointer) error {
	fn, err := l.sym("glz_variant_set")
	if err != nil {
		return err
	}
	C.gi_variant_set(fn, v, unsafe.Pointer(d.raw), C.uint64_t(alt), src)
	return nil
}

func (l *Library) FutureValid(f unsafe.Pointer) (bool, error) {
	fn, err := l.sym("glz_shared_future_valid")
	if err != nil {
		return false, err
	}
	return C.gi_future_flag(fn, f) != 0, nil
}

func (l *Library) FutureReady(f unsafe.Pointer) (bool, error) {
	fn, err := l.sym("glz_shared_future_is_ready")
	if err != nil {
		return false, err
	}
	return C.gi_future_flag(fn, f) != 0, nil
}

func (l *Library) FutureWait(f unsafe.Pointer) error {
	fn, err := l.sym("glz_shared_future_wait")
	if err != nil {
		return err
	}
	C.gi_future_wait(fn, f)
	return nil
}

func (l *Library) FutureValue(f unsafe.Pointer, dst unsafe.Pointer) error {
	fn, err := l.sym("glz_shared_future_get")
	if err != nil {
		return err
	}
	C.gi_future_get(fn, f, dst)
	return nil
}

func (l *Library) FutureValueType(f unsafe.Pointer) (*Descriptor, error) {
	fn, err := l.sym("glz_shared_future_get_value_type")
	if err != nil {
		return nil, err
	}
	p := C.gi_future_type(fn, f)
	if p == nil {
		return nil, fmt.Errorf("%w: null future value descriptor", ErrInvalidHandle)
	}
	return wrapDesc((*rawDescriptor)(p)), nil
}

func (l *Library) NewTempString(v string) (unsafe.Pointer, func(), error) {
	create, err := l.sym("glz_create_string")
	if err != nil {
		return nil, nil, err
	}
	destroy, err := l.sym("glz_destroy_string")
	if err != nil {
		return nil, nil, err
	}
	var p unsafe.Pointer
	withCStr(v, func(cs *C.char) {
		p = C.gi_create_string(create, cs, C.size_t(len(v)))
	})
	if p == nil {
		return nil, nil, fmt.Errorf("%w: create_string returned null", ErrInvalidHandle)
	}
	return p, func() { C.gi_destroy(destroy, p) }, nil
}

func (l *Library) NewTempVector(elem *Descriptor) (unsafe.Pointer, func(), error) {
	create, err := l.sym("glz_create_vector")
	if err != nil {
		return nil, nil, err
	}
	destroy, err := l.sym("glz_destroy_vector")
	if err != nil {
		return nil, nil, err
	}
	p := C.gi_create_with_desc(create, unsafe.Pointer(elem.raw))
	if p == nil {
		return nil, nil, fmt.Errorf("%w: create_vector returned null", ErrInvalidHandle)
	}
	d := elem.raw
	return p, func() { C.gi_destroy_with_desc(destroy, p, unsafe.Pointer(d)) }, nil
}

// AllocResult hands the trampoline a zeroed C scratch buffer to placement-
// construct its return value into. The fixed size covers every non-trivial
// return the protocol produces; struct returns larger than that get their
// exact size.
func (l *Library) AllocResult(ret *Descriptor) (unsafe.Pointer, func(), error) {
	n := uintptr(resultBufferSize)
	if sz, err := l.ValueSize(ret); err == nil && sz > n {
		n = sz
	}
	p := C.calloc(1, C.size_t(n))
	if p == nil {
		return nil, nil, fmt.Errorf("result buffer allocation failed (%d bytes)", n)
	}
	return p, func() { C.free(p) }, nil
}

// ValueSize is computed host-side from the descriptor: primitive and complex
// widths are fixed by kind, struct sizes come from the native type info. No
// other kind has a portable by-value size.
func (l *Library) ValueSize(d *Descriptor) (uintptr, error) {
	dec, err := d.Decode()
	if err != nil {
		return 0, err
	}
	switch t := dec.(type) {
	case PrimitiveDesc, ComplexDesc:
		return scalarWidth(d)
	case StructDesc:
		info, err := resolveStructInfo(l, t)
		if err != nil {
			return 0, err
		}
		if err := checkNativeCount(uint64(info.Size)); err != nil {
			return 0, err
		}
		return info.Size, nil
	}
	return 0, fmt.Errorf("%w: sizing %s values", ErrNotImplemented, dec.descKind())
}

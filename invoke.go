// invoke.go: member-function calls across the boundary.
//
// The host side validates arity, converts every argument to its exact native
// parameter type, and calls through the backend's trampoline. The trampoline
// contract is a tagged result — has-result, void, or failed — never an
// overloaded null. Temporaries created for converted arguments are destroyed
// after the call, matched by argument type: string/vector temporaries get
// their destructors, pass-through pointers (struct, variant, live vectors)
// are left alone.
package glaze

import (
	"fmt"
	"runtime"
	"unsafe"
)

// callStatus tags the outcome of a native trampoline invocation.
type callStatus uint8

const (
	callOK callStatus = iota
	callVoid
	callFailed
)

// callResult is the tagged trampoline outcome used by the in-process
// invokers; the Native interface surfaces it as (hasResult bool, err error).
type callResult struct {
	status callStatus
	err    error
}

// MemberFunction is a bound callable: an object pointer plus a function
// member record. Obtained from Struct.Get on a function member.
type MemberFunction struct {
	nat    Native
	obj    *Struct
	member *Member
	Name   string
}

// Arity returns the declared parameter count.
func (f *MemberFunction) Arity() (int, error) {
	fd, err := f.signature()
	if err != nil {
		return 0, err
	}
	return len(fd.Params), nil
}

func (f *MemberFunction) signature() (FunctionDesc, error) {
	dec, err := f.member.Type.Decode()
	if err != nil {
		return FunctionDesc{}, err
	}
	fd, ok := dec.(FunctionDesc)
	if !ok {
		return FunctionDesc{}, fmt.Errorf("glaze: internal: member %s is not a function", f.Name)
	}
	return fd, nil
}

// Call invokes the member function. The argument count must match the
// declared arity exactly; a mismatch is reported before any native call
// executes.
func (f *MemberFunction) Call(args ...any) (any, error) {
	if err := f.obj.life.check(); err != nil {
		return nil, err
	}
	fd, err := f.signature()
	if err != nil {
		return nil, err
	}
	qualified := f.obj.info.Name + "." + f.Name
	if len(args) != len(fd.Params) {
		return nil, &ArityError{Function: qualified, Want: len(fd.Params), Got: len(args)}
	}

	argPtrs := make([]unsafe.Pointer, len(args))
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()
	for i, a := range args {
		p, cleanup, err := fromHost(f.nat, fd.Params[i], a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", qualified, i+1, err)
		}
		argPtrs[i] = p
		cleanups = append(cleanups, cleanup)
	}

	var ret unsafe.Pointer
	var dispose func()
	if fd.Return != nil {
		ret, dispose, err = f.nat.AllocResult(fd.Return)
		if err != nil {
			return nil, err
		}
	}
	hasResult, err := f.nat.CallMember(f.obj.ptr, f.obj.info.Name, f.member, argPtrs, ret)
	if err != nil {
		if dispose != nil {
			dispose()
		}
		return nil, fmt.Errorf("%s: %w", qualified, err)
	}
	if fd.Return == nil || !hasResult {
		if dispose != nil {
			dispose()
		}
		return nil, nil
	}
	return resultToHost(f.nat, fd.Return, ret, dispose)
}

// resultToHost converts a filled result buffer into a host value. Primitive
// and complex results are copied out and the buffer disposed immediately;
// non-trivial results keep the buffer and become owned wrappers whose
// collection disposes it.
func resultToHost(nat Native, d *Descriptor, buf unsafe.Pointer, dispose func()) (any, error) {
	k, err := d.Kind()
	if err != nil {
		dispose()
		return nil, err
	}
	switch k {
	case KindPrimitive, KindComplex:
		v, err := toHost(nat, d, buf, nil, nil)
		dispose()
		return v, err
	}
	life := newLiveness()
	v, err := toHost(nat, d, buf, life, nil)
	if err != nil {
		dispose()
		return nil, err
	}
	dtorInstall(buf, func() {
		life.kill()
		dispose()
	})
	runtime.SetFinalizer(v, func(any) { dtorRunOnce(buf) })
	return v, nil
}

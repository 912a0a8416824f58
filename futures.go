// futures.go: wrapper over a native shared future.
//
// The shared future is the one asynchronous surface in the protocol:
// IsReady polls without blocking, Wait blocks the calling thread until the
// native computation completes, Get blocks if necessary and extracts the
// value through the same descriptor-driven marshalling as any other value.
// There is no timeout parameter; callers needing bounded waits poll IsReady
// themselves.
package glaze

import (
	"fmt"
	"unsafe"
)

// SharedFutureRef wraps a native shared future.
type SharedFutureRef struct {
	nat  Native
	ptr  unsafe.Pointer
	life *liveness
	root any // owning root wrapper; keeps the root reachable while this view is
}

// Valid reports whether the future is attached to a computation.
func (f *SharedFutureRef) Valid() (bool, error) {
	if err := f.life.check(); err != nil {
		return false, err
	}
	return f.nat.FutureValid(f.ptr)
}

// IsReady polls the completion flag without blocking.
func (f *SharedFutureRef) IsReady() (bool, error) {
	if err := f.life.check(); err != nil {
		return false, err
	}
	return f.nat.FutureReady(f.ptr)
}

// Wait blocks until the native computation completes.
func (f *SharedFutureRef) Wait() error {
	valid, err := f.Valid()
	if err != nil {
		return err
	}
	if !valid {
		return ErrInvalidFuture
	}
	return f.nat.FutureWait(f.ptr)
}

// Get blocks until ready, then extracts the value per the future's value
// descriptor. An invalid future or a failed extraction is an error at this
// call site, never a silent null.
func (f *SharedFutureRef) Get() (any, error) {
	if err := f.Wait(); err != nil {
		return nil, err
	}
	d, err := f.nat.FutureValueType(f.ptr)
	if err != nil {
		return nil, err
	}
	buf, dispose, err := f.nat.AllocResult(d)
	if err != nil {
		return nil, err
	}
	if err := f.nat.FutureValue(f.ptr, buf); err != nil {
		dispose()
		return nil, fmt.Errorf("shared future value extraction: %w", err)
	}
	return resultToHost(f.nat, d, buf, dispose)
}

// values.go: Go value types the in-process registry maps onto the protocol's
// non-struct shapes.
//
// A registered Go struct may declare fields of these types and they travel
// through the same descriptor kinds a native library would use: Optional[T]
// becomes an optional descriptor, Union2/3/4 become variants with the type
// parameters as alternatives, *Future[T] becomes a shared future. Layout of
// these structs is part of the in-process backend's contract with
// registry.go (field order matters); do not reorder fields.
package glaze

import (
	"reflect"
	"unsafe"
)

// Optional is a value that may be absent, the in-process analog of a native
// optional.
type Optional[T any] struct {
	has bool
	val T
}

// Some returns an engaged optional.
func Some[T any](v T) Optional[T] { return Optional[T]{has: true, val: v} }

// None returns a disengaged optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// HasValue reports whether the optional is engaged.
func (o Optional[T]) HasValue() bool { return o.has }

// Value returns the contained value and whether one is present.
func (o Optional[T]) Value() (T, bool) { return o.val, o.has }

// Set engages the optional with v.
func (o *Optional[T]) Set(v T) { o.has, o.val = true, v }

// Reset disengages the optional.
func (o *Optional[T]) Reset() { *o = Optional[T]{} }

// Union2 holds one of two alternatives, selected by a 0-based index.
// The zero value holds a zero A at index 0.
type Union2[A, B any] struct {
	idx int32
	a   A
	b   B
}

// Index returns the 0-based active alternative.
func (u *Union2[A, B]) Index() int { return int(u.idx) }

func (u *Union2[A, B]) SetA(v A) { u.idx, u.a = 0, v }
func (u *Union2[A, B]) SetB(v B) { u.idx, u.b = 1, v }

func (u *Union2[A, B]) A() (A, bool) { return u.a, u.idx == 0 }
func (u *Union2[A, B]) B() (B, bool) { return u.b, u.idx == 1 }

// Union3 holds one of three alternatives, selected by a 0-based index.
type Union3[A, B, C any] struct {
	idx int32
	a   A
	b   B
	c   C
}

func (u *Union3[A, B, C]) Index() int { return int(u.idx) }

func (u *Union3[A, B, C]) SetA(v A) { u.idx, u.a = 0, v }
func (u *Union3[A, B, C]) SetB(v B) { u.idx, u.b = 1, v }
func (u *Union3[A, B, C]) SetC(v C) { u.idx, u.c = 2, v }

func (u *Union3[A, B, C]) A() (A, bool) { return u.a, u.idx == 0 }
func (u *Union3[A, B, C]) B() (B, bool) { return u.b, u.idx == 1 }
func (u *Union3[A, B, C]) C() (C, bool) { return u.c, u.idx == 2 }

// Union4 holds one of four alternatives, selected by a 0-based index.
type Union4[A, B, C, D any] struct {
	idx int32
	a   A
	b   B
	c   C
	d   D
}

func (u *Union4[A, B, C, D]) Index() int { return int(u.idx) }

func (u *Union4[A, B, C, D]) SetA(v A) { u.idx, u.a = 0, v }
func (u *Union4[A, B, C, D]) SetB(v B) { u.idx, u.b = 1, v }
func (u *Union4[A, B, C, D]) SetC(v C) { u.idx, u.c = 2, v }
func (u *Union4[A, B, C, D]) SetD(v D) { u.idx, u.d = 3, v }

func (u *Union4[A, B, C, D]) A() (A, bool) { return u.a, u.idx == 0 }
func (u *Union4[A, B, C, D]) B() (B, bool) { return u.b, u.idx == 1 }
func (u *Union4[A, B, C, D]) C() (C, bool) { return u.c, u.idx == 2 }
func (u *Union4[A, B, C, D]) D() (D, bool) { return u.d, u.idx == 3 }

// futureCore is the type-erased head of every Future[T]; the in-process
// backend reaches a future only through this header.
type futureCore struct {
	done  chan struct{}
	vtype reflect.Type
	value func() unsafe.Pointer
}

// Future is a handle to an asynchronous computation, the in-process analog
// of a native shared future. A nil or zero Future is invalid.
type Future[T any] struct {
	core futureCore
	val  T
}

// Async starts fn on its own goroutine and returns the future that will
// hold its result.
func Async[T any](fn func() T) *Future[T] {
	f := &Future[T]{}
	f.core = futureCore{
		done:  make(chan struct{}),
		vtype: reflect.TypeFor[T](),
		value: func() unsafe.Pointer { return unsafe.Pointer(&f.val) },
	}
	go func() {
		f.val = fn()
		close(f.core.done)
	}()
	return f
}

// Completed returns an already-resolved future holding v.
func Completed[T any](v T) *Future[T] {
	f := &Future[T]{val: v}
	done := make(chan struct{})
	close(done)
	f.core = futureCore{
		done:  done,
		vtype: reflect.TypeFor[T](),
		value: func() unsafe.Pointer { return unsafe.Pointer(&f.val) },
	}
	return f
}

// Wait blocks until the computation completes.
func (f *Future[T]) Wait() { <-f.core.done }

// Value waits and returns the result.
func (f *Future[T]) Value() T {
	f.Wait()
	return f.val
}

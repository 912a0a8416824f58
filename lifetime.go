// lifetime.go: ownership and liveness across the two memory models.
//
// Owned wrappers register a finalizer that runs the native destructor when
// the host garbage collector reclaims them; a process-wide one-shot registry
// guarantees the destructor runs at most once even when an explicit Destroy
// races the finalizer. Borrowed wrappers never destruct — their validity is
// bounded by the owning root, tracked with a shared liveness token that every
// raw access checks, failing fast instead of reading freed memory.
package glaze

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// liveness is the arena token shared by an owning root and everything
// borrowed from it.
type liveness struct {
	dead atomic.Bool
}

func newLiveness() *liveness { return &liveness{} }

func (l *liveness) check() error {
	if l != nil && l.dead.Load() {
		return ErrDeadObject
	}
	return nil
}

func (l *liveness) kill() {
	if l != nil {
		l.dead.Store(true)
	}
}

// ---------------- One-shot destructor registry --------------------

type dtorEntry struct {
	once sync.Once
	run  func()
}

var dtorReg sync.Map // raw pointer -> *dtorEntry

func dtorInstall(p unsafe.Pointer, run func()) {
	if p != nil && run != nil {
		dtorReg.Store(p, &dtorEntry{run: run})
	}
}

func dtorDetach(p unsafe.Pointer) {
	if p != nil {
		dtorReg.Delete(p)
	}
}

// dtorRunOnce fires the registered destructor for p, exactly once. Reports
// whether an entry existed.
func dtorRunOnce(p unsafe.Pointer) bool {
	if p == nil {
		return false
	}
	v, ok := dtorReg.Load(p)
	if !ok {
		return false
	}
	e := v.(*dtorEntry)
	e.once.Do(e.run)
	dtorReg.Delete(p)
	return true
}

// own wires wrapper w (holding native storage at p) to destructor run: the
// destructor is installed in the one-shot registry and a GC finalizer on the
// wrapper triggers it. Nothing installed here may reference w itself — a
// wrapper reachable from its own finalizer state is never collected, so the
// destructor would never fire. The explicit-Destroy path is disown.
func own[T any](w *T, p unsafe.Pointer, life *liveness, run func()) {
	dtorInstall(p, func() {
		life.kill()
		run()
	})
	runtime.SetFinalizer(w, func(*T) { dtorRunOnce(p) })
}

// disown runs the destructor for w now and clears its finalizer.
func disown[T any](w *T, p unsafe.Pointer) {
	runtime.SetFinalizer(w, nil)
	dtorRunOnce(p)
}

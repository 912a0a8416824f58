package glaze

import (
	"runtime"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func Test_Destroy_MarksWrapperDead(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)
	require.True(t, p.Owned())

	require.NoError(t, p.Destroy())
	_, err = p.Get("Age")
	require.ErrorIs(t, err, ErrDeadObject)
	require.ErrorIs(t, p.Set("Age", int32(1)), ErrDeadObject)
	require.ErrorIs(t, p.Destroy(), ErrDeadObject)
}

func Test_Destroy_KillsBorrowedChildren(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)

	av, err := p.Get("Address")
	require.NoError(t, err)
	addr := av.(*Struct)
	nv, err := p.Get("Name")
	require.NoError(t, err)
	name := nv.(*StringRef)
	sv, err := p.Get("Scores")
	require.NoError(t, err)
	scores := sv.(*VectorOf[int32])

	require.NoError(t, p.Destroy())

	_, err = addr.Get("Zipcode")
	require.ErrorIs(t, err, ErrDeadObject)
	_, err = name.Get()
	require.ErrorIs(t, err, ErrDeadObject)
	_, err = scores.Len()
	require.ErrorIs(t, err, ErrDeadObject)
}

func Test_Finalizer_DestroysUnreachableOwned(t *testing.T) {
	r := newTestRegistry(t)
	life := func() *liveness {
		p, err := New(r, "Person")
		require.NoError(t, err)
		return p.life
	}()

	deadline := time.Now().Add(5 * time.Second)
	for life.check() == nil {
		if time.Now().After(deadline) {
			t.Fatal("native destructor did not run after the wrapper became unreachable")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	require.ErrorIs(t, life.check(), ErrDeadObject)
}

func Test_Borrowed_ChildKeepsRootAlive(t *testing.T) {
	r := newTestRegistry(t)
	addr := func() *Struct {
		p, err := New(r, "Person")
		require.NoError(t, err)
		av, err := p.Get("Address")
		require.NoError(t, err)
		require.NoError(t, av.(*Struct).Set("Zipcode", int32(90210)))
		return av.(*Struct)
	}()

	// The root wrapper went out of scope, but the child holds it: its
	// finalizer must not fire while the child is reachable.
	require.NotNil(t, addr.root)
	for i := 0; i < 20; i++ {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
	z, err := addr.Get("Zipcode")
	require.NoError(t, err)
	require.Equal(t, int32(90210), z)
}

func Test_Destroy_BorrowedWrapperRefuses(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterInstance("counter", &testCounter{}))
	w, err := GlobalInstance(r, "counter")
	require.NoError(t, err)
	require.ErrorContains(t, w.Destroy(), "borrowed")
}

func Test_DtorRegistry_RunsExactlyOnce(t *testing.T) {
	var buf [1]byte
	p := unsafe.Pointer(&buf[0])
	runs := 0
	dtorInstall(p, func() { runs++ })

	require.True(t, dtorRunOnce(p))
	require.False(t, dtorRunOnce(p))
	require.Equal(t, 1, runs)
}

func Test_DtorRegistry_DetachPreventsRun(t *testing.T) {
	var buf [1]byte
	p := unsafe.Pointer(&buf[0])
	runs := 0
	dtorInstall(p, func() { runs++ })
	dtorDetach(p)
	require.False(t, dtorRunOnce(p))
	require.Zero(t, runs)
}

func Test_Liveness_NilTokenIsAlive(t *testing.T) {
	var l *liveness
	require.NoError(t, l.check())
	l.kill() // no-op on nil

	l = newLiveness()
	require.NoError(t, l.check())
	l.kill()
	require.ErrorIs(t, l.check(), ErrDeadObject)
}

package glaze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Optional_GoValueSemantics(t *testing.T) {
	o := None[int32]()
	require.False(t, o.HasValue())
	_, ok := o.Value()
	require.False(t, ok)

	o.Set(7)
	require.True(t, o.HasValue())
	v, ok := o.Value()
	require.True(t, ok)
	require.Equal(t, int32(7), v)

	o.Reset()
	require.False(t, o.HasValue())

	s := Some("x")
	v2, ok := s.Value()
	require.True(t, ok)
	require.Equal(t, "x", v2)
}

func Test_Optional_ThroughProtocol(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)

	ev, err := p.Get("Email")
	require.NoError(t, err)
	email := ev.(*OptionalRef)

	has, err := email.HasValue()
	require.NoError(t, err)
	require.False(t, has)
	_, err = email.Get()
	require.Error(t, err)

	require.NoError(t, email.Set("ada@example.com"))
	has, err = email.HasValue()
	require.NoError(t, err)
	require.True(t, has)
	got, err := email.Get()
	require.NoError(t, err)
	s, err := got.(*StringRef).Get()
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", s)

	// Aliasing: a second wrapper over the same field sees the value.
	ev2, err := p.Get("Email")
	require.NoError(t, err)
	has, err = ev2.(*OptionalRef).HasValue()
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, email.Reset())
	has, err = email.HasValue()
	require.NoError(t, err)
	require.False(t, has)
}

func Test_Union_GoValueSemantics(t *testing.T) {
	var u Union3[int32, string, float64]
	require.Zero(t, u.Index())

	u.SetB("hi")
	require.Equal(t, 1, u.Index())
	s, ok := u.B()
	require.True(t, ok)
	require.Equal(t, "hi", s)
	_, ok = u.A()
	require.False(t, ok)

	u.SetC(2.5)
	require.Equal(t, 2, u.Index())
	f, ok := u.C()
	require.True(t, ok)
	require.Equal(t, 2.5, f)
}

func Test_Future_AsyncResolves(t *testing.T) {
	f := Async(func() float64 {
		time.Sleep(10 * time.Millisecond)
		return 6.25
	})
	require.Equal(t, 6.25, f.Value())
}

func Test_Future_MethodResult(t *testing.T) {
	_, c := newCounter(t, 3)
	out, err := c.Call("SquareLater")
	require.NoError(t, err)
	fut := out.(*SharedFutureRef)

	valid, err := fut.Valid()
	require.NoError(t, err)
	require.True(t, valid)

	got, err := fut.Get()
	require.NoError(t, err)
	require.Equal(t, 9.0, got)

	// A resolved shared future can be read again.
	ready, err := fut.IsReady()
	require.NoError(t, err)
	require.True(t, ready)
	got, err = fut.Get()
	require.NoError(t, err)
	require.Equal(t, 9.0, got)
}

func Test_Future_FieldAndInvalid(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterInstance("pendingCounter", &testCounter{
		Pending: Completed(int32(11)),
	}))
	require.NoError(t, r.RegisterInstance("emptyCounter", &testCounter{}))

	s, err := GlobalInstance(r, "pendingCounter")
	require.NoError(t, err)
	fv, err := s.Get("Pending")
	require.NoError(t, err)
	fut := fv.(*SharedFutureRef)
	got, err := fut.Get()
	require.NoError(t, err)
	require.Equal(t, int32(11), got)

	// A nil future field is invalid: Wait and Get refuse, IsReady is false.
	e, err := GlobalInstance(r, "emptyCounter")
	require.NoError(t, err)
	nv, err := e.Get("Pending")
	require.NoError(t, err)
	none := nv.(*SharedFutureRef)
	valid, err := none.Valid()
	require.NoError(t, err)
	require.False(t, valid)
	ready, err := none.IsReady()
	require.NoError(t, err)
	require.False(t, ready)
	require.ErrorIs(t, none.Wait(), ErrInvalidFuture)
	_, err = none.Get()
	require.ErrorIs(t, err, ErrInvalidFuture)
}

func Test_String_RefSemantics(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)
	nv, err := p.Get("Name")
	require.NoError(t, err)
	name := nv.(*StringRef)

	n, err := name.Len()
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, name.Set("Grace"))
	got, err := name.Get()
	require.NoError(t, err)
	require.Equal(t, "Grace", got)
	require.Equal(t, "Grace", name.String())

	b, err := name.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("Grace"), b)

	// Two refs over the same member alias each other.
	nv2, err := p.Get("Name")
	require.NoError(t, err)
	got, err = nv2.(*StringRef).Get()
	require.NoError(t, err)
	require.Equal(t, "Grace", got)
}

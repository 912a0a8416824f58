package glaze

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newCounter(t *testing.T, start float64) (*Registry, *Struct) {
	t.Helper()
	r := newTestRegistry(t)
	c, err := New(r, "Counter")
	require.NoError(t, err)
	require.NoError(t, c.Set("Value", start))
	return r, c
}

func Test_Call_AddReturnsAndMutates(t *testing.T) {
	_, c := newCounter(t, 10)

	out, err := c.Call("Add", 5.0)
	require.NoError(t, err)
	require.Equal(t, 15.0, out)

	v, err := c.Get("Value")
	require.NoError(t, err)
	require.Equal(t, 15.0, v)
}

func Test_Call_ArityCheckedBeforeNativeCall(t *testing.T) {
	_, c := newCounter(t, 10)

	var ae *ArityError
	_, err := c.Call("Add")
	require.ErrorAs(t, err, &ae)
	require.Equal(t, 1, ae.Want)
	require.Equal(t, 0, ae.Got)

	_, err = c.Call("Add", 1.0, 2.0)
	require.ErrorAs(t, err, &ae)
	require.Equal(t, 2, ae.Got)

	// The arity failures never reached the native side.
	v, err := c.Get("Value")
	require.NoError(t, err)
	require.Equal(t, 10.0, v)
}

func Test_Call_VoidReturnsNil(t *testing.T) {
	_, c := newCounter(t, 10)
	out, err := c.Call("Reset")
	require.NoError(t, err)
	require.Nil(t, out)
	v, err := c.Get("Value")
	require.NoError(t, err)
	require.Zero(t, v)
}

func Test_Call_ErrorReturnsSurface(t *testing.T) {
	_, c := newCounter(t, 10)

	_, err := c.Call("Div", 0.0)
	require.ErrorContains(t, err, "division by zero")
	require.ErrorContains(t, err, "Counter.Div")

	out, err := c.Call("Div", 2.0)
	require.NoError(t, err)
	require.Equal(t, 5.0, out)

	_, err = c.Call("Fail")
	require.ErrorContains(t, err, "boom")
}

func Test_Call_PanicBecomesError(t *testing.T) {
	_, c := newCounter(t, 10)
	_, err := c.Call("Explode")
	require.ErrorContains(t, err, "kaboom")
}

func Test_Call_StringResult(t *testing.T) {
	_, c := newCounter(t, 2.5)
	out, err := c.Call("Describe")
	require.NoError(t, err)
	s, err := out.(*StringRef).Get()
	require.NoError(t, err)
	require.Equal(t, "counter=2.5", s)
}

func Test_Call_StringArgument(t *testing.T) {
	_, c := newCounter(t, 1.5)
	out, err := c.Call("Label", "ctr")
	require.NoError(t, err)
	s, err := out.(*StringRef).Get()
	require.NoError(t, err)
	require.Equal(t, "ctr: 1.5", s)
}

func Test_Call_SliceArgumentMaterializesTempVector(t *testing.T) {
	_, c := newCounter(t, 0)
	out, err := c.Call("SumVec", []float64{1, 2, 3.5})
	require.NoError(t, err)
	require.Equal(t, 6.5, out)

	// []any mixes are flattened element-wise.
	out, err = c.Call("SumVec", []any{1.0, 2.0})
	require.NoError(t, err)
	require.Equal(t, 3.0, out)
}

func Test_Call_VectorWrapperArgumentPassesThrough(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)
	wv, err := p.Get("Weights")
	require.NoError(t, err)
	w := wv.(*VectorOf[float64])
	for _, x := range []float64{2, 4, 6} {
		require.NoError(t, w.Append(x))
	}

	c, err := New(r, "Counter")
	require.NoError(t, err)
	out, err := c.Call("SumVec", w)
	require.NoError(t, err)
	require.Equal(t, 12.0, out)
}

func Test_Call_StructArgumentPassedByValue(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)
	av, err := p.Get("Address")
	require.NoError(t, err)
	require.NoError(t, av.(*Struct).Set("Zipcode", int32(90210)))

	c, err := New(r, "Counter")
	require.NoError(t, err)
	out, err := c.Call("ZipOf", av)
	require.NoError(t, err)
	require.Equal(t, int32(90210), out)
}

func Test_Call_ArgumentConversionFailureNamesPosition(t *testing.T) {
	_, c := newCounter(t, 0)
	_, err := c.Call("Add", "not a number")
	require.ErrorContains(t, err, "argument 1")
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
}

func Test_Call_DataMemberIsNotCallable(t *testing.T) {
	_, c := newCounter(t, 0)
	_, err := c.Call("Value")
	require.ErrorContains(t, err, "data member")
}

func Test_MemberFunction_Arity(t *testing.T) {
	_, c := newCounter(t, 0)
	fn, err := c.Get("Add")
	require.NoError(t, err)
	mf := fn.(*MemberFunction)
	n, err := mf.Arity()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

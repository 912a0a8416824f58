package glaze

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newWeights(t *testing.T) *VectorOf[float64] {
	t.Helper()
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)
	v, err := p.Get("Weights")
	require.NoError(t, err)
	return v.(*VectorOf[float64])
}

func Test_Vector_ResizeAndLength(t *testing.T) {
	v := newWeights(t)
	for _, n := range []int{0, 1, 7, 100, 3, 0} {
		require.NoError(t, v.Resize(n))
		got, err := v.Len()
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
	require.Error(t, v.Resize(-1))
}

func Test_Vector_ResizeValueInitializes(t *testing.T) {
	v := newWeights(t)
	require.NoError(t, v.Resize(2))
	require.NoError(t, v.Put(1, 1.5))
	require.NoError(t, v.Put(2, 2.5))
	// Shrink then regrow within capacity: the regrown slot reads as zero.
	require.NoError(t, v.Resize(1))
	require.NoError(t, v.Resize(2))
	x, err := v.At(2)
	require.NoError(t, err)
	require.Zero(t, x)
	x, err = v.At(1)
	require.NoError(t, err)
	require.Equal(t, 1.5, x)
}

func Test_Vector_PushAppends(t *testing.T) {
	v := newWeights(t)
	for i := 1; i <= 5; i++ {
		require.NoError(t, v.Push(float64(i)*1.5))
		n, err := v.Len()
		require.NoError(t, err)
		require.Equal(t, i, n)
		last, err := v.At(n)
		require.NoError(t, err)
		require.Equal(t, float64(i)*1.5, last)
	}
}

func Test_Vector_BoundsAreOneBased(t *testing.T) {
	v := newWeights(t)
	require.NoError(t, v.Resize(3))

	_, err := v.At(0)
	var be *BoundsError
	require.ErrorAs(t, err, &be)
	require.Equal(t, 0, be.Index)
	require.Equal(t, 1, be.Min)
	require.Equal(t, 3, be.Max)

	_, err = v.At(4)
	require.ErrorAs(t, err, &be)
	_, err = v.Get(4)
	require.ErrorAs(t, err, &be)
	require.ErrorAs(t, v.Put(0, 1), &be)

	// Valid extremes.
	require.NoError(t, v.Put(1, 1))
	require.NoError(t, v.Put(3, 3))
}

func Test_Vector_IterationEquivalence(t *testing.T) {
	for _, n := range []int{0, 1, 10000} {
		v := newWeights(t)
		require.NoError(t, v.Resize(n))
		for i := 1; i <= n; i++ {
			require.NoError(t, v.Put(i, float64(i)*0.25))
		}

		var indexed float64
		ln, err := v.Len()
		require.NoError(t, err)
		for i := 1; i <= ln; i++ {
			x, err := v.At(i)
			require.NoError(t, err)
			indexed += x
		}

		var iterated float64
		require.NoError(t, v.EachValue(func(i int, x float64) error {
			iterated += x
			return nil
		}))

		var generic float64
		require.NoError(t, v.Each(func(i int, val any) error {
			generic += val.(float64)
			return nil
		}))

		s, err := v.Slice()
		require.NoError(t, err)
		var sliced float64
		for _, x := range s {
			sliced += x
		}

		require.InDelta(t, indexed, iterated, 1e-9)
		require.InDelta(t, indexed, generic, 1e-9)
		require.InDelta(t, indexed, sliced, 1e-9)
	}
}

func Test_Vector_SliceIsZeroCopy(t *testing.T) {
	v := newWeights(t)
	require.NoError(t, v.Resize(2))
	s, err := v.Slice()
	require.NoError(t, err)
	s[0] = 42.5 // writes through to the backing storage
	x, err := v.At(1)
	require.NoError(t, err)
	require.Equal(t, 42.5, x)
}

func Test_Vector_FastPathSelection(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)

	sv, err := p.Get("Scores")
	require.NoError(t, err)
	require.IsType(t, &VectorOf[int32]{}, sv)

	wv, err := p.Get("Weights")
	require.NoError(t, err)
	require.IsType(t, &VectorOf[float64]{}, wv)
}

func Test_Vector_GenericSetCoercion(t *testing.T) {
	v := newWeights(t)
	require.NoError(t, v.Resize(1))
	require.NoError(t, v.Set(1, int64(3))) // coerced to f64
	x, err := v.At(1)
	require.NoError(t, err)
	require.Equal(t, 3.0, x)

	err = v.Set(1, "nope")
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
}

package glaze

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Marshal_IntegerRangeChecked(t *testing.T) {
	r := newTestRegistry(t)
	s, err := New(r, "Scalars")
	require.NoError(t, err)

	require.ErrorContains(t, s.Set("I8", int64(200)), "out of range")
	require.ErrorContains(t, s.Set("I8", int64(-200)), "out of range")
	require.ErrorContains(t, s.Set("U8", int64(300)), "out of range")
	require.ErrorContains(t, s.Set("U16", int64(1<<20)), "out of range")

	var ce *ConversionError
	require.ErrorAs(t, s.Set("U32", int64(-1)), &ce)    // negatives never coerce to unsigned
	require.ErrorAs(t, s.Set("I32", 3.5), &ce)          // fractional floats never coerce to int
	require.ErrorAs(t, s.Set("I32", "12"), &ce)         // strings never coerce
	require.ErrorAs(t, s.Set("B", int64(1)), &ce)       // bool takes bool only
	require.ErrorAs(t, s.Set("F64", "nope"), &ce)
}

func Test_Marshal_WholeFloatsCoerceToInt(t *testing.T) {
	r := newTestRegistry(t)
	s, err := New(r, "Scalars")
	require.NoError(t, err)

	require.NoError(t, s.Set("I32", 12.0))
	got, err := s.Get("I32")
	require.NoError(t, err)
	require.Equal(t, int32(12), got)

	require.NoError(t, s.Set("U64", 8.0))
	u, err := s.Get("U64")
	require.NoError(t, err)
	require.Equal(t, uint64(8), u)
}

func Test_Marshal_ComplexCoercion(t *testing.T) {
	r := newTestRegistry(t)
	s, err := New(r, "Scalars")
	require.NoError(t, err)

	// complex128 narrows into a complex<f32> member and widens back out.
	require.NoError(t, s.Set("C64", complex128(1+1i)))
	got, err := s.Get("C64")
	require.NoError(t, err)
	require.Equal(t, complex64(1+1i), got)

	// Reals embed into complex<f64>.
	require.NoError(t, s.Set("C128", 2.5))
	c, err := s.Get("C128")
	require.NoError(t, err)
	require.Equal(t, complex(2.5, 0), c)
}

func Test_Marshal_SliceElems(t *testing.T) {
	for _, c := range []struct {
		in   any
		want int
	}{
		{[]float32{1, 2}, 2},
		{[]float64{1}, 1},
		{[]int32{}, 0},
		{[]int64{1, 2, 3}, 3},
		{[]complex64{1i}, 1},
		{[]complex128{1, 2i}, 2},
		{[]string{"a"}, 1},
		{[]any{1, "x"}, 2},
	} {
		got, err := sliceElems(c.in)
		require.NoError(t, err)
		require.Len(t, got, c.want)
	}

	var ce *ConversionError
	_, err := sliceElems(42)
	require.ErrorAs(t, err, &ce)
	_, err = sliceElems([]uint16{1})
	require.ErrorAs(t, err, &ce)
}

func Test_Marshal_ToHostRejectsNull(t *testing.T) {
	r := newTestRegistry(t)
	d := memberDesc(t, r, "Person", "Age")
	_, err := toHost(r, d, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func Test_Marshal_StringRefPassesThrough(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)
	require.NoError(t, p.Set("Name", "src"))

	nv, err := p.Get("Name")
	require.NoError(t, err)

	// A StringRef argument reuses the existing native string in place.
	c, err := New(r, "Counter")
	require.NoError(t, err)
	out, err := c.Call("Label", nv)
	require.NoError(t, err)
	s, err := out.(*StringRef).Get()
	require.NoError(t, err)
	require.Equal(t, "src: 0", s)
}

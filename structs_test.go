package glaze

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// The canonical end-to-end scenario: nested struct, string, vector and
// primitive members on one instance, with a second instance staying clean.
func Test_Struct_PersonScenario(t *testing.T) {
	r := newTestRegistry(t)

	p, err := New(r, "Person")
	require.NoError(t, err)

	require.NoError(t, p.Set("Age", int32(30)))
	require.NoError(t, p.Set("Name", "Ada"))

	av, err := p.Get("Address")
	require.NoError(t, err)
	addr := av.(*Struct)
	require.NoError(t, addr.Set("Zipcode", int32(10001)))

	sv, err := p.Get("Scores")
	require.NoError(t, err)
	scores := sv.(*VectorOf[int32])
	require.NoError(t, scores.Resize(3))
	for i, x := range []int32{95, 87, 92} {
		require.NoError(t, scores.Put(i+1, x))
	}

	age, err := p.Get("Age")
	require.NoError(t, err)
	require.Equal(t, int32(30), age)

	nv, err := p.Get("Name")
	require.NoError(t, err)
	name, err := nv.(*StringRef).Get()
	require.NoError(t, err)
	require.Equal(t, "Ada", name)

	zip, err := addr.Get("Zipcode")
	require.NoError(t, err)
	require.Equal(t, int32(10001), zip)

	got, err := scores.Values()
	require.NoError(t, err)
	require.Equal(t, []int32{95, 87, 92}, got)

	// A second instance shares none of this state.
	q, err := New(r, "Person")
	require.NoError(t, err)
	qAge, err := q.Get("Age")
	require.NoError(t, err)
	require.Equal(t, int32(0), qAge)
	qv, err := q.Get("Scores")
	require.NoError(t, err)
	qLen, err := qv.(*VectorOf[int32]).Len()
	require.NoError(t, err)
	require.Zero(t, qLen)
	require.NotEqual(t, p.Pointer(), q.Pointer())
}

func Test_Struct_NestedMutationPropagates(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)

	a1, err := p.Get("Address")
	require.NoError(t, err)
	a2, err := p.Get("Address")
	require.NoError(t, err)

	require.NoError(t, a1.(*Struct).Set("Zipcode", int32(20500)))
	z, err := a2.(*Struct).Get("Zipcode")
	require.NoError(t, err)
	require.Equal(t, int32(20500), z)
}

func Test_Struct_GlobalInstanceAliases(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.RegisterInstance("counter", &testCounter{Value: 10}))

	w1, err := GlobalInstance(r, "counter")
	require.NoError(t, err)
	w2, err := GlobalInstance(r, "counter")
	require.NoError(t, err)
	require.Equal(t, w1.Pointer(), w2.Pointer())
	require.False(t, w1.Owned())

	require.NoError(t, w1.Set("Value", 99.5))
	v, err := w2.Get("Value")
	require.NoError(t, err)
	require.Equal(t, 99.5, v)

	_, err = GlobalInstance(r, "ghost")
	require.ErrorIs(t, err, ErrUnknownInstance)
}

func Test_Struct_PrimitiveRoundTrips(t *testing.T) {
	r := newTestRegistry(t)
	s, err := New(r, "Scalars")
	require.NoError(t, err)

	cases := []struct {
		field string
		in    any
		want  any
	}{
		{"B", true, true},
		{"B", false, false},
		{"I8", int64(math.MinInt8), int8(math.MinInt8)},
		{"I8", int64(math.MaxInt8), int8(math.MaxInt8)},
		{"I8", int64(0), int8(0)},
		{"I16", int64(math.MinInt16), int16(math.MinInt16)},
		{"I16", int64(math.MaxInt16), int16(math.MaxInt16)},
		{"I32", int64(math.MinInt32), int32(math.MinInt32)},
		{"I32", int64(math.MaxInt32), int32(math.MaxInt32)},
		{"I64", int64(math.MinInt64), int64(math.MinInt64)},
		{"I64", int64(math.MaxInt64), int64(math.MaxInt64)},
		{"U8", uint64(math.MaxUint8), uint8(math.MaxUint8)},
		{"U16", uint64(math.MaxUint16), uint16(math.MaxUint16)},
		{"U32", uint64(math.MaxUint32), uint32(math.MaxUint32)},
		{"U64", uint64(math.MaxUint64), uint64(math.MaxUint64)},
		{"U64", uint64(0), uint64(0)},
		{"F32", float32(1.5), float32(1.5)},
		{"F64", 3.141592653589793, 3.141592653589793},
		{"F64", 0.0, 0.0},
		{"C64", complex64(1 + 2i), complex64(1 + 2i)},
		{"C128", complex128(3 - 4i), complex128(3 - 4i)},
	}
	for _, c := range cases {
		require.NoError(t, s.Set(c.field, c.in), c.field)
		got, err := s.Get(c.field)
		require.NoError(t, err, c.field)
		require.Equal(t, c.want, got, c.field)
	}
}

func Test_Struct_SetRejectsBadShapes(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)

	require.Error(t, p.Set("Greet", 1)) // member function
	err = p.Set("Email", "x")
	require.ErrorIs(t, err, ErrNotImplemented) // optional: mutate through the wrapper
	err = p.Set("ID", 1)
	require.ErrorIs(t, err, ErrNotImplemented) // variant: mutate through the wrapper

	_, err = p.Get("nope")
	require.ErrorIs(t, err, ErrUnknownMember)
}

func Test_Struct_ReadOnlyStringRejectsSet(t *testing.T) {
	r := newTestRegistry(t)
	s, err := New(r, "Tagged")
	require.NoError(t, err)

	err = s.Set("Motto", "rewritten")
	require.ErrorIs(t, err, ErrReadOnly)

	mv, err := s.Get("Motto")
	require.NoError(t, err)
	got, err := mv.(*StringRef).Get()
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func Test_Struct_MemberCacheReturnsSameRecord(t *testing.T) {
	r := newTestRegistry(t)
	p, err := New(r, "Person")
	require.NoError(t, err)

	m1, err := p.member("Age")
	require.NoError(t, err)
	m2, err := p.member("Age")
	require.NoError(t, err)
	require.Same(t, m1, m2)
}

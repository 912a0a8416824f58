package glaze

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func memberDesc(t *testing.T, r *Registry, typeName, member string) *Descriptor {
	t.Helper()
	info, err := r.TypeInfo(typeName)
	require.NoError(t, err)
	m, err := info.Member(member)
	require.NoError(t, err)
	return m.Type
}

func Test_Descriptor_ShapeRendering(t *testing.T) {
	r := newTestRegistry(t)
	cases := []struct {
		typeName, member, want string
	}{
		{"Person", "Name", "string"},
		{"Person", "Age", "i32"},
		{"Person", "Address", "testAddress"},
		{"Person", "Scores", "vector<i32>"},
		{"Person", "Weights", "vector<f64>"},
		{"Person", "Email", "optional<string>"},
		{"Person", "ID", "variant<i32, string, f64>"},
		{"Person", "Greet", "() -> string"},
		{"Counter", "Add", "(f64) -> f64"},
		{"Counter", "Reset", "() -> void"},
		{"Counter", "SumVec", "(vector<f64>) -> f64"},
		{"Counter", "Pending", "shared_future<i32>"},
		{"Scalars", "C64", "complex<f32>"},
		{"Scalars", "C128", "complex<f64>"},
		{"Scalars", "U16", "u16"},
		{"Scalars", "B", "bool"},
	}
	for _, c := range cases {
		d := memberDesc(t, r, c.typeName, c.member)
		require.Equal(t, c.want, d.String(), "%s.%s", c.typeName, c.member)
	}
}

func Test_Descriptor_DecodeTaggedSum(t *testing.T) {
	r := newTestRegistry(t)

	dec, err := memberDesc(t, r, "Person", "Scores").Decode()
	require.NoError(t, err)
	vec, ok := dec.(VectorDesc)
	require.True(t, ok)
	k, err := vec.Elem.Kind()
	require.NoError(t, err)
	require.Equal(t, KindPrimitive, k)

	dec, err = memberDesc(t, r, "Person", "Address").Decode()
	require.NoError(t, err)
	sd, ok := dec.(StructDesc)
	require.True(t, ok)
	require.Equal(t, "testAddress", sd.TypeName)
	require.Equal(t, typeHash("testAddress"), sd.Hash)

	dec, err = memberDesc(t, r, "Counter", "Add").Decode()
	require.NoError(t, err)
	fd, ok := dec.(FunctionDesc)
	require.True(t, ok)
	require.Len(t, fd.Params, 1)
	require.NotNil(t, fd.Return)

	dec, err = memberDesc(t, r, "Counter", "Reset").Decode()
	require.NoError(t, err)
	require.Nil(t, dec.(FunctionDesc).Return)

	dec, err = memberDesc(t, r, "Person", "ID").Decode()
	require.NoError(t, err)
	require.Len(t, dec.(VariantDesc).Alternatives, 3)
}

func Test_Descriptor_Interning(t *testing.T) {
	r := newTestRegistry(t)
	// i32 appears as Person.Age and testAddress.Zipcode: same record.
	age := memberDesc(t, r, "Person", "Age")
	zip := memberDesc(t, r, "testAddress", "Zipcode")
	require.Same(t, age.raw, zip.raw)
}

func Test_Descriptor_NullAndGarbageHandles(t *testing.T) {
	var d *Descriptor
	_, err := d.Kind()
	require.ErrorIs(t, err, ErrInvalidHandle)
	_, err = d.Decode()
	require.ErrorIs(t, err, ErrInvalidHandle)
	require.Nil(t, wrapDesc(nil))

	bad := wrapDesc(&rawDescriptor{index: 99})
	_, err = bad.Kind()
	require.ErrorContains(t, err, "discriminant")
	require.Equal(t, "<invalid>", bad.String())

	zero := wrapDesc(&rawDescriptor{})
	_, err = zero.Kind()
	require.Error(t, err)
}

func Test_Descriptor_ScalarWidths(t *testing.T) {
	r := newTestRegistry(t)
	cases := []struct {
		member string
		want   uintptr
	}{
		{"B", 1}, {"I16", 2}, {"I32", 4}, {"U64", 8}, {"F32", 4},
		{"C64", 8}, {"C128", 16},
	}
	for _, c := range cases {
		w, err := scalarWidth(memberDesc(t, r, "Scalars", c.member))
		require.NoError(t, err)
		require.Equal(t, c.want, w, c.member)
	}

	// Non-scalar kinds have no by-value width.
	_, err := scalarWidth(memberDesc(t, r, "Person", "Name"))
	require.Error(t, err)
	_, err = scalarWidth(memberDesc(t, r, "Person", "Scores"))
	require.Error(t, err)
}

func Test_PrimKind_Sizes(t *testing.T) {
	sizes := map[PrimKind]uintptr{
		Bool: 1, I8: 1, U8: 1,
		I16: 2, U16: 2,
		I32: 4, U32: 4, F32: 4,
		I64: 8, U64: 8, F64: 8,
	}
	for k, want := range sizes {
		require.Equal(t, want, k.Size(), k.String())
	}
	require.Zero(t, PrimKind(99).Size())
}

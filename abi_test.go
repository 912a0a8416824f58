package glaze

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func Test_ABI_RecordSizes(t *testing.T) {
	require.NoError(t, verifyABISizes())
	require.Equal(t, uintptr(40), unsafe.Sizeof(rawDescriptor{}))
	require.Equal(t, uintptr(48), unsafe.Sizeof(rawMemberInfo{}))
	require.Equal(t, uintptr(32), unsafe.Sizeof(rawTypeInfo{}))
	require.Equal(t, uintptr(24), unsafe.Sizeof(rawVectorView{}))
	require.Equal(t, 256, resultBufferSize)
}

func Test_ABI_CountPlausibility(t *testing.T) {
	require.NoError(t, checkNativeCount(0))
	require.NoError(t, checkNativeCount(1))
	require.NoError(t, checkNativeCount(10_000_000))

	var cse *CorruptSizeError
	require.ErrorAs(t, checkNativeCount(maxNativeCount), &cse)
	require.ErrorAs(t, checkNativeCount(1<<60), &cse)
	for _, s := range sizeSentinels {
		require.ErrorAs(t, checkNativeCount(s), &cse, "%#x", s)
		require.ErrorAs(t, checkNativeCount(s&0xffffffff), &cse, "%#x", s&0xffffffff)
	}
}

func Test_ABI_GoString(t *testing.T) {
	require.Equal(t, "", goString(nil))

	b := []byte{'h', 'i', 0}
	require.Equal(t, "hi", goString(&b[0]))

	empty := []byte{0}
	require.Equal(t, "", goString(&empty[0]))
}

func Test_ABI_DescSlice(t *testing.T) {
	require.Nil(t, descSlice(nil, 0))
	require.Nil(t, descSlice(nil, 3))

	a, b := &rawDescriptor{index: 1}, &rawDescriptor{index: 2}
	arr := []*rawDescriptor{a, b}
	got := descSlice(&arr[0], 2)
	require.Len(t, got, 2)
	require.Same(t, a, got[0])
	require.Same(t, b, got[1])
}

func Test_ABI_MemberSlice(t *testing.T) {
	_, err := memberSlice(nil)
	require.ErrorIs(t, err, ErrInvalidHandle)

	got, err := memberSlice(&rawTypeInfo{})
	require.NoError(t, err)
	require.Nil(t, got)

	var cse *CorruptSizeError
	_, err = memberSlice(&rawTypeInfo{memberCount: uintptr(maxNativeCount)})
	require.ErrorAs(t, err, &cse)
}

func Test_ABI_ElemAt(t *testing.T) {
	vals := []int32{10, 20, 30}
	base := unsafe.Pointer(&vals[0])
	require.Equal(t, int32(30), *(*int32)(elemAt(base, 2, 4)))
}

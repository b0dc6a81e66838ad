package treepath

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCodecEncode(t *testing.T) {
	first, err := Default.Encode("", 1)
	require.NoError(t, err)
	assert.Equal(t, "0001", first)

	child, err := Default.Encode(first, 36)
	require.NoError(t, err)
	assert.Equal(t, "00010010", child)

	last, err := Default.Encode("", Default.Max())
	require.NoError(t, err)
	assert.Equal(t, "ZZZZ", last)
	assert.Equal(t, 36*36*36*36-1, Default.Max())
}

func TestEncodeCapacityExceeded(t *testing.T) {
	_, err := Default.Encode("", Default.Max()+1)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = Default.Encode("0001", 0)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	small := MustNew("0123456789", 1)
	_, err = small.Encode("", 10)
	require.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestIndexRoundTrip(t *testing.T) {
	for _, idx := range []int{1, 2, 35, 36, 37, 1295, 1296, Default.Max()} {
		path, err := Default.Encode("0003", idx)
		require.NoError(t, err)
		got, err := Default.Index(path)
		require.NoError(t, err)
		assert.Equal(t, idx, got)
	}
}

func TestLexicographicOrderMatchesNumericOrder(t *testing.T) {
	indexes := []int{1, 9, 10, 35, 36, 100, 1295, 1296, 50000}
	paths := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		p, err := Default.Encode("", idx)
		require.NoError(t, err)
		paths = append(paths, p)
	}
	assert.True(t, sort.StringsAreSorted(paths))
}

func TestDepthParentAncestors(t *testing.T) {
	path := "000100020003"

	assert.Equal(t, 3, Default.Depth(path))
	assert.Equal(t, "00010002", Default.Parent(path))
	assert.Equal(t, "", Default.Parent("0001"))
	assert.Equal(t, []string{"0001", "00010002"}, Default.Ancestors(path))
	assert.Nil(t, Default.Ancestors("0001"))
}

func TestIsDescendant(t *testing.T) {
	assert.True(t, Default.IsDescendant("00010002", "0001"))
	assert.True(t, Default.IsDescendant("000100020001", "0001"))
	assert.False(t, Default.IsDescendant("0001", "0001"), "a node is not its own descendant")
	assert.False(t, Default.IsDescendant("00020001", "0001"))
	assert.True(t, Default.IsDescendant("0001", ""), "every node descends from the virtual root")

	assert.True(t, Default.IsChild("00010002", "0001"))
	assert.False(t, Default.IsChild("000100020001", "0001"))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default.Validate("0001000Z"))
	require.ErrorIs(t, Default.Validate(""), ErrInvalidPath)
	require.ErrorIs(t, Default.Validate("001"), ErrInvalidPath)
	require.ErrorIs(t, Default.Validate("000a"), ErrInvalidPath)
	require.ErrorIs(t, Default.Validate(Default.ParkPrefix()), ErrInvalidPath)
}

func TestParkPrefixSortsAfterEverySegment(t *testing.T) {
	park := Default.ParkPrefix()
	assert.Len(t, park, DefaultStepLen)
	assert.Greater(t, park, "ZZZZ")
}

func TestNewRejectsBadAlphabets(t *testing.T) {
	_, err := New("0", 4)
	require.ErrorIs(t, err, ErrInvalidCodec)

	_, err = New("BA", 2)
	require.ErrorIs(t, err, ErrInvalidCodec, "alphabet must be ascending")

	_, err = New("01~", 2)
	require.ErrorIs(t, err, ErrInvalidCodec, "park character is reserved")

	_, err = New("01", 0)
	require.ErrorIs(t, err, ErrInvalidCodec)
}

package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	testCases := []struct {
		name        string
		addr        *Address
		expectedStr string
	}{
		{
			name:        "simple path",
			addr:        New(NewPathSegment("raster"), NewPathSegment("done")),
			expectedStr: "raster.done",
		},
		{
			name:        "path with indices",
			addr:        New(NewPathSegment("raster"), NewPathSegmentWithIndex("segment", 3), NewPathSegment("totg")),
			expectedStr: "raster.segment[3].totg",
		},
		{
			name:        "nil address",
			addr:        nil,
			expectedStr: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.addr.String())
		})
	}
}

func TestAddress_Equal(t *testing.T) {
	addr1 := New(NewPathSegment("a"), NewPathSegmentWithIndex("b", 0))
	addr2 := New(NewPathSegment("a"), NewPathSegmentWithIndex("b", 0))
	addr3 := New(NewPathSegment("a"), NewPathSegmentWithIndex("b", 1))
	addr4 := New(NewPathSegment("a"), NewPathSegment("b"))

	assert.True(t, addr1.Equal(addr2))
	assert.False(t, addr1.Equal(addr3))
	assert.False(t, addr1.Equal(addr4), "an index of zero differs from no index")
	assert.False(t, addr1.Equal(nil))
	assert.False(t, (*Address)(nil).Equal(addr1))
	assert.True(t, (*Address)(nil).Equal(nil))
}

func TestNewCopiesSegments(t *testing.T) {
	segs := []PathSegment{NewPathSegment("a"), NewPathSegment("b")}
	addr := New(segs...)
	segs[0].Name = "changed"
	assert.Equal(t, "a.b", addr.String())
}

func TestAddress_ChildAndUnder(t *testing.T) {
	base := New(NewPathSegment("totg"))
	child := base.Child(NewPathSegment("done"))
	assert.Equal(t, "totg.done", child.String())
	assert.Equal(t, "totg", base.String(), "Child must not mutate the receiver")

	prefixed := child.Under(New(NewPathSegment("raster"), NewPathSegmentWithIndex("segment", 1)))
	assert.Equal(t, "raster.segment[1].totg.done", prefixed.String())
	assert.Equal(t, "totg.done", child.String(), "Under must not mutate the receiver")

	last, ok := prefixed.Last()
	require.True(t, ok)
	assert.Equal(t, "done", last.Name)

	_, ok = (*Address)(nil).Last()
	assert.False(t, ok)
	assert.Equal(t, "x", (*Address)(nil).Child(NewPathSegment("x")).String())
}

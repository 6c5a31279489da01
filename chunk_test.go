package zarr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridShape(t *testing.T) {
	assert.Equal(t, []int{3, 3}, GridShape([]int{5, 7}, []int{2, 3}))
	assert.Equal(t, []int{10, 10}, GridShape([]int{100, 100}, []int{10, 10}))
	assert.Equal(t, []int{0, 1}, GridShape([]int{0, 4}, []int{2, 4}))
}

func TestChunkKey(t *testing.T) {
	assert.Equal(t, "0", ChunkKey(nil, "."))
	assert.Equal(t, "7", ChunkKey([]int{7}, "."))
	assert.Equal(t, "1.4", ChunkKey([]int{1, 4}, "."))
	assert.Equal(t, "1/4/0", ChunkKey([]int{1, 4, 0}, "/"))
}

func TestEachChunk(t *testing.T) {
	var got [][]int
	err := eachChunk([][]int{{0, 2}, {1, 3, 4}}, func(coords []int) error {
		got = append(got, coords)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]int{
		{0, 1}, {0, 3}, {0, 4},
		{2, 1}, {2, 3}, {2, 4},
	}, got)

	calls := 0
	err = eachChunk([][]int{{0}, {}}, func([]int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestProjectEdgeChunk(t *testing.T) {
	a, err := Create(NewMemoryStore(), "arr", &ArrayMeta{
		Shape:  []int{5, 7},
		Chunks: []int{2, 3},
		Dtype:  StructuredType{Dtype: Dtype{ByteOrder: BOLittleEndian, BasicType: BTInteger, ByteSize: 4}},
	})
	require.NoError(t, err)

	// the last chunk holds array rows 4 and column 6 only
	proj, err := a.project([]int{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, proj.ChunkSelection)
	assert.Equal(t, []int{34}, proj.OutSelection)

	proj, err = a.project([]int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, proj.ChunkSelection)
	assert.Equal(t, []int{14, 15, 16, 21, 22, 23}, proj.OutSelection)
}

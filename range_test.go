package zarr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeResolve(t *testing.T) {
	cases := []struct {
		r      Range
		extent int
		want   []int
	}{
		{All(), 5, []int{0, 1, 2, 3, 4}},
		{Span(1, 3), 5, []int{1, 2}},
		{Range{Start: -2}, 5, []int{3, 4}},
		{Range{Stop: -1}, 5, []int{0, 1, 2, 3}},
		{Range{Step: 2}, 5, []int{0, 2, 4}},
		{Range{Step: -1}, 5, []int{4, 3, 2, 1, 0}},
		{Range{Step: -2}, 5, []int{4, 2, 0}},
		{Range{Start: 3, Step: -1}, 5, []int{3, 2, 1, 0}},
		{Range{Start: 3, Stop: 1, Step: -1}, 5, []int{3, 2}},
		{Range{Start: 1, Stop: 4, Step: -1}, 5, []int{}},
		{Range{Start: 10}, 5, []int{}},
		{Range{Start: -10, Stop: 2}, 5, []int{0, 1}},
		{Range{Stop: 100}, 3, []int{0, 1, 2}},
		{All(), 0, []int{}},
		{Range{Step: -1}, 0, []int{}},
	}

	for _, c := range cases {
		ax := c.r.Resolve(c.extent)
		assert.Equal(t, KindSlice, ax.Kind())
		assert.Equal(t, c.want, ax.Coords(), "%s on extent %d", c.r, c.extent)
		assert.Equal(t, len(c.want), c.r.Len(c.extent), "%s on extent %d", c.r, c.extent)
	}
}

func TestIndex(t *testing.T) {
	ax, err := Index(-1, 5)
	require.NoError(t, err)
	assert.Equal(t, KindScalar, ax.Kind())
	assert.Equal(t, []int{4}, ax.Coords())

	ax, err = Index(2, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ax.Coords())

	_, err = Index(5, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = Index(-6, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

package zarr

import (
	"strconv"
	"strings"
)

// GridShape calculates the number of chunks in each dimension.
// For each dimension i, the number of chunks is ceil(shape[i] / chunks[i]).
func GridShape(shape, chunks []int) []int {
	grid := make([]int, len(shape))
	for i := range shape {
		grid[i] = (shape[i] + chunks[i] - 1) / chunks[i]
	}
	return grid
}

// ChunkKey generates the key of the chunk at the given grid coordinates,
// e.g. coords [1, 4] with separator "." is "1.4"
func ChunkKey(coords []int, separator string) string {
	if len(coords) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, c := range coords {
		if i > 0 {
			sb.WriteString(separator)
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}

// A mapping of items from chunk to array buffer. Can be used to copy items
// from a chunk into the array buffer, or from the array buffer into a chunk
// when writing. Both offset lists enumerate the same items in the same order.
type chunkProjection struct {
	// Indices of chunk
	ChunkCoords []int
	// Offsets of items in the chunk buffer.
	ChunkSelection []int
	// Offsets of the same items in the array buffer.
	OutSelection []int
}

// project maps the chunk at grid coords onto the array. Edge chunks are
// stored at full chunk size, so only the part inside the array is mapped.
func (a *Array) project(coords []int) (*chunkProjection, error) {
	ndim := len(coords)
	arrSel := make([]AxisIndex, ndim)
	chunkSel := make([]AxisIndex, ndim)
	for k, c := range coords {
		size := a.meta.Chunks[k]
		begin := c * size
		end := begin + size
		if ext := a.layout.Extent(k); end > ext {
			end = ext
		}
		arrSel[k] = Slice(seq(begin, end)...)
		chunkSel[k] = Slice(seq(0, end-begin)...)
	}

	out, err := a.layout.Offsets(arrSel...)
	if err != nil {
		return nil, err
	}
	in, err := a.chunkLayout.Offsets(chunkSel...)
	if err != nil {
		return nil, err
	}
	return &chunkProjection{
		ChunkCoords:    coords,
		ChunkSelection: in.Offsets(),
		OutSelection:   out.Offsets(),
	}, nil
}

// eachChunk calls fn with the grid coordinates of every combination of the
// per-dimension chunk lists, first dimension slowest
func eachChunk(lists [][]int, fn func(coords []int) error) error {
	dims := make([]int, len(lists))
	for k, l := range lists {
		dims[k] = len(l)
	}
	grid, err := NewShapeMeta(dims, RowMajor)
	if err != nil {
		return err
	}
	for i := 0; i < grid.Size(); i++ {
		pos, err := grid.Unravel(i)
		if err != nil {
			return err
		}
		coords := make([]int, len(pos))
		for k, j := range pos {
			coords[k] = lists[k][j]
		}
		if err := fn(coords); err != nil {
			return err
		}
	}
	return nil
}

func seq(begin, end int) []int {
	if end <= begin {
		return nil
	}
	s := make([]int, end-begin)
	for i := range s {
		s[i] = begin + i
	}
	return s
}

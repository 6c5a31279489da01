package zarr

import "fmt"

// AxisKind distinguishes the ways a single dimension can be indexed
type AxisKind uint8

const (
	// KindSlice selects an ordered list of coordinates resolved from a
	// start:stop:step range. The zero AxisIndex is an empty slice.
	KindSlice AxisKind = iota
	// KindScalar selects exactly one coordinate and drops the dimension from
	// the output.
	KindScalar
	// KindAdvanced selects an explicit array of coordinates. Two or more
	// advanced dimensions are paired element-wise instead of combined.
	KindAdvanced
)

func (k AxisKind) String() string {
	switch k {
	case KindSlice:
		return "slice"
	case KindScalar:
		return "scalar"
	case KindAdvanced:
		return "advanced"
	default:
		return fmt.Sprintf("AxisKind(%d)", uint8(k))
	}
}

// AxisIndex is a normalized index along one dimension. Coordinates are
// expected to be non-negative; negative index handling belongs to whatever
// builds the AxisIndex (see Range and Index).
type AxisIndex struct {
	kind   AxisKind
	coords []int
}

// Scalar indexes a single coordinate
func Scalar(i int) AxisIndex {
	return AxisIndex{kind: KindScalar, coords: []int{i}}
}

// Slice indexes the ordered coordinates a range resolved to
func Slice(coords ...int) AxisIndex {
	return AxisIndex{kind: KindSlice, coords: coords}
}

// Advanced indexes an explicit array of coordinates
func Advanced(coords ...int) AxisIndex {
	return AxisIndex{kind: KindAdvanced, coords: coords}
}

// Kind reports how the dimension is indexed
func (ax AxisIndex) Kind() AxisKind { return ax.kind }

// Coords returns the selected coordinates in order. The returned slice must
// not be modified.
func (ax AxisIndex) Coords() []int { return ax.coords }

// Len is the number of coordinates selected along the dimension
func (ax AxisIndex) Len() int { return len(ax.coords) }

func (ax AxisIndex) String() string {
	if ax.kind == KindScalar {
		return fmt.Sprintf("%d", ax.coords[0])
	}
	return fmt.Sprintf("%s%v", ax.kind, ax.coords)
}

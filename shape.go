package zarr

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidShape is returned for shapes that cannot describe a view
	ErrInvalidShape = errors.New("invalid shape")
	// ErrAxisCountMismatch is returned when the number of indices supplied does
	// not match the number of dimensions of a shape
	ErrAxisCountMismatch = errors.New("axis count mismatch")
	// ErrOutOfRange is returned when a coordinate falls outside of [0, extent)
	ErrOutOfRange = errors.New("index out of range")
)

// ShapeMeta is the layout of a view over a flat buffer: the extent of each
// dimension plus the memory order items are stored in. Stride coefficients
// are derived once when a ShapeMeta is built. A ShapeMeta is never mutated
// after construction, so one value can be shared by any number of concurrent
// indexing calls.
type ShapeMeta struct {
	shape  []int
	order  Order
	coeffs []int
	size   int
}

// NewShapeMeta builds the layout for shape stored in the given order.
// Extents of zero are allowed and describe an empty view.
func NewShapeMeta(shape []int, order Order) (*ShapeMeta, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: at least one dimension is required", ErrInvalidShape)
	}
	if !order.valid() {
		return nil, fmt.Errorf("%w: unknown order %q", ErrInvalidShape, order)
	}
	// every coefficient is a product of some of the non-zero extents, so
	// bounding their product bounds all coefficients and the size
	nonzero := 1
	for i, ext := range shape {
		if ext < 0 {
			return nil, fmt.Errorf("%w: dimension %d has negative extent %d", ErrInvalidShape, i, ext)
		}
		if ext == 0 {
			continue
		}
		if nonzero > math.MaxInt/ext {
			return nil, fmt.Errorf("%w: shape %v has more items than an int can address", ErrInvalidShape, shape)
		}
		nonzero *= ext
	}

	s := make([]int, len(shape))
	copy(s, shape)
	return &ShapeMeta{
		shape:  s,
		order:  order,
		coeffs: strideCoefficients(s, order),
		size:   product(s),
	}, nil
}

// strideCoefficients computes the multiplier that turns a coordinate along
// each dimension into a linear offset. For row-major order coefficient k is
// the product of all extents to the right of k, for column-major order the
// product of all extents to the left.
func strideCoefficients(dims []int, order Order) []int {
	coeffs := make([]int, len(dims))
	acc := 1
	if order == ColumnMajor {
		for i, d := range dims {
			coeffs[i] = acc
			acc *= d
		}
		return coeffs
	}
	for i := len(dims) - 1; i >= 0; i-- {
		coeffs[i] = acc
		acc *= dims[i]
	}
	return coeffs
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// NDim returns the number of dimensions
func (m *ShapeMeta) NDim() int { return len(m.shape) }

// Order returns the memory order of the underlying buffer
func (m *ShapeMeta) Order() Order { return m.order }

// Size returns the number of items the shape spans
func (m *ShapeMeta) Size() int { return m.size }

// Extent returns the length of dimension axis
func (m *ShapeMeta) Extent(axis int) int { return m.shape[axis] }

// Coefficient returns the stride coefficient of dimension axis
func (m *ShapeMeta) Coefficient(axis int) int { return m.coeffs[axis] }

// Shape returns a copy of the per-dimension extents
func (m *ShapeMeta) Shape() []int {
	return append([]int(nil), m.shape...)
}

// Coefficients returns a copy of the per-dimension stride coefficients
func (m *ShapeMeta) Coefficients() []int {
	return append([]int(nil), m.coeffs...)
}

func (m *ShapeMeta) String() string {
	return fmt.Sprintf("%v[%s]", m.shape, m.order)
}

// Offset returns the linear buffer offset of a single item. It is the fast
// path for a selection made entirely of scalar indices and needs no
// traversal.
func (m *ShapeMeta) Offset(coords ...int) (int, error) {
	if len(coords) != len(m.shape) {
		return 0, fmt.Errorf("%w: got %d coordinates for %d dimensions", ErrAxisCountMismatch, len(coords), len(m.shape))
	}
	off := 0
	for k, c := range coords {
		if c < 0 || c >= m.shape[k] {
			return 0, fmt.Errorf("%w: index %d is out of bounds for axis %d with size %d", ErrOutOfRange, c, k, m.shape[k])
		}
		off += c * m.coeffs[k]
	}
	return off, nil
}

// Unravel converts a linear buffer offset back into per-dimension
// coordinates. It is the inverse of Offset.
func (m *ShapeMeta) Unravel(offset int) ([]int, error) {
	if offset < 0 || offset >= m.size {
		return nil, fmt.Errorf("%w: offset %d is out of bounds for size %d", ErrOutOfRange, offset, m.size)
	}
	coords := make([]int, len(m.shape))
	for k, c := range m.coeffs {
		coords[k] = (offset / c) % m.shape[k]
	}
	return coords, nil
}

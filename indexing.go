package zarr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBroadcastMismatch is returned when advanced indices have lengths that
// cannot be paired with one another
var ErrBroadcastMismatch = errors.New("indexing arrays could not be broadcast together")

// Resolution is a selection checked against a ShapeMeta, with every
// coordinate already multiplied by the stride coefficient of its dimension.
// Scaled coordinates for all dimensions share one buffer; dimension k owns
// scaled[starts[k] : starts[k]+counts[k]].
//
// A Resolution is read-only once built and may be expanded concurrently.
type Resolution struct {
	meta     *ShapeMeta
	kinds    []AxisKind
	scaled   []int
	starts   []int
	counts   []int
	advanced []int
	bcast    int
}

// Resolve validates sel against m and builds the scaled coordinate table.
// All validation happens here: expanding a Resolution never fails.
func Resolve(m *ShapeMeta, sel []AxisIndex) (*Resolution, error) {
	ndim := m.NDim()
	if len(sel) != ndim {
		return nil, fmt.Errorf("%w: got %d indices for %d dimensions", ErrAxisCountMismatch, len(sel), ndim)
	}

	total := 0
	for _, ax := range sel {
		total += ax.Len()
	}

	r := &Resolution{
		meta:   m,
		kinds:  make([]AxisKind, ndim),
		scaled: make([]int, 0, total),
		starts: make([]int, ndim),
		counts: make([]int, ndim),
	}

	for k, ax := range sel {
		r.kinds[k] = ax.kind
		r.starts[k] = len(r.scaled)
		r.counts[k] = len(ax.coords)

		ext, coeff := m.shape[k], m.coeffs[k]
		for _, c := range ax.coords {
			if c < 0 || c >= ext {
				return nil, fmt.Errorf("%w: index %d is out of bounds for axis %d with size %d", ErrOutOfRange, c, k, ext)
			}
			r.scaled = append(r.scaled, c*coeff)
		}

		if ax.kind == KindAdvanced {
			r.advanced = append(r.advanced, k)
		}
	}

	bcast, err := broadcastLen(r.advanced, r.counts)
	if err != nil {
		return nil, err
	}
	r.bcast = bcast
	return r, nil
}

// broadcastLen returns the common length of the advanced indices. Lengths
// must be equal, except that a length of one stretches to match any other
// and an empty index empties the whole group.
func broadcastLen(axes, counts []int) (int, error) {
	n, empty := 1, false
	for _, a := range axes {
		c := counts[a]
		switch {
		case c == 0:
			empty = true
		case c == 1:
		case n == 1:
			n = c
		case c != n:
			shapes := make([]string, len(axes))
			for i, a := range axes {
				shapes[i] = fmt.Sprintf("(%d,)", counts[a])
			}
			return 0, fmt.Errorf("%w with shapes %s", ErrBroadcastMismatch, strings.Join(shapes, " "))
		}
	}
	if empty {
		return 0, nil
	}
	return n, nil
}

// Meta returns the layout the selection was resolved against
func (r *Resolution) Meta() *ShapeMeta { return r.meta }

// Kind reports how dimension axis is indexed
func (r *Resolution) Kind(axis int) AxisKind { return r.kinds[axis] }

// Count is the number of coordinates selected along dimension axis
func (r *Resolution) Count(axis int) int { return r.counts[axis] }

// Start is the position of dimension axis within the shared scaled
// coordinate buffer
func (r *Resolution) Start(axis int) int { return r.starts[axis] }

// Scaled returns the scaled coordinates of dimension axis. The returned
// slice must not be modified.
func (r *Resolution) Scaled(axis int) []int {
	return r.scaled[r.starts[axis] : r.starts[axis]+r.counts[axis]]
}

// NeedsBroadcast reports whether two or more dimensions use advanced
// indices, which makes them move in lock-step
func (r *Resolution) NeedsBroadcast() bool { return len(r.advanced) > 1 }

// BroadcastLen is the common length of the advanced indices, or 1 when
// there are none
func (r *Resolution) BroadcastLen() int { return r.bcast }

// Expand computes the buffer offset of every selected item. workers > 1
// spreads the work across goroutines.
func (r *Resolution) Expand(workers int) *Result {
	p := r.Plan()
	out := make([]int, p.size)
	if r.NeedsBroadcast() {
		expand(r, p, out, workers, broadcastTerm)
	} else {
		expand(r, p, out, workers, cartesianTerm)
	}
	return assemble(p, out)
}

// Offsets resolves sel and returns the buffer offset of every selected item
// along with the shape of the selection. Scalar axes select a single
// coordinate and, as in NumPy, contribute no dimension to Result.Shape;
// the full per-axis layout including them is available from
// Resolution.Plan().Dims().
func (m *ShapeMeta) Offsets(sel ...AxisIndex) (*Result, error) {
	return m.ParallelOffsets(1, sel...)
}

// ParallelOffsets is Offsets with expansion split across workers goroutines
func (m *ShapeMeta) ParallelOffsets(workers int, sel ...AxisIndex) (*Result, error) {
	r, err := Resolve(m, sel)
	if err != nil {
		return nil, err
	}
	return r.Expand(workers), nil
}

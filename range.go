package zarr

import "fmt"

// Range is a start:stop:step selection along one dimension. Values follow
// the usual tensor slicing conventions:
//   - Start and Stop may be negative, counting back from the end
//   - a zero Stop with a non-negative Step means "through the end"
//   - a zero Start with a negative Step means "from the last item"
//   - a zero Step is 1
//
// The zero Range selects a whole dimension.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// All selects every coordinate of a dimension
func All() Range { return Range{} }

// Span selects [start, stop) with a step of one
func Span(start, stop int) Range { return Range{Start: start, Stop: stop} }

func (r Range) step() int {
	if r.Step == 0 {
		return 1
	}
	return r.Step
}

// bounds returns the clamped first coordinate and the exclusive end
func (r Range) bounds(extent int) (start, stop int) {
	step := r.step()
	start, stop = r.Start, r.Stop
	if step < 0 {
		if start == 0 {
			start = extent - 1
		} else if start < 0 {
			start += extent
		}
		if stop == 0 {
			stop = -1
		} else if stop < 0 {
			stop += extent
		}
		return clamp(start, -1, extent-1), clamp(stop, -1, extent-1)
	}

	if start < 0 {
		start += extent
	}
	if stop == 0 {
		stop = extent
	} else if stop < 0 {
		stop += extent
	}
	return clamp(start, 0, extent), clamp(stop, 0, extent)
}

// Len is the number of coordinates the range selects on a dimension of the
// given extent
func (r Range) Len(extent int) int {
	start, stop := r.bounds(extent)
	step := r.step()
	if step > 0 {
		if stop <= start {
			return 0
		}
		return (stop - start + step - 1) / step
	}
	if start <= stop {
		return 0
	}
	return (start - stop - step - 1) / -step
}

// Resolve expands the range into the coordinates it denotes
func (r Range) Resolve(extent int) AxisIndex {
	n := r.Len(extent)
	start, _ := r.bounds(extent)
	step := r.step()
	coords := make([]int, n)
	for i := range coords {
		coords[i] = start + i*step
	}
	return Slice(coords...)
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d:%d", r.Start, r.Stop, r.step())
}

// Index normalizes a possibly negative scalar index against extent
func Index(i, extent int) (AxisIndex, error) {
	j := i
	if j < 0 {
		j += extent
	}
	if j < 0 || j >= extent {
		return AxisIndex{}, fmt.Errorf("%w: index %d is out of bounds for size %d", ErrOutOfRange, i, extent)
	}
	return Scalar(j), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package zarr

// outputDim is one dimension of a selection's output. It is fed either by a
// single axis or by the group of advanced axes, which share one index.
type outputDim struct {
	axes []int
	size int
	// scalar axes occupy a dimension of size one that is dropped from the
	// visible output shape
	hidden bool
}

// OutputPlan describes the layout of the offsets a selection produces. The
// output is always row-major over the plan dimensions, whatever the order
// of the buffer being indexed.
type OutputPlan struct {
	dims    []outputDim
	strides []int
	size    int
}

// Plan lays out the output dimensions of the selection.
//
// Without advanced indices every axis keeps its position. With advanced
// indices the paired axes collapse into one dimension of BroadcastLen
// items, and scalar axes count as advanced when deciding where it goes: if
// the advanced axes are adjacent the dimension replaces them in place,
// otherwise it moves to the front of the output.
func (r *Resolution) Plan() *OutputPlan {
	ndim := len(r.kinds)
	p := &OutputPlan{dims: make([]outputDim, 0, ndim)}

	var group outputDim
	front := false
	if len(r.advanced) > 0 {
		group = outputDim{axes: r.advanced, size: r.bcast}
		front = !adjacentAdvanced(r.kinds)
		if front {
			p.dims = append(p.dims, group)
		}
	}

	for k, kind := range r.kinds {
		switch kind {
		case KindAdvanced:
			if !front && k == r.advanced[0] {
				p.dims = append(p.dims, group)
			}
		case KindScalar:
			p.dims = append(p.dims, outputDim{axes: []int{k}, size: 1, hidden: true})
		default:
			p.dims = append(p.dims, outputDim{axes: []int{k}, size: r.counts[k]})
		}
	}

	sizes := p.Dims()
	p.strides = strideCoefficients(sizes, RowMajor)
	p.size = product(sizes)
	return p
}

// adjacentAdvanced reports whether the scalar and advanced axes form one
// unbroken run
func adjacentAdvanced(kinds []AxisKind) bool {
	first, last := -1, -1
	for k, kind := range kinds {
		if kind != KindSlice {
			if first < 0 {
				first = k
			}
			last = k
		}
	}
	for k := first + 1; k < last; k++ {
		if kinds[k] == KindSlice {
			return false
		}
	}
	return true
}

// Dims returns the size of every output dimension in traversal order,
// including the size-one dimensions of scalar axes
func (p *OutputPlan) Dims() []int {
	sizes := make([]int, len(p.dims))
	for i, d := range p.dims {
		sizes[i] = d.size
	}
	return sizes
}

// Strides returns the row-major coefficients over Dims
func (p *OutputPlan) Strides() []int {
	return append([]int(nil), p.strides...)
}

// Shape is the output shape handed back to callers, without the dimensions
// of scalar axes
func (p *OutputPlan) Shape() []int {
	shape := make([]int, 0, len(p.dims))
	for _, d := range p.dims {
		if !d.hidden {
			shape = append(shape, d.size)
		}
	}
	return shape
}

// Len is the number of offsets the selection produces
func (p *OutputPlan) Len() int { return p.size }

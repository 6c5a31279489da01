package zarr

// Result is the outcome of an indexing call: one buffer offset per selected
// item, in row-major order over Shape.
type Result struct {
	offsets []int
	shape   []int
}

func assemble(p *OutputPlan, offsets []int) *Result {
	return &Result{offsets: offsets, shape: p.Shape()}
}

// Offsets returns the buffer offset of each selected item. The slice
// belongs to the caller.
func (r *Result) Offsets() []int { return r.offsets }

// Shape returns a copy of the output shape. A selection of only scalar
// indices has an empty shape and a single offset.
func (r *Result) Shape() []int {
	return append([]int{}, r.shape...)
}

// Len is the number of selected items
func (r *Result) Len() int { return len(r.offsets) }

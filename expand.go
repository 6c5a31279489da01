package zarr

import "sync"

// minParallelItems is the output size below which splitting the expansion
// across goroutines is not worth the scheduling cost
const minParallelItems = 1 << 12

// termFunc returns the summed scaled coordinates that output dimension d
// contributes at index j
type termFunc func(r *Resolution, d *outputDim, j int) int

// cartesianTerm is used when each output dimension is fed by exactly one
// axis, so every axis iterates independently of the others.
func cartesianTerm(r *Resolution, d *outputDim, j int) int {
	return r.scaled[r.starts[d.axes[0]]+j]
}

// broadcastTerm is used when two or more advanced axes are present. The
// axes of the advanced group do not loop on their own: they all read the
// group's single index, and axes of length one always read position 0.
func broadcastTerm(r *Resolution, d *outputDim, j int) int {
	if len(d.axes) == 1 {
		return r.scaled[r.starts[d.axes[0]]+j]
	}
	sum := 0
	for _, a := range d.axes {
		if r.counts[a] == 1 {
			sum += r.scaled[r.starts[a]]
			continue
		}
		sum += r.scaled[r.starts[a]+j]
	}
	return sum
}

// expand writes every offset of the selection into out. Each index of the
// outermost output dimension owns a disjoint block of out, so the outermost
// dimension is split into contiguous ranges, one per worker.
func expand(r *Resolution, p *OutputPlan, out []int, workers int, term termFunc) {
	if p.size == 0 {
		return
	}
	outer := p.dims[0].size
	if workers > outer {
		workers = outer
	}
	if workers <= 1 || p.size < minParallelItems {
		walk(r, p, out, 0, outer, term)
		return
	}

	var wg sync.WaitGroup
	per := (outer + workers - 1) / workers
	for lo := 0; lo < outer; lo += per {
		hi := lo + per
		if hi > outer {
			hi = outer
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			walk(r, p, out, lo, hi, term)
		}(lo, hi)
	}
	wg.Wait()
}

// walk visits every combination of output indices whose outermost index
// lies in [lo, hi), last dimension fastest. It keeps a running offset sum
// and a running output slot per depth, so moving to the next combination
// only recomputes the dimensions that changed:
//
//	slot   = Σ idx[d] * strides[d]
//	offset = Σ term(d, idx[d])
func walk(r *Resolution, p *OutputPlan, out []int, lo, hi int, term termFunc) {
	n := len(p.dims)
	idx := make([]int, n)
	sums := make([]int, n+1)
	slots := make([]int, n+1)

	idx[0] = lo
	d := 0
	for {
		for ; d < n; d++ {
			sums[d+1] = sums[d] + term(r, &p.dims[d], idx[d])
			slots[d+1] = slots[d] + idx[d]*p.strides[d]
		}
		out[slots[n]] = sums[n]

		d = n - 1
		for {
			idx[d]++
			limit := p.dims[d].size
			if d == 0 {
				limit = hi
			}
			if idx[d] < limit {
				break
			}
			if d == 0 {
				return
			}
			idx[d] = 0
			d--
		}
	}
}

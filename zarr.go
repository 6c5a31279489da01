package zarr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"
)

var (
	// ErrUnsupported is returned for metadata features this package can't
	// read or write
	ErrUnsupported = errors.New("unsupported")
	// ErrReadOnly is returned when writing to an array opened with ModeRead
	ErrReadOnly = errors.New("array is read only")
	// ErrSelectionTooLarge is returned when a selection addresses more items
	// than Config.MaxElements allows
	ErrSelectionTooLarge = errors.New("selection too large")
)

// Config holds runtime settings for reading and writing an array
type Config struct {
	// MaxElements caps the number of items a single selection may address.
	// Selections are rejected before any offsets are computed. Zero means no
	// limit.
	MaxElements int
	// Workers is the number of goroutines used to compute offsets
	Workers int
}

// DefaultConfig allows selections of up to 2^28 items and uses one worker
// per available CPU
func DefaultConfig() Config {
	return Config{
		MaxElements: 1 << 28,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// Array is a chunked N-dimensional array held in a Store
type Array struct {
	path  Path
	store Store
	mode  PersistenceMode
	meta  *ArrayMeta
	cfg   Config
	// set when metadata was found in a consolidated document stored at
	// consolidatedBase
	consolidated     *ConsolidatedMetadata
	consolidatedBase Path

	layout      *ShapeMeta
	chunkLayout *ShapeMeta
}

// Block is a selection of items copied out of an array, laid out in
// row-major order over Shape
type Block struct {
	Shape []int
	Dtype Dtype
	Data  []byte
}

// Len is the number of items in the block
func (b *Block) Len() int { return product(b.Shape) }

// Values decodes the block into a typed slice such as []int32 or []float64
func (b *Block) Values() (interface{}, error) {
	return b.Dtype.decode(b.Data)
}

// Create writes array metadata to path in store, replacing any existing
// array, and returns the array opened for reading and writing
func Create(store Store, path string, m *ArrayMeta) (*Array, error) {
	p, err := NewPath(path)
	if err != nil {
		return nil, err
	}

	meta := *m
	if meta.ZarrFormat == 0 {
		meta.ZarrFormat = FormatVersion
	}
	if meta.Order == "" {
		meta.Order = RowMajor
	}

	a, err := newArray(store, p, ModeReadWrite, &meta, DefaultConfig())
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(a.meta)
	if err != nil {
		return nil, err
	}
	if err := store.Put(p.Join(string(MTArray)).String(), bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return a, nil
}

// Open reads the array at path with DefaultConfig
func Open(store Store, path string, mode PersistenceMode) (*Array, error) {
	return OpenConfig(store, path, mode, DefaultConfig())
}

// OpenConfig reads the array at path. Array metadata is read from the
// path's ".zarray" key, falling back to a ".zmetadata" consolidated
// document stored at the path or any of its ancestors.
func OpenConfig(store Store, path string, mode PersistenceMode, cfg Config) (*Array, error) {
	p, err := NewPath(path)
	if err != nil {
		return nil, err
	}

	meta := &ArrayMeta{}
	var (
		cm   *ConsolidatedMetadata
		base Path
	)
	err = decodeKey(store, p.Join(string(MTArray)), meta)
	if errors.Is(err, ErrNotfound) {
		meta, cm, base, err = findConsolidated(store, p)
	}
	if err != nil {
		return nil, err
	}

	a, err := newArray(store, p, mode, meta, cfg)
	if err != nil {
		return nil, err
	}
	a.consolidated = cm
	a.consolidatedBase = base
	return a, nil
}

func newArray(store Store, p Path, mode PersistenceMode, meta *ArrayMeta, cfg Config) (*Array, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	layout, err := NewShapeMeta(meta.Shape, meta.order())
	if err != nil {
		return nil, err
	}
	chunkLayout, err := NewShapeMeta(meta.Chunks, meta.order())
	if err != nil {
		return nil, err
	}
	if chunkLayout.Size() > math.MaxInt/meta.Dtype.Dtype.ItemSize() {
		return nil, fmt.Errorf("%w: chunks %v are too large", ErrInvalidShape, meta.Chunks)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Array{
		path:        p,
		store:       store,
		mode:        mode,
		meta:        meta,
		cfg:         cfg,
		layout:      layout,
		chunkLayout: chunkLayout,
	}, nil
}

func decodeKey(store Store, key Path, v interface{}) error {
	f, err := store.Get(key.String())
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("reading %q: %w", key.String(), err)
	}
	return nil
}

// findConsolidated looks for array metadata for p in the consolidated
// documents of p and its ancestors, nearest first
func findConsolidated(store Store, p Path) (*ArrayMeta, *ConsolidatedMetadata, Path, error) {
	for base, ok := p, true; ok; base, ok = base.Parent() {
		cm := &ConsolidatedMetadata{}
		err := decodeKey(store, base.Join(string(MTMetadata)), cm)
		if errors.Is(err, ErrNotfound) {
			continue
		} else if err != nil {
			return nil, nil, nil, err
		}
		if meta, ok := cm.Array(p.Rel(base)); ok {
			return meta, cm, base, nil
		}
	}
	return nil, nil, nil, fmt.Errorf("%w: no array at %q", ErrNotfound, p.String())
}

// Info returns a short description of the array
func (a *Array) Info() string {
	dims := make([]string, a.layout.NDim())
	for i := range dims {
		dims[i] = fmt.Sprint(a.layout.Extent(i))
	}
	return fmt.Sprintf("<zarr.Array '/%s' (%s) %s>", a.Path(), strings.Join(dims, ", "), a.meta.Dtype.Dtype)
}

func (a *Array) Path() string {
	return a.path.String()
}

// Meta returns the array's metadata. It must not be modified.
func (a *Array) Meta() *ArrayMeta { return a.meta }

// Layout returns the shape and memory order of the array
func (a *Array) Layout() *ShapeMeta { return a.layout }

// Attributes reads the user attributes of the array. An array without
// attributes returns an empty set.
func (a *Array) Attributes() (Attributes, error) {
	attrs := Attributes{}
	err := decodeKey(a.store, a.path.Join(string(MTAttributes)), &attrs)
	if errors.Is(err, ErrNotfound) {
		if a.consolidated != nil {
			if ca, ok := a.consolidated.Attributes(a.path.Rel(a.consolidatedBase)); ok {
				return ca, nil
			}
		}
		return Attributes{}, nil
	}
	return attrs, err
}

// Select copies out the items picked by one index per dimension. Only the
// chunks the selection touches are read.
func (a *Array) Select(sel ...AxisIndex) (*Block, error) {
	r, err := Resolve(a.layout, sel)
	if err != nil {
		return nil, err
	}
	p := r.Plan()
	if a.cfg.MaxElements > 0 && p.Len() > a.cfg.MaxElements {
		return nil, fmt.Errorf("%w: %d items requested, limit is %d", ErrSelectionTooLarge, p.Len(), a.cfg.MaxElements)
	}

	dt := a.meta.Dtype.Dtype
	block := &Block{Shape: p.Shape(), Dtype: dt}
	if p.Len() == 0 {
		return block, nil
	}

	res := r.Expand(a.cfg.Workers)
	block.Data, err = a.gather(res.Offsets())
	if err != nil {
		return nil, err
	}
	return block, nil
}

// gather copies the items at the given array offsets. Each offset is split
// into the grid coordinates of the chunk holding it and an offset within
// that chunk; only the chunks that hold a selected item are read, each at
// most once.
func (a *Array) gather(offsets []int) ([]byte, error) {
	is := a.meta.Dtype.Dtype.ItemSize()
	sep := a.meta.separator()
	data := make([]byte, len(offsets)*is)
	chunks := map[string][]byte{}

	grid := make([]int, a.layout.NDim())
	inner := make([]int, a.layout.NDim())
	for i, off := range offsets {
		coords, err := a.layout.Unravel(off)
		if err != nil {
			return nil, err
		}
		for k, c := range coords {
			grid[k] = c / a.meta.Chunks[k]
			inner[k] = c % a.meta.Chunks[k]
		}

		key := ChunkKey(grid, sep)
		raw, ok := chunks[key]
		if !ok {
			if raw, err = a.readChunk(grid); err != nil {
				return nil, err
			}
			chunks[key] = raw
		}

		src, err := a.chunkLayout.Offset(inner...)
		if err != nil {
			return nil, err
		}
		copy(data[i*is:(i+1)*is], raw[src*is:(src+1)*is])
	}
	return data, nil
}

// Slice selects items start through stop of the first dimension along with
// every item of the remaining dimensions. start and stop follow Range.
func (a *Array) Slice(start, stop int) (*Block, error) {
	sel := make([]AxisIndex, a.layout.NDim())
	sel[0] = Range{Start: start, Stop: stop}.Resolve(a.layout.Extent(0))
	for k := 1; k < len(sel); k++ {
		sel[k] = All().Resolve(a.layout.Extent(k))
	}
	return a.Select(sel...)
}

// ReadAll reads every item of the array
func (a *Array) ReadAll() (*Block, error) {
	sel := make([]AxisIndex, a.layout.NDim())
	for k := range sel {
		sel[k] = All().Resolve(a.layout.Extent(k))
	}
	return a.Select(sel...)
}

// readChunk returns the raw bytes of one chunk. Chunks that were never
// written read as the array's fill value.
func (a *Array) readChunk(coords []int) ([]byte, error) {
	size := a.chunkLayout.Size() * a.meta.Dtype.Dtype.ItemSize()
	f, err := a.store.Get(a.chunkPath(coords).String())
	if errors.Is(err, ErrNotfound) {
		return a.filledChunk()
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	rc, err := a.meta.Compressor.Decompressor(f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("chunk %s: expected %d bytes, got %d", a.chunkPath(coords), size, len(data))
	}
	return data, nil
}

func (a *Array) filledChunk() ([]byte, error) {
	item, err := a.meta.Dtype.Dtype.encodeFill(a.meta.FillValue)
	if err != nil {
		return nil, err
	}
	return bytes.Repeat(item, a.chunkLayout.Size()), nil
}

// WriteAll replaces the contents of the array. data holds every item laid
// out in the array's own order. Chunks are compressed with the array's
// compressor.
func (a *Array) WriteAll(data []byte) error {
	if a.mode == ModeRead {
		return fmt.Errorf("%w: %s", ErrReadOnly, a.Path())
	}
	is := a.meta.Dtype.Dtype.ItemSize()
	if a.layout.Size() > math.MaxInt/is {
		return fmt.Errorf("%w: array of %d items is too large to write at once", ErrSelectionTooLarge, a.layout.Size())
	}
	if len(data) != a.layout.Size()*is {
		return fmt.Errorf("expected %d bytes of data, got %d", a.layout.Size()*is, len(data))
	}

	grid := GridShape(a.meta.Shape, a.meta.Chunks)
	all := make([][]int, len(grid))
	for k, n := range grid {
		all[k] = seq(0, n)
	}
	return eachChunk(all, func(coords []int) error {
		chunk, err := a.filledChunk()
		if err != nil {
			return err
		}
		proj, err := a.project(coords)
		if err != nil {
			return err
		}
		for i, dst := range proj.ChunkSelection {
			src := proj.OutSelection[i]
			copy(chunk[dst*is:(dst+1)*is], data[src*is:(src+1)*is])
		}
		return a.writeChunk(coords, chunk)
	})
}

func (a *Array) writeChunk(coords []int, chunk []byte) error {
	buf := &bytes.Buffer{}
	w, err := a.meta.Compressor.Compressor(buf)
	if err != nil {
		return err
	}
	if _, err := w.Write(chunk); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return a.store.Put(a.chunkPath(coords).String(), buf)
}

func (a *Array) chunkPath(coords []int) Path {
	return a.path.Join(ChunkKey(coords, a.meta.separator()))
}

type PersistenceMode string

const (
	// Persistence mode:
	// ‘r’ means read only (must exist);
	ModeRead PersistenceMode = "r"
	//‘r+’ means read/write (must exist)
	ModeReadWrite PersistenceMode = "r+"
	// ‘a’ means read/write (create if doesn’t exist)
	ModeReadWriteCreate PersistenceMode = "a"
	// ‘w’ means create (overwrite if exists)
	ModeWrite PersistenceMode = "w"
	// ‘w-’ means create (fail if exists).
	ModeWriteFail PersistenceMode = "w-"
)

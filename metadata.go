package zarr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormatVersion is the version of the storage specification this package
// reads and writes
const FormatVersion = 2

type MetaType string

const (
	// MTAttributes stores userland metadata keyed by array name
	MTAttributes MetaType = ".zattrs"
	// MTArray is the key for storing metadata on an array store
	MTArray MetaType = ".zarray"
	// MTGroup is the key for storing group definitions on an array store
	MTGroup MetaType = ".zgroup"
	// MTMetadata is the key for composite metadata
	MTMetadata MetaType = ".zmetadata"
)

type MetaTyper interface {
	MetaType() MetaType
}

var metaTypes = map[MetaType]struct{}{
	MTAttributes: {},
	MTArray:      {},
	MTGroup:      {},
}

// KeyMetaType reports which kind of metadata document a store key names.
// All three document names are 7 characters long.
func KeyMetaType(s string) (mt MetaType, ok bool) {
	if len(s) < 7 {
		return mt, false
	}
	mt = MetaType(s[len(s)-7:])
	_, ok = metaTypes[mt]
	return mt, ok
}

type Attributes map[string]interface{}

func (Attributes) MetaType() MetaType { return MTAttributes }

// ConsolidatedMetadata gathers every metadata document below a group into a
// single ".zmetadata" document, keyed by store path
type ConsolidatedMetadata struct {
	ConsolidatedFormat int                  `json:"zarr_consolidated_format"`
	Metadata           map[string]MetaTyper `json:"metadata"`
}

type consolidatedMetaDecoder struct {
	ConsolidatedFormat int                        `json:"zarr_consolidated_format"`
	Metadata           map[string]json.RawMessage `json:"metadata"`
}

func (m *ConsolidatedMetadata) UnmarshalJSON(d []byte) error {
	cd := consolidatedMetaDecoder{}
	if err := json.Unmarshal(d, &cd); err != nil {
		return err
	}
	cm := ConsolidatedMetadata{
		ConsolidatedFormat: cd.ConsolidatedFormat,
		Metadata:           map[string]MetaTyper{},
	}

	for key, data := range cd.Metadata {
		kt, ok := KeyMetaType(key)
		if !ok {
			return fmt.Errorf("invalid consoldated metadata key: %q", key)
		}

		switch kt {
		case MTArray:
			arr := &ArrayMeta{}
			if err := json.Unmarshal(data, arr); err != nil {
				return fmt.Errorf("reading %q metadata: %w", key, err)
			}
			cm.Metadata[key] = arr
		case MTAttributes:
			attr := Attributes{}
			if err := json.Unmarshal(data, &attr); err != nil {
				return fmt.Errorf("reading %q attributes: %w", key, err)
			}
			cm.Metadata[key] = attr
		case MTGroup:
			grp := &Group{}
			if err := json.Unmarshal(data, grp); err != nil {
				return fmt.Errorf("reading %q group: %w", key, err)
			}
			cm.Metadata[key] = grp
		}
	}

	*m = cm
	return nil
}

// Array returns the array metadata stored under logical path p
func (m *ConsolidatedMetadata) Array(p Path) (*ArrayMeta, bool) {
	am, ok := m.Metadata[p.Join(string(MTArray)).String()].(*ArrayMeta)
	return am, ok
}

// Attributes returns the attributes stored under logical path p
func (m *ConsolidatedMetadata) Attributes(p Path) (Attributes, bool) {
	attrs, ok := m.Metadata[p.Join(string(MTAttributes)).String()].(Attributes)
	return attrs, ok
}

// Each array requires essential configuration metadata to be stored,
// enabling correct interpretation of the stored data.
// This metadata is encoded using JSON and stored as the value of the
// “.zarray” key within an array store.
type ArrayMeta struct {
	// An integer defining the version of the storage specification to which
	// the array store adheres.
	ZarrFormat int `json:"zarr_format"`
	// A list of integers defining the length of each dimension of the array.
	Shape []int `json:"shape"`
	// A list of integers defining the length of each dimension of a chunk of the
	// array. Note that all chunks within a Zarr array have the same shape.
	Chunks []int `json:"chunks"`
	// A string or list defining a valid data type for the array.
	Dtype StructuredType `json:"dtype"`
	// Primary compression codec, or nil if chunks are stored uncompressed.
	Compressor *CompressionMeta `json:"compressor"`
	// Default value for uninitialized portions of the array: a number, one of
	// the FillValue* strings, or nil for zeros.
	FillValue interface{} `json:"fill_value"`
	// Layout of items within each chunk: "C" (row-major) or "F"
	// (column-major).
	Order Order `json:"order"`
	// Codec configurations applied before compression, or nil.
	Filters []Filter `json:"filters"`

	// optional fields

	// Separator placed between chunk indices in chunk keys: "." (the
	// default, giving keys like "0.0") or "/" for nested keys like "0/0".
	DimensionSeparator string `json:"dimension_separator,omitempty"`
}

func (a ArrayMeta) MetaType() MetaType { return MTArray }

// UnmarshalJSON keeps a numeric fill value as a json.Number so large
// integer fill values aren't rounded through float64
func (a *ArrayMeta) UnmarshalJSON(d []byte) error {
	type arrayMeta ArrayMeta
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	m := arrayMeta{}
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*a = ArrayMeta(m)
	return nil
}

// Validate checks that the metadata describes an array this package can
// index
func (a *ArrayMeta) Validate() error {
	if a.ZarrFormat != FormatVersion {
		return fmt.Errorf("%w: zarr format %d", ErrUnsupported, a.ZarrFormat)
	}
	if len(a.Chunks) != len(a.Shape) {
		return fmt.Errorf("%w: chunks %v do not match shape %v", ErrInvalidShape, a.Chunks, a.Shape)
	}
	for i, c := range a.Chunks {
		if c <= 0 {
			return fmt.Errorf("%w: chunk dimension %d has extent %d", ErrInvalidShape, i, c)
		}
	}
	if _, err := ParseOrder(string(a.Order)); err != nil {
		return err
	}
	if !a.Dtype.IsBasic() {
		return fmt.Errorf("%w: structured dtype", ErrUnsupported)
	}
	if a.Dtype.Dtype.ByteSize <= 0 {
		return fmt.Errorf("invalid dtype %s", a.Dtype.Dtype)
	}
	if len(a.Filters) > 0 {
		return fmt.Errorf("%w: filters", ErrUnsupported)
	}
	switch a.separator() {
	case ".", "/":
	default:
		return fmt.Errorf("invalid dimension separator %q", a.DimensionSeparator)
	}
	return nil
}

func (a *ArrayMeta) separator() string {
	if a.DimensionSeparator == "" {
		return "."
	}
	return a.DimensionSeparator
}

func (a *ArrayMeta) order() Order {
	o, _ := ParseOrder(string(a.Order))
	return o
}

type Filter struct {
	ID     string `json:"id"`
	Delta  string `json:"delta,omitempty"`
	Dtype  string `json:"dtype,omitempty"`
	AsType string `json:"astype,omitempty"`
}

const (
	// Not a Number
	FillValueNaN = "NaN"
	// Infinity
	FillValueInfinity = "Infinity"
	// -Infinity
	FillValueNegativeInfinity = "-Infinity"
)

// Arrays can be organized into groups which can also contain other groups.
// A group is created by storing group ArrayMeta under the “.zgroup” key under
// some logical path. E.g., a group exists at the root of an array store if the
// “.zgroup” key exists in the store, and a group exists at logical path
// “foo/bar” if the “foo/bar/.zgroup” key exists in the store.
type Group struct {
	ZarrFormat int `json:"zarr_format"`
}

func (Group) MetaType() MetaType { return MTGroup }

// Path is a normalized logical path within a store
type Path []string

// NewPath normalizes a logical path: backslashes become forward slashes,
// leading and trailing slashes are dropped and runs of slashes collapse.
// The root path is empty.
func NewPath(posix string) (Path, error) {
	posix = strings.ReplaceAll(posix, `\`, "/")
	var p Path
	for _, el := range strings.Split(posix, "/") {
		switch el {
		case "":
			continue
		case ".", "..":
			return nil, fmt.Errorf("invalid path %q: relative segments are not allowed", posix)
		}
		p = append(p, el)
	}
	return p, nil
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// Parent returns the path one level up, and false at the root
func (p Path) Parent() (Path, bool) {
	if len(p) == 0 {
		return nil, false
	}
	return p[:len(p)-1], true
}

// Rel returns p relative to the ancestor base
func (p Path) Rel(base Path) Path {
	return p[len(base):]
}

func (p Path) Join(elems ...string) Path {
	joined := make(Path, 0, len(p)+len(elems))
	joined = append(joined, p...)
	return append(joined, elems...)
}

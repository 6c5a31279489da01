package zarr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// https://zarr.readthedocs.io/en/stable/spec/v2.html#metadata
const specExample = `{
  "chunks": [
    1000,
    1000
  ],
	"compressor": {
			"id": "blosc",
			"cname": "lz4",
			"clevel": 5,
			"shuffle": 1
	},
	"dtype": "<f8",
	"fill_value": "NaN",
	"filters": [
			{"id": "delta", "dtype": "<f8", "astype": "<f4"}
	],
	"order": "C",
	"shape": [
			10000,
			10000
	],
	"zarr_format": 2
}`

func TestMetadataSerialization(t *testing.T) {
	m := &ArrayMeta{}
	require.NoError(t, json.Unmarshal([]byte(specExample), m))

	assert.Equal(t, []int{1000, 1000}, m.Chunks)
	assert.Equal(t, []int{10000, 10000}, m.Shape)
	assert.Equal(t, RowMajor, m.Order)
	assert.Equal(t, "<f8", m.Dtype.Dtype.String())
	assert.Equal(t, "blosc", m.Compressor.ID)
	assert.Equal(t, FillValueNaN, m.FillValue)
	assert.Equal(t, []Filter{{ID: "delta", Dtype: "<f8", AsType: "<f4"}}, m.Filters)

	// filters are not applied when reading
	assert.ErrorIs(t, m.Validate(), ErrUnsupported)
	m.Filters = nil
	assert.NoError(t, m.Validate())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	back := &ArrayMeta{}
	require.NoError(t, json.Unmarshal(data, back))
	assert.Equal(t, m, back)
}

func TestMetadataValidate(t *testing.T) {
	valid := func() *ArrayMeta {
		return &ArrayMeta{
			ZarrFormat: FormatVersion,
			Shape:      []int{4, 4},
			Chunks:     []int{2, 2},
			Dtype:      int32Dtype,
		}
	}
	require.NoError(t, valid().Validate())

	m := valid()
	m.ZarrFormat = 3
	assert.ErrorIs(t, m.Validate(), ErrUnsupported)

	m = valid()
	m.Chunks = []int{2, 0}
	assert.ErrorIs(t, m.Validate(), ErrInvalidShape)

	m = valid()
	m.Order = "K"
	assert.Error(t, m.Validate())

	m = valid()
	m.DimensionSeparator = "_"
	assert.Error(t, m.Validate())

	m = valid()
	m.Dtype = StructuredType{Fieldname: "a", Dtype: int32Dtype.Dtype}
	assert.ErrorIs(t, m.Validate(), ErrUnsupported)
}

func TestConsolidatedMetadata(t *testing.T) {
	cm := &ConsolidatedMetadata{}
	require.NoError(t, json.Unmarshal([]byte(consolidatedDoc), cm))
	assert.Equal(t, 1, cm.ConsolidatedFormat)
	assert.Len(t, cm.Metadata, 4)

	p, err := NewPath("grp/temps")
	require.NoError(t, err)
	am, ok := cm.Array(p)
	require.True(t, ok)
	assert.Equal(t, []int{4}, am.Shape)

	attrs, ok := cm.Attributes(p)
	require.True(t, ok)
	assert.Equal(t, "C", attrs["units"])

	grp, ok := cm.Metadata["grp/.zgroup"].(*Group)
	require.True(t, ok)
	assert.Equal(t, 2, grp.ZarrFormat)

	err = json.Unmarshal([]byte(`{"metadata": {"foo/bar": {}}}`), cm)
	assert.Error(t, err)
}

func TestKeyMetaType(t *testing.T) {
	mt, ok := KeyMetaType("foo/.zarray")
	assert.True(t, ok)
	assert.Equal(t, MTArray, mt)

	_, ok = KeyMetaType("foo/0.0")
	assert.False(t, ok)
	_, ok = KeyMetaType("0.0")
	assert.False(t, ok)
}

func TestNewPath(t *testing.T) {
	cases := map[string]string{
		"foo/bar":        "foo/bar",
		"/foo/bar/":      "foo/bar",
		`foo\bar`:        "foo/bar",
		"foo//bar///baz": "foo/bar/baz",
		"":               "",
		"/":              "",
	}
	for in, want := range cases {
		p, err := NewPath(in)
		require.NoError(t, err)
		assert.Equal(t, want, p.String(), "NewPath(%q)", in)
	}

	_, err := NewPath("foo/../bar")
	assert.Error(t, err)
}

func TestPathJoinDoesNotAlias(t *testing.T) {
	p, err := NewPath("a/b/c")
	require.NoError(t, err)
	parent, ok := p.Parent()
	require.True(t, ok)

	x := parent.Join("x")
	assert.Equal(t, "a/b/x", x.String())
	assert.Equal(t, "a/b/c", p.String())
	assert.Equal(t, Path{"c"}, p.Rel(parent))

	root := Path{}
	_, ok = root.Parent()
	assert.False(t, ok)
	assert.Equal(t, ".zmetadata", root.Join(string(MTMetadata)).String())
}

package zarr

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDtype(t *testing.T) {
	dt, err := ParseDtype("<i4")
	require.NoError(t, err)
	assert.Equal(t, Dtype{ByteOrder: BOLittleEndian, BasicType: BTInteger, ByteSize: 4}, dt)
	assert.Equal(t, 4, dt.ItemSize())

	dt, err = ParseDtype("&lt;M8[ns]")
	require.NoError(t, err)
	assert.Equal(t, BTDatetime, dt.BasicType)
	assert.Equal(t, "[ns]", dt.Units)
	assert.Equal(t, "<M8[ns]", dt.String())

	for _, bad := range []string{"", "<i", "x4i", "<q4", "<ix"} {
		_, err := ParseDtype(bad)
		assert.Error(t, err, "ParseDtype(%q)", bad)
	}
}

func TestStructuredType(t *testing.T) {
	st := StructuredType{}
	require.NoError(t, json.Unmarshal([]byte(`[["r", "|u1"], ["g", "|u1"], ["xy", "<f4", [2]]]`), &st))
	assert.False(t, st.IsBasic())
	require.Len(t, st.Children, 3)
	assert.Equal(t, "r", st.Children[0].Fieldname)
	assert.Equal(t, BTUnsigned, st.Children[1].Dtype.BasicType)
	assert.NotNil(t, st.Children[2].Shape)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `[["r", "|u1"], ["g", "|u1"], ["xy", "<f4", [2]]]`, string(data))

	basic := StructuredType{}
	require.NoError(t, json.Unmarshal([]byte(`">u2"`), &basic))
	assert.True(t, basic.IsBasic())
	assert.Equal(t, BOBigEndian, basic.Dtype.ByteOrder)
}

func TestDecode(t *testing.T) {
	dt := Dtype{ByteOrder: BOBigEndian, BasicType: BTInteger, ByteSize: 2}
	v, err := dt.decode([]byte{0, 1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 256}, v)

	_, err = dt.decode([]byte{0, 1, 1})
	assert.Error(t, err)

	_, err = Dtype{ByteOrder: BONotRelevant, BasicType: BTString, ByteSize: 4}.decode(make([]byte, 8))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEncodeFill(t *testing.T) {
	le := Dtype{ByteOrder: BOLittleEndian, BasicType: BTInteger, ByteSize: 2}
	be := Dtype{ByteOrder: BOBigEndian, BasicType: BTInteger, ByteSize: 2}

	b, err := le.encodeFill(float64(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0}, b)

	b, err = be.encodeFill(float64(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1}, b)

	b, err = le.encodeFill(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, b)

	_, err = le.encodeFill(FillValueNaN)
	assert.Error(t, err)

	f4 := Dtype{ByteOrder: BOLittleEndian, BasicType: BTFloatingPoint, ByteSize: 4}
	b, err = f4.encodeFill(FillValueInfinity)
	require.NoError(t, err)
	v, err := f4.decode(b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(v.([]float32)[0]), 1))

	bl := Dtype{ByteOrder: BONotRelevant, BasicType: BTBoolean, ByteSize: 1}
	b, err = bl.encodeFill(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, b)
}

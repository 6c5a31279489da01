package zarr

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ItemSize is the number of bytes one item of the type occupies
func (dt Dtype) ItemSize() int { return dt.ByteSize }

func (dt Dtype) binaryOrder() binary.ByteOrder {
	if dt.ByteOrder == BOLittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// newSlice allocates a typed slice that encoding/binary can decode n items
// of the type into
func (dt Dtype) newSlice(n int) (interface{}, error) {
	switch dt.BasicType {
	case BTBoolean:
		if dt.ByteSize == 1 {
			return make([]bool, n), nil
		}
	case BTInteger:
		switch dt.ByteSize {
		case 1:
			return make([]int8, n), nil
		case 2:
			return make([]int16, n), nil
		case 4:
			return make([]int32, n), nil
		case 8:
			return make([]int64, n), nil
		}
	case BTUnsigned:
		switch dt.ByteSize {
		case 1:
			return make([]uint8, n), nil
		case 2:
			return make([]uint16, n), nil
		case 4:
			return make([]uint32, n), nil
		case 8:
			return make([]uint64, n), nil
		}
	case BTFloatingPoint:
		switch dt.ByteSize {
		case 4:
			return make([]float32, n), nil
		case 8:
			return make([]float64, n), nil
		}
	case BTComplex:
		switch dt.ByteSize {
		case 8:
			return make([]complex64, n), nil
		case 16:
			return make([]complex128, n), nil
		}
	}
	return nil, fmt.Errorf("%w: decoding dtype %s", ErrUnsupported, dt)
}

// decode converts raw items into a typed slice
func (dt Dtype) decode(data []byte) (interface{}, error) {
	if dt.ByteSize <= 0 || len(data)%dt.ByteSize != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of item size %d", len(data), dt.ByteSize)
	}
	v, err := dt.newSlice(len(data) / dt.ByteSize)
	if err != nil {
		return nil, err
	}
	if err := binary.Read(bytes.NewReader(data), dt.binaryOrder(), v); err != nil {
		return nil, err
	}
	return v, nil
}

// encodeFill converts a fill value from array metadata into the bytes of a
// single item. A nil fill value is all zeros.
func (dt Dtype) encodeFill(fill interface{}) ([]byte, error) {
	item := make([]byte, dt.ByteSize)
	if fill == nil {
		return item, nil
	}

	// integer dtypes read i or u so 64-bit fill values keep every digit
	var (
		f float64
		i int64
		u uint64
	)
	switch v := fill.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			f, i, u = float64(n), n, uint64(n)
		} else if n, err := strconv.ParseUint(string(v), 10, 64); err == nil {
			f, i, u = float64(n), int64(n), n
		} else {
			if f, err = v.Float64(); err != nil {
				return nil, fmt.Errorf("fill value %q: %w", v, err)
			}
			i, u = int64(f), uint64(f)
		}
	case float64:
		f, i, u = v, int64(v), uint64(v)
	case int:
		f, i, u = float64(v), int64(v), uint64(v)
	case int64:
		f, i, u = float64(v), v, uint64(v)
	case uint64:
		f, i, u = float64(v), int64(v), v
	case bool:
		if v {
			f, i, u = 1, 1, 1
		}
	case string:
		switch v {
		case FillValueNaN:
			f = math.NaN()
		case FillValueInfinity:
			f = math.Inf(1)
		case FillValueNegativeInfinity:
			f = math.Inf(-1)
		default:
			return nil, fmt.Errorf("%w: fill value %q", ErrUnsupported, v)
		}
		if dt.BasicType != BTFloatingPoint {
			return nil, fmt.Errorf("fill value %q requires a floating point dtype, got %s", v, dt)
		}
	default:
		return nil, fmt.Errorf("%w: fill value of type %T", ErrUnsupported, fill)
	}

	var x interface{}
	switch dt.BasicType {
	case BTBoolean:
		x = f != 0
	case BTInteger:
		switch dt.ByteSize {
		case 1:
			x = int8(i)
		case 2:
			x = int16(i)
		case 4:
			x = int32(i)
		case 8:
			x = i
		}
	case BTUnsigned:
		switch dt.ByteSize {
		case 1:
			x = uint8(u)
		case 2:
			x = uint16(u)
		case 4:
			x = uint32(u)
		case 8:
			x = u
		}
	case BTFloatingPoint:
		switch dt.ByteSize {
		case 4:
			x = float32(f)
		case 8:
			x = f
		}
	case BTComplex:
		switch dt.ByteSize {
		case 8:
			x = complex(float32(f), 0)
		case 16:
			x = complex(f, 0)
		}
	}
	if x == nil {
		return nil, fmt.Errorf("%w: fill value for dtype %s", ErrUnsupported, dt)
	}

	buf := bytes.NewBuffer(item[:0])
	if err := binary.Write(buf, dt.binaryOrder(), x); err != nil {
		return nil, err
	}
	if buf.Len() != dt.ByteSize {
		return nil, fmt.Errorf("%w: fill value for dtype %s", ErrUnsupported, dt)
	}
	return buf.Bytes(), nil
}

package zarr

import "fmt"

// Order defines the layout of items within a contiguous buffer, using the
// same "C" / "F" codes as the "order" field of array metadata.
type Order string

const (
	// RowMajor ("C") order: the last dimension varies fastest.
	RowMajor Order = "C"
	// ColumnMajor ("F") order: the first dimension varies fastest.
	ColumnMajor Order = "F"
)

// ParseOrder reads an order code. An empty string is treated as "C", the
// default layout of both zarr and NumPy.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case RowMajor, ColumnMajor:
		return o, nil
	case "":
		return RowMajor, nil
	default:
		return o, fmt.Errorf("invalid order %q, want either %q or %q", s, RowMajor, ColumnMajor)
	}
}

func (o Order) valid() bool {
	return o == RowMajor || o == ColumnMajor
}

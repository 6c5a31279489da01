package zarr

import (
	"io"

	"github.com/qri-io/dataset/compression"
)

// CompressionMeta defines compression settings zarr-go understands. A nil
// *CompressionMeta, the JSON null compressor, stores chunks uncompressed.
type CompressionMeta struct {
	ID      string `json:"id"`
	Cname   string `json:"cname,omitempty"`
	Clevel  int    `json:"clevel,omitempty"`
	Shuffle int    `json:"shuffle,omitempty"`
}

// None reports whether chunks are stored without compression
func (m *CompressionMeta) None() bool {
	return m == nil || m.ID == ""
}

// Compressor wraps w in a writer that compresses chunk bytes. Closing the
// returned writer flushes it but does not close w.
func (m *CompressionMeta) Compressor(w io.Writer) (io.WriteCloser, error) {
	if m.None() {
		return nopWriteCloser{w}, nil
	}
	return compression.Compressor(m.ID, w)
}

// Decompressor wraps r in a reader that yields raw chunk bytes. Closing the
// returned reader does not close r.
func (m *CompressionMeta) Decompressor(r io.Reader) (io.ReadCloser, error) {
	if m.None() {
		return io.NopCloser(r), nil
	}
	return compression.Decompressor(m.ID, r)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

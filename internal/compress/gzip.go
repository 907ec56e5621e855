package compress

import (
	"bytes"
	"compress/gzip"
	"io"
)

// GzipReader implements io.ReadCloser for gzip-compressed datasets.
type GzipReader struct {
	zr *gzip.Reader
	r  io.ReadCloser
}

// NewGzipReader wraps r in a gzip decompressor. Close closes both.
func NewGzipReader(r io.ReadCloser) (*GzipReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &GzipReader{zr: zr, r: r}, nil
}

// Read reads decompressed data.
func (g *GzipReader) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

// Close closes the decompressor and the source stream.
func (g *GzipReader) Close() error {
	if err := g.zr.Close(); err != nil {
		g.r.Close()
		return err
	}
	return g.r.Close()
}

// IsGzip reports whether data starts with the gzip magic number.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0x1f, 0x8b})
}

package compress

import (
	"archive/tar"
	"io"
)

// TarReader implements io.ReadCloser over the first JSON file of a TAR archive.
type TarReader struct {
	current io.Reader
	closer  io.Closer
	eof     bool
}

// NewTarReader creates a new TarReader positioned on the first JSON file in the archive.
// The archive is streamed; r is closed by Close.
func NewTarReader(r io.ReadCloser) (*TarReader, error) {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.Close()
			return nil, err
		}
		if header.Typeflag == tar.TypeReg && isDataset(header.Name) {
			return &TarReader{
				current: tr,
				closer:  r,
			}, nil
		}
	}

	r.Close()
	return nil, ErrNoDataset
}

// Read reads data from the current JSON file.
func (t *TarReader) Read(p []byte) (int, error) {
	if t.eof {
		return 0, io.EOF
	}
	n, err := t.current.Read(p)
	if err == io.EOF {
		t.eof = true
	}
	return n, err
}

// Close closes the underlying archive stream.
func (t *TarReader) Close() error {
	return t.closer.Close()
}

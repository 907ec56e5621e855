package compress

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrNoDataset is returned when an archive holds no JSON file.
var ErrNoDataset = errors.New("JSON file not found in archive")

// ZipReader implements io.ReadCloser for reading the content of a JSON file from a ZIP archive.
type ZipReader struct {
	current io.ReadCloser
}

// NewZipReader creates a new ZipReader, extracting the first found JSON file from the ZIP archive.
func NewZipReader(r io.ReadCloser) (*ZipReader, error) {
	defer r.Close()

	// Read the entire archive into a buffer
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return nil, err
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if isDataset(f.Name) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			return &ZipReader{current: rc}, nil
		}
	}

	return nil, ErrNoDataset
}

// Read reads data from the current JSON file.
func (z *ZipReader) Read(p []byte) (int, error) {
	return z.current.Read(p)
}

// Close closes the current JSON file.
func (z *ZipReader) Close() error {
	return z.current.Close()
}

// IsZip reports whether data starts with a ZIP local file header.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

func isDataset(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".json")
}

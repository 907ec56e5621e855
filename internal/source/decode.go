package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/drstein77/organicfilter/internal/compress"
	"github.com/drstein77/organicfilter/internal/models"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

type bufferedCloser struct {
	*bufio.Reader
	io.Closer
}

// unpack strips gzip, tar and zip layers from r. The name is a hint only;
// gzip and zip payloads are also recognised by their magic bytes.
func unpack(name string, r io.ReadCloser) (io.ReadCloser, error) {
	name = strings.ToLower(name)

	br := bufio.NewReader(r)
	head, _ := br.Peek(4)
	var rc io.ReadCloser = bufferedCloser{Reader: br, Closer: r}

	switch {
	case strings.HasSuffix(name, ".tgz"):
		name = strings.TrimSuffix(name, ".tgz") + ".tar"
		fallthrough
	case strings.HasSuffix(name, ".gz"), compress.IsGzip(head):
		gz, err := compress.NewGzipReader(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedSource, err)
		}
		rc = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	switch {
	case strings.HasSuffix(name, ".tar"):
		tr, err := compress.NewTarReader(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedSource, err)
		}
		return tr, nil
	case strings.HasSuffix(name, ".zip"), compress.IsZip(head):
		zr, err := compress.NewZipReader(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedSource, err)
		}
		return zr, nil
	}
	return rc, nil
}

// decode reads the (possibly archived) dataset from r and closes it.
func decode(name string, r io.ReadCloser) ([]models.ProductRecord, error) {
	rc, err := unpack(name, r)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrSourceUnavailable, name, err)
	}
	return parseRecords(data)
}

// parseRecords decodes a JSON array. Elements that are not objects become
// empty records, which no policy keeps.
func parseRecords(data []byte) ([]models.ProductRecord, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: dataset is not a JSON array", models.ErrMalformedSource)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedSource, err)
	}

	records := make([]models.ProductRecord, 0, len(elems))
	for _, elem := range elems {
		rec, err := parseRecord(elem)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(raw []byte) (models.ProductRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return models.ProductRecord{}, nil
	}
	var rec models.ProductRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedSource, err)
	}
	return rec, nil
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drstein77/organicfilter/internal/models"
	"go.uber.org/zap"
)

type Log interface {
	Info(string, ...zap.Field)
}

// FileStorage writes the output envelope to a single JSON file.
type FileStorage struct {
	path string
	log  Log
}

// NewFileStorage creates a new FileStorage instance
func NewFileStorage(path string, log Log) *FileStorage {
	return &FileStorage{
		path: path,
		log:  log,
	}
}

// Path returns the output file path.
func (s *FileStorage) Path() string {
	return s.path
}

// Save replaces the output file with the pretty-printed envelope. The data is
// written to a temporary file in the same directory and renamed into place,
// so readers never observe a partial file.
func (s *FileStorage) Save(ctx context.Context, env models.OutputEnvelope) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrWriteFailure, err)
	}

	data, err := Encode(env)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrWriteFailure, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", models.ErrWriteFailure, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrWriteFailure, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", models.ErrWriteFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrWriteFailure, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: %v", models.ErrWriteFailure, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: %v", models.ErrWriteFailure, err)
	}

	s.log.Info("Output written", zap.String("path", s.path), zap.Int("bytes", len(data)))
	return nil
}

// Encode renders the envelope as JSON indented by two spaces, without HTML
// escaping, followed by a newline.
func Encode(env models.OutputEnvelope) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

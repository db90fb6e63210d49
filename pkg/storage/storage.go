package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout is the YYYYMMDD_HHMMSS suffix used in artifact file names.
const TimestampLayout = "20060102_150405"

// maxSuffix bounds the search for a free file name within one second.
const maxSuffix = 1000

// Storage writes pipeline artifacts to the local filesystem.
// Files are written once and never updated in place.
type Storage struct{}

func New() *Storage {
	return &Storage{}
}

// EnsureDir creates dir and any parents. It is a no-op when dir exists.
func (s *Storage) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileName returns "<prefix>_<YYYYMMDD_HHMMSS>.json".
func FileName(prefix string, ts time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, ts.Format(TimestampLayout))
}

// WriteJSON encodes v as two-space indented UTF-8 JSON with HTML characters
// unescaped and writes it to dir/FileName(prefix, ts). If that name is taken a
// numeric suffix is added. It returns the path written.
func (s *Storage) WriteJSON(dir, prefix string, ts time.Time, v any) (string, error) {
	data, err := encodeJSON(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", prefix, err)
	}

	base := FileName(prefix, ts)
	stem := base[:len(base)-len(".json")]
	for i := 0; i < maxSuffix; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d.json", stem, i)
		}
		path := filepath.Join(dir, name)

		err := writeExclusive(path, data)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("failed to find free file name for %s in %s", base, dir)
}

// ReadJSON decodes the file at path into v.
func (s *Storage) ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error decoding %s: %w", path, err)
	}
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeExclusive creates path and fails with os.ErrExist if it is already there.
// A failed write removes the partial file.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return fmt.Errorf("error saving file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

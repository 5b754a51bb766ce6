package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorrupt reports a slot document that is not a JSON object of strings.
var ErrCorrupt = errors.New("corrupt slot document")

// File keeps every slot in one JSON object on disk. Each Set rewrites the
// whole document; a corrupt document is replaced rather than merged.
type File struct {
	path string
}

func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}
	return &File{path: path}, nil
}

func (f *File) Get(key string) (string, bool, error) {
	slots, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := slots[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	slots, err := f.read()
	if errors.Is(err, ErrCorrupt) {
		slots = map[string]string{}
	} else if err != nil {
		return err
	}
	slots[key] = value
	b, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) read() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	slots := map[string]string{}
	if len(b) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(b, &slots); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", ErrCorrupt, err)
	}
	return slots, nil
}

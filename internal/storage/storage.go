// Package storage provides the key-value slots the task list is kept in.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

// KV is a string key-value store. Set replaces the whole value for a key.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Open returns the backend named by backend, rooted at path.
func Open(backend, path string) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		return OpenSQLite(path)
	case BackendJSON:
		return OpenFile(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

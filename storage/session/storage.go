// Package sessionstore persists the signed-in session between runs.
package sessionstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/challan/core/session"
)

// FileStorage keeps the session as a JSON document ({"token": ..., "user": {...}}) in a file
// readable by the current user only.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

var _ session.Storage = (*FileStorage)(nil)

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (fs *FileStorage) Load() (session.State, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return session.State{}, session.ErrNoSession
	} else if err != nil {
		return session.State{}, errors.Wrap(err, "reading session file")
	}

	var st session.State
	if err := json.Unmarshal(data, &st); err != nil {
		return session.State{}, errors.Wrap(err, "decoding session file")
	}
	if st.IsZero() {
		return session.State{}, session.ErrNoSession
	}
	return st, nil
}

func (fs *FileStorage) Save(st session.State) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "writing session file")
	}
	return errors.Wrap(os.Rename(tmp, fs.path), "writing session file")
}

func (fs *FileStorage) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}

// MemoryStorage keeps the session in memory.
type MemoryStorage struct {
	mu    sync.Mutex
	state session.State
}

var _ session.Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load() (session.State, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.state.IsZero() {
		return session.State{}, session.ErrNoSession
	}
	return ms.state, nil
}

func (ms *MemoryStorage) Save(st session.State) error {
	ms.mu.Lock()
	ms.state = st
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStorage) Clear() error {
	ms.mu.Lock()
	ms.state = session.State{}
	ms.mu.Unlock()
	return nil
}

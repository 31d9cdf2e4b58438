package telegram

import (
	"context"
	"os"

	"github.com/gotd/td/session"
)

// FileSessionStorage implements session.Storage for file-based persistence
type FileSessionStorage struct {
	Path string
}

// LoadSession loads the session from file
func (s *FileSessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// StoreSession saves the session to file
func (s *FileSessionStorage) StoreSession(ctx context.Context, data []byte) error {
	return os.WriteFile(s.Path, data, 0600)
}

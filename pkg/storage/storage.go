package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidKey = errors.New("invalid storage key")

// File is an upload that already passed validation.
type File struct {
	Data []byte
	Ext  string
}

//go:generate mockgen -source=storage.go -destination=mock_storage.go -package=storage
type Storage interface {
	Save(ctx context.Context, folder string, data []byte, ext string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Local keeps uploads under a root directory. Keys are "<folder>/<uuid><ext>"
// and are what the database stores.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, err
	}
	return &Local{root: root}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Save(ctx context.Context, folder string, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(l.root, folder)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		zap.L().Error("failed to create upload dir", zap.String("dir", dir), zap.Error(err))
		return "", err
	}
	key := folder + "/" + uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(l.root, filepath.FromSlash(key)), data, 0o640); err != nil {
		zap.L().Error("failed to write upload", zap.String("key", key), zap.Error(err))
		return "", err
	}
	return key, nil
}

func (l *Local) Remove(_ context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(l.root, clean), nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var errInvalidKey = errors.New("invalid storage key")

type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("upload directory is required")
	}
	absolute, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload directory: %w", err)
	}
	if err := os.MkdirAll(absolute, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{root: absolute}, nil
}

func (store *LocalStore) Save(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	target, err := store.resolve(key)
	if err != nil {
		return err
	}
	directory := filepath.Dir(target)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("create upload subdirectory: %w", err)
	}

	temp, err := os.CreateTemp(directory, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp upload: %w", err)
	}
	tempName := temp.Name()
	if _, err := io.Copy(temp, body); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempName)
		return fmt.Errorf("write upload: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempName)
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tempName, target); err != nil {
		_ = os.Remove(tempName)
		return fmt.Errorf("move upload into place: %w", err)
	}
	return nil
}

func (store *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := store.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Remove deletes the file. A missing file is not an error.
func (store *LocalStore) Remove(_ context.Context, key string) error {
	target, err := store.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (store *LocalStore) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" || strings.ContainsRune(key, 0) {
		return "", errInvalidKey
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(key, `\`, "/"))
	if cleaned == "/" {
		return "", errInvalidKey
	}
	target := filepath.Join(store.root, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(target, store.root+string(filepath.Separator)) {
		return "", errInvalidKey
	}
	return target, nil
}

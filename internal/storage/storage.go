package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned by Open and Delete when nothing is stored under key.
var ErrNotExist = errors.New("stored object does not exist")

// Storage keeps uploaded blobs under flat keys.
type Storage interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (written int64, err error)
	Open(ctx context.Context, key string) (rc io.ReadCloser, size int64, err error)
	Delete(ctx context.Context, key string) error
}

// validKey rejects anything that could escape the storage root.
func validKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

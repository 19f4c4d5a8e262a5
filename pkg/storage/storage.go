// Package storage defines the object store used for uploaded images.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when deleting an object that does not exist.
var ErrNotFound = errors.New("object not found")

// Store persists uploaded files and returns their public path.
type Store interface {
	Save(ctx context.Context, folder, filename string, body io.Reader) (string, error)
	Delete(ctx context.Context, publicPath string) error
}

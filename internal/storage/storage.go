// Package storage keeps uploaded media either on Cloudinary or on local disk.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when the object to delete or open does not exist.
var ErrNotFound = errors.New("object not found")

const (
	ProviderLocal      = "local"
	ProviderCloudinary = "cloudinary"
)

// Object describes a stored file.
type Object struct {
	Key      string `json:"key"` // filename on disk or Cloudinary public id
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Provider string `json:"provider"`
}

type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (*Object, error)
	Delete(ctx context.Context, key string) error
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gym_club_backend/internal/storage"
	"gym_club_backend/pkg/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxUploadBytes is 5 MiB.
const DefaultMaxUploadBytes = 5 << 20

var allowedUploadTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadResult is returned to the client after a successful upload.
type UploadResult struct {
	storage.Object
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
}

type UploadService interface {
	// Upload stores an image remotely when possible and on local disk otherwise.
	Upload(ctx context.Context, originalName string, r io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, filename string) error
	DeleteRemote(ctx context.Context, publicID string) error
	// LocalPath resolves a stored filename for serving.
	LocalPath(filename string) (string, error)
}

type uploadService struct {
	local    *storage.LocalStore
	remote   storage.Store
	maxBytes int64
}

// NewUploadService creates a new instance of UploadService. remote may be nil.
func NewUploadService(local *storage.LocalStore, remote storage.Store, maxBytes int64) UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &uploadService{local: local, remote: remote, maxBytes: maxBytes}
}

func (s *uploadService) Upload(ctx context.Context, originalName string, r io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, upstream(err, "Error al leer el archivo")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrUploadTooLarge
	}
	if len(data) == 0 {
		return nil, newError(ErrValidation, "El archivo está vacío")
	}

	contentType := mimetype.Detect(data).String()
	ext, ok := allowedUploadTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedUploadType
	}
	name := uuid.NewString() + ext

	if s.remote != nil {
		obj, err := s.remote.Save(ctx, name, bytes.NewReader(data))
		if err == nil {
			return &UploadResult{Object: *obj, OriginalName: originalName, ContentType: contentType}, nil
		}
		utils.LogWarn(err, "remote upload failed, storing locally", map[string]interface{}{"file": name})
	}

	obj, err := s.local.Save(ctx, name, bytes.NewReader(data))
	if err != nil {
		return nil, upstream(err, "Error al guardar el archivo")
	}
	return &UploadResult{Object: *obj, OriginalName: originalName, ContentType: contentType}, nil
}

func (s *uploadService) Delete(ctx context.Context, filename string) error {
	if _, err := s.local.Path(filename); err != nil {
		return newError(ErrValidation, "Nombre de archivo inválido")
	}
	if err := s.local.Delete(ctx, filename); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUploadNotFound
		}
		return upstream(err, "Error al eliminar el archivo")
	}
	return nil
}

func (s *uploadService) DeleteRemote(ctx context.Context, publicID string) error {
	if s.remote == nil {
		return ErrRemoteStorageUnavailable
	}
	if err := s.remote.Delete(ctx, publicID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUploadNotFound
		}
		return upstream(err, fmt.Sprintf("Error al eliminar %s del almacenamiento remoto", publicID))
	}
	return nil
}

func (s *uploadService) LocalPath(filename string) (string, error) {
	path, err := s.local.Path(filename)
	if err != nil {
		return "", newError(ErrValidation, "Nombre de archivo inválido")
	}
	if !s.local.Exists(filename) {
		return "", ErrUploadNotFound
	}
	return path, nil
}

package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gym_club_backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeRemote struct {
	err     error
	saved   []string
	deleted []string
}

func (f *fakeRemote) Save(_ context.Context, name string, r io.Reader) (*storage.Object, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(r)
	f.saved = append(f.saved, name)
	return &storage.Object{Key: "gym/" + strings.TrimSuffix(name, ".png"), URL: "https://cdn.example/" + name, Size: int64(len(data)), Provider: storage.ProviderCloudinary}, nil
}

func (f *fakeRemote) Delete(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	if key == "gym/missing" {
		return storage.ErrNotFound
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func newLocal(t *testing.T) *storage.LocalStore {
	t.Helper()
	local, err := storage.NewLocalStore(t.TempDir(), "http://localhost:3000")
	require.NoError(t, err)
	return local
}

func TestUploadStoresLocallyWithoutRemote(t *testing.T) {
	svc := NewUploadService(newLocal(t), nil, 0)

	res, err := svc.Upload(context.Background(), "foto.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, storage.ProviderLocal, res.Provider)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, "foto.png", res.OriginalName)
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, "http://localhost:3000/api/uploads/"+res.Key, res.URL)

	path, err := svc.LocalPath(res.Key)
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	require.NoError(t, svc.Delete(context.Background(), res.Key))
	assert.ErrorIs(t, svc.Delete(context.Background(), res.Key), ErrNotFound)
	_, err = svc.LocalPath(res.Key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadRejectsBadInput(t *testing.T) {
	svc := NewUploadService(newLocal(t), nil, 64)

	_, err := svc.Upload(context.Background(), "notas.txt", strings.NewReader("hola mundo"))
	assert.ErrorIs(t, err, ErrUnsupportedUploadType)

	big := append(append([]byte{}, pngHeader...), make([]byte, 64)...)
	_, err = svc.Upload(context.Background(), "grande.png", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrUploadTooLarge)

	_, err = svc.Upload(context.Background(), "vacio.png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.LocalPath("../etc/passwd")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUploadPrefersRemoteAndFallsBack(t *testing.T) {
	remote := &fakeRemote{}
	svc := NewUploadService(newLocal(t), remote, 0)

	res, err := svc.Upload(context.Background(), "foto.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, storage.ProviderCloudinary, res.Provider)
	assert.Len(t, remote.saved, 1)

	remote.err = errors.New("cloudinary down")
	res, err = svc.Upload(context.Background(), "foto.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, storage.ProviderLocal, res.Provider)
}

func TestDeleteRemote(t *testing.T) {
	err := NewUploadService(newLocal(t), nil, 0).DeleteRemote(context.Background(), "gym/abc")
	assert.ErrorIs(t, err, ErrRemoteStorageUnavailable)

	remote := &fakeRemote{}
	svc := NewUploadService(newLocal(t), remote, 0)
	require.NoError(t, svc.DeleteRemote(context.Background(), "gym/abc"))
	assert.Equal(t, []string{"gym/abc"}, remote.deleted)
	assert.ErrorIs(t, svc.DeleteRemote(context.Background(), "gym/missing"), ErrNotFound)

	remote.err = errors.New("boom")
	assert.ErrorIs(t, svc.DeleteRemote(context.Background(), "gym/abc"), ErrUpstream)
}

package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectStore) Bucket() string { return "media" }

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string { return "https://cdn.test/media/" + key }

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 32)...)

func TestUploadImage(t *testing.T) {
	h := newHarness(t)
	objects := newFakeObjectStore()
	svc := NewMediaService(h.store.Media(), objects, 1024, h.log)
	ctx := context.Background()

	res, err := svc.UploadImage(ctx, UploadInput{OwnerID: "amy", File: bytes.NewReader(pngBytes), DeclaredMIME: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Asset.ObjectKey, ".png"))
	assert.Equal(t, "https://cdn.test/media/"+res.Asset.ObjectKey, res.URL)
	assert.Equal(t, "image/png", objects.types[res.Asset.ObjectKey])
	assert.Equal(t, pngBytes, objects.objects[res.Asset.ObjectKey])
	assert.Len(t, res.Asset.Checksum, 32)

	listed, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestUploadImageRejects(t *testing.T) {
	h := newHarness(t)
	svc := NewMediaService(h.store.Media(), newFakeObjectStore(), 16, h.log)
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, UploadInput{File: bytes.NewReader(pngBytes)})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.UploadImage(ctx, UploadInput{File: strings.NewReader("plain text")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UploadImage(ctx, UploadInput{File: bytes.NewReader(pngBytes[:12]), DeclaredMIME: "image/jpeg"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UploadImage(ctx, UploadInput{File: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

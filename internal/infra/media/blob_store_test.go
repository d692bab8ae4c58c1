package media

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

func newMemStore(t *testing.T, maxBytes int64) (service.MediaStore, *blob.Bucket) {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { bucket.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewWithBucket(bucket, "https://media.example.com", maxBytes, logger), bucket
}

func TestBlobStore_Upload(t *testing.T) {
	store, bucket := newMemStore(t, 1024)

	content := "fake png bytes"
	url, err := store.Upload(context.Background(), "avatars", &service.MediaUpload{
		Filename:    "me.PNG",
		ContentType: "image/png",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://media.example.com/avatars/"))
	assert.True(t, strings.HasSuffix(url, ".png"), "extension is kept, lowercased: %s", url)

	key := strings.TrimPrefix(url, "https://media.example.com/")
	stored, err := bucket.ReadAll(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, content, string(stored))
}

func TestBlobStore_UploadKeysAreUnique(t *testing.T) {
	store, _ := newMemStore(t, 1024)

	first, err := store.Upload(context.Background(), "covers", &service.MediaUpload{
		Filename: "cover.jpg",
		Size:     4,
		Content:  strings.NewReader("aaaa"),
	})
	require.NoError(t, err)

	second, err := store.Upload(context.Background(), "covers", &service.MediaUpload{
		Filename: "cover.jpg",
		Size:     4,
		Content:  strings.NewReader("bbbb"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBlobStore_UploadMissingFile(t *testing.T) {
	store, _ := newMemStore(t, 1024)

	_, err := store.Upload(context.Background(), "avatars", nil)
	assert.ErrorIs(t, err, domainerrors.ErrMediaFileMissing)

	_, err = store.Upload(context.Background(), "avatars", &service.MediaUpload{Filename: "a.png"})
	assert.ErrorIs(t, err, domainerrors.ErrMediaFileMissing)
}

func TestBlobStore_UploadTooLarge(t *testing.T) {
	store, _ := newMemStore(t, 8)

	_, err := store.Upload(context.Background(), "avatars", &service.MediaUpload{
		Filename: "big.png",
		Size:     9,
		Content:  strings.NewReader("123456789"),
	})
	assert.Error(t, err)
}

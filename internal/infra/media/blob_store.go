// Package media implements the remote media host on top of gocloud.dev blob storage.
package media

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"cliptube/config"
	domainerrors "cliptube/internal/domain/errors"
	"cliptube/internal/domain/lifecycle"
	"cliptube/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Bucket drivers selected by the configured URL scheme.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

const defaultMaxUploadBytes = 8 << 20 // 8 MiB

// Params defines the dependencies for the media store, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// blobStore implements service.MediaStore on a gocloud.dev bucket.
type blobStore struct {
	bucket        *blob.Bucket
	publicBaseURL string
	maxBytes      int64
	logger        *slog.Logger
}

// New opens the configured bucket and registers its shutdown hook.
func New(params Params) (service.MediaStore, error) {
	cfg := params.Config.Media
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("media bucket URL must be configured")
	}

	openCtx, cancel := context.WithTimeout(params.Ctx, lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(openCtx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open media bucket %s", cfg.BucketURL)
	}

	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}

	store := &blobStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes:      maxBytes,
		logger:        params.Logger,
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return bucket.Close()
		},
	})

	return store, nil
}

// NewWithBucket builds a media store over an already opened bucket. Used by tests.
func NewWithBucket(bucket *blob.Bucket, publicBaseURL string, maxBytes int64, logger *slog.Logger) service.MediaStore {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}

	return &blobStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
		logger:        logger,
	}
}

// Upload stores the file under a random key within the category prefix and
// returns its public URL. The original filename only contributes its extension.
func (s *blobStore) Upload(ctx context.Context, category string, upload *service.MediaUpload) (string, error) {
	if upload == nil || upload.Content == nil {
		return "", domainerrors.ErrMediaFileMissing
	}
	if upload.Size > s.maxBytes {
		return "", domainerrors.ErrValidationFailed.WithDetails("media file exceeds the upload size limit")
	}

	key := objectKey(category, upload.Filename)

	writer, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: upload.ContentType,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to open bucket writer")
	}

	if _, err := writer.ReadFrom(upload.Content); err != nil {
		// Abort the partial write before surfacing the error.
		_ = writer.Close()

		return "", errors.Wrap(err, "failed to write media object")
	}

	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "failed to finalize media object")
	}

	url := s.publicBaseURL + "/" + key
	s.logger.Debug("Uploaded media object",
		slog.String("key", key),
		slog.Int64("size", upload.Size),
	)

	return url, nil
}

// objectKey builds a collision-free object key, keeping the client extension.
func objectKey(category, filename string) string {
	ext := strings.ToLower(path.Ext(filename))

	return category + "/" + uuid.New().String() + ext
}

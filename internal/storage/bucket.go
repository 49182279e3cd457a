package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pbxadmin/internal/config"
	"pbxadmin/internal/model"
)

// bucketAPI is the narrow slice of *minio.Client the bucket store uses.
// Kept as an interface so the fallback ladder is testable without a server.
type bucketAPI interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	EndpointURL() *url.URL
}

// bucketStore implements BlobStore against an S3-compatible backend (MinIO,
// AWS S3, etc.). Writes go to the primary bucket; when that fails for any
// reason the fallback bucket is provisioned lazily and the write is retried
// there, synchronously, within the same call.
type bucketStore struct {
	client   bucketAPI
	primary  string
	fallback string
}

// NewBucket creates the remote-bucket blob store from configuration.
func NewBucket(cfg config.MinIOConfig) (BlobStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" || cfg.FallbackBucket == "" {
		return nil, fmt.Errorf("minio primary and fallback buckets are required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &bucketStore{client: cli, primary: cfg.Bucket, fallback: cfg.FallbackBucket}, nil
}

// Put uploads to the primary bucket, falling back once to the lazily
// provisioned secondary. The reference value is the object's public URL.
// After both attempts fail the unified ErrUnavailable is returned and no
// partial state remains for the caller to clean up.
func (b *bucketStore) Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (model.StorageReference, error) {
	// Buffer the content so the fallback attempt can replay it.
	buf, err := io.ReadAll(r)
	if err != nil {
		return model.StorageReference{}, fmt.Errorf("read upload content: %w", err)
	}

	putOpts := minio.PutObjectOptions{ContentType: opt.ContentType}
	size := int64(len(buf))

	_, primaryErr := b.client.PutObject(ctx, b.primary, key, bytes.NewReader(buf), size, putOpts)
	if primaryErr == nil {
		return model.StorageReference{Kind: model.RefBucket, Value: b.objectURL(b.primary, key)}, nil
	}

	if err := b.ensureBucket(ctx, b.fallback); err != nil {
		return model.StorageReference{}, fmt.Errorf("%w: primary write: %v; provision fallback: %v", ErrUnavailable, primaryErr, err)
	}

	_, fallbackErr := b.client.PutObject(ctx, b.fallback, key, bytes.NewReader(buf), size, putOpts)
	if fallbackErr != nil {
		return model.StorageReference{}, fmt.Errorf("%w: primary write: %v; fallback write: %v", ErrUnavailable, primaryErr, fallbackErr)
	}

	return model.StorageReference{Kind: model.RefBucket, Value: b.objectURL(b.fallback, key)}, nil
}

// Delete removes the object the reference URL implies. Best-effort from the
// orchestrator's perspective; errors are returned for logging.
func (b *bucketStore) Delete(ctx context.Context, ref model.StorageReference) error {
	bucket, key, err := splitObjectURL(ref.Value)
	if err != nil {
		return err
	}
	return b.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

// ensureBucket provisions a bucket idempotently: an already-existing bucket
// is success, not an error.
func (b *bucketStore) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := b.client.BucketExists(ctx, bucket)
	if err == nil && exists {
		return nil
	}
	// Existence check failures fall through to MakeBucket; it decides.
	if err := b.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
		return err
	}
	return nil
}

func (b *bucketStore) objectURL(bucket, key string) string {
	u := *b.client.EndpointURL()
	u.Path = "/" + bucket + "/" + key
	return u.String()
}

// splitObjectURL extracts bucket and object key from a public object URL.
func splitObjectURL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse object url: %w", err)
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("object url %q has no bucket/key path", rawURL)
	}
	return parts[0], parts[1], nil
}

// Package archive offloads large QueuedResponse bodies to S3-compatible
// object storage and keeps a versioned history of compiled preload
// scripts in a local git repository, so neither grows unbounded in
// the QueuedResponse::Store's in-memory map.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ipcbridge/runtime/internal/queued"
)

// ObjectArchive stores overflow QueuedResponse bodies in an
// S3-compatible bucket, keyed by the response's queued.ID.
type ObjectArchive struct {
	client *minio.Client
	bucket string
	prefix string
}

// ObjectArchiveConfig configures NewObjectArchive.
type ObjectArchiveConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string
	UseSSL    bool
	PathStyle bool
}

// NewObjectArchive connects to cfg.Endpoint and validates the
// required fields are present.
func NewObjectArchive(cfg ObjectArchiveConfig) (*ObjectArchive, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	bucket := strings.TrimSpace(cfg.Bucket)
	if endpoint == "" {
		return nil, fmt.Errorf("archive: endpoint is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}

	options := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	}
	if cfg.PathStyle {
		options.BucketLookup = minio.BucketLookupPath
	}
	client, err := minio.New(endpoint, options)
	if err != nil {
		return nil, fmt.Errorf("archive: create client: %w", err)
	}

	return &ObjectArchive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// EnsureBucket creates the configured bucket if it does not already
// exist.
func (a *ObjectArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("archive: check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("archive: create bucket: %w", err)
	}
	return nil
}

// Archive uploads data for a QueuedResponse and returns the object
// key Fetch needs to retrieve it again.
func (a *ObjectArchive) Archive(ctx context.Context, id queued.ID, data []byte) (string, error) {
	key := a.key(id)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("archive: upload object: %w", err)
	}
	return key, nil
}

// Fetch downloads and returns the body stored at key.
func (a *ObjectArchive) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("archive: get object: %w", err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("archive: read object: %w", err)
	}
	return data, nil
}

func (a *ObjectArchive) key(id queued.ID) string {
	// A random suffix keeps re-archiving the same id from colliding
	// across restarts, since ids may be reused once expired.
	suffix := uuid.NewString()[:8]
	name := fmt.Sprintf("%d-%s.bin", id, suffix)
	if a.prefix == "" {
		return name
	}
	return a.prefix + "/" + name
}

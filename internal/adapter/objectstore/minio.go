// Package objectstore mirrors the output tree into an S3-compatible bucket.
package objectstore

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/river-gauge-etl/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Mirror uploads every file under an output root to a bucket, keeping the
// relative layout under an optional prefix. It implements pipeline.Mirror.
type Mirror struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewMirror creates a MinIO client for the configured endpoint. The bucket is
// checked and created on first use.
func NewMirror(cfg *config.Config, logger *slog.Logger) (*Mirror, error) {
	endpoint := strings.TrimPrefix(cfg.MinioEndpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize minio client: %w", err)
	}
	return &Mirror{
		client: client,
		bucket: cfg.MirrorBucket,
		prefix: strings.Trim(cfg.MinioPrefix, "/"),
		logger: logger,
	}, nil
}

// Destination returns the mirror target as an s3:// URL.
func (m *Mirror) Destination() string {
	if m.prefix == "" {
		return "s3://" + m.bucket
	}
	return "s3://" + m.bucket + "/" + m.prefix
}

// Mirror uploads the regular files under root. Objects are overwritten in
// place, so repeated runs converge on the latest outputs.
func (m *Mirror) Mirror(ctx context.Context, root string) error {
	if err := m.ensureBucket(ctx); err != nil {
		return err
	}

	uploaded := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || skipFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		name := objectName(m.prefix, rel)
		if _, err := m.client.FPutObject(ctx, m.bucket, name, p, minio.PutObjectOptions{
			ContentType: contentType(p),
		}); err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
		uploaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("mirror to %s: %w", m.Destination(), err)
	}

	m.logger.Debug("uploaded outputs", "destination", m.Destination(), "objects", uploaded)
	return nil
}

func (m *Mirror) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	m.logger.Info("created bucket", "bucket", m.bucket)
	return nil
}

// objectName maps a path relative to the output root onto a slash-separated
// key under prefix.
func objectName(prefix, rel string) string {
	return path.Join(prefix, filepath.ToSlash(rel))
}

// skipFile reports in-progress files left by an interrupted write.
func skipFile(name string) bool {
	return strings.HasSuffix(name, ".partial") || strings.HasPrefix(name, ".")
}

func contentType(p string) string {
	switch filepath.Ext(p) {
	case ".parquet":
		return "application/vnd.apache.parquet"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

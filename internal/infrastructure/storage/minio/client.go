// Package minio holds the object-storage layer.  The engine keeps two kinds
// of objects here: the pinned Form N1 template asset it fills against, and an
// archive of filled forms it produced.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/paidup/paidup/internal/config"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/pkg/errors"
)

// MinIOAPI is the slice of the minio-go client this package uses.  Tests
// substitute a fake.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// liveAPI adapts *minio.Client to MinIOAPI.  GetObject needs the shim because
// the interface returns io.ReadCloser where minio-go returns *minio.Object.
type liveAPI struct {
	*minio.Client
}

func (a liveAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return a.Client.GetObject(ctx, bucketName, objectName, opts)
}

// Client wraps a connected MinIO client scoped to the configured bucket.
type Client struct {
	api    MinIOAPI
	bucket string
	logger logging.Logger
}

// NewClient connects, verifies reachability and makes sure the configured
// bucket exists.
func NewClient(cfg config.MinIOConfig, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to create object storage client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to connect to object storage")
	}

	c := &Client{api: liveAPI{api}, bucket: cfg.Bucket, logger: logger}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}

	logger.Info("object storage connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewClientWithAPI wires a custom API implementation; used by tests.
func NewClientWithAPI(api MinIOAPI, bucket string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{api: api, bucket: bucket, logger: logger}
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to check bucket existence")
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.Wrap(err, errors.CodeStorage, "failed to create bucket "+c.bucket)
		}
		c.logger.Info("created bucket", logging.String("bucket", c.bucket))
	}
	return nil
}

// Bucket returns the bucket this client is scoped to.
func (c *Client) Bucket() string {
	return c.bucket
}

// HealthCheck reports reachability and the bucket's presence.
func (c *Client) HealthCheck(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "object storage unreachable")
	}
	if !exists {
		return errors.New(errors.CodeStorage, "bucket "+c.bucket+" missing")
	}
	return nil
}

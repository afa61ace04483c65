package minio

import (
	"context"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// BucketExists checks if a bucket exists
func (c *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if err := c.checkClosed(); err != nil {
		return false, err
	}

	if bucketName == "" {
		return false, WrapError("BucketExists", ErrInvalidBucketName, bucketName, "")
	}

	exists, err := c.client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, WrapError("BucketExists", err, bucketName, "")
	}

	return exists, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (c *Client) EnsureBucket(ctx context.Context, bucketName string) error {
	exists, err := c.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = c.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: c.config.Region})
	if err != nil {
		// Lost a race with another writer
		if IsBucketAlreadyExists(err) {
			return nil
		}
		return WrapError("MakeBucket", err, bucketName, "")
	}

	c.logger.Info("bucket created",
		zap.String("bucket", bucketName),
		zap.String("region", c.config.Region),
	)

	return nil
}

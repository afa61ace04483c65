package minio

import (
	"context"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// UploadInfo represents information about an uploaded object
type UploadInfo struct {
	Bucket    string
	Key       string
	ETag      string
	Size      int64
	Location  string
	VersionID string
}

// FPutObject uploads a local file to a bucket
func (c *Client) FPutObject(ctx context.Context, bucketName, objectName, filePath string, contentType string) (UploadInfo, error) {
	if err := c.checkClosed(); err != nil {
		return UploadInfo{}, err
	}

	if bucketName == "" {
		return UploadInfo{}, WrapError("FPutObject", ErrInvalidBucketName, bucketName, objectName)
	}

	if err := ValidateObjectName(objectName); err != nil {
		return UploadInfo{}, WrapError("FPutObject", ErrInvalidObjectName, bucketName, objectName)
	}

	if filePath == "" {
		return UploadInfo{}, WrapErrorWithMessage("FPutObject", ErrInvalidArgument, "file path is required")
	}

	if contentType == "" {
		contentType = DetectContentType(filePath)
	}

	info, err := c.client.FPutObject(ctx, bucketName, objectName, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return UploadInfo{}, WrapError("FPutObject", err, bucketName, objectName)
	}

	c.logger.Info("file uploaded",
		zap.String("bucket", bucketName),
		zap.String("object", objectName),
		zap.String("file_path", filePath),
		zap.Int64("size", info.Size),
	)

	return UploadInfo{
		Bucket:    info.Bucket,
		Key:       info.Key,
		ETag:      info.ETag,
		Size:      info.Size,
		Location:  info.Location,
		VersionID: info.VersionID,
	}, nil
}

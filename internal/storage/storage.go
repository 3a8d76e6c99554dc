package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored image object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadInput carries an image payload and its destination metadata.
type UploadInput struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
}

// Service stores product and category images in remote object storage.
type Service interface {
	UploadImage(ctx context.Context, in UploadInput) (string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

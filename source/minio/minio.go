// Package minio reads containers stored in MinIO or any S3-compatible
// service through minio-go.
package minio

import (
	"context"
	"fmt"
	"os"

	"github.com/minio/minio-go/v7"
)

// Object is a seekable view of a remote object. minio-go already turns
// seeks into ranged requests; Object adds the size needed by gzinga.Source.
type Object struct {
	*minio.Object
	size int64
}

// Open stats the object and returns a source positioned at 0. A missing
// object returns an error satisfying errors.Is(err, os.ErrNotExist).
func Open(ctx context.Context, client *minio.Client, bucket, key string) (*Object, error) {
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(bucket, key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, mapError(bucket, key, err)
	}
	return &Object{Object: obj, size: info.Size}, nil
}

func (o *Object) Size() int64 {
	return o.size
}

func mapError(bucket, key string, err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return fmt.Errorf("%s/%s: %w", bucket, key, os.ErrNotExist)
	}
	return err
}

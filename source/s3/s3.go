// Package s3 reads containers stored as S3 objects.
//
// Object turns reads into ranged GetObject requests of a fixed block size
// and keeps the last block, so the small reads done while parsing headers
// do not each cost a round trip.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// DefaultBlockSize is the size of each ranged request.
const DefaultBlockSize = 256 * 1024

// API is the subset of *s3.Client used by Object.
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Object is a read-only, seekable view of an S3 object.
type Object struct {
	ctx    context.Context
	client API
	bucket string
	key    string
	size   int64

	off       int64
	blockSize int
	block     []byte
	blockOff  int64
}

// Option configures an Object.
type Option func(*Object)

// WithBlockSize sets the size of each ranged request.
func WithBlockSize(n int) Option {
	return func(o *Object) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// Open looks up the object size and returns a source positioned at 0. ctx is
// used for every request made by the returned Object. A missing object
// returns an error satisfying errors.Is(err, os.ErrNotExist).
func Open(ctx context.Context, client API, bucket, key string, opts ...Option) (*Object, error) {
	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, os.ErrNotExist)
		}
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, os.ErrNotExist)
		}
		return nil, err
	}
	o := &Object{
		ctx:       ctx,
		client:    client,
		bucket:    bucket,
		key:       key,
		size:      aws.ToInt64(head.ContentLength),
		blockSize: DefaultBlockSize,
		blockOff:  -1,
	}
	for _, fn := range opts {
		fn(o)
	}
	return o, nil
}

func (o *Object) Size() int64 {
	return o.size
}

func (o *Object) Read(p []byte) (int, error) {
	if o.off >= o.size {
		return 0, io.EOF
	}
	if o.blockOff < 0 || o.off < o.blockOff || o.off >= o.blockOff+int64(len(o.block)) {
		if err := o.fetch(o.off); err != nil {
			return 0, err
		}
	}
	n := copy(p, o.block[o.off-o.blockOff:])
	o.off += int64(n)
	return n, nil
}

func (o *Object) fetch(start int64) error {
	end := start + int64(o.blockSize) - 1
	if end >= o.size {
		end = o.size - 1
	}
	resp, err := o.client.GetObject(o.ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if cap(o.block) < o.blockSize {
		o.block = make([]byte, o.blockSize)
	}
	o.block = o.block[:end-start+1]
	if _, err := io.ReadFull(resp.Body, o.block); err != nil {
		o.blockOff = -1
		return err
	}
	o.blockOff = start
	return nil
}

func (o *Object) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = o.off + offset
	case io.SeekEnd:
		abs = o.size + offset
	default:
		return 0, errors.New("s3: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("s3: negative position")
	}
	o.off = abs
	return abs, nil
}

// Close drops the cached block. No connection is held between reads.
func (o *Object) Close() error {
	o.block = nil
	o.blockOff = -1
	return nil
}

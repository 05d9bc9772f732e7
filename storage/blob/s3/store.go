// Package s3blob stores submission files in an S3-compatible bucket.
package s3blob

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
)

const nameMetaKey = "filename"

type Store struct {
	client  *s3.Client
	bucket  string
	maxSize int64
}

var _ core.BlobStore = (*Store)(nil)

// NewClient builds an S3 client from config. A custom endpoint (minio, localstack) forces path-style addressing.
func NewClient(ctx context.Context, conf core.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(conf.Region)}
	if conf.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// New returns a Store that refuses blobs over maxSize bytes (no limit when maxSize <= 0).
func New(client *s3.Client, bucket string, maxSize int64) *Store {
	return &Store{client: client, bucket: bucket, maxSize: maxSize}
}

func (s *Store) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	// PutObject needs a known length, so the blob is buffered up to maxSize.
	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading blob")
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", core.ErrBlobTooLarge
	}

	id := uuid.NewString()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(id),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      map[string]string{nameMetaKey: name},
	})
	if err != nil {
		return "", errors.Wrap(err, "putting object")
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (*core.Blob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, core.ErrBlobNotFound
		}
		return nil, errors.Wrap(err, "getting object")
	}

	info := core.BlobInfo{
		ID:          id,
		Name:        out.Metadata[nameMetaKey],
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		UploadedAt:  aws.ToTime(out.LastModified).In(time.UTC),
	}
	return &core.Blob{ReadCloser: out.Body, BlobInfo: info}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	return errors.Wrap(err, "deleting object")
}

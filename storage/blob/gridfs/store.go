// Package gridfsblob stores submission files in a MongoDB GridFS bucket.
package gridfsblob

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/courseware/core"
)

type Store struct {
	db     *mongo.Database
	bucket string
}

var _ core.BlobStore = (*Store)(nil)

func New(db *mongo.Database, bucket string) *Store {
	return &Store{db: db, bucket: bucket}
}

// open returns a new bucket handle. Buckets are cheap and not safe for concurrent use.
func (s *Store) open() (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucket))
	return b, errors.Wrap(err, "opening gridfs bucket")
}

func (s *Store) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	b, err := s.open()
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = b.SetWriteDeadline(deadline)
	}

	id := primitive.NewObjectID()
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	us, err := b.OpenUploadStreamWithID(id, name, opts)
	if err != nil {
		return "", errors.Wrap(err, "opening upload stream")
	}
	if _, err = io.Copy(us, r); err != nil {
		_ = us.Abort()
		return "", errors.Wrap(err, "uploading blob")
	}
	if err = us.Close(); err != nil {
		return "", errors.Wrap(err, "closing upload stream")
	}
	return id.Hex(), nil
}

func (s *Store) Get(ctx context.Context, id string) (*core.Blob, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrBlobNotFound
	}
	b, err := s.open()
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = b.SetReadDeadline(deadline)
	}

	ds, err := b.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, core.ErrBlobNotFound
		}
		return nil, errors.Wrap(err, "opening download stream")
	}

	f := ds.GetFile()
	info := core.BlobInfo{
		ID:         id,
		Name:       f.Name,
		Size:       f.Length,
		UploadedAt: f.UploadDate,
	}
	if ct, ok := f.Metadata.Lookup("contentType").StringValueOK(); ok {
		info.ContentType = ct
	}
	return &core.Blob{ReadCloser: ds, BlobInfo: info}, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.ErrBlobNotFound
	}
	b, err := s.open()
	if err != nil {
		return err
	}
	if err = b.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return core.ErrBlobNotFound
		}
		return errors.Wrap(err, "deleting blob")
	}
	return nil
}

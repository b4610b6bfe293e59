package blobstore

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const GRIDFS_BUCKET_NAME = "photos"

// GridFSStore keeps blobs in a GridFS bucket of the report database, using the key as file name.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(GRIDFS_BUCKET_NAME))
	if err != nil {
		return nil, err
	}
	return &GridFSStore{bucket: bucket}, nil
}

type gridfsMetadata struct {
	ContentType string `bson:"contentType"`
}

func (s *GridFSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := options.GridFSUpload().SetMetadata(gridfsMetadata{ContentType: contentType})
	stream, err := s.bucket.OpenUploadStream(key, opts)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := stream.SetWriteDeadline(deadline); err != nil {
			stream.Close()
			return err
		}
	}
	if _, err := stream.Write(data); err != nil {
		_ = stream.Abort()
		return err
	}
	return stream.Close()
}

func (s *GridFSStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	stream, err := s.bucket.OpenDownloadStreamByName(key)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	contentType := "application/octet-stream"
	if raw := stream.GetFile().Metadata; raw != nil {
		var meta gridfsMetadata
		if err := bson.Unmarshal(raw, &meta); err == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}
	return stream, contentType, nil
}

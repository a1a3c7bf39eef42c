package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage keeps files as private objects in a Cloud Storage bucket.
type GCSStorage struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCSStorage(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSStorage{client: c, bucket: bucket, prefix: prefix}, nil
}

func (s *GCSStorage) Close() error { return s.client.Close() }

func (s *GCSStorage) object(key string) (*gcs.ObjectHandle, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	return s.client.Bucket(s.bucket).Object(objectName(s.prefix, key)), nil
}

// objectName places key under the prefix folder; an empty prefix means the
// bucket root.
func objectName(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

func (s *GCSStorage) Save(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	obj, err := s.object(key)
	if err != nil {
		return 0, err
	}

	// only create, never overwrite another upload
	w := obj.If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		_ = obj.Delete(context.WithoutCancel(ctx))
		return 0, fmt.Errorf("upload object: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("finalize object: %w", err)
	}
	return n, nil
}

func (s *GCSStorage) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	obj, err := s.object(key)
	if err != nil {
		return nil, 0, err
	}

	rd, err := obj.NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, 0, ErrNotExist
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read object: %w", err)
	}
	return rd, rd.Attrs.Size, nil
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	obj, err := s.object(key)
	if err != nil {
		return err
	}

	err = obj.Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotExist
	}
	return err
}

package minio

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/hupe1980/kdmap/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds connection settings for New.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
}

// New dials endpoint with static credentials and returns a Store rooted at
// bucket/rootPrefix.
func New(cfg Config, bucket, rootPrefix string) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: connect %s: %w", cfg.Endpoint, err)
	}
	return NewStore(client, bucket, rootPrefix), nil
}

// Store serves map blobs from a MinIO (or other S3-compatible) bucket.
type Store struct {
	client *minio.Client
	bucket string
	root   string
}

// NewStore wraps an existing client. Keys are rootPrefix + "/" + name.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{client: client, bucket: bucket, root: strings.Trim(rootPrefix, "/")}
}

func (s *Store) objectName(name string) string {
	return path.Join(s.root, name)
}

func missing(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Open fetches the object lazily; reads are served as ranged GETs by the
// minio client.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.objectName(name)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if missing(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("minio: stat %s: %w", key, err)
	}
	return &object{obj: obj, size: info.Size}, nil
}

// Put uploads data in one request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.objectName(name)
	opts := minio.PutObjectOptions{ContentType: "application/octet-stream"}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("minio: put %s: %w", key, err)
	}
	return nil
}

// Delete removes name; a missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.objectName(name)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil && !missing(err) {
		return fmt.Errorf("minio: remove %s: %w", key, err)
	}
	return nil
}

// List walks the bucket recursively below the store root.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	search := prefix
	if s.root != "" {
		search = s.root + "/" + prefix
	}

	var names []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: search, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("minio: list %s: %w", search, info.Err)
		}
		name := info.Key
		if s.root != "" {
			var ok bool
			if name, ok = strings.CutPrefix(name, s.root+"/"); !ok {
				continue
			}
		}
		if name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

type object struct {
	obj  *minio.Object
	size int64
}

func (o *object) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return o.obj.ReadAt(p, off)
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return o.obj.Close() }

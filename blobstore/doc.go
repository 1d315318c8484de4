// Package blobstore abstracts where map files live.
//
// A BlobStore exposes named, immutable blobs:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)          // Open for reading
//	    Put(ctx, name, data) error             // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Implementations in this module:
//
//   - MemoryStore: in-process, for tests
//   - LocalStore: a directory on disk, read through mmap
//   - s3.Store: Amazon S3 (aws-sdk-go-v2)
//   - minio.Store: MinIO and other S3-compatible servers
//
// Use ReadAll to fetch a whole blob regardless of backend.
package blobstore

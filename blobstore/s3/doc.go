// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "maps/")
//	m, err := kdmap.Open(ctx, store, "level1.json.zst")
//
// Reads use ranged GetObject requests. Put goes through the
// feature/s3/manager uploader, which switches to multipart uploads for
// large map files.
package s3

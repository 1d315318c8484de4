// Package minio reads and writes map blobs in a MinIO bucket.
//
// New dials a server from a Config; NewStore adopts a client you built
// yourself:
//
//	store, err := minioblob.New(minioblob.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "maps", "levels/")
//	if err != nil {
//	    return err
//	}
//	m, err := kdmap.Open(ctx, store, "level1.toml")
//
// Any S3-compatible server that speaks signature v4 works.
package minio

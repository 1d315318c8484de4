package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/hupe1980/kdmap/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	bucket := "test-kdmap"

	store, err := New(Config{
		Endpoint:  envOr("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: envOr("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: envOr("MINIO_SECRET_KEY", "minioadmin"),
	}, bucket, "test-prefix/")
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	client := store.client

	// Check if MinIO is reachable
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte(`{"List":[{"Id":"a","X":1,"Y":2}]}`)
	require.NoError(t, store.Put(ctx, "level.json", data))

	blob, err := store.Open(ctx, "level.json")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 6)
	n, err := blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, data[2:8], buf)

	n, err = blob.ReadAt(ctx, make([]byte, 100), int64(len(data)-3))
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 3, n)
	require.NoError(t, blob.Close())

	all, err := blobstore.ReadAll(ctx, store, "level.json")
	require.NoError(t, err)
	assert.Equal(t, data, all)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "level.json")

	require.NoError(t, store.Delete(ctx, "level.json"))
	_, err = store.Open(ctx, "level.json")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

package kdmap

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/hupe1980/kdmap/blobstore"
	"github.com/hupe1980/kdmap/codec"
	"github.com/hupe1980/kdmap/index/kdtree"
	"github.com/hupe1980/kdmap/internal/hash"
	"github.com/hupe1980/kdmap/mapfile"
)

// SnapshotExt is the file extension of index snapshots.
const SnapshotExt = ".kdt"

// Snapshot layout: magic, gob-encoded tree, little-endian CRC32C of the tree.
var snapshotMagic = []byte("KDT1")

const checksumSize = 4

func frameSnapshot(payload []byte) []byte {
	out := make([]byte, 0, len(snapshotMagic)+len(payload)+checksumSize)
	out = append(out, snapshotMagic...)
	out = append(out, payload...)
	return binary.LittleEndian.AppendUint32(out, hash.CRC32C(payload))
}

func unframeSnapshot(data []byte) ([]byte, error) {
	if len(data) < len(snapshotMagic)+checksumSize || !bytes.HasPrefix(data, snapshotMagic) {
		return nil, fmt.Errorf("%w: not a snapshot", kdtree.ErrCorrupt)
	}
	payload := data[len(snapshotMagic) : len(data)-checksumSize]
	sum := binary.LittleEndian.Uint32(data[len(data)-checksumSize:])
	if !hash.Verify(payload, sum) {
		return nil, fmt.Errorf("%w: checksum mismatch", kdtree.ErrCorrupt)
	}
	return payload, nil
}

// IsSnapshot reports whether name refers to an index snapshot, with or
// without a compression suffix.
func IsSnapshot(name string) bool {
	base, _ := codec.SplitCompression(name)
	return strings.EqualFold(path.Ext(base), SnapshotExt)
}

// WriteSnapshot stores the built index under name. The tree is written in
// its exact shape, so Open restores it without sorting again. A .zst or .lz4
// suffix compresses the snapshot.
func (m *Map) WriteSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (err error) {
	defer func() { m.opts.logger.LogSnapshot(ctx, name, err) }()

	if !IsSnapshot(name) {
		return fmt.Errorf("kdmap: snapshot name %q must use the %s extension", name, SnapshotExt)
	}
	data, err := m.tree.GobEncode()
	if err != nil {
		return fmt.Errorf("kdmap: encode snapshot: %w", err)
	}
	data, err = codec.Compress(frameSnapshot(data), codec.CompressionForPath(name))
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

func openSnapshot(ctx context.Context, store blobstore.BlobStore, name string, o options) (*Map, error) {
	start := time.Now()
	tree, err := readSnapshot(ctx, store, name)

	tiles := 0
	if tree != nil {
		tiles = tree.Len()
	}
	o.metricsCollector.RecordLoad(tiles, time.Since(start), err)
	o.logger.LogLoad(ctx, name, tiles, err)
	if err != nil {
		return nil, named(translateError(err), name)
	}
	return newMap(name, tree, o), nil
}

func readSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (*kdtree.Tree[mapfile.Tile], error) {
	raw, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	data, err := codec.Decompress(raw, codec.CompressionForPath(name))
	if err != nil {
		return nil, err
	}
	data, err = unframeSnapshot(data)
	if err != nil {
		return nil, err
	}

	tree := new(kdtree.Tree[mapfile.Tile])
	if err := tree.GobDecode(data); err != nil {
		return nil, fmt.Errorf("%w: %w", kdtree.ErrCorrupt, err)
	}

	doc := &mapfile.Map{List: make([]mapfile.Tile, 0, tree.Len())}
	for id, rec := range tree.All() {
		t := rec.Data
		if rec.ID != t.ID || rec.X != t.X || rec.Y != t.Y {
			return nil, fmt.Errorf("%w: node %d indexed at (%g, %g) as %q but holds tile %q at (%g, %g)",
				kdtree.ErrCorrupt, id, rec.X, rec.Y, rec.ID, t.ID, t.X, t.Y)
		}
		doc.List = append(doc.List, t)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

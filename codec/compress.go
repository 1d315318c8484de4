package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the compression applied to a map file.
type Compression uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone Compression = 0
	// CompressionLZ4 indicates an LZ4 frame (".lz4").
	CompressionLZ4 Compression = 1
	// CompressionZSTD indicates a Zstandard frame (".zst").
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// Suffix returns the file name suffix of the compression.
func (c Compression) Suffix() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZSTD:
		return ".zst"
	default:
		return ""
	}
}

// SplitCompression strips a known compression suffix from name.
func SplitCompression(name string) (string, Compression) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zst"):
		return name[:len(name)-len(".zst")], CompressionZSTD
	case strings.HasSuffix(lower, ".zstd"):
		return name[:len(name)-len(".zstd")], CompressionZSTD
	case strings.HasSuffix(lower, ".lz4"):
		return name[:len(name)-len(".lz4")], CompressionLZ4
	default:
		return name, CompressionNone
	}
}

// CompressionForPath returns the compression implied by a file name.
func CompressionForPath(name string) Compression {
	_, c := SplitCompression(name)
	return c
}

// MaxDecompressedSize caps the output of Decompress.
const MaxDecompressedSize = 256 << 20

// ErrTooLarge is returned when decompressed data would exceed the limit.
var ErrTooLarge = errors.New("codec: decompressed data exceeds limit")

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// Pooled decoders are bound to MaxDecompressedSize.
func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return newZstdDecoder(MaxDecompressedSize)
}

func newZstdDecoder(limit int64) (*zstd.Decoder, error) {
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(limit)),
	)
}

// Compress compresses data with the given algorithm.
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("codec: zstd encoder: %w", err)
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("codec: lz4 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("codec: lz4 close: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("codec: unknown compression %v", c)
	}
}

// Decompress reverses Compress. Output larger than MaxDecompressedSize
// fails with ErrTooLarge.
func Decompress(data []byte, c Compression) ([]byte, error) {
	return DecompressLimit(data, c, MaxDecompressedSize)
}

// DecompressLimit is Decompress with an explicit output limit in bytes.
func DecompressLimit(data []byte, c Compression, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("codec: invalid decompression limit %d", limit)
	}

	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		var (
			dec *zstd.Decoder
			err error
		)
		if limit == MaxDecompressedSize {
			dec, err = getZstdDecoder()
			defer func() {
				if dec != nil {
					zstdDecoderPool.Put(dec)
				}
			}()
		} else {
			dec, err = newZstdDecoder(limit)
			defer func() {
				if dec != nil {
					dec.Close()
				}
			}()
		}
		if err != nil {
			return nil, fmt.Errorf("codec: zstd decoder: %w", err)
		}
		out, err := dec.DecodeAll(data, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) ||
			(err == nil && int64(len(out)) > limit) {
			return nil, fmt.Errorf("%w: zstd output over %d bytes", ErrTooLarge, limit)
		}
		if err != nil {
			return nil, fmt.Errorf("codec: zstd decode: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(io.LimitReader(lz4.NewReader(bytes.NewReader(data)), limit+1))
		if err != nil {
			return nil, fmt.Errorf("codec: lz4 decode: %w", err)
		}
		if int64(len(out)) > limit {
			return nil, fmt.Errorf("%w: lz4 output over %d bytes", ErrTooLarge, limit)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("codec: unknown compression %v", c)
	}
}

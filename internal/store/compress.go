package store

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Encoding is the compression applied to a stored snapshot. The value is
// kept per row, so changing the setting does not break older rows.
type Encoding int8

const (
	EncodingNone Encoding = 0
	EncodingGzip Encoding = 1
	EncodingZstd Encoding = 2
	EncodingBr   Encoding = 3
)

var encodingNames = map[string]Encoding{
	"":     EncodingNone,
	"none": EncodingNone,
	"gzip": EncodingGzip,
	"zstd": EncodingZstd,
	"br":   EncodingBr,
}

// ParseEncoding maps a config value to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	enc, ok := encodingNames[name]
	if !ok {
		return EncodingNone, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

var (
	gzipWriterPool = sync.Pool{
		New: func() any {
			return gzip.NewWriter(io.Discard)
		},
	}
	brotliWriterPool = sync.Pool{
		New: func() any {
			return brotli.NewWriter(io.Discard)
		},
	}

	// The zstd encoder and decoder are safe for concurrent EncodeAll and
	// DecodeAll calls.
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func compress(data []byte, enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	switch enc {
	case EncodingNone:
		return data, nil
	case EncodingGzip:
		z := gzipWriterPool.Get().(*gzip.Writer)
		defer gzipWriterPool.Put(z)

		z.Reset(&buf)
		if _, err := z.Write(data); err != nil {
			return nil, err
		}
		if err := z.Close(); err != nil {
			return nil, err
		}
	case EncodingZstd:
		return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case EncodingBr:
		w := brotliWriterPool.Get().(*brotli.Writer)
		defer brotliWriterPool.Put(w)

		w.Reset(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEncoding, enc)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingNone:
		return data, nil
	case EncodingGzip:
		z, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = z.Close() }()
		return io.ReadAll(z)
	case EncodingZstd:
		return zstdDecoder.DecodeAll(data, nil)
	case EncodingBr:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEncoding, enc)
	}
}

// Package compress routes blob payloads through the right compression
// algorithm based on file extension.
package compress

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zlib"
	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/zerr"
)

// Classification is by extension only, never content sniffing: the tables
// below are data, so supporting a new extension is a one-line change.
var (
	// precompressedExts are formats that are already entropy-coded; storing
	// them again through a compressor wastes CPU for nothing.
	precompressedExts = map[string]bool{
		".7z": true, ".aac": true, ".avif": true, ".br": true, ".bz2": true,
		".flac": true, ".gif": true, ".gz": true, ".jar": true, ".jpeg": true,
		".jpg": true, ".lz4": true, ".mkv": true, ".mov": true, ".mp3": true,
		".mp4": true, ".ogg": true, ".png": true, ".rar": true, ".tgz": true,
		".webm": true, ".webp": true, ".woff": true, ".woff2": true,
		".xz": true, ".zip": true, ".zst": true,
	}

	// textualExts are source and text formats where brotli's static
	// dictionary pays off.
	textualExts = map[string]bool{
		".c": true, ".cc": true, ".cfg": true, ".conf": true, ".cpp": true,
		".cs": true, ".css": true, ".csv": true, ".go": true, ".h": true,
		".hpp": true, ".html": true, ".ini": true, ".java": true, ".js": true,
		".json": true, ".jsx": true, ".kt": true, ".log": true, ".md": true,
		".mjs": true, ".proto": true, ".py": true, ".rb": true, ".rs": true,
		".sh": true, ".sql": true, ".svg": true, ".toml": true, ".ts": true,
		".tsx": true, ".txt": true, ".xml": true, ".yaml": true, ".yml": true,
	}
)

// Classify picks the compression algorithm for a file by its extension.
// Unknown and extension-less files land in the zlib default bucket.
func Classify(filename string) domain.Compression {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case precompressedExts[ext]:
		return domain.CompressionNone
	case textualExts[ext]:
		return domain.CompressionBrotli
	default:
		return domain.CompressionZlib
	}
}

// Compress encodes data with the given algorithm.
func Compress(data []byte, algo domain.Compression) ([]byte, error) {
	switch algo {
	case domain.CompressionNone:
		return data, nil

	case domain.CompressionBrotli:
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, zerr.Wrap(err, domain.ErrCompressionFailed.Error())
		}
		if err := w.Close(); err != nil {
			return nil, zerr.Wrap(err, domain.ErrCompressionFailed.Error())
		}
		return buf.Bytes(), nil

	case domain.CompressionZlib:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, zerr.Wrap(err, domain.ErrCompressionFailed.Error())
		}
		if err := w.Close(); err != nil {
			return nil, zerr.Wrap(err, domain.ErrCompressionFailed.Error())
		}
		return buf.Bytes(), nil

	default:
		return nil, zerr.With(domain.ErrUnknownCompression, "algorithm", string(algo))
	}
}

// Decompress decodes data that was encoded with the given algorithm.
// Decompress(Compress(x, a), a) == x for every supported a.
func Decompress(data []byte, algo domain.Compression) ([]byte, error) {
	switch algo {
	case domain.CompressionNone:
		return data, nil

	case domain.CompressionBrotli:
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrDecompressionFailed.Error())
		}
		return out, nil

	case domain.CompressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrDecompressionFailed.Error())
		}
		defer r.Close() //nolint:errcheck // Best effort close in defer
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrDecompressionFailed.Error())
		}
		return out, nil

	default:
		return nil, zerr.With(domain.ErrUnknownCompression, "algorithm", string(algo))
	}
}

package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"runtime"
	"sort"

	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/memo/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Hasher = (*Hasher)(nil)

// Field and section separators for the canonical fingerprint serialization.
// Every env value is prefixed with a status byte: absentMarker tags a
// declared variable that is not set, presentMarker one that is. An unset
// variable can therefore never collide with one set to the empty string, or
// to any value that happens to start with the marker byte.
const (
	fieldSep      = 0x00
	sectionSep    = 0x01
	absentMarker  = 0x02
	presentMarker = 0x03
)

// Hasher computes SHA-256 content digests and cache fingerprints.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashBytes returns the hex SHA-256 digest of the given bytes.
func (h *Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile streams a file through SHA-256 and returns the hex digest of its
// content.
func (h *Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := sha256.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// HashFiles digests each file independently. Hashing is parallelized across
// CPUs; that is safe because each file digest is pure and independent, and
// the final sort by path makes the result order-insensitive anyway.
func (h *Hasher) HashFiles(paths []string) ([]ports.FileHash, error) {
	results := make([]ports.FileHash, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			hash, err := h.HashFile(path)
			if err != nil {
				return err
			}
			results[i] = ports.FileHash{Path: path, Hash: hash}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// Fingerprint combines the configuration hash, the command line, the
// filtered environment and the input content hashes into one deterministic
// cache key. All variable-order collections are canonically sorted before
// hashing, so enumeration order can never leak into the key.
func (h *Hasher) Fingerprint(
	configHash, command string,
	envNames []string,
	lookup func(string) (string, bool),
	files []ports.FileHash,
) string {
	digest := sha256.New()

	_, _ = digest.Write([]byte(configHash))
	_, _ = digest.Write([]byte{sectionSep})

	_, _ = digest.Write([]byte(command))
	_, _ = digest.Write([]byte{sectionSep})

	names := make([]string, len(envNames))
	copy(names, envNames)
	sort.Strings(names)
	for _, name := range names {
		_, _ = digest.Write([]byte(name))
		_, _ = digest.Write([]byte{fieldSep})
		if value, ok := lookup(name); ok {
			_, _ = digest.Write([]byte{presentMarker})
			_, _ = digest.Write([]byte(value))
		} else {
			_, _ = digest.Write([]byte{absentMarker})
		}
		_, _ = digest.Write([]byte{fieldSep})
	}
	_, _ = digest.Write([]byte{sectionSep})

	hashes := make([]string, len(files))
	for i, f := range files {
		hashes[i] = f.Hash
	}
	sort.Strings(hashes)
	for _, fh := range hashes {
		_, _ = digest.Write([]byte(fh))
		_, _ = digest.Write([]byte{fieldSep})
	}

	return hex.EncodeToString(digest.Sum(nil))
}

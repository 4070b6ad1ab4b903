// Package cas implements the content-addressed cache store for file blobs
// and command records.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/memo/internal/adapters/compress"
	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/memo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Store = (*Store)(nil)

// Store is an explicit handle to one cache root. It is constructed once per
// process from resolved configuration and holds the read-only flag; nothing
// else in the process knows where the cache lives.
//
// Layout under the root:
//
//	files/<content-hash>/file.json     metadata
//	files/<content-hash>/compressed    payload
//	commands/<fingerprint>/command.json
//
// Writes go to a temp file in the entry directory and are renamed into
// place. Entries that are corrupt anyway (a crash between the two files of
// a blob, truncated JSON) surface as domain.ErrStoreCorrupt; callers treat
// that as a miss, never as fatal.
type Store struct {
	root     string
	readOnly bool
	fs       afero.Fs
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithFs replaces the backing filesystem. Tests use afero.NewMemMapFs.
func WithFs(fsys afero.Fs) Option {
	return func(s *Store) { s.fs = fsys }
}

// WithClock replaces the creation-timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store handle for the given cache root.
func NewStore(root string, readOnly bool, opts ...Option) (*Store, error) {
	s := &Store{
		root:     root,
		readOnly: readOnly,
		fs:       afero.NewOsFs(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !readOnly {
		for _, dir := range []string{s.filesDir(), s.commandsDir()} {
			if err := s.fs.MkdirAll(dir, domain.DirPerm); err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "dir", dir)
			}
		}
	}
	return s, nil
}

// ReadOnly reports whether the handle refuses mutations.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// PutFile stores content addressed by the hash of its original bytes and
// returns that hash. Identical content stored under two different original
// paths produces exactly one blob; the metadata keeps the path of the first
// write. In read-only mode the hash is computed and returned without any
// write.
func (s *Store) PutFile(data []byte, originalPath string) (string, error) {
	hash := hashBytes(data)
	if s.readOnly {
		return hash, nil
	}

	entryDir := filepath.Join(s.filesDir(), hash)
	exists, err := afero.DirExists(s.fs, entryDir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "hash", hash)
	}
	if exists {
		// Content-addressed, therefore immutable: nothing to do.
		return hash, nil
	}

	algo := compress.Classify(originalPath)
	payload, err := compress.Compress(data, algo)
	if err != nil {
		return "", zerr.With(err, "path", originalPath)
	}

	meta := domain.FileMeta{
		Created:      s.now().UTC(),
		OriginalHash: hash,
		Compression:  algo,
		OriginalPath: originalPath,
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	if err := s.fs.MkdirAll(entryDir, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "dir", entryDir)
	}
	if err := s.writeFileAtomic(filepath.Join(entryDir, domain.FilePayloadName), payload); err != nil {
		return "", err
	}
	if err := s.writeFileAtomic(filepath.Join(entryDir, domain.FileMetaName), metaJSON); err != nil {
		return "", err
	}

	return hash, nil
}

// GetFile returns the original bytes of the blob with the given hash.
func (s *Store) GetFile(hash string) ([]byte, error) {
	entryDir := filepath.Join(s.filesDir(), hash)

	exists, err := afero.DirExists(s.fs, entryDir)
	if err != nil || !exists {
		return nil, zerr.With(domain.ErrFileNotCached, "hash", hash)
	}

	metaJSON, err := afero.ReadFile(s.fs, filepath.Join(entryDir, domain.FileMetaName))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "hash", hash)
	}

	var meta domain.FileMeta
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "hash", hash)
	}
	if !meta.Compression.Valid() {
		return nil, zerr.With(domain.ErrUnknownCompression, "algorithm", string(meta.Compression))
	}

	payload, err := afero.ReadFile(s.fs, filepath.Join(entryDir, domain.FilePayloadName))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "hash", hash)
	}

	data, err := compress.Decompress(payload, meta.Compression)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "hash", hash)
	}

	return data, nil
}

// PutCommand stores the record keyed by its fingerprint. Overwriting an
// existing record with the same key is safe: an identical fingerprint means
// an equivalent record. No-op in read-only mode.
func (s *Store) PutCommand(rec domain.CommandRecord) error {
	if s.readOnly {
		return nil
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	entryDir := filepath.Join(s.commandsDir(), rec.Hash)
	if err := s.fs.MkdirAll(entryDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "dir", entryDir)
	}

	return s.writeFileAtomic(filepath.Join(entryDir, domain.CommandFileName), data)
}

// GetCommand returns the record for the given fingerprint.
func (s *Store) GetCommand(fingerprint string) (*domain.CommandRecord, error) {
	path := filepath.Join(s.commandsDir(), fingerprint, domain.CommandFileName)

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerr.With(domain.ErrCommandNotCached, "fingerprint", fingerprint)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "fingerprint", fingerprint)
	}

	var rec domain.CommandRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCorrupt.Error()), "fingerprint", fingerprint)
	}

	return &rec, nil
}

func (s *Store) filesDir() string {
	return filepath.Join(s.root, domain.FilesDirName)
}

func (s *Store) commandsDir() string {
	return filepath.Join(s.root, domain.CommandsDirName)
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it into place, so readers never observe a half-written entry file.
func (s *Store) writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%s-%d", filepath.Base(path), s.now().UnixNano()))

	if err := afero.WriteFile(s.fs, tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

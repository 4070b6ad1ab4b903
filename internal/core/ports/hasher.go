package ports

// FileHash pairs a resolved input path with the digest of its content.
type FileHash struct {
	Path string
	Hash string
}

// Hasher computes content digests and cache fingerprints.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashBytes returns the hex digest of the given bytes.
	HashBytes(data []byte) string

	// HashFiles digests each file's content independently. The result is
	// sorted by path regardless of the order files were hashed in.
	HashFiles(paths []string) ([]FileHash, error)

	// Fingerprint combines the configuration hash, the command line, the
	// filtered environment and the sorted input content hashes into one
	// deterministic cache key. Env values are looked up via lookup; a
	// declared variable that is unset is serialized distinctly from one set
	// to the empty string.
	Fingerprint(configHash, command string, envNames []string, lookup func(string) (string, bool), files []FileHash) string
}

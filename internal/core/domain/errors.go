package domain

import "go.trai.ch/zerr"

var (
	// ErrProjectAlreadyExists is returned when two projects share the same name.
	ErrProjectAlreadyExists = zerr.New("project already exists")

	// ErrMissingDependency is returned when a project depends on a project that was never declared.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when the dependency relation contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrProjectNotFound is returned when a requested project is not in the graph.
	ErrProjectNotFound = zerr.New("project not found")

	// ErrNoProjectSelected is returned when no project was named and none matches the working directory.
	ErrNoProjectSelected = zerr.New("no project selected")

	// ErrEmptyCommand is returned when the run command line is empty.
	ErrEmptyCommand = zerr.New("empty command")

	// ErrInvalidPattern is returned when an input or output glob pattern is syntactically invalid.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrFileNotCached is returned when a blob is not present in the cache.
	ErrFileNotCached = zerr.New("file not cached")

	// ErrCommandNotCached is returned when no record exists for a fingerprint.
	ErrCommandNotCached = zerr.New("command not cached")

	// ErrStoreCorrupt is returned when a cache entry exists but cannot be read back.
	ErrStoreCorrupt = zerr.New("cache entry corrupt")

	// ErrStoreReadOnly reports a mutation attempted on a read-only store.
	// Mutations are silent no-ops per the store contract; this sentinel exists
	// for paths that must distinguish the mode explicitly.
	ErrStoreReadOnly = zerr.New("cache store is read-only")

	// ErrStoreWriteFailed is returned when a cache entry cannot be persisted.
	ErrStoreWriteFailed = zerr.New("failed to write cache entry")

	// ErrUnknownCompression is returned when a metadata record names an algorithm this build does not know.
	ErrUnknownCompression = zerr.New("unknown compression algorithm")

	// ErrCompressionFailed is returned when a payload cannot be compressed.
	ErrCompressionFailed = zerr.New("failed to compress payload")

	// ErrDecompressionFailed is returned when a payload cannot be decompressed.
	ErrDecompressionFailed = zerr.New("failed to decompress payload")

	// ErrCommandStartFailed is returned when the underlying command cannot be launched at all.
	ErrCommandStartFailed = zerr.New("failed to start command")

	// ErrCommandFailed is returned when a launched command exits non-zero.
	ErrCommandFailed = zerr.New("command exited with non-zero status")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrRestoreFailed is returned when a cached output cannot be written back to its original path.
	ErrRestoreFailed = zerr.New("failed to restore cached output")
)

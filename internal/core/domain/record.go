package domain

import "time"

// FileMeta is the metadata record stored next to a blob payload.
// The blob itself is addressed by the hash of its original, pre-compression
// bytes; the record remembers how to get those bytes back.
type FileMeta struct {
	Created      time.Time   `json:"created"`
	OriginalHash string      `json:"original_hash"`
	Compression  Compression `json:"compression_algorithm"`
	OriginalPath string      `json:"original_path"`
}

// CommandRecord is the result of one executed command, keyed by its
// fingerprint. Input and output hashes reference blobs in the file store.
type CommandRecord struct {
	Ran     time.Time         `json:"ran"`
	Env     map[string]string `json:"env"`
	Command string            `json:"command"`
	Hash    string            `json:"hash"`
	Outputs []OutputFile      `json:"outputs"`
	Inputs  []string          `json:"inputs"`
	Log     string            `json:"log"`
}

// OutputFile ties an output blob hash to the path it was produced at, so a
// cache hit can restore it to the same place.
type OutputFile struct {
	Hash string `json:"hash"`
	Path string `json:"path"`
}

// RunStatus reports how a project run was satisfied.
type RunStatus string

const (
	// StatusHit indicates the run was served from the cache.
	StatusHit RunStatus = "hit"
	// StatusMiss indicates the command was executed.
	StatusMiss RunStatus = "miss"
)

// RunResult is what one invocation of the execution engine returns.
type RunResult struct {
	Status      RunStatus
	Fingerprint string
	ExitCode    int
	// Outputs are the paths restored (hit) or captured (miss).
	Outputs []string
}

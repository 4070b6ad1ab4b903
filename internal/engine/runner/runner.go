// Package runner implements the execution engine: fingerprint, cache
// lookup, and hit restoration or miss execution for one project run.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/memo/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner drives one project run through the
// START -> FINGERPRINTED -> {HIT, MISS} -> DONE state machine.
type Runner struct {
	resolver ports.InputResolver
	hasher   ports.Hasher
	executor ports.Executor
	logger   ports.Logger

	// stdout receives the command's live output on a miss and the replayed
	// log on a hit. Defaults to os.Stdout; tests substitute a buffer.
	stdout io.Writer
	// lookupEnv defaults to os.LookupEnv; tests override it.
	lookupEnv func(string) (string, bool)
	// now stamps new command records.
	now func() time.Time
}

// NewRunner creates a new Runner.
func NewRunner(
	resolver ports.InputResolver,
	hasher ports.Hasher,
	executor ports.Executor,
	logger ports.Logger,
) *Runner {
	return &Runner{
		resolver:  resolver,
		hasher:    hasher,
		executor:  executor,
		logger:    logger,
		stdout:    os.Stdout,
		lookupEnv: os.LookupEnv,
		now:       time.Now,
	}
}

// SetOutput redirects the run's console output. Used for testing.
func (r *Runner) SetOutput(w io.Writer) {
	r.stdout = w
}

// SetEnvLookup replaces the environment lookup. Used for testing.
func (r *Runner) SetEnvLookup(lookup func(string) (string, bool)) {
	r.lookupEnv = lookup
}

// SetClock replaces the record timestamp source. Used for testing.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run executes one project run against the given store.
//
// The store handle carries the cache root and read-only mode; the runner
// never touches ambient state beyond the process environment (filtered to
// the project's declared variable names) and the filesystem under the
// config root.
func (r *Runner) Run(
	ctx context.Context,
	cfg *domain.Config,
	project domain.Project,
	command string,
	store ports.Store,
) (*domain.RunResult, error) {
	fingerprint, inputHashes, err := r.fingerprint(cfg, project, command)
	if err != nil {
		return nil, err
	}

	if rec, ok := r.lookupRecord(store, fingerprint); ok {
		if result, ok := r.restoreHit(cfg, store, rec, fingerprint); ok {
			return result, nil
		}
		// A referenced blob was missing or unreadable: the hit is
		// invalidated by corruption and the run falls through to
		// execution. The bad entry is left alone; a successful run
		// overwrites the record.
	}

	return r.executeMiss(ctx, cfg, project, command, store, fingerprint, inputHashes)
}

// fingerprint resolves the project's effective inputs and derives the cache
// key. Patterns that match nothing contribute zero files and are not an
// error; a syntactically invalid pattern aborts the run.
func (r *Runner) fingerprint(
	cfg *domain.Config,
	project domain.Project,
	command string,
) (string, []ports.FileHash, error) {
	patterns, err := cfg.Graph.EffectiveInputs(project.Name.String())
	if err != nil {
		return "", nil, err
	}

	files, err := r.resolver.Resolve(patterns, cfg.RootDir)
	if err != nil {
		return "", nil, err
	}

	hashes, err := r.hasher.HashFiles(files)
	if err != nil {
		return "", nil, err
	}

	fingerprint := r.hasher.Fingerprint(cfg.Hash, command, project.EnvNames(), r.lookupEnv, hashes)

	r.logger.Debug("fingerprint computed",
		"project", project.Name.String(), "fingerprint", fingerprint, "inputs", len(hashes))

	return fingerprint, hashes, nil
}

// lookupRecord reports whether a record exists for the fingerprint.
// A corrupt record degrades to a miss; it is never fatal.
func (r *Runner) lookupRecord(store ports.Store, fingerprint string) (*domain.CommandRecord, bool) {
	rec, err := store.GetCommand(fingerprint)
	if err != nil {
		if !errors.Is(err, domain.ErrCommandNotCached) {
			r.logger.Warn("cached record unreadable, re-executing", "fingerprint", fingerprint)
		}
		return nil, false
	}
	return rec, true
}

// restoreHit materializes every recorded output at its original path and
// replays the stored log. All blobs are fetched before anything is written,
// so a record with a missing blob never leaves half-restored outputs behind.
func (r *Runner) restoreHit(
	cfg *domain.Config,
	store ports.Store,
	rec *domain.CommandRecord,
	fingerprint string,
) (*domain.RunResult, bool) {
	type blob struct {
		path string
		data []byte
	}

	blobs := make([]blob, 0, len(rec.Outputs))
	for _, out := range rec.Outputs {
		data, err := store.GetFile(out.Hash)
		if err != nil {
			r.logger.Warn("cached output unavailable, re-executing",
				"fingerprint", fingerprint, "hash", out.Hash, "path", out.Path)
			return nil, false
		}
		blobs = append(blobs, blob{path: out.Path, data: data})
	}

	log, err := store.GetFile(rec.Log)
	if err != nil {
		r.logger.Warn("cached log unavailable, re-executing",
			"fingerprint", fingerprint, "hash", rec.Log)
		return nil, false
	}

	result := &domain.RunResult{
		Status:      domain.StatusHit,
		Fingerprint: fingerprint,
	}
	for _, b := range blobs {
		target := filepath.Join(cfg.RootDir, b.path)
		if err := writeRestored(target, b.data); err != nil {
			// Restoring to the workspace failed; this is the caller's
			// filesystem misbehaving, not cache corruption.
			r.logger.Error(err)
			return nil, false
		}
		result.Outputs = append(result.Outputs, target)
	}

	if _, err := r.stdout.Write(log); err != nil {
		r.logger.Error(zerr.Wrap(err, "failed to replay cached log"))
	}

	r.logger.Info("cache hit", "command", rec.Command, "fingerprint", fingerprint)
	return result, true
}

// executeMiss runs the command, captures its combined output, and on a zero
// exit stores outputs, log and record. A non-zero exit is propagated to the
// caller and deliberately not cached.
func (r *Runner) executeMiss(
	ctx context.Context,
	cfg *domain.Config,
	project domain.Project,
	command string,
	store ports.Store,
	fingerprint string,
	inputHashes []ports.FileHash,
) (*domain.RunResult, error) {
	r.logger.Info("cache miss, executing", "command", command, "fingerprint", fingerprint)

	workDir := filepath.Join(cfg.RootDir, project.Root.String())

	var captured bytes.Buffer
	output := io.MultiWriter(r.stdout, &captured)

	exitCode, err := r.executor.Run(ctx, cfg.Exec.Program(), command, workDir, output)
	if err != nil {
		return nil, err
	}

	result := &domain.RunResult{
		Status:      domain.StatusMiss,
		Fingerprint: fingerprint,
		ExitCode:    exitCode,
	}

	if exitCode != 0 {
		// Failed runs are not cached: a red build must re-run next time.
		r.logger.Warn("command failed, result not cached", "exit_code", exitCode)
		return result, nil
	}

	outputs, err := r.storeOutputs(cfg, project, store)
	if err != nil {
		return nil, err
	}

	logHash, err := store.PutFile(captured.Bytes(), fingerprint+".log")
	if err != nil {
		return nil, err
	}

	rec := domain.CommandRecord{
		Ran:     r.now().UTC(),
		Env:     r.envSnapshot(project),
		Command: command,
		Hash:    fingerprint,
		Outputs: outputs,
		Inputs:  sortedHashes(inputHashes),
		Log:     logHash,
	}
	if err := store.PutCommand(rec); err != nil {
		return nil, err
	}

	for _, out := range outputs {
		result.Outputs = append(result.Outputs, filepath.Join(cfg.RootDir, out.Path))
	}
	return result, nil
}

// storeOutputs expands the project's output patterns against the filesystem
// state after execution and stores every produced file. Paths are recorded
// relative to the config root so a hit restores them to the same place in
// any checkout.
func (r *Runner) storeOutputs(
	cfg *domain.Config,
	project domain.Project,
	store ports.Store,
) ([]domain.OutputFile, error) {
	paths, err := r.resolver.Resolve(project.OutputPatterns(), cfg.RootDir)
	if err != nil {
		return nil, err
	}

	outputs := make([]domain.OutputFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // Path comes from the project's own output globs
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
		}

		rel, err := filepath.Rel(cfg.RootDir, path)
		if err != nil {
			rel = path
		}

		hash, err := store.PutFile(data, rel)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, domain.OutputFile{Hash: hash, Path: rel})
	}

	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Hash < outputs[j].Hash })
	return outputs, nil
}

// envSnapshot captures the values of the project's declared variables.
// Unset variables are omitted; their absence is already part of the
// fingerprint.
func (r *Runner) envSnapshot(project domain.Project) map[string]string {
	snapshot := make(map[string]string, len(project.Env))
	for _, name := range project.EnvNames() {
		if value, ok := r.lookupEnv(name); ok {
			snapshot[name] = value
		}
	}
	return snapshot
}

func sortedHashes(files []ports.FileHash) []string {
	hashes := make([]string, len(files))
	for i, f := range files {
		hashes[i] = f.Hash
	}
	sort.Strings(hashes)
	return hashes
}

// writeRestored writes data to target, creating parent directories as needed.
func writeRestored(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRestoreFailed.Error()), "path", target)
	}
	if err := os.WriteFile(target, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRestoreFailed.Error()), "path", target)
	}
	return nil
}

// Package config provides the configuration loader for memo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/memo/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Environment variables the loader honors. They belong to the CLI boundary:
// the core only ever sees the resolved domain.Config.
const (
	// EnvConfigFile overrides the configuration file name searched for.
	EnvConfigFile = "MEMO_CONFIG"
	// EnvCacheDir overrides the cache root directory.
	EnvCacheDir = "MEMO_CACHE_DIR"
	// EnvReadOnly forces read-only mode when set to "true" or "1".
	EnvReadOnly = "MEMO_READONLY"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	logger ports.Logger

	// lookupEnv defaults to os.LookupEnv; tests override it.
	lookupEnv func(string) (string, bool)
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvLookup replaces the environment lookup. Tests use this instead of
// mutating the process environment.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(l *Loader) { l.lookupEnv = lookup }
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger, opts ...Option) *Loader {
	l := &Loader{
		logger:    logger,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves the configuration for the given working directory.
// When explicitPath is empty the loader walks upward from cwd looking for
// the configuration file (so memo works from any subdirectory of a repo,
// like git does); an explicit path wins over discovery.
func (l *Loader) Load(cwd, explicitPath string) (*domain.Config, error) {
	path := explicitPath
	if path == "" {
		found, err := l.discover(cwd)
		if err != nil {
			return nil, err
		}
		path = found
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file Memofile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	graph, err := buildGraph(&file)
	if err != nil {
		return nil, err
	}

	rootDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	cacheDir := file.CacheDir
	if v, ok := l.lookupEnv(EnvCacheDir); ok && v != "" {
		cacheDir = v
	}
	if cacheDir == "" {
		cacheDir = domain.DefaultCacheDirName
	}
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(rootDir, cacheDir)
	}

	readOnly := false
	if v, ok := l.lookupEnv(EnvReadOnly); ok {
		readOnly = v == "true" || v == "1"
	}

	exec := domain.ShellBash
	if file.Exec == string(domain.ShellSh) {
		exec = domain.ShellSh
	}

	cfg := &domain.Config{
		Graph:    graph,
		RootDir:  rootDir,
		CacheDir: cacheDir,
		Exec:     exec,
		ReadOnly: readOnly,
		// The raw bytes cover everything: any edit to the file changes the
		// hash and with it every fingerprint.
		Hash: fmt.Sprintf("%016x", xxhash.Sum64(data)),
	}

	l.logger.Debug("configuration loaded",
		"path", path, "projects", graph.Len(), "cache_dir", cacheDir, "read_only", readOnly)

	return cfg, nil
}

// discover walks upward from cwd until it finds the configuration file.
func (l *Loader) discover(cwd string) (string, error) {
	name := domain.ConfigFileName
	if v, ok := l.lookupEnv(EnvConfigFile); ok && v != "" {
		name = v
	}

	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", zerr.With(domain.ErrConfigReadFailed, "file", name)
		}
		dir = parent
	}
}

// buildGraph converts the DTOs into a validated domain graph.
func buildGraph(file *Memofile) (*domain.Graph, error) {
	g := domain.NewGraph()

	for name, dto := range file.Projects {
		project := &domain.Project{
			Name:      domain.NewInternedString(name),
			Root:      domain.NewInternedString(dto.Root),
			Inputs:    canonicalize(dto.Inputs),
			Outputs:   canonicalize(dto.Outputs),
			Env:       canonicalize(dto.Env),
			DependsOn: intern(dto.DependsOn),
		}
		if err := g.AddProject(project); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func intern(strs []string) []domain.InternedString {
	res := make([]domain.InternedString, len(strs))
	for i, s := range strs {
		res[i] = domain.NewInternedString(s)
	}
	return res
}

// canonicalize sorts and deduplicates before interning, so declaration order
// in the YAML never influences a fingerprint.
func canonicalize(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}

	sorted := make([]string, len(strs))
	copy(sorted, strs)
	slices.Sort(sorted)

	unique := slices.Compact(sorted)
	res := make([]domain.InternedString, len(unique))
	for i, s := range unique {
		res[i] = domain.NewInternedString(s)
	}
	return res
}

package config_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/memo/internal/adapters/config"
	"go.trai.ch/memo/internal/adapters/logger"
	"go.trai.ch/memo/internal/core/domain"
)

const sampleMemofile = `version: "1"
exec: sh
cache_dir: .cache/memo
projects:
  api:
    root: services/api
    inputs:
      - services/api/**/*.go
      - go.sum
      - go.sum
    outputs:
      - dist/api
    env:
      - CGO_ENABLED
    depends_on:
      - lib
  lib:
    root: lib
    inputs:
      - lib/**/*.go
`

func quietLogger() *logger.Logger {
	l := logger.New()
	l.SetOutput(io.Discard)
	return l
}

func envFrom(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderLoad(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeConfig(t, root, domain.ConfigFileName, sampleMemofile)

	loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(nil)))
	cfg, err := loader.Load(root, path)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.RootDir)
	assert.Equal(t, filepath.Join(root, ".cache/memo"), cfg.CacheDir)
	assert.Equal(t, domain.ShellSh, cfg.Exec)
	assert.False(t, cfg.ReadOnly)
	assert.Len(t, cfg.Hash, 16)
	require.Equal(t, 2, cfg.Graph.Len())

	api, err := cfg.Graph.Project("api")
	require.NoError(t, err)
	assert.Equal(t, "services/api", api.Root.String())
	// Patterns come back sorted and deduplicated.
	assert.Equal(t, []string{"go.sum", "services/api/**/*.go"}, api.InputPatterns())
	assert.Equal(t, []string{"dist/api"}, api.OutputPatterns())
	assert.Equal(t, []string{"CGO_ENABLED"}, api.EnvNames())
	require.Len(t, api.DependsOn, 1)
	assert.Equal(t, "lib", api.DependsOn[0].String())
}

func TestLoaderDefaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeConfig(t, root, domain.ConfigFileName, "projects:\n  app:\n    root: .\n")

	loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(nil)))
	cfg, err := loader.Load(root, path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, domain.DefaultCacheDirName), cfg.CacheDir)
	assert.Equal(t, domain.ShellBash, cfg.Exec)
	assert.False(t, cfg.ReadOnly)
}

func TestLoaderEnvOverrides(t *testing.T) {
	t.Parallel()

	t.Run("cache dir", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := writeConfig(t, root, domain.ConfigFileName, sampleMemofile)

		loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(map[string]string{
			config.EnvCacheDir: "/srv/shared-cache",
		})))
		cfg, err := loader.Load(root, path)
		require.NoError(t, err)
		assert.Equal(t, "/srv/shared-cache", cfg.CacheDir)
	})

	t.Run("read only", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			value string
			want  bool
		}{
			{value: "true", want: true},
			{value: "1", want: true},
			{value: "false", want: false},
			{value: "0", want: false},
			{value: "", want: false},
		}

		for _, tt := range tests {
			root := t.TempDir()
			path := writeConfig(t, root, domain.ConfigFileName, sampleMemofile)

			loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(map[string]string{
				config.EnvReadOnly: tt.value,
			})))
			cfg, err := loader.Load(root, path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ReadOnly, "value %q", tt.value)
		}
	})

	t.Run("config file name", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeConfig(t, root, "ci.yaml", sampleMemofile)

		loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(map[string]string{
			config.EnvConfigFile: "ci.yaml",
		})))
		cfg, err := loader.Load(root, "")
		require.NoError(t, err)
		assert.Equal(t, root, cfg.RootDir)
	})
}

func TestLoaderDiscovery(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, domain.ConfigFileName, sampleMemofile)
	nested := filepath.Join(root, "services", "api", "handlers")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(nil)))

	// The file is found from any subdirectory; the config's directory becomes
	// the root.
	cfg, err := loader.Load(nested, "")
	require.NoError(t, err)
	assert.Equal(t, root, cfg.RootDir)

	// Without a config file anywhere up the tree discovery fails.
	_, err = loader.Load(t.TempDir(), "")
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestLoaderExplicitPathWins(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, domain.ConfigFileName, "projects:\n  discovered:\n    root: .\n")
	other := t.TempDir()
	explicit := writeConfig(t, other, "special.yaml", "projects:\n  explicit:\n    root: .\n")

	loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(nil)))
	cfg, err := loader.Load(root, explicit)
	require.NoError(t, err)

	assert.Equal(t, other, cfg.RootDir)
	_, err = cfg.Graph.Project("explicit")
	require.NoError(t, err)
}

func TestLoaderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "invalid yaml",
			content: "projects: [unclosed",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "missing dependency",
			content: "projects:\n  app:\n    root: .\n    depends_on: [ghost]\n",
			wantErr: domain.ErrMissingDependency,
		},
		{
			name:    "dependency cycle",
			content: "projects:\n  a:\n    root: .\n    depends_on: [b]\n  b:\n    root: .\n    depends_on: [a]\n",
			wantErr: domain.ErrCycleDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			path := writeConfig(t, root, domain.ConfigFileName, tt.content)

			loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(nil)))
			_, err := loader.Load(root, path)
			require.ErrorContains(t, err, tt.wantErr.Error())
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(nil)))
		_, err := loader.Load(t.TempDir(), "/nonexistent/memo.yaml")
		require.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())
	})
}

func TestLoaderHashTracksContent(t *testing.T) {
	t.Parallel()

	loader := config.NewLoader(quietLogger(), config.WithEnvLookup(envFrom(nil)))

	rootA := t.TempDir()
	pathA := writeConfig(t, rootA, domain.ConfigFileName, sampleMemofile)
	cfgA, err := loader.Load(rootA, pathA)
	require.NoError(t, err)

	// Identical bytes in a different location hash the same.
	rootB := t.TempDir()
	pathB := writeConfig(t, rootB, domain.ConfigFileName, sampleMemofile)
	cfgB, err := loader.Load(rootB, pathB)
	require.NoError(t, err)
	assert.Equal(t, cfgA.Hash, cfgB.Hash)

	// Any edit, even whitespace, changes the hash.
	pathC := writeConfig(t, rootB, domain.ConfigFileName, sampleMemofile+"\n")
	cfgC, err := loader.Load(rootB, pathC)
	require.NoError(t, err)
	assert.NotEqual(t, cfgA.Hash, cfgC.Hash)
}

// Package app implements the application layer for memo.
package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/memo/internal/core/ports"
	"go.trai.ch/memo/internal/engine/runner"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	opener       ports.StoreOpener
	runner       *runner.Runner
	logger       ports.Logger

	// getwd defaults to os.Getwd; tests override it.
	getwd func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	opener ports.StoreOpener,
	run *runner.Runner,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		opener:       opener,
		runner:       run,
		logger:       log,
		getwd:        os.Getwd,
	}
}

// SetWorkingDirLookup replaces the working directory lookup. Used for testing.
func (a *App) SetWorkingDirLookup(getwd func() (string, error)) {
	a.getwd = getwd
}

// RunOptions carries the CLI-level knobs for one run.
type RunOptions struct {
	// Project names the project explicitly. When empty the project is
	// detected from the working directory.
	Project string
	// ConfigPath points at a configuration file, bypassing discovery.
	ConfigPath string
}

// Run executes the given command line for one project, serving it from the
// cache when possible.
func (a *App) Run(ctx context.Context, command string, opts RunOptions) (*domain.RunResult, error) {
	if strings.TrimSpace(command) == "" {
		return nil, domain.ErrEmptyCommand
	}

	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine working directory")
	}

	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	project, err := a.selectProject(cfg, cwd, opts.Project)
	if err != nil {
		return nil, err
	}

	store, err := a.opener.Open(cfg.CacheDir, cfg.ReadOnly)
	if err != nil {
		return nil, err
	}

	return a.runner.Run(ctx, cfg, project, command, store)
}

// CleanOptions carries the CLI-level knobs for cache cleaning.
type CleanOptions struct {
	// ConfigPath points at a configuration file, bypassing discovery.
	ConfigPath string
}

// Clean deletes the whole cache root. This is the documented recovery for
// any cache corruption; there is no partial repair.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	cwd, err := a.getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to determine working directory")
	}

	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return err
	}

	if cfg.ReadOnly {
		return zerr.With(domain.ErrStoreReadOnly, "cache_dir", cfg.CacheDir)
	}

	a.logger.Info("clearing cache", "cache_dir", cfg.CacheDir)
	if err := os.RemoveAll(cfg.CacheDir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to clear cache"), "cache_dir", cfg.CacheDir)
	}
	return nil
}

// selectProject resolves which project a run belongs to: an explicit name
// wins; otherwise the first project (in topological order) whose root
// directory contains the working directory is used.
func (a *App) selectProject(cfg *domain.Config, cwd, name string) (domain.Project, error) {
	if name != "" {
		return cfg.Graph.Project(name)
	}

	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return domain.Project{}, zerr.Wrap(err, "failed to resolve working directory")
	}

	for _, candidate := range cfg.Graph.Projects() {
		project, err := cfg.Graph.Project(candidate)
		if err != nil {
			return domain.Project{}, err
		}
		root := filepath.Join(cfg.RootDir, project.Root.String())
		if absCwd == root || strings.HasPrefix(absCwd, root+string(filepath.Separator)) {
			a.logger.Debug("project detected from working directory",
				"project", candidate, "root", root)
			return project, nil
		}
	}

	return domain.Project{}, zerr.With(domain.ErrNoProjectSelected, "cwd", absCwd)
}

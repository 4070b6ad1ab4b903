package commands_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/memo/cmd/memo/commands"
	"go.trai.ch/memo/internal/app"
	"go.trai.ch/memo/internal/build"
	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/memo/internal/core/ports"
	"go.trai.ch/memo/internal/core/ports/mocks"
	"go.trai.ch/memo/internal/engine/runner"
)

// harness wires a CLI around a mock-backed application.
type harness struct {
	cli      *commands.CLI
	out      *bytes.Buffer
	loader   *mocks.MockConfigLoader
	opener   *mocks.MockStoreOpener
	store    *mocks.MockStore
	resolver *mocks.MockInputResolver
	hasher   *mocks.MockHasher
	executor *mocks.MockExecutor
	root     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()

	h := &harness{
		out:      &bytes.Buffer{},
		loader:   mocks.NewMockConfigLoader(ctrl),
		opener:   mocks.NewMockStoreOpener(ctrl),
		store:    mocks.NewMockStore(ctrl),
		resolver: mocks.NewMockInputResolver(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		root:     t.TempDir(),
	}

	run := runner.NewRunner(h.resolver, h.hasher, h.executor, log)
	run.SetOutput(h.out)
	a := app.New(h.loader, h.opener, run, log)
	a.SetWorkingDirLookup(func() (string, error) { return h.root, nil })

	h.cli = commands.New(a, log)
	h.cli.SetOutput(h.out)
	return h
}

func (h *harness) config(t *testing.T) *domain.Config {
	t.Helper()

	graph := domain.NewGraph()
	require.NoError(t, graph.AddProject(&domain.Project{
		Name: domain.NewInternedString("api"),
		Root: domain.NewInternedString("."),
	}))
	require.NoError(t, graph.Validate())

	return &domain.Config{
		Graph:    graph,
		RootDir:  h.root,
		CacheDir: filepath.Join(h.root, ".memo"),
		Exec:     domain.ShellSh,
		Hash:     "cfg",
	}
}

// expectRun wires the full mock pipeline for one uncached execution.
func (h *harness) expectRun(t *testing.T, exitCode int) {
	cfg := h.config(t)
	h.loader.EXPECT().Load(h.root, "").Return(cfg, nil)
	h.opener.EXPECT().Open(cfg.CacheDir, false).Return(h.store, nil)
	h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return([]string{}, nil).AnyTimes()
	h.hasher.EXPECT().HashFiles(gomock.Any()).Return([]ports.FileHash{}, nil)
	h.hasher.EXPECT().Fingerprint(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("fp")
	h.store.EXPECT().GetCommand("fp").Return(nil, domain.ErrCommandNotCached)
	h.executor.EXPECT().Run(gomock.Any(), "sh", gomock.Any(), gomock.Any(), gomock.Any()).Return(exitCode, nil)
	if exitCode == 0 {
		h.store.EXPECT().PutFile(gomock.Any(), "fp.log").Return("loghash", nil)
		h.store.EXPECT().PutCommand(gomock.Any()).Return(nil)
	}
}

func TestRunCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.expectRun(t, 0)

	h.cli.SetArgs([]string{"run", "-p", "api", "--", "make", "build"})
	require.NoError(t, h.cli.Execute(context.Background()))
	assert.Equal(t, 0, h.cli.ExitCode())
}

func TestRunCommandJoinsArguments(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	cfg := h.config(t)
	h.loader.EXPECT().Load(h.root, "").Return(cfg, nil)
	h.opener.EXPECT().Open(cfg.CacheDir, false).Return(h.store, nil)
	h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return([]string{}, nil).AnyTimes()
	h.hasher.EXPECT().HashFiles(gomock.Any()).Return([]ports.FileHash{}, nil)
	h.hasher.EXPECT().Fingerprint(gomock.Any(), "go test ./...", gomock.Any(), gomock.Any(), gomock.Any()).Return("fp")
	h.store.EXPECT().GetCommand("fp").Return(nil, domain.ErrCommandNotCached)
	h.executor.EXPECT().Run(gomock.Any(), "sh", "go test ./...", gomock.Any(), gomock.Any()).Return(0, nil)
	h.store.EXPECT().PutFile(gomock.Any(), "fp.log").Return("loghash", nil)
	h.store.EXPECT().PutCommand(gomock.Any()).Return(nil)

	h.cli.SetArgs([]string{"run", "--", "go", "test", "./..."})
	require.NoError(t, h.cli.Execute(context.Background()))
}

func TestRunCommandMirrorsExitCode(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.expectRun(t, 42)

	h.cli.SetArgs([]string{"run", "-p", "api", "--", "false"})
	err := h.cli.Execute(context.Background())
	require.ErrorIs(t, err, domain.ErrCommandFailed)
	assert.Equal(t, 42, h.cli.ExitCode())
}

func TestRunCommandWithoutArgsShowsHelp(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	h.cli.SetArgs([]string{"run"})
	require.NoError(t, h.cli.Execute(context.Background()))
	assert.Contains(t, h.out.String(), "run [flags] -- <command>")
}

func TestCleanCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.loader.EXPECT().Load(h.root, "").Return(h.config(t), nil)

	h.cli.SetArgs([]string{"clean"})
	require.NoError(t, h.cli.Execute(context.Background()))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	h.cli.SetArgs([]string{"version"})
	require.NoError(t, h.cli.Execute(context.Background()))
	assert.Contains(t, h.out.String(), build.Version)
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	h.cli.SetArgs([]string{"frobnicate"})
	require.Error(t, h.cli.Execute(context.Background()))
}

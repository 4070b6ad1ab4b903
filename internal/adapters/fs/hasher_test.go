package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/memo/internal/adapters/fs"
	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/memo/internal/core/ports"
)

func TestHashBytes(t *testing.T) {
	t.Parallel()

	h := fs.NewHasher()

	a := h.HashBytes([]byte("hello"))
	b := h.HashBytes([]byte("hello"))
	c := h.HashBytes([]byte("hello!"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestHashFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, root, "data.txt", "content")

	h := fs.NewHasher()
	fileHash, err := h.HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, h.HashBytes([]byte("content")), fileHash)

	_, err = h.HashFile(filepath.Join(root, "missing.txt"))
	require.ErrorContains(t, err, domain.ErrFileHashFailed.Error())
}

func TestHashFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := writeFile(t, root, "a.txt", "alpha")
	b := writeFile(t, root, "b.txt", "beta")
	c := writeFile(t, root, "c.txt", "gamma")

	h := fs.NewHasher()

	// Result is sorted by path regardless of input order.
	got, err := h.HashFiles([]string{c, a, b})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, a, got[0].Path)
	assert.Equal(t, b, got[1].Path)
	assert.Equal(t, c, got[2].Path)
	assert.Equal(t, h.HashBytes([]byte("alpha")), got[0].Hash)

	_, err = h.HashFiles([]string{a, filepath.Join(root, "missing.txt")})
	require.Error(t, err)
}

func TestFingerprintDeterminism(t *testing.T) {
	t.Parallel()

	h := fs.NewHasher()
	env := map[string]string{"CC": "gcc", "TARGET": "release"}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
	files := []ports.FileHash{
		{Path: "a.go", Hash: h.HashBytes([]byte("a"))},
		{Path: "b.go", Hash: h.HashBytes([]byte("b"))},
	}

	base := h.Fingerprint("cfg", "make build", []string{"CC", "TARGET"}, lookup, files)
	assert.Len(t, base, 64)

	// Same inputs always produce the same key.
	assert.Equal(t, base, h.Fingerprint("cfg", "make build", []string{"CC", "TARGET"}, lookup, files))

	// Declaration order of env names and files must not matter.
	reversedFiles := []ports.FileHash{files[1], files[0]}
	assert.Equal(t, base, h.Fingerprint("cfg", "make build", []string{"TARGET", "CC"}, lookup, reversedFiles))
}

func TestFingerprintSensitivity(t *testing.T) {
	t.Parallel()

	h := fs.NewHasher()
	lookup := func(string) (string, bool) { return "v", true }
	files := []ports.FileHash{{Path: "a.go", Hash: h.HashBytes([]byte("a"))}}

	base := h.Fingerprint("cfg", "make build", []string{"CC"}, lookup, files)

	tests := []struct {
		name string
		got  string
	}{
		{
			name: "different command",
			got:  h.Fingerprint("cfg", "make test", []string{"CC"}, lookup, files),
		},
		{
			name: "different config hash",
			got:  h.Fingerprint("cfg2", "make build", []string{"CC"}, lookup, files),
		},
		{
			name: "different env name",
			got:  h.Fingerprint("cfg", "make build", []string{"CXX"}, lookup, files),
		},
		{
			name: "different env value",
			got: h.Fingerprint("cfg", "make build", []string{"CC"},
				func(string) (string, bool) { return "w", true }, files),
		},
		{
			name: "different file content",
			got: h.Fingerprint("cfg", "make build", []string{"CC"}, lookup,
				[]ports.FileHash{{Path: "a.go", Hash: h.HashBytes([]byte("changed"))}}),
		},
		{
			name: "additional file",
			got: h.Fingerprint("cfg", "make build", []string{"CC"}, lookup,
				append([]ports.FileHash{{Path: "b.go", Hash: h.HashBytes([]byte("b"))}}, files...)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotEqual(t, base, tt.got)
		})
	}
}

func TestFingerprintDistinguishesAbsentFromEmpty(t *testing.T) {
	t.Parallel()

	h := fs.NewHasher()
	absent := func(string) (string, bool) { return "", false }
	empty := func(string) (string, bool) { return "", true }

	a := h.Fingerprint("cfg", "cmd", []string{"VAR"}, absent, nil)
	b := h.Fingerprint("cfg", "cmd", []string{"VAR"}, empty, nil)
	assert.NotEqual(t, a, b)
}

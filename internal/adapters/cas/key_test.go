package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/polybuild/internal/adapters/cas"
	"go.trai.ch/polybuild/internal/adapters/fs"
	"go.trai.ch/polybuild/internal/core/domain"
)

func keyOf(t *testing.T, target *domain.BuildTarget, root string) string {
	t.Helper()
	key, err := cas.NewKeyer(fs.NewWalker()).Key(target, root)
	require.NoError(t, err)
	return key
}

func TestKeyer_Deterministic(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o600))

	target := &domain.BuildTarget{Name: "app", Commands: []string{"go build"}, Inputs: []string{"main.go"}}

	first := keyOf(t, target, root)
	assert.Len(t, first, 64)
	assert.Equal(t, first, keyOf(t, target, root))
}

func TestKeyer_FileContentChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0o600))
	target := &domain.BuildTarget{Name: "app", Inputs: []string{"main.go"}}

	before := keyOf(t, target, root)
	require.NoError(t, os.WriteFile(path, []byte("package main // changed"), 0o600))
	assert.NotEqual(t, before, keyOf(t, target, root))
}

func TestKeyer_DirectoryMtimeChange(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "src", "a.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o750))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(file, past, past))

	target := &domain.BuildTarget{Name: "web", Inputs: []string{"src"}}
	before := keyOf(t, target, root)

	later := past.Add(time.Hour)
	require.NoError(t, os.Chtimes(file, later, later))
	assert.NotEqual(t, before, keyOf(t, target, root))
}

func TestKeyer_DirectoryIgnoresContentWithSameMtime(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "src", "a.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o750))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(file, stamp, stamp))

	target := &domain.BuildTarget{Name: "web", Inputs: []string{"src"}}
	before := keyOf(t, target, root)

	require.NoError(t, os.WriteFile(file, []byte("y"), 0o600))
	require.NoError(t, os.Chtimes(file, stamp, stamp))
	assert.Equal(t, before, keyOf(t, target, root))
}

func TestKeyer_MissingInput(t *testing.T) {
	root := t.TempDir()
	target := &domain.BuildTarget{Name: "app", Inputs: []string{"absent.txt"}}

	missing := keyOf(t, target, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "absent.txt"), []byte(""), 0o600))
	assert.NotEqual(t, missing, keyOf(t, target, root))
}

func TestKeyer_GlobOrderIndependent(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.py", "a.py", "c.py"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(name), 0o600))
	}

	glob := keyOf(t, &domain.BuildTarget{Name: "py", Inputs: []string{"*.py"}}, root)
	explicit := keyOf(t, &domain.BuildTarget{Name: "py", Inputs: []string{"a.py", "b.py", "c.py"}}, root)
	assert.Equal(t, explicit, glob)
}

func TestKeyer_NameAndCommandsMatter(t *testing.T) {
	root := t.TempDir()
	base := keyOf(t, &domain.BuildTarget{Name: "a", Commands: []string{"make"}}, root)

	assert.NotEqual(t, base, keyOf(t, &domain.BuildTarget{Name: "b", Commands: []string{"make"}}, root))
	assert.NotEqual(t, base, keyOf(t, &domain.BuildTarget{Name: "a", Commands: []string{"make all"}}, root))
}

func TestKeyer_ExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o600))
	state := filepath.Join(root, domain.StateDirName)
	require.NoError(t, os.MkdirAll(state, 0o750))

	keyer := cas.NewKeyer(fs.NewWalker()).Excluding(state)
	keyFor := func(inputs ...string) string {
		key, err := keyer.Key(&domain.BuildTarget{Name: "app", Inputs: inputs}, root)
		require.NoError(t, err)
		return key
	}

	whole, direct, glob := keyFor("."), keyFor(domain.StateDirName), keyFor(".poly*")
	require.NoError(t, os.WriteFile(filepath.Join(state, domain.MetricsFileName), []byte("rewritten"), 0o600))

	assert.Equal(t, whole, keyFor("."))
	assert.Equal(t, direct, keyFor(domain.StateDirName))
	assert.Equal(t, glob, keyFor(".poly*"))

	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.go"), []byte("package main"), 0o600))
	assert.NotEqual(t, whole, keyFor("."), "files outside excluded directories still count")
}

package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildlayout/internal/config"
	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
)

func TestBaseDir(t *testing.T) {
	tests := []struct {
		name       string
		root       string
		buildDir   string
		relocation string
		want       string
	}{
		{"flutter layout", "/src/myapp/android", "build", "../../build", "/src/myapp/build"},
		{"in-tree relocation", "/src/app", "build", "out", "/src/app/build/out"},
		{"absolute relocation", "/src/app", "build", "/var/cache/gradle", "/var/cache/gradle"},
		{"unclean absolute", "/src/app", "build", "/var//cache/./gradle/", "/var/cache/gradle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), BaseDir(filepath.FromSlash(tt.root), tt.buildDir, filepath.FromSlash(tt.relocation)))
		})
	}
}

func TestRemap(t *testing.T) {
	base := filepath.FromSlash("/src/myapp/build")
	for _, p := range []string{"app", "device_calendar", "workmanager_android"} {
		got := Remap(base, p)
		assert.Equal(t, filepath.Join(base, p), got)
		assert.Equal(t, got, Remap(base, p), "remap must be referentially transparent")
		assert.Equal(t, p, filepath.Base(got))
	}
}

func TestRemapper_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.RootDir = filepath.FromSlash("/src/myapp/android")

	r := FromConfig(cfg)
	assert.Equal(t, filepath.FromSlash("/src/myapp/build"), r.Root())
	assert.Equal(t, filepath.FromSlash("/src/myapp/build/app"), r.For("app"))
}

func TestTree_Create(t *testing.T) {
	base := filepath.Join(t.TempDir(), "build")
	tree := NewTree(NewRemapper(base))

	dirs, err := tree.Create("app", "device_calendar")
	require.NoError(t, err)
	assert.Equal(t, []string{base, filepath.Join(base, "app"), filepath.Join(base, "device_calendar")}, dirs)
	for _, d := range dirs {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// A second pass over existing directories is not an error.
	_, err = tree.Create("app", "device_calendar")
	require.NoError(t, err)
}

func TestTree_CreateFailsOnFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "build")
	require.NoError(t, os.WriteFile(base, []byte("not a dir"), 0o600))

	_, err := NewTree(NewRemapper(base)).Create("app")
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryFileSystem))
}

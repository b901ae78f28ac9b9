package layout

import (
	"log/slog"
	"os"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/logfields"
)

// Tree materializes the remapped output directories on disk.
type Tree struct {
	remapper Remapper
	perm     os.FileMode
}

// NewTree returns a Tree for the given remapper.
func NewTree(r Remapper) *Tree {
	return &Tree{remapper: r, perm: 0o750}
}

// Create ensures the root output directory and one directory per project
// exist. Existing directories are left alone. It returns the directories in
// the order they were ensured, root first.
func (t *Tree) Create(projects ...string) ([]string, error) {
	dirs := make([]string, 0, len(projects)+1)
	dirs = append(dirs, t.remapper.Root())
	for _, p := range projects {
		dirs = append(dirs, t.remapper.For(p))
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, t.perm); err != nil {
			return nil, derrors.MaterializeFailed(d, err)
		}
		slog.Debug("Ensured output directory", logfields.Path(d))
	}
	slog.Info("Output tree ready", logfields.Path(t.remapper.Root()), logfields.Count(len(projects)))
	return dirs, nil
}

// Root returns the root output directory managed by the tree.
func (t *Tree) Root() string { return t.remapper.Root() }

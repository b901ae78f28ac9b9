package layout

import (
	"path/filepath"

	"git.home.luguber.info/inful/buildlayout/internal/config"
)

// BaseDir resolves the relocated root output directory; see
// config.LayoutConfig.Base.
func BaseDir(rootDir, defaultBuildDir, relocation string) string {
	return config.LayoutConfig{RootDir: rootDir, DefaultBuildDir: defaultBuildDir, Relocation: relocation}.Base()
}

// Remap returns the output directory of project under base.
func Remap(base, project string) string {
	return filepath.Join(base, project)
}

// Remapper binds a base directory so callers can remap many projects.
type Remapper struct {
	base string
}

// NewRemapper returns a Remapper rooted at base.
func NewRemapper(base string) Remapper {
	return Remapper{base: filepath.Clean(base)}
}

// FromConfig derives the base directory from the layout block.
func FromConfig(cfg *config.Config) Remapper {
	return NewRemapper(cfg.Layout.Base())
}

// Root is the root project's output directory, which is the base itself.
func (r Remapper) Root() string { return r.base }

// For returns the output directory of a subproject.
func (r Remapper) For(project string) string { return Remap(r.base, project) }

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
)

// Validate checks the configuration after defaults have been applied. It
// returns the first violation as a validation error.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateAllowList,
		c.validateCompiler,
		c.validateLayout,
		c.validateProjects,
		c.validateClean,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateAllowList() error {
	seen := make(map[string]bool, len(c.AllowList.Legacy))
	for i, name := range c.AllowList.Legacy {
		field := fmt.Sprintf("allow_list.legacy[%d]", i)
		if name == "" {
			return derrors.ValidationFailed(field, "project name cannot be empty")
		}
		// Membership is exact; surrounding whitespace would never match a project.
		if strings.TrimSpace(name) != name {
			return derrors.ValidationFailed(field, fmt.Sprintf("project name %q has surrounding whitespace", name))
		}
		if seen[name] {
			return derrors.ValidationFailed(field, fmt.Sprintf("duplicate project name %q", name))
		}
		seen[name] = true
	}
	return nil
}

func (c *Config) validateCompiler() error {
	legacy, err := semver.NewVersion(c.Compiler.LegacyTarget)
	if err != nil {
		return derrors.ValidationFailed("compiler.legacy_target", err.Error())
	}
	current, err := semver.NewVersion(c.Compiler.CurrentTarget)
	if err != nil {
		return derrors.ValidationFailed("compiler.current_target", err.Error())
	}
	if !legacy.LessThan(current) {
		return derrors.ValidationFailed("compiler",
			fmt.Sprintf("legacy_target %s must be lower than current_target %s", c.Compiler.LegacyTarget, c.Compiler.CurrentTarget))
	}
	return nil
}

func (c *Config) validateLayout() error {
	if strings.TrimSpace(c.Layout.DefaultBuildDir) == "" {
		return derrors.ValidationFailed("layout.default_build_dir", "cannot be empty")
	}
	if strings.TrimSpace(c.Layout.Relocation) == "" {
		return derrors.ValidationFailed("layout.relocation", "cannot be empty")
	}
	return CheckOutputBase(c.Layout.Base(), c.Layout.RootDir)
}

// CheckOutputBase rejects an output directory that clean must never delete:
// the filesystem root, or any directory equal to or above one of protected.
func CheckOutputBase(base string, protected ...string) error {
	abs, err := filepath.Abs(base)
	if err != nil {
		return derrors.ValidationFailed("layout.relocation", err.Error())
	}
	if filepath.Dir(abs) == abs {
		return derrors.ValidationFailed("layout.relocation",
			fmt.Sprintf("output directory %s is the filesystem root", abs))
	}
	for _, p := range protected {
		pabs, err := filepath.Abs(p)
		if err != nil {
			return derrors.ValidationFailed("layout.root_dir", err.Error())
		}
		if within(abs, pabs) {
			return derrors.ValidationFailed("layout.relocation",
				fmt.Sprintf("output directory %s contains the project root %s", abs, pabs))
		}
	}
	return nil
}

// within reports whether child is parent or lies beneath it.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Config) validateProjects() error {
	for i, p := range c.Projects.EvaluationDependsOn {
		field := fmt.Sprintf("projects.evaluation_depends_on[%d]", i)
		if !strings.HasPrefix(p, ":") || len(p) < 2 {
			return derrors.ValidationFailed(field, fmt.Sprintf("%q is not a project path like \":app\"", p))
		}
	}
	if c.Projects.Concurrency <= 0 {
		return derrors.ValidationFailed("projects.concurrency", "must be > 0")
	}
	return nil
}

func (c *Config) validateClean() error {
	r := c.Clean.Retry
	if _, err := NormalizeRetryBackoff(string(r.Mode)); err != nil {
		return derrors.ValidationFailed("clean.retry.mode", err.Error())
	}
	if r.MaxRetries < 0 {
		return derrors.ValidationFailed("clean.retry.max_retries", "cannot be negative")
	}
	if r.MaxRetries > 0 && (r.Initial <= 0 || r.Max <= 0) {
		return derrors.ValidationFailed("clean.retry", "initial and max must be > 0 when retries are enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logLevelNormalizer.NormalizeWithError(string(c.Logging.Level)); err != nil {
		return derrors.ValidationFailed("logging.level", err.Error())
	}
	if _, err := logFormatNormalizer.NormalizeWithError(string(c.Logging.Format)); err != nil {
		return derrors.ValidationFailed("logging.format", err.Error())
	}
	return nil
}

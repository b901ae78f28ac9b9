package config

import (
	"path/filepath"
	"time"
)

// Config is the buildlayout configuration file (buildlayout.yaml).
type Config struct {
	AllowList    AllowListConfig `yaml:"allow_list"`
	Compiler     CompilerConfig  `yaml:"compiler"`
	Layout       LayoutConfig    `yaml:"layout"`
	Projects     ProjectsConfig  `yaml:"projects"`
	Repositories []string        `yaml:"repositories,omitempty"`
	Clean        CleanConfig     `yaml:"clean"`
	Audit        AuditConfig     `yaml:"audit,omitempty"`
	Metrics      MetricsConfig   `yaml:"metrics,omitempty"`
	Logging      LoggingConfig   `yaml:"logging"`
	Watch        WatchConfig     `yaml:"watch,omitempty"`
}

// AllowListConfig names the subprojects pinned to the legacy compiler target.
// Either Legacy is given inline or File points at a standalone allow-list
// manifest with the same two keys.
type AllowListConfig struct {
	Version string   `yaml:"version"`
	Legacy  []string `yaml:"legacy"`
	File    string   `yaml:"file,omitempty"`
}

// CompilerConfig holds the JVM level each CompilerTarget variant stands for.
type CompilerConfig struct {
	LegacyTarget  string `yaml:"legacy_target"`
	CurrentTarget string `yaml:"current_target"`
}

// LayoutConfig describes where the root project lives and where its build
// output is relocated to.
type LayoutConfig struct {
	RootDir         string `yaml:"root_dir"`
	DefaultBuildDir string `yaml:"default_build_dir"`
	// Relocation is resolved against RootDir/DefaultBuildDir unless absolute.
	Relocation string `yaml:"relocation"`
}

// Base resolves the relocated root output directory. A relative relocation is
// applied to RootDir/DefaultBuildDir, the same way Gradle resolves
// layout.buildDirectory.dir(relocation). An absolute relocation is used as-is.
func (l LayoutConfig) Base() string {
	if filepath.IsAbs(l.Relocation) {
		return filepath.Clean(l.Relocation)
	}
	return filepath.Join(l.RootDir, l.DefaultBuildDir, l.Relocation)
}

// ProjectsConfig controls subproject discovery and evaluation ordering.
type ProjectsConfig struct {
	Include             []string `yaml:"include,omitempty"`
	SettingsFile        string   `yaml:"settings_file"`
	EvaluationDependsOn []string `yaml:"evaluation_depends_on"`
	Concurrency         int      `yaml:"concurrency"`
}

// CleanConfig configures the clean operation.
type CleanConfig struct {
	Retry       RetryConfig   `yaml:"retry"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// RetryConfig is the raw backoff policy for transient delete failures.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// AuditConfig enables the decision audit store when Database is set.
type AuditConfig struct {
	Database string `yaml:"database,omitempty"`
}

// MetricsConfig enables Prometheus textfile export when Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// WatchConfig configures the config file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildlayout/internal/config"
	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/logfields"
	"git.home.luguber.info/inful/buildlayout/internal/metrics"
	"git.home.luguber.info/inful/buildlayout/internal/settings"
)

// LogLevelEnv overrides the configured log level when --verbose is not set.
const LogLevelEnv = "BUILDLAYOUT_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"buildlayout.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Resolve ResolveCmd `cmd:"" default:"withargs" help:"Run the configuration pass and print the build layout"`
	Clean   CleanCmd   `cmd:"" help:"Delete the relocated root output directory"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Re-run the configuration pass whenever the config or settings file changes"`
	History HistoryCmd `cmd:"" help:"Show recorded compiler target decisions"`

	logOut io.Writer
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level, _ := c.logLevel("")
	slog.SetDefault(config.NewLogger(c.logWriter(), level, config.LogFormatText))
	return nil
}

// logLevel picks the effective level: --verbose, then BUILDLAYOUT_LOG_LEVEL,
// then the configured level. The bool reports whether the config value won.
func (c *CLI) logLevel(configured config.LogLevel) (config.LogLevel, bool) {
	if c.Verbose {
		return config.LogLevelDebug, false
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		return config.NormalizeLogLevel(env), false
	}
	if configured == "" {
		return config.LogLevelInfo, false
	}
	return configured, true
}

func (c *CLI) logWriter() io.Writer {
	if c.logOut != nil {
		return c.logOut
	}
	return os.Stderr
}

// loadConfig reads the configuration file. A missing file is only an error
// when the user named it explicitly; otherwise built-in defaults rooted at the
// working directory are used.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		if !c.usingDefaultConfig() || !derrors.IsCategory(err, derrors.CategoryConfig) || fileExists(c.Config) {
			return nil, err
		}
		slog.Debug("No configuration file, using defaults", logfields.Config(c.Config))
		cfg = config.Default()
		wd, werr := os.Getwd()
		if werr != nil {
			return nil, derrors.InternalError("resolving working directory", werr)
		}
		cfg.ResolvePaths(wd)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	level, fromConfig := c.logLevel(cfg.Logging.Level)
	if fromConfig || cfg.Logging.Format == config.LogFormatJSON {
		slog.SetDefault(config.NewLogger(c.logWriter(), level, cfg.Logging.Format))
	}
	return cfg, nil
}

func (c *CLI) usingDefaultConfig() bool {
	return filepath.Base(c.Config) == config.DefaultConfigFile
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// ProjectsFor returns the subprojects to resolve. Explicit names win, then
// projects.include, then the Gradle settings file under layout.root_dir.
func ProjectsFor(cfg *config.Config, names []string) ([]settings.Project, string, error) {
	if len(names) > 0 {
		return projectsFromNames(names), "", nil
	}
	if len(cfg.Projects.Include) > 0 {
		return projectsFromNames(cfg.Projects.Include), "", nil
	}
	path, projects, err := settings.Discover(cfg.Layout.RootDir, cfg.Projects.SettingsFile)
	if err != nil {
		return nil, "", err
	}
	slog.Debug("Discovered projects from settings", logfields.Path(path), logfields.Count(len(projects)))
	return projects, path, nil
}

func projectsFromNames(names []string) []settings.Project {
	out := make([]settings.Project, 0, len(names))
	for _, n := range names {
		name := settings.NameFromPath(n)
		out = append(out, settings.Project{Path: ":" + trimColon(n), Name: name})
	}
	return out
}

func trimColon(s string) string {
	for len(s) > 0 && s[0] == ':' {
		s = s[1:]
	}
	return s
}

// newRecorder returns a Prometheus recorder when a metrics textfile is
// configured, and a flush function that writes it.
func newRecorder(cfg *config.Config) (metrics.Recorder, func()) {
	if cfg.Metrics.Textfile == "" {
		return metrics.NoopRecorder{}, func() {}
	}
	rec := metrics.NewPrometheusRecorder(nil)
	return rec, func() {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
}

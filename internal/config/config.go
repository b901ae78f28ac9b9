package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
)

// DefaultConfigFile is the file name looked up when --config is not given.
const DefaultConfigFile = "buildlayout.yaml"

// Load reads, expands, defaults and validates the configuration at configPath.
// Relative paths inside the file are resolved against the file's directory.
func Load(configPath string) (*Config, error) {
	loadEnvFiles(filepath.Dir(configPath))

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil, derrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, derrors.ConfigInvalid(configPath, fmt.Errorf("read: %w", err))
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, derrors.ConfigInvalid(configPath, err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, derrors.ConfigInvalid(configPath, err)
	}
	cfg.ResolvePaths(filepath.Dir(absPath))

	if err := cfg.loadAllowListFile(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML with environment expansion and applies defaults. Unknown
// keys are rejected. An empty document yields the default configuration.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ResolvePaths makes every filesystem path in the configuration absolute
// relative to base. ":memory:" audit databases are left untouched.
func (c *Config) ResolvePaths(base string) {
	c.Layout.RootDir = resolveAgainst(base, c.Layout.RootDir)
	c.AllowList.File = resolveAgainst(base, c.AllowList.File)
	if c.Audit.Database != ":memory:" {
		c.Audit.Database = resolveAgainst(base, c.Audit.Database)
	}
	c.Metrics.Textfile = resolveAgainst(base, c.Metrics.Textfile)
}

func resolveAgainst(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (c *Config) loadAllowListFile() error {
	if c.AllowList.File == "" {
		return nil
	}
	if c.AllowList.Legacy != nil {
		return derrors.ValidationFailed("allow_list", "legacy and file are mutually exclusive")
	}
	m, err := LoadAllowList(c.AllowList.File)
	if err != nil {
		return err
	}
	c.AllowList.Version = m.Version
	c.AllowList.Legacy = m.Legacy
	return nil
}

// Init creates a new configuration file with the default content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return derrors.New(derrors.CategoryConfig, derrors.SeverityFatal,
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath)
	}

	var buf bytes.Buffer
	buf.WriteString("# buildlayout configuration\n")
	buf.WriteString("# Subprojects in allow_list.legacy compile for compiler.legacy_target; all others use compiler.current_target.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return derrors.InternalError("marshal default config", err)
	}
	if err := enc.Close(); err != nil {
		return derrors.InternalError("marshal default config", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "create config directory").
				WithContext("path", dir)
		}
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "write config file").
			WithContext("path", configPath)
	}
	return nil
}

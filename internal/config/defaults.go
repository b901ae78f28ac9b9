package config

import "time"

// Built-in defaults. DefaultLegacyAllowList is the three-name list; a
// deployment that wants the two-name variant overrides allow_list.legacy.
var (
	DefaultLegacyAllowList     = []string{"device_calendar", "receive_sharing_intent", "workmanager_android"}
	DefaultEvaluationDependsOn = []string{":app"}
	DefaultRepositories        = []string{"google", "mavenCentral"}
)

const (
	DefaultAllowListVersion = "builtin"
	UnversionedAllowList    = "unversioned"
	DefaultLegacyTarget     = "1.8"
	DefaultCurrentTarget    = "17"
	DefaultBuildDir         = "build"
	DefaultRelocation       = "../../build"
	DefaultSettingsFile     = "settings.gradle.kts"
	DefaultConcurrency      = 4
	DefaultLockTimeout      = 10 * time.Second
	DefaultWatchDebounce    = 500 * time.Millisecond
)

// Default returns a configuration with every default applied, rooted at ".".
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields. A nil list means "not given"; an explicit
// empty list in YAML decodes to a non-nil slice and is kept as-is.
func (c *Config) ApplyDefaults() {
	if c.AllowList.File == "" {
		switch {
		case c.AllowList.Legacy == nil:
			c.AllowList.Legacy = append([]string(nil), DefaultLegacyAllowList...)
			if c.AllowList.Version == "" {
				c.AllowList.Version = DefaultAllowListVersion
			}
		case c.AllowList.Version == "":
			c.AllowList.Version = UnversionedAllowList
		}
	}

	if c.Compiler.LegacyTarget == "" {
		c.Compiler.LegacyTarget = DefaultLegacyTarget
	}
	if c.Compiler.CurrentTarget == "" {
		c.Compiler.CurrentTarget = DefaultCurrentTarget
	}

	if c.Layout.RootDir == "" {
		c.Layout.RootDir = "."
	}
	if c.Layout.DefaultBuildDir == "" {
		c.Layout.DefaultBuildDir = DefaultBuildDir
	}
	if c.Layout.Relocation == "" {
		c.Layout.Relocation = DefaultRelocation
	}

	if c.Projects.SettingsFile == "" {
		c.Projects.SettingsFile = DefaultSettingsFile
	}
	if c.Projects.EvaluationDependsOn == nil {
		c.Projects.EvaluationDependsOn = append([]string(nil), DefaultEvaluationDependsOn...)
	}
	if c.Projects.Concurrency <= 0 {
		c.Projects.Concurrency = DefaultConcurrency
	}

	if c.Repositories == nil {
		c.Repositories = append([]string(nil), DefaultRepositories...)
	}

	r := &c.Clean.Retry
	if r.Mode == "" && r.Initial == 0 && r.Max == 0 && r.MaxRetries == 0 {
		r.Mode = RetryBackoffLinear
		r.Initial = 100 * time.Millisecond
		r.Max = time.Second
		r.MaxRetries = 2
	} else if r.Mode == "" {
		r.Mode = RetryBackoffLinear
	}
	if c.Clean.LockTimeout <= 0 {
		c.Clean.LockTimeout = DefaultLockTimeout
	}

	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}

	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultWatchDebounce
	}
}

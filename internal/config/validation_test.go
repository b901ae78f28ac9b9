package config

import (
	"path/filepath"
	"testing"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"empty allow-list is valid", func(c *Config) { c.AllowList.Legacy = []string{} }, false},
		{"empty allow-list name", func(c *Config) { c.AllowList.Legacy = []string{""} }, true},
		{"whitespace in allow-list name", func(c *Config) { c.AllowList.Legacy = []string{" device_calendar"} }, true},
		{"duplicate allow-list name", func(c *Config) { c.AllowList.Legacy = []string{"a", "a"} }, true},
		{"legacy target not a version", func(c *Config) { c.Compiler.LegacyTarget = "jvm8" }, true},
		{"current target not a version", func(c *Config) { c.Compiler.CurrentTarget = "latest" }, true},
		{"legacy equal to current", func(c *Config) { c.Compiler.LegacyTarget = "17" }, true},
		{"legacy above current", func(c *Config) { c.Compiler.LegacyTarget = "21" }, true},
		{"java 11 legacy", func(c *Config) { c.Compiler.LegacyTarget = "11" }, false},
		{"depends-on without colon", func(c *Config) { c.Projects.EvaluationDependsOn = []string{"app"} }, true},
		{"depends-on bare colon", func(c *Config) { c.Projects.EvaluationDependsOn = []string{":"} }, true},
		{"unknown retry mode", func(c *Config) { c.Clean.Retry.Mode = "random" }, true},
		{"negative retries", func(c *Config) { c.Clean.Retry.MaxRetries = -1 }, true},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"json log format", func(c *Config) { c.Logging.Format = "JSON" }, false},
		{"empty relocation", func(c *Config) { c.Layout.Relocation = " " }, true},
		{"relocation onto project root", func(c *Config) { c.Layout.Relocation = ".." }, true},
		{"relocation above project root", func(c *Config) { c.Layout.Relocation = "../../.." }, true},
		{"absolute relocation to filesystem root", func(c *Config) { c.Layout.Relocation = string(filepath.Separator) }, true},
		{"relocation inside default build dir", func(c *Config) { c.Layout.Relocation = "relocated" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !derrors.IsCategory(err, derrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", derrors.GetCategory(err))
			}
		})
	}
}

func TestCheckOutputBase(t *testing.T) {
	root := filepath.Join(t.TempDir(), "src", "android")

	tests := []struct {
		name    string
		base    string
		wantErr bool
	}{
		{"sibling of project root", filepath.Join(root, "..", "..", "build"), false},
		{"inside project root", filepath.Join(root, "build"), false},
		{"name prefix is not containment", root + "-build", false},
		{"project root", root, true},
		{"parent of project root", filepath.Dir(root), true},
		{"filesystem root", string(filepath.Separator), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOutputBase(tt.base, root)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckOutputBase(%s) error = %v, wantErr %v", tt.base, err, tt.wantErr)
			}
			if err != nil && !derrors.IsCategory(err, derrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", derrors.GetCategory(err))
			}
		})
	}
}

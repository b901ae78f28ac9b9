package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"testing"
)

func TestBuildLayoutError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BuildLayoutError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("permission denied"), CategoryFileSystem, SeverityFatal, "clean failed"),
			expected: "filesystem (fatal): clean failed: permission denied",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.Error(); got != test.expected {
				t.Errorf("Error() = %q, want %q", got, test.expected)
			}
		})
	}
}

func TestIsCategory_FollowsWrapChain(t *testing.T) {
	inner := CleanFailed("/tmp/build", fs.ErrPermission)
	wrapped := fmt.Errorf("running clean: %w", inner)

	if !IsCategory(wrapped, CategoryFileSystem) {
		t.Fatal("expected filesystem category through fmt.Errorf wrap")
	}
	if GetCategory(fmt.Errorf("plain")) != CategoryInternal {
		t.Fatal("plain errors should classify as internal")
	}
	if !stdErrors.Is(wrapped, fs.ErrPermission) {
		t.Fatal("cause must stay reachable with errors.Is")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"retryable error", WrapRetryable(fmt.Errorf("busy"), CategoryFileSystem, SeverityWarning, "busy"), true},
		{"non-retryable error", New(CategoryConfig, SeverityFatal, "invalid"), false},
		{"standard error", fmt.Errorf("standard error"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsRetryable(test.err); got != test.expected {
				t.Errorf("IsRetryable() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("ConfigNotFound", func(t *testing.T) {
		err := ConfigNotFound("/path/to/buildlayout.yaml")
		if err.Category != CategoryConfig {
			t.Errorf("Category = %v, want %v", err.Category, CategoryConfig)
		}
		if err.Context["path"] != "/path/to/buildlayout.yaml" {
			t.Errorf("Context[path] = %v", err.Context["path"])
		}
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		err := ValidationFailed("projects", "duplicate name \"app\"")
		if err.Category != CategoryValidation {
			t.Errorf("Category = %v, want %v", err.Category, CategoryValidation)
		}
		if err.Context["field"] != "projects" {
			t.Errorf("Context[field] = %v, want projects", err.Context["field"])
		}
	})
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{fmt.Errorf("x"), 1},
		{ValidationFailed("f", "r"), 2},
		{ConfigNotFound("c"), 7},
		{InternalError("boom", nil), 10},
		{CleanFailed("/b", fs.ErrPermission), 11},
		{AuditError("insert", fmt.Errorf("locked")), 12},
	}
	for _, tt := range tests {
		if got := a.ExitCodeFor(tt.err); got != tt.code {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}

func TestCLIErrorAdapter_Handle(t *testing.T) {
	var logBuf, outBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	a := NewCLIErrorAdapter(false, logger)
	a.out = &outBuf

	code := a.Handle(ConfigNotFound("missing.yaml"))
	if code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
	if got := outBuf.String(); got != "configuration file not found\n" {
		t.Fatalf("unexpected message %q", got)
	}
	if logBuf.Len() != 0 {
		t.Fatalf("config errors should not be logged in non-verbose mode, got %q", logBuf.String())
	}
}

// Package settings discovers the subprojects a Gradle settings script includes.
package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
)

// Project is one included subproject.
type Project struct {
	// Path is the Gradle project path, e.g. ":app" or ":libs:core".
	Path string
	// Name is the last path segment, which Gradle uses as project.name.
	Name string
}

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`(?m)//.*$`)
	// include(":a", ":b") in both DSLs; the argument list may span lines.
	includeCall = regexp.MustCompile(`\binclude\s*\(([^)]*)\)`)
	// include ':a', ':b' (Groovy, no parentheses). A line ending in a comma
	// continues the argument list on the next line.
	includeBare = regexp.MustCompile(`(?m)^\s*include[ \t]+([^(\n](?:[^\n]*,[ \t]*\n)*[^\n]*)$`)
	quoted      = regexp.MustCompile(`["']([^"']+)["']`)
)

// Parse extracts included projects from a settings script, in declaration
// order, without duplicates.
func Parse(r io.Reader) ([]Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src := blockComment.ReplaceAllString(string(data), "")
	src = lineComment.ReplaceAllString(src, "")

	type hit struct {
		pos  int
		args string
	}
	var hits []hit
	for _, m := range includeCall.FindAllStringSubmatchIndex(src, -1) {
		hits = append(hits, hit{m[0], src[m[2]:m[3]]})
	}
	for _, m := range includeBare.FindAllStringSubmatchIndex(src, -1) {
		hits = append(hits, hit{m[0], src[m[2]:m[3]]})
	}
	// Keep source order across both forms.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	seen := map[string]bool{}
	var projects []Project
	for _, h := range hits {
		for _, q := range quoted.FindAllStringSubmatch(h.args, -1) {
			p := normalizePath(q[1])
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			projects = append(projects, Project{Path: p, Name: NameFromPath(p)})
		}
	}
	return projects, nil
}

// ParseFile parses the settings script at path.
func ParseFile(path string) ([]Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Discover locates the settings script under rootDir and parses it. When
// preferred is missing, the other DSL's file name is tried, so either
// settings.gradle.kts or settings.gradle is accepted.
func Discover(rootDir, preferred string) (string, []Project, error) {
	candidates := []string{preferred}
	switch {
	case strings.HasSuffix(preferred, ".kts"):
		candidates = append(candidates, strings.TrimSuffix(preferred, ".kts"))
	case strings.HasSuffix(preferred, ".gradle"):
		candidates = append(candidates, preferred+".kts")
	}

	for _, c := range candidates {
		p := c
		if !filepath.IsAbs(p) {
			p = filepath.Join(rootDir, c)
		}
		projects, err := ParseFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", nil, derrors.ConfigInvalid(p, fmt.Errorf("parse settings: %w", err))
		}
		return p, projects, nil
	}
	return "", nil, derrors.ConfigNotFound(filepath.Join(rootDir, preferred)).
		WithContext("hint", "pass project names as arguments or set projects.include")
}

// NameFromPath returns the project name for a Gradle path (":libs:core" -> "core").
func NameFromPath(path string) string {
	path = normalizePath(path)
	if i := strings.LastIndex(path, ":"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == ":" {
		return ""
	}
	if !strings.HasPrefix(p, ":") {
		p = ":" + p
	}
	return p
}

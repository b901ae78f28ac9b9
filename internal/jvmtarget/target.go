// Package jvmtarget decides which JVM compiler target each subproject is
// built for. There are exactly two targets; which one a project gets depends
// only on whether its name is on the legacy allow-list.
package jvmtarget

import (
	"fmt"
	"strings"
)

// CompilerTarget is the language level a subproject's compile tasks emit.
type CompilerTarget int

const (
	// Legacy pins a project to the older JVM level (1.8 by default).
	Legacy CompilerTarget = iota + 1
	// Current is the JVM level every other project uses (17 by default).
	Current
)

func (t CompilerTarget) String() string {
	switch t {
	case Legacy:
		return "legacy"
	case Current:
		return "current"
	default:
		return fmt.Sprintf("CompilerTarget(%d)", int(t))
	}
}

func (t CompilerTarget) MarshalText() ([]byte, error) {
	if t != Legacy && t != Current {
		return nil, fmt.Errorf("invalid compiler target %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *CompilerTarget) UnmarshalText(b []byte) error {
	switch string(b) {
	case "legacy":
		*t = Legacy
	case "current":
		*t = Current
	default:
		return fmt.Errorf("unknown compiler target %q", string(b))
	}
	return nil
}

// Levels maps each CompilerTarget onto a concrete JVM level string such as
// "1.8" or "17".
type Levels struct {
	Legacy  string `json:"legacy"`
	Current string `json:"current"`
}

// DefaultLevels matches the levels the Android Gradle plugins expect.
var DefaultLevels = Levels{Legacy: "1.8", Current: "17"}

// For returns the JVM level for t.
func (l Levels) For(t CompilerTarget) string {
	if t == Legacy {
		return l.Legacy
	}
	return l.Current
}

// DSLConstant renders a JVM level as the Kotlin Gradle plugin's JvmTarget
// enum constant, e.g. "1.8" -> "JVM_1_8".
func DSLConstant(level string) string {
	return "JVM_" + strings.ReplaceAll(level, ".", "_")
}

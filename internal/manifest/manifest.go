package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/jvmtarget"
	"git.home.luguber.info/inful/buildlayout/internal/resolve"
)

// LayoutManifest is a persisted record of one configuration pass: which
// directory each project builds into and which JVM level it targets.
type LayoutManifest struct {
	ID               string           `json:"id"`
	Timestamp        time.Time        `json:"timestamp"`
	AllowListVersion string           `json:"allow_list_version"`
	AllowList        []string         `json:"allow_list"`
	Levels           jvmtarget.Levels `json:"levels"`
	RootOutputDir    string           `json:"root_output_dir"`
	Projects         []ProjectEntry   `json:"projects"`
}

// ProjectEntry is the manifest view of one resolved project.
type ProjectEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
	Target    string `json:"target"`
	JVMTarget string `json:"jvm_target"`
}

// FromPlan builds a manifest from a resolved plan.
func FromPlan(p *resolve.Plan) *LayoutManifest {
	m := &LayoutManifest{
		ID:               p.RunID,
		Timestamp:        p.CreatedAt,
		AllowListVersion: p.AllowListVersion,
		AllowList:        append([]string(nil), p.AllowList...),
		Levels:           p.Levels,
		RootOutputDir:    p.RootOutputDir,
		Projects:         make([]ProjectEntry, 0, len(p.Projects)),
	}
	for _, r := range p.Projects {
		m.Projects = append(m.Projects, ProjectEntry{
			Name:      r.Name,
			Path:      r.Path,
			OutputDir: r.OutputDir,
			Target:    r.Target.String(),
			JVMTarget: r.JVMTarget,
		})
	}
	return m
}

// ToJSON serializes the manifest to JSON.
func (m *LayoutManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*LayoutManifest, error) {
	var m LayoutManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the layout decisions. The run ID and
// timestamp are excluded so two passes over the same inputs hash equal.
func (m *LayoutManifest) Hash() (string, error) {
	hashInput := struct {
		AllowListVersion string           `json:"allow_list_version"`
		AllowList        []string         `json:"allow_list"`
		Levels           jvmtarget.Levels `json:"levels"`
		RootOutputDir    string           `json:"root_output_dir"`
		Projects         []ProjectEntry   `json:"projects"`
	}{
		AllowListVersion: m.AllowListVersion,
		AllowList:        m.AllowList,
		Levels:           m.Levels,
		RootOutputDir:    m.RootOutputDir,
		Projects:         m.Projects,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// WriteFile writes the manifest as indented JSON, creating parent
// directories as needed.
func (m *LayoutManifest) WriteFile(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return derrors.InternalError("encoding manifest", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return derrors.MaterializeFailed(filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return derrors.MaterializeFailed(path, err)
	}
	return nil
}

// ReadFile loads a manifest previously written with WriteFile.
func ReadFile(path string) (*LayoutManifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- manifest path is operator supplied
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

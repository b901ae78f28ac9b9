package resolve

import (
	"time"

	"git.home.luguber.info/inful/buildlayout/internal/jvmtarget"
)

// Resolution is the outcome of the configuration pass for one subproject.
type Resolution struct {
	Name            string                   `json:"name"`
	Path            string                   `json:"path"`
	OutputDir       string                   `json:"output_dir"`
	Target          jvmtarget.CompilerTarget `json:"target"`
	JVMTarget       string                   `json:"jvm_target"`
	EvaluationOrder int                      `json:"evaluation_order"`
	DependsOn       []string                 `json:"depends_on,omitempty"`
}

// Plan is the full result of one configuration pass.
type Plan struct {
	RunID            string           `json:"run_id"`
	CreatedAt        time.Time        `json:"created_at"`
	AllowListVersion string           `json:"allow_list_version"`
	AllowList        []string         `json:"allow_list"`
	Levels           jvmtarget.Levels `json:"levels"`
	RootOutputDir    string           `json:"root_output_dir"`
	Repositories     []string         `json:"repositories,omitempty"`
	Projects         []Resolution     `json:"projects"`
}

// Lookup returns the resolution for a project name.
func (p *Plan) Lookup(name string) (Resolution, bool) {
	for _, r := range p.Projects {
		if r.Name == name {
			return r, true
		}
	}
	return Resolution{}, false
}

// Count returns how many projects resolved to t.
func (p *Plan) Count(t jvmtarget.CompilerTarget) int {
	n := 0
	for _, r := range p.Projects {
		if r.Target == t {
			n++
		}
	}
	return n
}

// Package eventstore keeps an append-only audit trail of compiler target
// decisions so operators can see when a project moved between targets.
package eventstore

import (
	"context"
	"time"

	"git.home.luguber.info/inful/buildlayout/internal/resolve"
)

// Decision is one recorded target decision for one project in one run.
type Decision struct {
	ID               int64     `json:"id"`
	RunID            string    `json:"run_id"`
	Project          string    `json:"project"`
	Target           string    `json:"target"`
	JVMTarget        string    `json:"jvm_target"`
	OutputDir        string    `json:"output_dir"`
	AllowListVersion string    `json:"allow_list_version"`
	Timestamp        time.Time `json:"timestamp"`
}

// Store defines the interface for persisting and retrieving decisions.
type Store interface {
	// RecordPlan appends one decision per project in the plan.
	RecordPlan(ctx context.Context, plan *resolve.Plan) error

	// History returns decisions newest first. An empty project returns all
	// projects; limit <= 0 means no limit.
	History(ctx context.Context, project string, limit int) ([]Decision, error)

	// Close closes the store and releases resources.
	Close() error
}

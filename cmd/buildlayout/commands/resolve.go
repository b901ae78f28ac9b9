package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/buildlayout/internal/config"
	"git.home.luguber.info/inful/buildlayout/internal/eventstore"
	"git.home.luguber.info/inful/buildlayout/internal/layout"
	"git.home.luguber.info/inful/buildlayout/internal/logfields"
	"git.home.luguber.info/inful/buildlayout/internal/manifest"
	"git.home.luguber.info/inful/buildlayout/internal/resolve"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Projects    []string `arg:"" optional:"" help:"Subproject names or paths (default: projects.include, then the settings file)"`
	Format      string   `short:"f" help:"Output format: text, json, gradle" default:"text" enum:"text,json,gradle"`
	Materialize bool     `short:"m" help:"Create the root and per-project output directories"`
	Manifest    string   `help:"Write a JSON manifest of the layout to this file" type:"path"`
	NoColor     bool     `name:"no-color" help:"Disable colored text output"`
}

// ResolveOptions controls the side effects of one configuration pass.
type ResolveOptions struct {
	Format      string
	Materialize bool
	Manifest    string
	NoColor     bool
}

func (r *ResolveCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = RunResolve(ctx, cfg, r.Projects, ResolveOptions{
		Format:      r.Format,
		Materialize: r.Materialize,
		Manifest:    r.Manifest,
		NoColor:     r.NoColor,
	}, os.Stdout)
	return err
}

// RunResolve runs the configuration pass, applies the requested side effects
// and renders the plan to w.
func RunResolve(ctx context.Context, cfg *config.Config, names []string, opts ResolveOptions, w io.Writer) (*resolve.Plan, error) {
	plan, err := ApplyResolve(ctx, cfg, names, opts)
	if err != nil {
		return nil, err
	}
	if err := render(w, plan, cfg, opts); err != nil {
		return nil, err
	}
	return plan, nil
}

// ApplyResolve runs the configuration pass and its side effects: directory
// materialization, the manifest, the audit record and the metrics textfile.
func ApplyResolve(ctx context.Context, cfg *config.Config, names []string, opts ResolveOptions) (*resolve.Plan, error) {
	projects, _, err := ProjectsFor(cfg, names)
	if err != nil {
		return nil, err
	}

	rec, flush := newRecorder(cfg)
	defer flush()

	plan, err := resolve.FromConfig(cfg, resolve.WithRecorder(rec)).Resolve(ctx, projects)
	if err != nil {
		return nil, err
	}

	if opts.Materialize {
		names := make([]string, 0, len(plan.Projects))
		for _, p := range plan.Projects {
			names = append(names, p.Name)
		}
		if _, err := layout.NewTree(layout.FromConfig(cfg)).Create(names...); err != nil {
			return nil, err
		}
	}

	if opts.Manifest != "" {
		m := manifest.FromPlan(plan)
		if err := m.WriteFile(opts.Manifest); err != nil {
			return nil, err
		}
		logManifestWritten(opts.Manifest, m.Hash)
	}

	if err := recordAudit(ctx, cfg, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func logManifestWritten(path string, hash func() (string, error)) {
	sum, err := hash()
	if err != nil {
		slog.Warn("Manifest written, hash unavailable", logfields.Path(path), logfields.Error(err))
		return
	}
	slog.Info("Manifest written", logfields.Path(path), slog.String("hash", sum))
}

func recordAudit(ctx context.Context, cfg *config.Config, plan *resolve.Plan) error {
	if cfg.Audit.Database == "" {
		return nil
	}
	store, err := eventstore.NewSQLiteStore(cfg.Audit.Database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			slog.Warn("Failed to close audit store", logfields.Error(cerr))
		}
	}()
	if err := store.RecordPlan(ctx, plan); err != nil {
		return err
	}
	slog.Debug("Recorded decisions", logfields.RunID(plan.RunID), logfields.Count(len(plan.Projects)))
	return nil
}

func render(w io.Writer, plan *resolve.Plan, cfg *config.Config, opts ResolveOptions) error {
	switch opts.Format {
	case "json":
		return renderJSON(w, plan)
	case "gradle":
		return renderGradle(w, plan, cfg)
	case "", "text":
		return renderText(w, plan, opts.NoColor)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

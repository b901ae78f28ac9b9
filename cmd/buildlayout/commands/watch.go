package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/buildlayout/internal/config"
	"git.home.luguber.info/inful/buildlayout/internal/logfields"
	"git.home.luguber.info/inful/buildlayout/internal/manifest"
	"git.home.luguber.info/inful/buildlayout/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Format      string `short:"f" help:"Output format: text, json, gradle" default:"text" enum:"text,json,gradle"`
	Materialize bool   `short:"m" help:"Create output directories after each pass"`
	Manifest    string `help:"Rewrite this manifest after each pass" type:"path"`
}

func (wc *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunWatch(ctx, root, ResolveOptions{
		Format:      wc.Format,
		Materialize: wc.Materialize,
		Manifest:    wc.Manifest,
	}, os.Stdout)
}

// RunWatch resolves once, then again after every change to the config file
// or the settings file, until ctx is done. Only changed layouts are printed.
func RunWatch(ctx context.Context, root *CLI, opts ResolveOptions, w io.Writer) error {
	var lastHash string
	pass := func(ctx context.Context) (*config.Config, error) {
		cfg, err := root.loadConfig()
		if err != nil {
			return nil, err
		}
		plan, err := ApplyResolve(ctx, cfg, nil, opts)
		if err != nil {
			return cfg, err
		}
		hash, err := manifest.FromPlan(plan).Hash()
		if err != nil {
			return cfg, err
		}
		if hash == lastHash {
			slog.Info("Layout unchanged", logfields.RunID(plan.RunID))
			return cfg, nil
		}
		lastHash = hash
		return cfg, render(w, plan, cfg, opts)
	}

	cfg, err := pass(ctx)
	if err != nil {
		return err
	}

	files := []string{root.Config, settingsPath(cfg)}
	watcher, err := watch.New(func(ctx context.Context) error {
		_, err := pass(ctx)
		return err
	}, cfg.Watch.Debounce, files...)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	slog.Info("Watching for changes", logfields.Config(root.Config))
	<-ctx.Done()
	return nil
}

func settingsPath(cfg *config.Config) string {
	p := cfg.Projects.SettingsFile
	if !filepath.IsAbs(p) {
		p = filepath.Join(cfg.Layout.RootDir, p)
	}
	return p
}

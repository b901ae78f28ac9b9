package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/buildlayout/internal/clean"
	"git.home.luguber.info/inful/buildlayout/internal/config"
	"git.home.luguber.info/inful/buildlayout/internal/tasks"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunClean(ctx, cfg)
}

// RegisterTasks registers the zero-argument tasks for cfg.
func RegisterTasks(reg *tasks.Registry, cfg *config.Config) (func(), error) {
	rec, flush := newRecorder(cfg)
	if err := reg.Register(clean.TaskName, clean.FromConfig(cfg, clean.WithRecorder(rec)).Task()); err != nil {
		return flush, err
	}
	return flush, nil
}

// RunClean deletes the root output directory through the task registry.
func RunClean(ctx context.Context, cfg *config.Config) error {
	reg := tasks.NewRegistry()
	flush, err := RegisterTasks(reg, cfg)
	defer flush()
	if err != nil {
		return err
	}
	return reg.Run(ctx, clean.TaskName)
}

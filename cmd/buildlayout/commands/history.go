package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/eventstore"
	"git.home.luguber.info/inful/buildlayout/internal/logfields"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Project string `arg:"" optional:"" help:"Only show decisions for this project"`
	Limit   int    `short:"n" help:"Maximum number of decisions to show (0 = all)" default:"20"`
	JSON    bool   `help:"Print decisions as JSON"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Audit.Database == "" {
		return derrors.New(derrors.CategoryConfig, derrors.SeverityError, "audit store not configured").
			WithContext("hint", "set audit.database in "+root.Config)
	}
	return RunHistory(context.Background(), cfg.Audit.Database, h.Project, h.Limit, h.JSON, os.Stdout)
}

// RunHistory prints recorded decisions from the audit store at dbPath.
func RunHistory(ctx context.Context, dbPath, project string, limit int, asJSON bool, w io.Writer) error {
	store, err := eventstore.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			slog.Warn("Failed to close audit store", logfields.Error(cerr))
		}
	}()

	decisions, err := store.History(ctx, project, limit)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(decisions)
	}

	if len(decisions) == 0 {
		_, err := fmt.Fprintln(w, "No decisions recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tRUN\tPROJECT\tTARGET\tJVM\tALLOW-LIST")
	for _, d := range decisions {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Timestamp.Format(time.RFC3339), shortID(d.RunID), d.Project, d.Target, d.JVMTarget, d.AllowListVersion)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

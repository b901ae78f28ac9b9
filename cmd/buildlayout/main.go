package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildlayout/cmd/buildlayout/commands"
	derrors "git.home.luguber.info/inful/buildlayout/internal/errors"
	"git.home.luguber.info/inful/buildlayout/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("buildlayout"),
		kong.Description("Relocate Gradle build outputs and pick JVM compiler targets per subproject."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	os.Exit(derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Handle(err))
}

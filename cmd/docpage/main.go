package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpage/cmd/docpage/commands"
	ferrors "git.home.luguber.info/inful/docpage/internal/foundation/errors"
	"git.home.luguber.info/inful/docpage/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("docpage"),
		kong.Description("Assemble component documentation pages from examples and a metadata store."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := parser.Run(&commands.Global{Stdout: os.Stdout}, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

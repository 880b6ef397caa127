package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/specreplay/cmd/specreplay/commands"
	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
	"git.home.luguber.info/inful/specreplay/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Out: os.Stdout}

	ctx := kong.Parse(&cli,
		kong.Name("specreplay"),
		kong.Description("Replay RFC event streams into specifications and capture HTTP interactions."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(global, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

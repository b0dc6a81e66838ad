package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagetree/cmd/pagetree/commands"
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Logger: slog.Default()}
	parser := kong.Parse(&cli,
		kong.Name("pagetree"),
		kong.Description("Hierarchical multi-language page tree with draft and public copies"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global, &cli),
	)

	err := parser.Run()
	errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
}

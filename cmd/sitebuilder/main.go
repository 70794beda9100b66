package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/cmd/sitebuilder/commands"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("sitebuilder"),
		kong.Description("Incremental static site builder"),
		kong.Vars{"version": version.String()},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.UsageOnError(),
	)

	err := parser.Run(&commands.Global{Logger: cli.Logger()}, &cli)
	if err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, cli.Logger())
		adapter.LogError(err)
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		stop()
		os.Exit(adapter.ExitCodeFor(err))
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/cmd/sitebuilder/commands"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// exitCode carries kong's exit requests (help, --version) out of Parse.
type exitCode int

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	cli := &commands.CLI{}
	global := &commands.Global{Stdout: stdout, Stderr: stderr}
	parser, err := kong.New(cli,
		kong.Name("sitebuilder"),
		kong.Description("Builds the workshop site: static assets plus task pages rendered from Markdown."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(global, cli),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return errors.ExitFailure
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "sitebuilder: error: %v\n", err)
		return errors.ExitUsage
	}
	if err := kctx.Run(); err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).WithWriter(stderr).Report(err)
	}
	return errors.ExitOK
}

package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run(g *Global) error {
	_, _ = fmt.Fprintln(g.Stdout, version.String())
	return nil
}

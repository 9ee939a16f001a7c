package build

import (
	"log/slog"

	ggit "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DetectSourceRevision returns the HEAD commit of the git repository
// containing dir, searching parent directories. Sources outside a
// repository, or a repository without commits, yield "".
func DetectSourceRevision(dir string) string {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		slog.Debug("No git repository for sources", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		slog.Debug("Failed to resolve HEAD", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	return ref.Hash().String()
}

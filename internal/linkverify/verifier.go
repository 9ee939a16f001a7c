package linkverify

import (
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// BrokenLink is a local link whose target is missing from the output tree.
type BrokenLink struct {
	Page   string `json:"page"`   // page holding the link, relative to the output root
	URL    string `json:"url"`    // link as written
	Tag    string `json:"tag"`    // element carrying the link
	Target string `json:"target"` // resolved target, relative to the output root
}

// Result summarises one verification pass.
type Result struct {
	Pages   int          `json:"pages"`
	Checked int          `json:"checked"`
	Broken  []BrokenLink `json:"broken,omitempty"`
}

// Verify parses every .html file under root and checks its local links.
// Pages and broken links are reported in lexical path order.
func Verify(ctx context.Context, root string) (*Result, error) {
	var pages []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(p), ".html") {
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				return relErr
			}
			pages = append(pages, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan output tree").
			WithContext("path", root).
			Build()
	}
	sort.Strings(pages)

	res := &Result{}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		broken, checked, err := verifyPage(root, page)
		if err != nil {
			return nil, err
		}
		res.Pages++
		res.Checked += checked
		res.Broken = append(res.Broken, broken...)
	}
	return res, nil
}

func verifyPage(root, page string) ([]BrokenLink, int, error) {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(page)))
	if err != nil {
		return nil, 0, errors.WrapError(err, errors.CategoryFileSystem, "failed to open HTML file").
			WithContext("path", page).
			Build()
	}
	defer func() { _ = f.Close() }()

	links, err := ExtractLinks(f)
	if err != nil {
		return nil, 0, err
	}

	var broken []BrokenLink
	checked := 0
	for _, link := range links {
		if !ShouldVerify(link) {
			continue
		}
		checked++
		target, ok := resolve(page, link.URL)
		if !ok || !exists(root, target) {
			slog.Debug("Broken link", logfields.File(page), slog.String("url", link.URL))
			broken = append(broken, BrokenLink{Page: page, URL: link.URL, Tag: link.Tag, Target: target})
		}
	}
	return broken, checked, nil
}

// resolve maps a link on page to a slash path relative to the output root.
// Links escaping the root do not resolve.
func resolve(page, raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		return "", false
	}
	var target string
	if strings.HasPrefix(p, "/") {
		target = path.Clean(strings.TrimPrefix(p, "/"))
	} else {
		target = path.Join(path.Dir(page), p)
	}
	if target == ".." || strings.HasPrefix(target, "../") {
		return target, false
	}
	return target, true
}

// exists accepts files and directories holding an index.html.
func exists(root, target string) bool {
	full := filepath.Join(root, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	_, err = os.Stat(filepath.Join(full, "index.html"))
	return err == nil
}

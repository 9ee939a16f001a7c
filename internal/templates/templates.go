// Package templates wraps rendered task fragments and the task index in the
// site chrome (header, navigation, footer). Layouts are embedded html/template
// files; the Markdown fragment is inserted verbatim, everything else escaped.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"git.home.luguber.info/inful/sitebuilder/internal/tasks"
)

//go:embed layouts/*.html.tmpl
var layoutFS embed.FS

// NavItem is one entry of the header navigation. Href is relative to the output root.
type NavItem struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Site holds the chrome shared by every generated page.
type Site struct {
	Title      string    `yaml:"title"`
	Copyright  string    `yaml:"copyright"`
	Nav        []NavItem `yaml:"nav"`
	IndexTitle string    `yaml:"index_title"`
	IndexIntro string    `yaml:"index_intro"`
}

// DefaultSite is the workshop chrome.
func DefaultSite() Site {
	return Site{
		Title:     "GitHub Actions Workshop",
		Copyright: "2025 GitHub Actions Workshop",
		Nav: []NavItem{
			{Label: "Home", Href: "index.html"},
			{Label: "About", Href: "about.html"},
			{Label: "Tasks", Href: tasks.IndexFile},
			{Label: "Demo", Href: "demo.html"},
			{Label: "Snake", Href: "snake.html"},
		},
		IndexTitle: "Workshop Tasks",
		IndexIntro: "Follow these tasks in order to learn GitHub Actions step by step.",
	}
}

// Relative prefixes from a page's location back to the output root.
const (
	rootPrefix = ""
	taskPrefix = "../"
)

type pageData struct {
	Site   Site
	Prefix string
	Title  string
	Body   template.HTML
}

type indexItem struct {
	Href         string
	DisplayTitle string
}

type indexData struct {
	Site    Site
	Prefix  string
	Heading string
	Intro   string
	Entries []indexItem
}

// Engine renders full HTML documents.
type Engine struct {
	site Site
	tpl  *template.Template
}

// New parses the embedded layouts for site.
func New(site Site) (*Engine, error) {
	tpl, err := template.New("site").Option("missingkey=error").ParseFS(layoutFS, "layouts/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	return &Engine{site: site, tpl: tpl}, nil
}

// TaskPage wraps an HTML fragment into a page living in the tasks/ subdirectory.
func (e *Engine) TaskPage(title string, body []byte) ([]byte, error) {
	// #nosec G203 -- body is the Markdown renderer's output and is meant to be raw HTML
	data := pageData{Site: e.site, Prefix: taskPrefix, Title: title, Body: template.HTML(body)}
	return e.execute("task", data)
}

// Index renders the tasks index page, which lives at the output root.
func (e *Engine) Index(entries []tasks.IndexEntry) ([]byte, error) {
	items := make([]indexItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, indexItem{Href: entry.Href(), DisplayTitle: entry.DisplayTitle()})
	}
	data := indexData{
		Site:    e.site,
		Prefix:  rootPrefix,
		Heading: e.site.IndexTitle,
		Intro:   e.site.IndexIntro,
		Entries: items,
	}
	return e.execute("index", data)
}

func (e *Engine) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("exec %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

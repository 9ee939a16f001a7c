// Package tasks models the workshop task documents: discovery of the Markdown
// sources, title and ordinal derivation, and the entries of the tasks index.
package tasks

import (
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

const (
	// SourceExt is the extension of task documents.
	SourceExt = ".md"
	// PageExt is the extension of rendered pages.
	PageExt = ".html"
	// OutputSubdir holds rendered task pages, relative to the output root.
	OutputSubdir = "tasks"
	// IndexFile is the tasks index page, relative to the output root.
	IndexFile = "tasks.html"
)

// Document is one Markdown source. It is read once and never modified.
type Document struct {
	Filename string // base name, e.g. "01-intro.md"
	Content  []byte
}

// Title is the first level-1 heading, or the filename without extension.
func (d Document) Title() string {
	if title, ok := markdown.ExtractTitle(d.Content); ok {
		return title
	}
	return Stem(d.Filename)
}

// Ordinal is the leading number of the filename. ok is false without a numeric prefix.
func (d Document) Ordinal() (n int, ok bool) {
	return ParseOrdinal(d.Filename)
}

// OutputName is the rendered page's filename.
func (d Document) OutputName() string {
	return OutputName(d.Filename)
}

// Stem strips the Markdown extension from name.
func Stem(name string) string {
	return strings.TrimSuffix(name, SourceExt)
}

// OutputName swaps the Markdown extension of name for the page extension.
func OutputName(name string) string {
	return Stem(name) + PageExt
}

// ParseOrdinal parses the run of ASCII digits at the start of filename as a
// base-10 integer, so "007-intro.md" yields 7. Names without a leading digit,
// or with a digit run that overflows int, report ok=false.
func ParseOrdinal(filename string) (int, bool) {
	end := 0
	for end < len(filename) && filename[end] >= '0' && filename[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(filename[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Page is the rendered form of a Document.
type Page struct {
	Filename string // output filename, e.g. "01-intro.html"
	Title    string
	Body     []byte // HTML fragment
}

// IndexEntry is collected per rendered page and only lives for one build.
type IndexEntry struct {
	Filename     string // rendered page filename
	Title        string
	OriginalFile string // source Markdown filename
}

// NewIndexEntry records a rendered page for the index.
func NewIndexEntry(doc Document, page Page) IndexEntry {
	return IndexEntry{Filename: page.Filename, Title: page.Title, OriginalFile: doc.Filename}
}

// DisplayTitle is the label shown on the index: "Task N: title" when the
// source filename has a numeric prefix, the bare title otherwise.
func (e IndexEntry) DisplayTitle() string {
	if n, ok := ParseOrdinal(e.OriginalFile); ok {
		return fmt.Sprintf("Task %d: %s", n, e.Title)
	}
	return e.Title
}

// Href links the entry relative to the output root.
func (e IndexEntry) Href() string {
	return OutputSubdir + "/" + e.Filename
}

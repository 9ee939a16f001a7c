// Package markdown converts task documents into HTML fragments.
//
// Rendering is exposed through the Renderer capability so the templating and
// orchestration layers never depend on a particular Markdown backend. The
// default backend is goldmark configured for GitHub-flavored output: GFM
// extensions, GitHub-style heading anchors and callout (alert) blocks.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Renderer turns Markdown source into an HTML fragment.
type Renderer interface {
	Render(src []byte) ([]byte, error)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(src []byte) ([]byte, error)

// Render calls f(src).
func (f RendererFunc) Render(src []byte) ([]byte, error) { return f(src) }

// Options toggles the GitHub-flavored features of the goldmark backend.
type Options struct {
	HeadingIDs bool // add GitHub-style id attributes to headings
	Alerts     bool // render [!NOTE]-style blockquotes as alert containers
	UnsafeHTML bool // pass raw HTML through instead of omitting it
}

// DefaultOptions enables every feature.
func DefaultOptions() Options {
	return Options{HeadingIDs: true, Alerts: true, UnsafeHTML: true}
}

// GFMRenderer is the goldmark-backed Renderer.
type GFMRenderer struct {
	md goldmark.Markdown
}

// NewGFMRenderer builds a goldmark pipeline for the given options.
func NewGFMRenderer(opts Options) *GFMRenderer {
	exts := []goldmark.Extender{extension.GFM}
	if opts.Alerts {
		exts = append(exts, Alerts)
	}

	var transformers []util.PrioritizedValue
	if opts.HeadingIDs {
		transformers = append(transformers, util.Prioritized(&headingIDTransformer{}, 900))
	}

	var rendererOpts []goldmark.Option
	if opts.UnsafeHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	md := goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithASTTransformers(transformers...)),
	}, rendererOpts...)...)

	return &GFMRenderer{md: md}
}

// Render converts src into an HTML fragment.
func (r *GFMRenderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

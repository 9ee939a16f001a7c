package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Recognized alert markers, in GitHub's order.
var alertTypes = []string{"note", "tip", "important", "warning", "caution"}

var alertMarker = regexp.MustCompile(`(?i)^\[!(` + strings.Join(alertTypes, "|") + `)\]\s*$`)

// KindAlert is the node kind of Alert.
var KindAlert = gmast.NewNodeKind("Alert")

// Alert is a block container produced from a blockquote whose first line is
// an alert marker such as [!NOTE].
type Alert struct {
	gmast.BaseBlock
	AlertType string // lowercase marker name
}

// Kind implements ast.Node.
func (n *Alert) Kind() gmast.NodeKind { return KindAlert }

// Dump implements ast.Node.
func (n *Alert) Dump(source []byte, level int) {
	gmast.DumpHelper(n, source, level, map[string]string{"AlertType": n.AlertType}, nil)
}

type alertExtension struct{}

// Alerts is the goldmark extension rendering GitHub callout blocks.
var Alerts goldmark.Extender = &alertExtension{}

func (e *alertExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(util.Prioritized(&alertTransformer{}, 500)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&alertRenderer{}, 500)))
}

type alertTransformer struct{}

func (t *alertTransformer) Transform(doc *gmast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var quotes []*gmast.Blockquote
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if bq, ok := n.(*gmast.Blockquote); ok && entering {
			quotes = append(quotes, bq)
		}
		return gmast.WalkContinue, nil
	})

	for _, bq := range quotes {
		para, ok := bq.FirstChild().(*gmast.Paragraph)
		if !ok || para.Lines().Len() == 0 {
			continue
		}
		first := para.Lines().At(0)
		m := alertMarker.FindSubmatch(first.Value(source))
		if m == nil {
			continue
		}

		stripFirstLine(para, first)
		if para.FirstChild() == nil {
			bq.RemoveChild(bq, para)
		}

		alert := &Alert{AlertType: strings.ToLower(string(m[1]))}
		for c := bq.FirstChild(); c != nil; {
			next := c.NextSibling()
			alert.AppendChild(alert, c)
			c = next
		}
		bq.Parent().ReplaceChild(bq.Parent(), bq, alert)
	}
}

// stripFirstLine removes the inline nodes that belong to the marker line.
func stripFirstLine(para *gmast.Paragraph, line text.Segment) {
	for c := para.FirstChild(); c != nil; {
		next := c.NextSibling()
		t, ok := c.(*gmast.Text)
		if !ok || t.Segment.Start >= line.Stop {
			return
		}
		para.RemoveChild(para, c)
		c = next
	}
}

type alertRenderer struct{}

func (r *alertRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAlert, r.renderAlert)
}

func (r *alertRenderer) renderAlert(w util.BufWriter, _ []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	n := node.(*Alert)
	if entering {
		_, _ = w.WriteString(`<div class="markdown-alert markdown-alert-`)
		_, _ = w.WriteString(n.AlertType)
		_, _ = w.WriteString("\">\n")
		_, _ = w.WriteString(`<p class="markdown-alert-title">`)
		_, _ = w.WriteString(AlertTitle(n.AlertType))
		_, _ = w.WriteString("</p>\n")
		return gmast.WalkContinue, nil
	}
	_, _ = w.WriteString("</div>\n")
	return gmast.WalkContinue, nil
}

// AlertTitle returns the display title of an alert type ("warning" -> "Warning").
func AlertTitle(alertType string) string {
	return cases.Title(language.English).String(strings.ToLower(alertType))
}

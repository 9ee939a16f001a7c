// Package linkverify checks that the relative links of generated pages point
// at files that exist in the output tree. External URLs are never fetched.
package linkverify

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL       string // The URL or path as written
	Tag       string // HTML tag (a, img, script, link, ...)
	Attribute string // Attribute containing the link (href, src)
}

// linkAttrs names the attribute carrying a link for each element of interest.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"source": "src",
	"video":  "src",
	"audio":  "src",
}

// ExtractLinks returns every href/src link of the document in document order.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []Link
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					links = append(links, Link{URL: v, Tag: n.Data, Attribute: attr})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

// ShouldVerify reports whether link is a local reference that can be
// checked against the output tree.
func ShouldVerify(link Link) bool {
	if link.URL == "" || strings.HasPrefix(link.URL, "#") || strings.HasPrefix(link.URL, "//") {
		return false
	}
	u, err := url.Parse(link.URL)
	if err != nil {
		return false
	}
	// mailto:, https:, data:, javascript: and friends.
	if u.Scheme != "" || u.Host != "" {
		return false
	}
	return u.Path != ""
}

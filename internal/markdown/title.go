package markdown

import (
	"regexp"
	"strings"
)

var h1Pattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// ExtractTitle returns the text of the first level-1 ATX heading in src.
// The second result is false when the document has none.
func ExtractTitle(src []byte) (string, bool) {
	m := h1Pattern.FindSubmatch(src)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(string(m[1]))
	if title == "" {
		return "", false
	}
	return title, true
}

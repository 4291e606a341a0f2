package document

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once

	// Tags that end a visual line.
	breakTags = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr|h[1-6]|blockquote|pre|table|ul|ol)\s*>`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

func initPolicy() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// PlainText strips all markup from s. Block-level closing tags and <br>
// become line breaks; entities are decoded.
func PlainText(s string) string {
	initPolicy()

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = breakTags.ReplaceAllString(s, "$0\n")
	s = html.UnescapeString(strictPolicy.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

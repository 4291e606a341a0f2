package mailer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Body formats accepted by BodyHTML.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// BodyHTML returns the HTML form of a message body.
// HTML bodies (and an empty format) are returned unchanged; markdown bodies are
// converted with GitHub-flavoured markdown, keeping any inline HTML.
func BodyHTML(format, body string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatHTML:
		return body, nil
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := md.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

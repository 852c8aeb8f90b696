package utils

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	sanitizer = bluemonday.UGCPolicy()
	stripper  = bluemonday.StrictPolicy()

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
)

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// StripTags removes all markup and returns plain text, for fields such as
// names. The strict policy entity-escapes what it keeps, so the result is
// unescaped again; JSON clients escape it for display.
func StripTags(input string) string {
	return html.UnescapeString(stripper.Sanitize(input))
}

// RenderMarkdown converts comment Markdown to HTML and sanitizes the result.
// Raw HTML in the source is dropped by goldmark before sanitizing.
func RenderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return Sanitize(src)
	}
	return sanitizer.Sanitize(buf.String())
}

package services

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderMarkdown converts generated markdown into HTML for email delivery
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var titleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// ExtractTitle returns the first level-one heading of a document, or
// fallback when the document has none
func ExtractTitle(document, fallback string) string {
	if m := titleRe.FindStringSubmatch(document); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fallback
}

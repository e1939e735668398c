package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("# Title\n\nSome **bold** text.\n\n- item one\n- item two\n")
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<li>item one</li>")
}

func TestRenderMarkdownTable(t *testing.T) {
	html, err := RenderMarkdown("| A | B |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
}

func TestExtractTitle(t *testing.T) {
	doc := "# Smart Notification Center PRD\n\n## Overview\nText."
	assert.Equal(t, "Smart Notification Center PRD", ExtractTitle(doc, "fallback"))
}

func TestExtractTitleSkipsSubheadings(t *testing.T) {
	doc := "## Overview\nText.\n# Late Title\n"
	assert.Equal(t, "Late Title", ExtractTitle(doc, "fallback"))
}

func TestExtractTitleFallback(t *testing.T) {
	assert.Equal(t, "My Product", ExtractTitle("no headings here", "My Product"))
}

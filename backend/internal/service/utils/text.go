package utils

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	plainPolicy    = bluemonday.StrictPolicy()
	markdownPolicy = bluemonday.UGCPolicy()
	markdown       = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// SanitizeText strips every tag from s and returns trimmed plain text.
// Entities escaped by the policy are decoded back so "a < b" survives as typed.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}

// TextLength counts characters, not bytes.
func TextLength(s string) int {
	return utf8.RuneCountInString(s)
}

// RenderMarkdown converts a markdown source into sanitized HTML.
func RenderMarkdown(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return markdownPolicy.Sanitize(buf.String()), nil
}

package util

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ToMarkdown converts HTML to Markdown. Input without HTML, or input that
// fails to convert, is returned trimmed but otherwise unchanged.
func ToMarkdown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !ContainsHTML(s) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}

// PlainText strips HTML tags and Markdown emphasis, collapsing whitespace.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if ContainsHTML(s) {
		doc, err := html.Parse(strings.NewReader(s))
		if err == nil {
			var buf strings.Builder
			extractText(doc, &buf)
			s = buf.String()
		}
	} else {
		s = markdownMarkRe.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	markdownMarkRe = regexp.MustCompile("(?m)^#{1,6}\\s+|[*_`]+|^>\\s?|^[-+]\\s+")
)

func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style":
			return
		case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
}

// Summarize returns the plain text of s cut to at most maxRunes runes at a
// word boundary, with an ellipsis when cut.
func Summarize(s string, maxRunes int) string {
	text := PlainText(s)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)[:maxRunes]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

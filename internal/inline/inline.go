// Package inline rewrites inline Markdown spans into DITA phrase markup.
package inline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// Applied in order; later rules never see asterisks or backticks that an
// earlier rule already consumed.
var rules = []rule{
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), `<b>${1}</b>`},
	{regexp.MustCompile(`\*([^*]+)\*`), `<i>${1}</i>`},
	{regexp.MustCompile("`([^`]+)`"), `<codeph>${1}</codeph>`},
	{regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), `<xref href="${2}" format="html" scope="external">${1}</xref>`},
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#x27;")
)

// Format rewrites bold, italic, inline code and links in escaped text.
// The input must already be XML-escaped.
func Format(escaped string) string {
	for _, r := range rules {
		escaped = r.re.ReplaceAllString(escaped, r.repl)
	}
	return escaped
}

// Markup escapes literal text and then applies Format.
func Markup(text string) string {
	return Format(Escape(text))
}

// Escape escapes text for XML character content.
func Escape(text string) string {
	return textEscaper.Replace(text)
}

// EscapeAttr escapes text for a double-quoted XML attribute.
func EscapeAttr(text string) string {
	return attrEscaper.Replace(text)
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

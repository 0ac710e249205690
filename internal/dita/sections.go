package dita

import (
	"regexp"
	"strings"

	"github.com/starford/mddita/internal/parser"
)

// OverviewTitle names the single section of a document without level-2
// headings.
const OverviewTitle = "Overview"

const tocTitle = "table of contents"

var (
	h1Re = regexp.MustCompile(`^#\s+\S`)
	h2Re = regexp.MustCompile(`^##\s+(.+)$`)
)

// Section is one level-2 heading and the Markdown below it.
type Section struct {
	Title   string
	Content string
}

// SplitSections strips front matter and the leading level-1 heading, then
// cuts text at level-2 headings outside code fences. Sections with no
// content and "Table of Contents" sections are dropped. Text before the
// first level-2 heading is not part of any section.
func SplitSections(text string) []Section {
	lines := strings.Split(strings.ReplaceAll(parser.StripFrontMatter(text), "\r\n", "\n"), "\n")
	lines = dropLeadingTitle(lines)

	type mark struct {
		line  int
		title string
	}
	var marks []mark
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := h2Re.FindStringSubmatch(line); m != nil {
			marks = append(marks, mark{line: i, title: strings.TrimSpace(m[1])})
		}
	}

	if len(marks) == 0 {
		return []Section{{Title: OverviewTitle, Content: strings.TrimSpace(strings.Join(lines, "\n"))}}
	}

	var out []Section
	for i, m := range marks {
		end := len(lines)
		if i+1 < len(marks) {
			end = marks[i+1].line
		}
		content := strings.TrimSpace(strings.Join(lines[m.line+1:end], "\n"))
		if content == "" || strings.Contains(strings.ToLower(m.title), tocTitle) {
			continue
		}
		out = append(out, Section{Title: m.title, Content: content})
	}
	return out
}

// dropLeadingTitle removes the first level-1 heading when it is the first
// non-blank line.
func dropLeadingTitle(lines []string) []string {
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if h1Re.MatchString(line) {
			return append(lines[:i:i], lines[i+1:]...)
		}
		return lines
	}
	return lines
}

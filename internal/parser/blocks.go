// Package parser tokenizes Markdown documentation into an ordered sequence of
// typed blocks. It understands the subset the documentation tree uses:
// Jekyll includes, ATX headings, fenced code, block quotes, flat lists and
// pipe tables. Anything else degrades to a paragraph.
package parser

import (
	"regexp"
	"strings"
)

// Kind identifies the type of a Block.
type Kind string

const (
	KindHeading       Kind = "heading"
	KindParagraph     Kind = "paragraph"
	KindCode          Kind = "code_block"
	KindNote          Kind = "note"
	KindUnorderedList Kind = "unordered_list"
	KindOrderedList   Kind = "ordered_list"
	KindTable         Kind = "table"
	KindInclude       Kind = "include_reference"
)

// Block is one structural element of a document. Only the fields relevant to
// Kind are set:
//   - heading: Level, Text
//   - paragraph, note: Text
//   - code_block: Language (may be empty), Body
//   - unordered_list, ordered_list: Items
//   - table: Rows (raw pipe rows, separator rows removed)
//   - include_reference: Path
type Block struct {
	Kind     Kind
	Level    int
	Text     string
	Language string
	Body     string
	Items    []string
	Rows     []string
	Path     string
}

const fence = "```"

var (
	includeRe   = regexp.MustCompile(`\{%\s*include\s+([^\s%}]+)\s*%\}`)
	headingRe   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	ruleRe      = regexp.MustCompile(`^---+\s*$`)
	bulletRe    = regexp.MustCompile(`^(\s*)[-*]\s+(.+)$`)
	numberedRe  = regexp.MustCompile(`^(\s*)\d+\.\s+(.+)$`)
	separatorRe = regexp.MustCompile(`^\|[-:\s|]+\|$`)
)

// Parse strips any front matter from text and returns its blocks in source order.
func Parse(text string) []Block {
	return ParseBody(StripFrontMatter(text))
}

// ParseBody tokenizes text that has no front matter. Each line is consumed by
// the first rule that matches it.
func ParseBody(text string) []Block {
	lines := splitLines(text)
	var blocks []Block

	for i := 0; i < len(lines); {
		line := lines[i]

		if m := includeRe.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, Block{Kind: KindInclude, Path: strings.TrimSpace(m[1])})
			i++
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, Block{
				Kind:  KindHeading,
				Level: len(m[1]),
				Text:  strings.TrimSpace(m[2]),
			})
			i++
			continue
		}

		if strings.HasPrefix(line, fence) {
			lang := ""
			if fields := strings.Fields(line[len(fence):]); len(fields) > 0 {
				lang = fields[0]
			}
			i++
			start := i
			for i < len(lines) && !strings.HasPrefix(lines[i], fence) {
				i++
			}
			blocks = append(blocks, Block{
				Kind:     KindCode,
				Language: lang,
				Body:     strings.Join(lines[start:i], "\n"),
			})
			// Skip the closing fence; an unterminated block ends the input.
			i++
			continue
		}

		if ruleRe.MatchString(line) {
			i++
			continue
		}

		if strings.HasPrefix(line, ">") {
			var quote []string
			for i < len(lines) && strings.HasPrefix(lines[i], ">") {
				quote = append(quote, strings.TrimSpace(lines[i][1:]))
				i++
			}
			blocks = append(blocks, Block{Kind: KindNote, Text: strings.Join(quote, "\n")})
			continue
		}

		if bulletRe.MatchString(line) {
			var items []string
			items, i = collectItems(lines, i, bulletRe)
			blocks = append(blocks, Block{Kind: KindUnorderedList, Items: items})
			continue
		}

		if numberedRe.MatchString(line) {
			var items []string
			items, i = collectItems(lines, i, numberedRe)
			blocks = append(blocks, Block{Kind: KindOrderedList, Items: items})
			continue
		}

		if strings.HasPrefix(line, "|") {
			var rows []string
			for i < len(lines) && strings.HasPrefix(lines[i], "|") {
				if !separatorRe.MatchString(lines[i]) {
					rows = append(rows, lines[i])
				}
				i++
			}
			if len(rows) > 0 {
				blocks = append(blocks, Block{Kind: KindTable, Rows: rows})
			}
			continue
		}

		if strings.TrimSpace(line) != "" {
			para := []string{strings.TrimSpace(line)}
			i++
			for i < len(lines) && strings.TrimSpace(lines[i]) != "" && !startsBlock(lines[i]) {
				para = append(para, strings.TrimSpace(lines[i]))
				i++
			}
			blocks = append(blocks, Block{Kind: KindParagraph, Text: strings.Join(para, " ")})
			continue
		}

		i++
	}

	return blocks
}

// collectItems consumes consecutive lines matching re starting at i and
// returns the item texts and the index of the first unconsumed line.
func collectItems(lines []string, i int, re *regexp.Regexp) ([]string, int) {
	var items []string
	for i < len(lines) {
		m := re.FindStringSubmatch(lines[i])
		if m == nil {
			break
		}
		items = append(items, strings.TrimSpace(m[2]))
		i++
	}
	return items, i
}

// startsBlock reports whether line opens a block other than a paragraph.
func startsBlock(line string) bool {
	return headingRe.MatchString(line) ||
		strings.HasPrefix(line, fence) ||
		strings.HasPrefix(line, ">") ||
		strings.HasPrefix(line, "|") ||
		bulletRe.MatchString(line) ||
		numberedRe.MatchString(line) ||
		includeRe.MatchString(line)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

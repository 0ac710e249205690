package parser

import (
	"path"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/starford/mddita/internal/inline"
)

const delim = "---"

var (
	yamlFormat = frontmatter.NewFormat(delim, delim, yaml.Unmarshal)
	titleRe    = regexp.MustCompile(`^#\s+(.+)$`)
)

// FrontMatter holds the metadata fields the converter reads.
type FrontMatter struct {
	Title string `yaml:"title"`
}

// StripFrontMatter removes a leading block delimited by two lines of exactly
// "---". The block is removed even when its YAML is malformed. Text without
// such a block is returned unchanged.
func StripFrontMatter(text string) string {
	_, body, ok := splitFrontMatter(text)
	if !ok {
		return text
	}
	return body
}

// splitFrontMatter separates the raw front-matter block from the body.
func splitFrontMatter(text string) (string, string, bool) {
	text = normalize(text)
	if !strings.HasPrefix(text, delim+"\n") {
		return "", text, false
	}
	rest := text[len(delim)+1:]
	for off := 0; off <= len(rest); {
		nl := strings.IndexByte(rest[off:], '\n')
		end := len(rest)
		if nl >= 0 {
			end = off + nl
		}
		if rest[off:end] == delim {
			body := ""
			if end < len(rest) {
				body = rest[end+1:]
			}
			return rest[:off], body, true
		}
		if nl < 0 {
			break
		}
		off = end + 1
	}
	return "", text, false
}

// Metadata decodes the YAML front matter of text. Missing or malformed
// front matter yields the zero value.
func Metadata(text string) FrontMatter {
	var fm FrontMatter
	if _, _, ok := splitFrontMatter(text); !ok {
		return fm
	}
	if _, err := frontmatter.Parse(strings.NewReader(normalize(text)), &fm, yamlFormat); err != nil {
		return FrontMatter{}
	}
	fm.Title = strings.Trim(strings.TrimSpace(fm.Title), `"'`)
	return fm
}

func normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// Title returns the document title: the front-matter title, else the first
// level-1 heading, else the file stem of fallbackPath with hyphens turned
// into spaces and title-cased.
func Title(text, fallbackPath string) string {
	if fm := Metadata(text); fm.Title != "" {
		return fm.Title
	}
	for _, line := range splitLines(StripFrontMatter(text)) {
		if m := titleRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	stem := strings.TrimSuffix(path.Base(fallbackPath), path.Ext(fallbackPath))
	return inline.TitleCase(strings.ReplaceAll(stem, "-", " "))
}

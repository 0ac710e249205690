package preview

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"

	mdparser "github.com/starford/mddita/internal/parser"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`

// newMarkdown builds the engine used for source previews. Raw HTML in the
// sources is escaped.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.DefinitionList),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(ghtml.WithXHTML()),
	)
}

// renderSource renders a Markdown source file as a standalone HTML page.
// Front matter is removed and only feeds the page title.
func renderSource(md goldmark.Markdown, path string, src []byte) ([]byte, error) {
	text := string(src)
	title := mdparser.Title(text, path)

	var body bytes.Buffer
	if err := md.Convert([]byte(mdparser.StripFrontMatter(text)), &body); err != nil {
		return nil, fmt.Errorf("preview: render %s: %w", path, err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, pageTemplate, html.EscapeString(title), body.String())
	return page.Bytes(), nil
}

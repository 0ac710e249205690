package dita

import (
	"strconv"
	"strings"

	"github.com/starford/mddita/internal/inline"
	"github.com/starford/mddita/internal/parser"
	"github.com/starford/mddita/internal/report"
)

// Note types, in detection priority order.
const (
	NoteWarning   = "warning"
	NoteImportant = "important"
	NoteCaution   = "caution"
	NoteTip       = "tip"
	NoteNote      = "note"
)

const warningSign = "⚠"

// NoteType classifies a block quote by the first keyword it contains,
// ignoring case.
func NoteType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "warning"), strings.Contains(text, warningSign):
		return NoteWarning
	case strings.Contains(lower, "important"):
		return NoteImportant
	case strings.Contains(lower, "caution"):
		return NoteCaution
	case strings.Contains(lower, "tip"):
		return NoteTip
	default:
		return NoteNote
	}
}

// convert applies the shared block rule. It returns nil for blocks that
// produce no output.
func (c *conversion) convert(b parser.Block) *Node {
	switch b.Kind {
	case parser.KindHeading:
		return Text("p", "<b>"+inline.Escape(b.Text)+"</b>")
	case parser.KindParagraph:
		return Text("p", inline.Markup(b.Text))
	case parser.KindCode:
		return c.code(b)
	case parser.KindNote:
		return El("note", Text("p", inline.Markup(b.Text))).Set("type", NoteType(b.Text))
	case parser.KindUnorderedList:
		return El("ul", listItems(b.Items)...)
	case parser.KindOrderedList:
		return El("ol", listItems(b.Items)...)
	case parser.KindTable:
		return Table(b.Rows)
	case parser.KindInclude:
		return c.conref(b.Path)
	}
	return nil
}

func (c *conversion) code(b parser.Block) *Node {
	if !c.e.isDiagram(b.Language) {
		n := Text("codeblock", inline.Escape(b.Body))
		if b.Language != "" {
			n.Set("outputclass", b.Language)
		}
		return n
	}

	name, err := c.e.diagrams.Asset(c.ctx, b.Language, b.Body)
	if err != nil {
		c.e.warn(report.KindDiagramPlaceholder, c.source, err.Error())
	}
	href := "../" + c.e.layout.Images + "/" + name
	return El("fig", El("image", Text("alt", "Diagram")).Set("href", href))
}

// conref embeds the region of the fragment registered for path. Unknown
// paths still get the derived reference and are reported as dangling.
func (c *conversion) conref(path string) *Node {
	f, ok := c.e.registry.Resolve(path)
	if !ok {
		f = FragmentFor(path)
		c.e.warn(report.KindDanglingReference, c.source, path)
	}
	return El("div").Set("conref", f.Href(c.e.layout.Warehouse))
}

func listItems(items []string) []*Node {
	out := make([]*Node, 0, len(items))
	for _, item := range items {
		out = append(out, Text("li", inline.Markup(item)))
	}
	return out
}

// SplitRow returns the trimmed cells of a pipe table row. The segments
// before the first pipe and after the last pipe are not cells.
func SplitRow(row string) []string {
	parts := strings.Split(strings.TrimSpace(row), "|")
	if len(parts) < 2 {
		return nil
	}
	cells := parts[1 : len(parts)-1]
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// TableRows splits raw rows into the header and the body rows whose width
// matches it. Rows of any other width are dropped.
func TableRows(rows []string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	header := SplitRow(rows[0])
	var body [][]string
	for _, row := range rows[1:] {
		if cells := SplitRow(row); len(cells) == len(header) {
			body = append(body, cells)
		}
	}
	return header, body
}

// Table builds a table element from raw pipe rows. The first row is the
// header and fixes the column count. It returns nil when the header has no
// cells.
func Table(rows []string) *Node {
	header, body := TableRows(rows)
	if len(header) == 0 {
		return nil
	}

	tgroup := El("tgroup", El("thead", tableRow(header))).Set("cols", strconv.Itoa(len(header)))
	if len(body) > 0 {
		tbody := El("tbody")
		for _, cells := range body {
			tbody.Append(tableRow(cells))
		}
		tgroup.Append(tbody)
	}
	return El("table", tgroup)
}

func tableRow(cells []string) *Node {
	row := El("row")
	for _, cell := range cells {
		row.Append(Text("entry", inline.Markup(cell)))
	}
	return row
}

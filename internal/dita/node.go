// Package dita renders parsed Markdown blocks as DITA XML topics.
package dita

import (
	"bytes"
	"strings"

	"github.com/starford/mddita/internal/inline"
)

// Document type declarations written after the XML prolog.
const (
	DoctypeTopic   = `<!DOCTYPE topic PUBLIC "-//OASIS//DTD DITA Topic//EN" "topic.dtd">`
	DoctypeTask    = `<!DOCTYPE task PUBLIC "-//OASIS//DTD DITA Task//EN" "task.dtd">`
	DoctypeConcept = `<!DOCTYPE concept PUBLIC "-//OASIS//DTD DITA Concept//EN" "concept.dtd">`
	DoctypeMap     = `<!DOCTYPE map PUBLIC "-//OASIS//DTD DITA Map//EN" "map.dtd">`
)

const (
	prolog = `<?xml version="1.0" encoding="UTF-8"?>`
	indent = "    "
)

type attr struct {
	name  string
	value string
}

// Node is an XML element. An element carries either child elements or a
// single run of inline markup, never both; an element with neither is
// written self-closing.
type Node struct {
	name     string
	attrs    []attr
	markup   string
	children []*Node
}

// El creates an element with the given children. Nil children are skipped.
func El(name string, children ...*Node) *Node {
	return (&Node{name: name}).Append(children...)
}

// Text creates an element whose content is markup. The markup is written
// verbatim and must already be escaped.
func Text(name, markup string) *Node {
	return &Node{name: name, markup: markup}
}

// Set adds an attribute. Values are escaped on output.
func (n *Node) Set(name, value string) *Node {
	n.attrs = append(n.attrs, attr{name: name, value: value})
	return n
}

// Append adds children, skipping nil ones.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

// Len returns the number of child elements.
func (n *Node) Len() int {
	return len(n.children)
}

// Name returns the element name.
func (n *Node) Name() string {
	return n.name
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// Children returns the child elements.
func (n *Node) Children() []*Node {
	return n.children
}

// Markup returns the inline content of a text element.
func (n *Node) Markup() string {
	return n.markup
}

// String renders the element without a prolog.
func (n *Node) String() string {
	var b bytes.Buffer
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *bytes.Buffer, depth int) {
	pad := strings.Repeat(indent, depth)
	b.WriteString(pad)
	b.WriteByte('<')
	b.WriteString(n.name)
	for _, a := range n.attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		b.WriteString(`="`)
		b.WriteString(inline.EscapeAttr(a.value))
		b.WriteByte('"')
	}

	switch {
	case len(n.children) > 0:
		b.WriteString(">\n")
		for _, c := range n.children {
			c.write(b, depth+1)
		}
		b.WriteString(pad)
	case n.markup != "":
		b.WriteByte('>')
		b.WriteString(n.markup)
	default:
		b.WriteString("/>\n")
		return
	}
	b.WriteString("</")
	b.WriteString(n.name)
	b.WriteString(">\n")
}

// Render writes a complete XML document: prolog, doctype and root.
func Render(doctype string, root *Node) []byte {
	var b bytes.Buffer
	b.WriteString(prolog)
	b.WriteByte('\n')
	b.WriteString(doctype)
	b.WriteByte('\n')
	root.write(&b, 0)
	return b.Bytes()
}

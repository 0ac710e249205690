package dita

import (
	"context"

	"github.com/starford/mddita/internal/inline"
	"github.com/starford/mddita/internal/models"
	"github.com/starford/mddita/internal/parser"
)

// Concept emits doc as a single concept topic. Level-2 headings open
// sections; content before the first one stays at the body root.
func (e *Emitter) Concept(ctx context.Context, doc Document) (Rendered, error) {
	return e.concept(ctx, doc, parser.Parse(doc.Content))
}

func (e *Emitter) concept(ctx context.Context, doc Document, blocks []parser.Block) (Rendered, error) {
	c := e.conversion(ctx, doc.Path)
	body := El("conbody")
	var section *Node

	for _, b := range blocks {
		if b.Kind == parser.KindHeading && b.Level == 2 {
			section = El("section", Text("title", inline.Escape(b.Text))).Set("id", SanitizeID(b.Text))
			body.Append(section)
			continue
		}
		if section == nil {
			if b.Kind == parser.KindHeading && b.Level == 1 {
				continue
			}
			body.Append(c.convert(b))
			continue
		}
		section.Append(c.convert(b))
	}
	if err := ctx.Err(); err != nil {
		return Rendered{}, err
	}

	root := El("concept",
		Text("title", inline.Escape(doc.Title)),
		body,
	).Set("id", doc.ID)

	return Rendered{
		Topic: models.Topic{
			ID:         doc.ID,
			Title:      doc.Title,
			Kind:       models.KindConcept,
			SourcePath: doc.Path,
			File:       e.topicFile(doc.ID),
		},
		Data: Render(DoctypeConcept, root),
	}, nil
}

// ConceptSections splits doc at its level-2 headings and emits one concept
// topic per section. The returned parent is never written; it groups the
// children for the navigation map.
func (e *Emitter) ConceptSections(ctx context.Context, doc Document) (models.Topic, []Rendered, error) {
	parent := models.Topic{
		ID:         doc.ID,
		Title:      doc.Title,
		Kind:       models.KindConceptParent,
		SourcePath: doc.Path,
	}

	var out []Rendered
	for _, s := range SplitSections(doc.Content) {
		child := Document{
			Path:    doc.Path,
			ID:      doc.ID + "_" + SanitizeID(s.Title),
			Title:   doc.Title + " - " + s.Title,
			Content: s.Content,
		}
		r, err := e.concept(ctx, child, parser.ParseBody(s.Content))
		if err != nil {
			return models.Topic{}, nil, err
		}
		r.Topic.NavTitle = s.Title
		parent.Children = append(parent.Children, r.Topic)
		out = append(out, r)
	}
	return parent, out, nil
}

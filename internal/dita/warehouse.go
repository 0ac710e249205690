package dita

import (
	"context"
	"path"

	"github.com/starford/mddita/internal/inline"
	"github.com/starford/mddita/internal/models"
	"github.com/starford/mddita/internal/parser"
)

// Warehouse emits the reusable fragment at includePath as a generic topic
// whose whole body sits in one div, so it can be pulled by reference into
// both task and concept bodies. Headings become bold paragraphs.
func (e *Emitter) Warehouse(ctx context.Context, includePath, content string) (Rendered, error) {
	f, ok := e.registry.Resolve(includePath)
	if !ok {
		f = FragmentFor(includePath)
	}

	c := e.conversion(ctx, path.Join(e.layout.Warehouse, includePath))
	region := El("div").Set("id", f.RegionID)
	for _, b := range parser.Parse(content) {
		region.Append(c.convert(b))
	}
	if err := ctx.Err(); err != nil {
		return Rendered{}, err
	}

	root := El("topic",
		Text("title", inline.Escape(f.Title())),
		El("body", region),
	).Set("id", f.TopicID)

	return Rendered{
		Topic: models.Topic{
			ID:         f.TopicID,
			Title:      f.Title(),
			Kind:       models.KindWarehouse,
			SourcePath: includePath,
			File:       path.Join(e.layout.Warehouse, f.File()),
		},
		Data: Render(DoctypeTopic, root),
	}, nil
}

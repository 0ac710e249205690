package dita

import (
	"context"
	"strings"

	"github.com/starford/mddita/internal/inline"
	"github.com/starford/mddita/internal/models"
	"github.com/starford/mddita/internal/parser"
)

type taskState int

const (
	stateRoot taskState = iota
	statePrereq
	stateStep
)

func (s taskState) String() string {
	switch s {
	case statePrereq:
		return "prerequisite"
	case stateStep:
		return "step"
	default:
		return "root"
	}
}

type step struct {
	label string
	info  []*Node
}

// taskBuilder folds a block sequence into the task body. Level-2 headings
// drive the transitions: one mentioning "prerequisite" enters statePrereq,
// any other opens a new step.
type taskBuilder struct {
	conv  *conversion
	state taskState

	context []*Node

	prereqBlocks []*Node
	prereqItems  []*Node
	prereqRefs   []*Node

	steps   []step
	current *step
}

func newTaskBuilder(c *conversion) *taskBuilder {
	return &taskBuilder{conv: c}
}

func isPrerequisite(heading string) bool {
	return strings.Contains(strings.ToLower(heading), "prerequisite")
}

func (t *taskBuilder) feed(b parser.Block) {
	if b.Kind == parser.KindHeading && b.Level == 2 {
		t.closeStep()
		if isPrerequisite(b.Text) {
			t.state = statePrereq
			return
		}
		t.current = &step{label: b.Text}
		t.state = stateStep
		return
	}

	switch t.state {
	case stateRoot:
		// The level-1 heading is the topic title.
		if b.Kind == parser.KindHeading && b.Level == 1 {
			return
		}
		t.context = append(t.context, t.conv.convert(b))
	case statePrereq:
		switch b.Kind {
		case parser.KindUnorderedList:
			t.prereqItems = append(t.prereqItems, listItems(b.Items)...)
		case parser.KindInclude:
			// References may not sit inside the list; they follow it.
			t.prereqRefs = append(t.prereqRefs, t.conv.convert(b))
		default:
			t.prereqBlocks = append(t.prereqBlocks, t.conv.convert(b))
		}
	case stateStep:
		t.current.info = append(t.current.info, t.conv.convert(b))
	}
}

func (t *taskBuilder) closeStep() {
	if t.current != nil {
		t.steps = append(t.steps, *t.current)
		t.current = nil
	}
}

// body closes any open step and assembles prereq, context and steps in the
// order the task content model requires.
func (t *taskBuilder) body() *Node {
	t.closeStep()
	body := El("taskbody")

	if len(t.prereqBlocks)+len(t.prereqItems)+len(t.prereqRefs) > 0 {
		prereq := El("prereq", t.prereqBlocks...)
		if len(t.prereqItems) > 0 {
			prereq.Append(El("ul", t.prereqItems...))
		}
		prereq.Append(t.prereqRefs...)
		body.Append(prereq)
	}

	if ctx := El("context", t.context...); ctx.Len() > 0 {
		body.Append(ctx)
	}

	if len(t.steps) > 0 {
		steps := El("steps")
		for _, s := range t.steps {
			n := El("step", Text("cmd", inline.Escape(s.label)))
			if info := El("info", s.info...); info.Len() > 0 {
				n.Append(info)
			}
			steps.Append(n)
		}
		body.Append(steps)
	}
	return body
}

// Task emits doc as a task topic.
func (e *Emitter) Task(ctx context.Context, doc Document) (Rendered, error) {
	t := newTaskBuilder(e.conversion(ctx, doc.Path))
	for _, b := range parser.Parse(doc.Content) {
		t.feed(b)
	}
	if err := ctx.Err(); err != nil {
		return Rendered{}, err
	}

	root := El("task",
		Text("title", inline.Escape(doc.Title)),
		t.body(),
	).Set("id", doc.ID)

	return Rendered{
		Topic: models.Topic{
			ID:         doc.ID,
			Title:      doc.Title,
			Kind:       models.KindTask,
			SourcePath: doc.Path,
			File:       e.topicFile(doc.ID),
		},
		Data: Render(DoctypeTask, root),
	}, nil
}

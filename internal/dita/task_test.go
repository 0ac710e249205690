package dita

import (
	"context"
	"strings"
	"testing"

	"github.com/starford/mddita/internal/models"
	"github.com/starford/mddita/internal/parser"
)

func TestTask_PrerequisitesThenStep(t *testing.T) {
	e, col := newTestEmitter("common/network.md")
	doc := Document{
		Path:  "QUICKSTART.md",
		ID:    "install",
		Title: "Install",
		Content: `# Install

## Prerequisites

- Item one
- Item **two**

{% include common/network.md %}

## Step 1

Run the installer.
`,
	}

	r, err := e.Task(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE task PUBLIC "-//OASIS//DTD DITA Task//EN" "task.dtd">
<task id="install">
    <title>Install</title>
    <taskbody>
        <prereq>
            <ul>
                <li>Item one</li>
                <li>Item <b>two</b></li>
            </ul>
            <div conref="../warehouse/warehouse_common_network.dita#warehouse_common_network/common_network_content"/>
        </prereq>
        <steps>
            <step>
                <cmd>Step 1</cmd>
                <info>
                    <p>Run the installer.</p>
                </info>
            </step>
        </steps>
    </taskbody>
</task>
`
	if got := string(r.Data); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if len(col.Items()) != 0 {
		t.Errorf("unexpected diagnostics: %+v", col.Items())
	}

	wantTopic := models.Topic{
		ID:         "install",
		Title:      "Install",
		Kind:       models.KindTask,
		SourcePath: "QUICKSTART.md",
		File:       "topics/install.dita",
	}
	if r.Topic.ID != wantTopic.ID || r.Topic.Kind != wantTopic.Kind || r.Topic.File != wantTopic.File {
		t.Errorf("topic = %+v, want %+v", r.Topic, wantTopic)
	}
}

func TestTaskBuilder_Transitions(t *testing.T) {
	e, _ := newTestEmitter()
	tb := newTaskBuilder(e.conversion(context.Background(), "doc.md"))

	steps := []struct {
		block parser.Block
		want  taskState
	}{
		{parser.Block{Kind: parser.KindParagraph, Text: "intro"}, stateRoot},
		{parser.Block{Kind: parser.KindHeading, Level: 2, Text: "PREREQUISITES"}, statePrereq},
		{parser.Block{Kind: parser.KindHeading, Level: 3, Text: "Hardware"}, statePrereq},
		{parser.Block{Kind: parser.KindHeading, Level: 2, Text: "Configure"}, stateStep},
		{parser.Block{Kind: parser.KindParagraph, Text: "body"}, stateStep},
		{parser.Block{Kind: parser.KindHeading, Level: 2, Text: "Prerequisite check"}, statePrereq},
		{parser.Block{Kind: parser.KindHeading, Level: 2, Text: "Verify"}, stateStep},
	}
	for i, s := range steps {
		tb.feed(s.block)
		if tb.state != s.want {
			t.Fatalf("after block %d state = %v, want %v", i, tb.state, s.want)
		}
	}

	tb.closeStep()
	if len(tb.steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(tb.steps))
	}
	if tb.steps[0].label != "Configure" || len(tb.steps[0].info) != 1 {
		t.Errorf("first step = %+v", tb.steps[0])
	}
	if len(tb.context) != 1 {
		t.Errorf("context blocks = %d, want 1", len(tb.context))
	}
	if len(tb.prereqBlocks) != 1 {
		t.Errorf("prerequisite blocks = %d, want 1", len(tb.prereqBlocks))
	}
}

func TestTask_RootContentBecomesContext(t *testing.T) {
	e, _ := newTestEmitter()
	r, err := e.Task(context.Background(), Document{
		ID:      "t",
		Title:   "T",
		Content: "# T\n\nRead this first.\n\n## Do it\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := string(r.Data)

	if strings.Contains(out, "<p><b>T</b></p>") {
		t.Error("level-1 title heading should not be repeated in the body")
	}
	ctxAt := strings.Index(out, "<context>")
	stepsAt := strings.Index(out, "<steps>")
	if ctxAt < 0 || stepsAt < 0 || ctxAt > stepsAt {
		t.Errorf("want context before steps:\n%s", out)
	}
	if !strings.Contains(out, "<cmd>Do it</cmd>\n            </step>") {
		t.Errorf("empty step should have no info:\n%s", out)
	}
}

func TestTask_ListsMergeIntoOnePrerequisiteList(t *testing.T) {
	e, _ := newTestEmitter("a.md")
	r, err := e.Task(context.Background(), Document{
		ID:      "t",
		Title:   "T",
		Content: "## Prerequisites\n\nYou need:\n\n- one\n\n{% include a.md %}\n\n* two\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := string(r.Data)

	if strings.Count(out, "<ul>") != 1 {
		t.Errorf("want a single list:\n%s", out)
	}
	para := strings.Index(out, "<p>You need:</p>")
	list := strings.Index(out, "<ul>")
	ref := strings.Index(out, "conref=")
	if !(para < list && list < ref) {
		t.Errorf("want paragraph, list, reference order:\n%s", out)
	}
	if !strings.Contains(out, "<li>two</li>") {
		t.Errorf("items after the reference belong to the list:\n%s", out)
	}
}

func TestTask_StepBodyUsesSharedRule(t *testing.T) {
	e, _ := newTestEmitter()
	r, err := e.Task(context.Background(), Document{
		ID:    "t",
		Title: "T",
		Content: "## Step 1\n\n### Details\n\n```bash\nls -l\n```\n\n> **Warning:** careful\n\n" +
			"1. first\n2. second\n\n| A | B |\n|---|---|\n| 1 | 2 |\n\n{% include missing.md %}\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := string(r.Data)
	for _, want := range []string{
		"<p><b>Details</b></p>",
		`<codeblock outputclass="bash">ls -l</codeblock>`,
		`<note type="warning">`,
		"<ol>",
		`<tgroup cols="2">`,
		`conref="../warehouse/warehouse_missing.dita#warehouse_missing/missing_content"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTask_EscapesTitle(t *testing.T) {
	e, _ := newTestEmitter()
	r, err := e.Task(context.Background(), Document{ID: "t", Title: "A & B", Content: "## <Step>\n"})
	if err != nil {
		t.Fatal(err)
	}
	out := string(r.Data)
	if !strings.Contains(out, "<title>A &amp; B</title>") || !strings.Contains(out, "<cmd>&lt;Step&gt;</cmd>") {
		t.Errorf("title and step label must be escaped:\n%s", out)
	}
}

func TestTask_CancelledContext(t *testing.T) {
	e, _ := newTestEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Task(ctx, Document{ID: "t", Title: "T"}); err == nil {
		t.Error("want error for cancelled context")
	}
}

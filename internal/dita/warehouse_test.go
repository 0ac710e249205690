package dita

import (
	"context"
	"strings"
	"testing"

	"github.com/starford/mddita/internal/models"
)

func TestWarehouse(t *testing.T) {
	e, _ := newTestEmitter("nvme-tcp/network.md")
	r, err := e.Warehouse(context.Background(), "nvme-tcp/network.md",
		"---\ntitle: ignored\n---\n## Ports\n\nOpen port `4420`.\n")
	if err != nil {
		t.Fatal(err)
	}

	if r.Topic.Kind != models.KindWarehouse || r.Topic.File != "warehouse/warehouse_nvme-tcp_network.dita" {
		t.Errorf("topic = %+v", r.Topic)
	}
	out := string(r.Data)
	for _, want := range []string{
		DoctypeTopic,
		`<topic id="warehouse_nvme-tcp_network">`,
		`<div id="nvme-tcp_network_content">`,
		"<p><b>Ports</b></p>",
		"<p>Open port <codeph>4420</codeph>.</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<section") {
		t.Error("fragments must not contain sections")
	}
}

// A reference resolves to the region that holds the fragment's whole body.
func TestWarehouse_ReferenceEmbedsWholeBody(t *testing.T) {
	e, col := newTestEmitter("common/steps.md")
	frag, err := e.Warehouse(context.Background(), "common/steps.md",
		"First paragraph.\n\n- one\n- two\n\n```\ncode\n```\n\nLast paragraph.\n")
	if err != nil {
		t.Fatal(err)
	}
	doc, err := e.Task(context.Background(), Document{
		ID: "t", Title: "T", Content: "## Step 1\n\n{% include common/steps.md %}\n",
	})
	if err != nil {
		t.Fatal(err)
	}

	f, _ := e.Registry().Resolve("common/steps.md")
	ref := `conref="../warehouse/` + f.File() + "#" + f.TopicID + "/" + f.RegionID + `"`
	if !strings.Contains(string(doc.Data), ref) {
		t.Fatalf("reference %s missing:\n%s", ref, doc.Data)
	}

	out := string(frag.Data)
	open := strings.Index(out, `<div id="`+f.RegionID+`">`)
	closing := strings.LastIndex(out, "</div>")
	if open < 0 || closing < open {
		t.Fatalf("region not found:\n%s", out)
	}
	region := out[open:closing]
	for _, want := range []string{"First paragraph.", "<li>two</li>", "<codeblock>code</codeblock>", "Last paragraph."} {
		if !strings.Contains(region, want) {
			t.Errorf("region missing %q", want)
		}
	}
	if len(col.Items()) != 0 {
		t.Errorf("unexpected diagnostics: %+v", col.Items())
	}
}

func TestWarehouse_NestedIncludeBecomesReference(t *testing.T) {
	e, col := newTestEmitter("a.md", "b.md")
	r, err := e.Warehouse(context.Background(), "a.md", "{% include b.md %}\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(r.Data), `conref="../warehouse/warehouse_b.dita#warehouse_b/b_content"`) {
		t.Errorf("nested include not referenced:\n%s", r.Data)
	}
	if len(col.Items()) != 0 {
		t.Errorf("unexpected diagnostics: %+v", col.Items())
	}
}

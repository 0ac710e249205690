package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mddita/internal/models"
	"github.com/starford/mddita/internal/report"
)

type fakeRunner struct {
	rep   *report.Report
	err   error
	calls int
}

func (f *fakeRunner) Run(context.Context) (*report.Report, error) {
	f.calls++
	return f.rep, f.err
}

func testServer(t *testing.T, runner *fakeRunner) (*Server, *report.Latest) {
	t.Helper()
	latest := &report.Latest{}
	return New(runner, latest), latest
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "convert_document":
		result, err = srv.convertDocument(ctx, req)
	case "sanitize_id":
		result, err = srv.sanitizeID(ctx, req)
	case "convert_tree":
		result, err = srv.convertTree(ctx, req)
	case "list_topics":
		result, err = srv.listTopics(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultTexts(r *mcp.CallToolResult) []string {
	var out []string
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			out = append(out, tc.Text)
		}
	}
	return out
}

func resultText(r *mcp.CallToolResult) string {
	if texts := resultTexts(r); len(texts) > 0 {
		return texts[0]
	}
	return ""
}

func TestConvertDocument_Task(t *testing.T) {
	srv, _ := testServer(t, &fakeRunner{})
	r := callTool(t, srv, "convert_document", map[string]interface{}{
		"content": "# Setup\n\n## Step 1: Install\n\nRun it.\n",
		"path":    "rhel/QUICKSTART.md",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %q", resultText(r))
	}
	xml := resultText(r)
	for _, want := range []string{
		`<task id="rhel_quickstart">`,
		"<title>Setup</title>",
		"<cmd>Step 1: Install</cmd>",
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("missing %q in:\n%s", want, xml)
		}
	}
}

func TestConvertDocument_Concept(t *testing.T) {
	srv, _ := testServer(t, &fakeRunner{})
	r := callTool(t, srv, "convert_document", map[string]interface{}{
		"content": "## Tuning\n\nTune it.\n",
		"shape":   "concept",
		"title":   "Best Practices",
		"id":      "Best Practices",
	})
	xml := resultText(r)
	if !strings.Contains(xml, `<concept id="best_practices">`) {
		t.Errorf("missing concept root in:\n%s", xml)
	}
	if !strings.Contains(xml, `<section id="tuning">`) {
		t.Errorf("missing section in:\n%s", xml)
	}
	if !strings.Contains(xml, "<title>Best Practices</title>") {
		t.Errorf("title override ignored in:\n%s", xml)
	}
}

func TestConvertDocument_IncludeIsDangling(t *testing.T) {
	srv, _ := testServer(t, &fakeRunner{})
	r := callTool(t, srv, "convert_document", map[string]interface{}{
		"content": "# T\n\n{% include nvme-tcp/network.md %}\n",
	})
	texts := resultTexts(r)
	if len(texts) != 2 {
		t.Fatalf("contents = %d, want xml plus one warning", len(texts))
	}
	if !strings.Contains(texts[0], `conref="../warehouse/warehouse_nvme-tcp_network.dita#warehouse_nvme-tcp_network/nvme-tcp_network_content"`) {
		t.Errorf("missing conref in:\n%s", texts[0])
	}
	if !strings.Contains(texts[1], "dangling_reference") {
		t.Errorf("warning = %q", texts[1])
	}
}

func TestConvertDocument_BadInput(t *testing.T) {
	srv, _ := testServer(t, &fakeRunner{})
	cases := []map[string]interface{}{
		{},
		{"content": "# x", "shape": "reference"},
		{"content": "# x", "path": "notes.txt"},
	}
	for _, args := range cases {
		if r := callTool(t, srv, "convert_document", args); !r.IsError {
			t.Errorf("args %v: expected error result", args)
		}
	}
}

func TestSanitizeID(t *testing.T) {
	srv, _ := testServer(t, &fakeRunner{})
	r := callTool(t, srv, "sanitize_id", map[string]interface{}{"text": "Step 1: Configure NVMe!"})
	if got := resultText(r); got != "step_1_configure_nvme" {
		t.Errorf("sanitize_id = %q, want %q", got, "step_1_configure_nvme")
	}
}

func TestListTopics_BeforeBuild(t *testing.T) {
	srv, _ := testServer(t, &fakeRunner{})
	if r := callTool(t, srv, "list_topics", nil); !r.IsError {
		t.Error("expected error before first build")
	}
}

func TestConvertTree_StoresLatest(t *testing.T) {
	runner := &fakeRunner{rep: &report.Report{
		RunID: "run-1",
		Topics: []models.Topic{
			{ID: "rhel_quickstart", Title: "RHEL", Kind: models.KindTask, File: "topics/rhel_quickstart.dita"},
			{ID: "bp", Title: "Best Practices", Kind: models.KindConceptParent, Children: []models.Topic{
				{ID: "bp_tuning", Title: "Best Practices - Tuning", Kind: models.KindConcept, File: "topics/bp_tuning.dita"},
			}},
		},
	}}
	srv, latest := testServer(t, runner)

	r := callTool(t, srv, "convert_tree", nil)
	if r.IsError {
		t.Fatalf("unexpected error: %q", resultText(r))
	}
	var got report.Report
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("run id = %q", got.RunID)
	}
	if rep, _ := latest.Load(); rep == nil || rep.RunID != "run-1" {
		t.Errorf("latest not stored: %+v", rep)
	}

	lines := strings.Split(resultText(callTool(t, srv, "list_topics", nil)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "rhel_quickstart\ttask") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "  bp_tuning\tconcept") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestConvertTree_Failure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("input directory not found")}
	srv, latest := testServer(t, runner)

	if r := callTool(t, srv, "convert_tree", nil); !r.IsError {
		t.Error("expected error result")
	}
	if _, err := latest.Load(); err == nil {
		t.Error("failure should be stored")
	}
	if r := callTool(t, srv, "list_topics", nil); !r.IsError {
		t.Error("list_topics should report the failed build")
	}
}

func TestMappingResource(t *testing.T) {
	srv, _ := testServer(t, &fakeRunner{})
	contents, err := srv.readMappingResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != MappingURI || !strings.Contains(tc.Text, "conref") {
		t.Errorf("resource = %+v", contents[0])
	}
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the converter as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mddita/internal/dita"
	"github.com/starford/mddita/internal/models"
	"github.com/starford/mddita/internal/parser"
	"github.com/starford/mddita/internal/report"
)

// MappingURI identifies the Markdown to DITA mapping resource.
const MappingURI = "mddita://mapping"

// Runner runs a full tree conversion.
type Runner interface {
	Run(ctx context.Context) (*report.Report, error)
}

// Server wraps the MCP server with converter tools.
type Server struct {
	mcp    *server.MCPServer
	runner Runner
	latest *report.Latest
}

// New creates a new MCP server with all tools registered. Tree conversions
// run through runner and their outcome is stored in latest.
func New(runner Runner, latest *report.Latest) *Server {
	s := &Server{runner: runner, latest: latest}

	s.mcp = server.NewMCPServer(
		"mddita",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("convert_document",
		mcp.WithDescription("Convert a single Markdown document into a DITA task or concept topic. "+
			"Include directives cannot be resolved here and are reported as dangling references. "+
			"Read the mapping first via the "+MappingURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown source")),
		mcp.WithString("shape", mcp.Enum("task", "concept"), mcp.Description("Topic type (default task)")),
		mcp.WithString("path", mcp.Description("Source path used to derive the topic id (default document.md)")),
		mcp.WithString("title", mcp.Description("Topic title; defaults to the front matter title or first level-1 heading")),
		mcp.WithString("id", mcp.Description("Topic id; defaults to the id derived from path")),
	), s.convertDocument)

	s.mcp.AddTool(mcp.NewTool("sanitize_id",
		mcp.WithDescription("Turn free text into the XML identifier the converter would use."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to sanitize")),
	), s.sanitizeID)

	s.mcp.AddTool(mcp.NewTool("convert_tree",
		mcp.WithDescription("Convert the configured input tree and return the run report as JSON."),
	), s.convertTree)

	s.mcp.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List the topics produced by the most recent tree conversion."),
	), s.listTopics)

	s.mcp.AddResource(
		mcp.NewResource(MappingURI, "Markdown to DITA mapping",
			mcp.WithResourceDescription("How Markdown constructs map onto DITA elements."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMappingResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) convertDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := req.GetString("path", "document.md")
	if !strings.HasSuffix(path, ".md") {
		return mcp.NewToolResultError(fmt.Sprintf("path must end with .md: %s", path)), nil
	}
	doc := dita.Document{
		Path:    path,
		ID:      dita.DocumentID(path),
		Title:   req.GetString("title", ""),
		Content: content,
	}
	if doc.Title == "" {
		doc.Title = parser.Title(content, path)
	}
	if id := req.GetString("id", ""); id != "" {
		doc.ID = dita.SanitizeID(id)
	}

	registry := dita.NewRegistry()
	registry.Seal()
	collector := report.NewCollector(nil)
	emitter := dita.New(registry, dita.WithCollector(collector))

	var out dita.Rendered
	switch shape := req.GetString("shape", "task"); shape {
	case "task":
		out, err = emitter.Task(ctx, doc)
	case "concept":
		out, err = emitter.Concept(ctx, doc)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown shape: %s", shape)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := mcp.NewToolResultText(string(out.Data))
	for _, d := range collector.Items() {
		result.Content = append(result.Content,
			mcp.NewTextContent(fmt.Sprintf("warning [%s] %s", d.Kind, d.Detail)))
	}
	return result, nil
}

func (s *Server) sanitizeID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(dita.SanitizeID(text)), nil
}

func (s *Server) convertTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.runner.Run(ctx)
	s.latest.Store(rep, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rep, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.latest.Load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("last build failed: %v", err)), nil
	}
	if rep == nil {
		return mcp.NewToolResultError("no build yet; call convert_tree first"), nil
	}
	var lines []string
	for _, t := range rep.Topics {
		lines = append(lines, topicLine(t, ""))
		for _, c := range t.Children {
			lines = append(lines, topicLine(c, "  "))
		}
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no topics"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func topicLine(t models.Topic, indent string) string {
	if t.File == "" {
		return fmt.Sprintf("%s%s\t%s\t%s", indent, t.ID, t.Kind, t.Title)
	}
	return fmt.Sprintf("%s%s\t%s\t%s\t%s", indent, t.ID, t.Kind, t.Title, t.File)
}

func (s *Server) readMappingResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      MappingURI,
			MIMEType: "text/markdown",
			Text:     MappingContract,
		},
	}, nil
}

// Package mcp exposes read-only adbind operations as MCP tools so agents
// can inspect and plan a binding without changing it.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with adbind tools registered.
func NewServer(version string, h *Handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"adbind",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("adbind/status",
			mcp.WithDescription("Read the host's current Active Directory binding"),
		),
		h.HandleStatus,
	)

	s.AddTool(
		mcp.NewTool("adbind/plan",
			mcp.WithDescription("Compare a binding manifest with the host and show the invocation a reconciliation pass would issue"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the binding manifest YAML file")),
		),
		h.HandlePlan,
	)

	s.AddTool(
		mcp.NewTool("adbind/validate",
			mcp.WithDescription("Validate a binding manifest YAML file"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the binding manifest YAML file")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("adbind/schema",
			mcp.WithDescription("Export the binding manifest JSON Schema"),
		),
		HandleSchema,
	)

	s.AddTool(
		mcp.NewTool("adbind/properties",
			mcp.WithDescription("List the binding properties with their dsconfigad labels and flags"),
		),
		HandleProperties,
	)

	return s
}

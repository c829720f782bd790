// Package main provides the adbind-mcp binary, an MCP server exposing
// read-only binding tools to AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/adbind/pkg/dsconfigad"
	amcp "github.com/ormasoftchile/adbind/pkg/ecosystem/mcp"
	"github.com/ormasoftchile/adbind/pkg/providers"
	"github.com/ormasoftchile/adbind/pkg/state"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	tool := os.Getenv("ADBIND_TOOL")
	client := dsconfigad.New(tool, &providers.RealExecutor{})
	h := &amcp.Handlers{Reader: state.NewReader(client), Tool: client.Path}

	s := amcp.NewServer(version, h)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/adbind/pkg/dsconfigad"
	"github.com/ormasoftchile/adbind/pkg/governance"
	"github.com/ormasoftchile/adbind/pkg/property"
	"github.com/ormasoftchile/adbind/pkg/reconcile"
	"github.com/ormasoftchile/adbind/pkg/schema"
)

// Handlers serve the tools that read host state.
type Handlers struct {
	Reader reconcile.SnapshotReader
	// Tool is the path checked against a manifest's governance policy;
	// empty means dsconfigad.DefaultPath.
	Tool string
	// Getenv resolves usernameEnv/passwordEnv; nil uses os.Getenv.
	Getenv func(string) string
}

// HandleStatus implements the adbind/status MCP tool.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.Reader.Read(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(snap.View(), false), nil
}

// HandlePlan implements the adbind/plan MCP tool.
func (h *Handlers) HandlePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	m, errs := schema.ValidateFile(path)
	if schema.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	policy := m.Governance
	tool := h.Tool
	if tool == "" {
		tool = dsconfigad.DefaultPath
	}
	if err := governance.NewGovernanceEngine(policy).CheckCommand(tool); err != nil {
		return errorResult(err.Error()), nil
	}
	var rules []schema.RedactionRule
	if policy != nil {
		rules = policy.Redact
	}
	redactor, err := governance.NewRedactor(rules)
	if err != nil {
		return errorResult(fmt.Sprintf("compile redaction rules: %v", err)), nil
	}

	getenv := h.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	d, err := reconcile.FromManifest(&m.Binding, getenv)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	r := reconcile.New(nil, h.Reader)
	plan, snap, err := r.Plan(ctx, d)
	if err != nil {
		return errorResult(redactor.Text(err.Error())), nil
	}

	response := map[string]any{
		"action":  plan.Action,
		"current": snap.View(),
	}
	if len(plan.Changes) > 0 {
		response["changes"] = plan.Changes
	}
	if plan.Reason != "" {
		response["reason"] = redactor.Text(plan.Reason)
	}
	cmd, err := reconcile.Command(plan, d)
	if err != nil {
		response["error"] = redactor.Text(err.Error())
	} else if cmd != "" {
		response["command"] = "dsconfigad " + redactor.Text(cmd)
	}
	return jsonResult(response, err != nil || plan.Action == reconcile.ActionConflict), nil
}

// HandleValidate implements the adbind/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	m, errs := schema.ValidateFile(path)
	if schema.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}
	msg := fmt.Sprintf("✓ %s is valid (ensure %s, %d properties)", m.Binding.Name, m.Binding.EnsureOrDefault(), len(m.Binding.Properties))
	for _, e := range errs {
		msg += fmt.Sprintf("\nwarning: %s: %s", e.Path, e.Message)
	}
	return textResult(msg), nil
}

// HandleSchema implements the adbind/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleProperties implements the adbind/properties MCP tool.
func HandleProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type row struct {
		Key          property.Key  `json:"key"`
		Label        string        `json:"label"`
		Flag         string        `json:"flag"`
		Kind         property.Kind `json:"kind"`
		Enum         []string      `json:"enum,omitempty"`
		NoFlag       bool          `json:"noflag,omitempty"`
		Configurable bool          `json:"configurable"`
	}
	var rows []row
	for _, d := range property.All() {
		rows = append(rows, row{d.Key, d.Label, d.Flag, d.Kind, d.Enum, d.NoFlag, d.Configurable})
	}
	return jsonResult(rows, false), nil
}

func formatErrors(errs []*schema.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "error" {
			msgs = append(msgs, fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message))
		}
	}
	return strings.Join(msgs, "; ")
}

func jsonResult(v any, isErr bool) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: isErr,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}

package batch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vvve011/duplicator/domsynth"
	"github.com/vvve011/duplicator/kit"
)

// HistoryFunc supplies run history to the duplicator_history tool. The
// orchestrator itself keeps no history; callers wire in a runlog store.
type HistoryFunc func(ctx context.Context, limit int) (any, error)

// RegisterMCP registers the duplicator tools on an MCP server. history may
// be nil, in which case duplicator_history is not offered.
func (o *Orchestrator) RegisterMCP(srv *mcp.Server, history HistoryFunc) {
	o.registerRunTool(srv)
	o.registerDetectTool(srv)
	o.registerGenerateTool(srv)
	if history != nil {
		registerHistoryTool(srv, history)
	}
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- run ---

type runReq struct {
	Archives  []string `json:"archives"`
	Copies    int      `json:"copies"`
	Zone      string   `json:"zone"`
	OutputDir string   `json:"output_dir"`
}

func (o *Orchestrator) registerRunTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "duplicator_run",
		Description: "Duplicate packaged websites: detect each archive's domain, synthesize replacement domains, rewrite and repackage copies, and bundle them.",
		InputSchema: inputSchema(map[string]any{
			"archives":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Paths to source .zip/.rar archives"},
			"copies":     map[string]any{"type": "integer", "description": "Copies per archive (default 1)"},
			"zone":       map[string]any{"type": "string", "description": "Target zone: .com or .info (default .com)"},
			"output_dir": map[string]any{"type": "string", "description": "Directory for the master bundle"},
		}, []string{"archives", "output_dir"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*runReq)
		if r.Copies <= 0 {
			r.Copies = 1
		}
		zone, err := parseZoneOrDefault(r.Zone)
		if err != nil {
			return nil, err
		}
		return o.ProcessMany(ctx, r.Archives, r.Copies, zone, r.OutputDir), nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r runReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if len(r.Archives) == 0 {
			return nil, fmt.Errorf("archives must not be empty")
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- detect ---

type detectReq struct {
	Archive string `json:"archive"`
}

func (o *Orchestrator) registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "duplicator_detect",
		Description: "Inspect an archive without rewriting: detected domain, site name, and per-domain mention statistics.",
		InputSchema: inputSchema(map[string]any{
			"archive": map[string]any{"type": "string", "description": "Path to a .zip/.rar archive"},
		}, []string{"archive"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*detectReq)
		return o.Inspect(ctx, r.Archive)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r detectReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- generate ---

type generateReq struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
	Zone   string `json:"zone"`
}

func (o *Orchestrator) registerGenerateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "duplicator_generate",
		Description: "Synthesize pseudo-random replacement domains resembling the given original.",
		InputSchema: inputSchema(map[string]any{
			"domain": map[string]any{"type": "string", "description": "Original domain to derive from"},
			"count":  map[string]any{"type": "integer", "description": "How many domains (default 1)"},
			"zone":   map[string]any{"type": "string", "description": "Target zone: .com or .info (default .com)"},
		}, []string{"domain"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*generateReq)
		if r.Count <= 0 {
			r.Count = 1
		}
		zone, err := parseZoneOrDefault(r.Zone)
		if err != nil {
			return nil, err
		}
		return map[string]any{"domains": o.GenerateDomains(r.Domain, r.Count, zone)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r generateReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- history ---

type historyReq struct {
	Limit int `json:"limit"`
}

func registerHistoryTool(srv *mcp.Server, history HistoryFunc) {
	tool := &mcp.Tool{
		Name:        "duplicator_history",
		Description: "List recent duplication runs from the run log.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max runs to return (default 50)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*historyReq)
		return history(ctx, r.Limit)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r historyReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func parseZoneOrDefault(s string) (domsynth.Zone, error) {
	if s == "" {
		return domsynth.ZoneCom, nil
	}
	return domsynth.ParseZone(s)
}

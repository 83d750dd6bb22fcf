package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all scopeflow MCP tools with the server
func RegisterTools(s *server.MCPServer) {
	// Tool 1: structure_cfg - block-structure reconstruction
	s.AddTool(mcp.NewTool("structure_cfg",
		mcp.WithDescription("Reconstruct the nested scope/basic/exception-handler block tree for every function CFG in the given documents"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a CFG document (*.cfg.yaml) or a directory of documents")),
		mcp.WithString("format",
			mcp.Description("Output format: text, json, yaml, csv, dot (default: json)")),
		mcp.WithBoolean("show_unreachable",
			mcp.Description("List nodes omitted from the tree (default: true)")),
	), HandleStructureCFG)

	// Tool 2: list_cfg_functions - enumerate functions without analyzing
	s.AddTool(mcp.NewTool("list_cfg_functions",
		mcp.WithDescription("List the function CFGs declared in the given documents, with node and region counts"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a CFG document (*.cfg.yaml) or a directory of documents")),
	), HandleListCFGFunctions)
}

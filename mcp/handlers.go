package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scopeflow/scopeflow/app"
	"github.com/scopeflow/scopeflow/domain"
	"github.com/scopeflow/scopeflow/service"
)

// newStructureUseCase wires a use case with the default service stack.
// The MCP server never writes reports itself, so no progress reporter is
// attached.
func newStructureUseCase() *app.StructureUseCase {
	return app.NewStructureUseCase(
		service.NewStructureService(),
		service.NewFileReader(),
		service.NewStructureFormatter(),
		service.NewStructureConfigurationLoader(),
		nil,
	)
}

// HandleStructureCFG handles the structure_cfg tool
func HandleStructureCFG(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	format := domain.OutputFormatJSON
	if raw, ok := args["format"].(string); ok && raw != "" {
		format = domain.OutputFormat(raw)
	}

	req := *domain.DefaultStructureRequest()
	req.Paths = []string{path}
	req.OutputFormat = format
	if show, ok := args["show_unreachable"].(bool); ok {
		req.ShowUnreachable = domain.BoolPtr(show)
	}

	response, err := newStructureUseCase().AnalyzeAndReturn(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	output, err := service.NewStructureFormatter().Format(response, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
	}

	return mcp.NewToolResultText(output), nil
}

// HandleListCFGFunctions handles the list_cfg_functions tool
func HandleListCFGFunctions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	fileReader := service.NewFileReader()
	req := domain.DefaultStructureRequest()
	files, err := fileReader.CollectCFGFiles([]string{path}, true, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to collect documents: %v", err)), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultError("no CFG documents found"), nil
	}

	var out string
	for _, file := range files {
		data, err := fileReader.ReadFile(file)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", file, err)), nil
		}
		doc, err := service.ParseCFGDocument(data)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse %s: %v", file, err)), nil
		}
		for _, fn := range doc.Functions {
			out += fmt.Sprintf("%s: %s (%d nodes, %d regions)\n", file, fn.Name, len(fn.Nodes), len(fn.Regions))
		}
	}

	return mcp.NewToolResultText(out), nil
}

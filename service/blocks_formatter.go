package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scopeflow/scopeflow/domain"
)

// StructureFormatterImpl implements the StructureFormatter interface
type StructureFormatterImpl struct{}

// NewStructureFormatter creates a new structure formatter service
func NewStructureFormatter() *StructureFormatterImpl {
	return &StructureFormatterImpl{}
}

// Format formats the structure response according to the specified format
func (f *StructureFormatterImpl) Format(response *domain.StructureResponse, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText:
		return f.formatText(response)
	case domain.OutputFormatJSON:
		return f.formatJSON(response)
	case domain.OutputFormatYAML:
		return f.formatYAML(response)
	case domain.OutputFormatCSV:
		return f.formatCSV(response)
	case domain.OutputFormatDOT:
		return f.formatDOT(response)
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted output to the writer
func (f *StructureFormatterImpl) Write(response *domain.StructureResponse, format domain.OutputFormat, writer io.Writer) error {
	output, err := f.Format(response, format)
	if err != nil {
		return err
	}

	if _, err := writer.Write([]byte(output)); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// formatText renders an indented tree per function
func (f *StructureFormatterImpl) formatText(response *domain.StructureResponse) (string, error) {
	var sb strings.Builder

	sb.WriteString("Block Structure Analysis\n")
	sb.WriteString("========================\n\n")

	for _, fn := range response.Functions {
		fmt.Fprintf(&sb, "%s (%s)\n", fn.Name, fn.FilePath)
		fmt.Fprintf(&sb, "  nodes: %d reachable of %d, max depth %d\n",
			fn.ReachableNodes, fn.TotalNodes, fn.MaxDepth)
		if len(fn.UnreachableNodes) > 0 {
			fmt.Fprintf(&sb, "  unreachable: %s\n", strings.Join(fn.UnreachableNodes, ", "))
		}
		writeBlockText(&sb, fn.Root, 1)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Summary: %d functions in %d files, %d nodes (%d unreachable), max depth %d\n",
		response.Summary.TotalFunctions,
		response.Summary.TotalFiles,
		response.Summary.TotalNodes,
		response.Summary.UnreachableNodes,
		response.Summary.MaxDepth)

	return sb.String(), nil
}

// writeBlockText renders one block tree node with indentation
func writeBlockText(sb *strings.Builder, node *domain.BlockNode, depth int) {
	if node == nil {
		return
	}
	indent := strings.Repeat("  ", depth)

	switch node.Kind {
	case domain.BlockKindBasic:
		fmt.Fprintf(sb, "%s- block %s", indent, node.NodeID)
		if len(node.Statements) > 0 {
			fmt.Fprintf(sb, " {%s}", strings.Join(node.Statements, "; "))
		}
		sb.WriteString("\n")
	case domain.BlockKindScope:
		fmt.Fprintf(sb, "%sscope:\n", indent)
		for _, child := range node.Children {
			writeBlockText(sb, child, depth+1)
		}
	case domain.BlockKindExceptionHandler:
		fmt.Fprintf(sb, "%stry:\n", indent)
		for _, child := range node.Protected.Children {
			writeBlockText(sb, child, depth+1)
		}
		for i, handler := range node.Handlers {
			fmt.Fprintf(sb, "%shandler %d:\n", indent, i+1)
			for _, child := range handler.Children {
				writeBlockText(sb, child, depth+1)
			}
		}
	}
}

// formatJSON formats the response as JSON
func (f *StructureFormatterImpl) formatJSON(response *domain.StructureResponse) (string, error) {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data) + "\n", nil
}

// formatYAML formats the response as YAML
func (f *StructureFormatterImpl) formatYAML(response *domain.StructureResponse) (string, error) {
	data, err := yaml.Marshal(response)
	if err != nil {
		return "", domain.NewOutputError("failed to marshal YAML", err)
	}
	return string(data), nil
}

// formatCSV emits one row per basic block, in tree order
func (f *StructureFormatterImpl) formatCSV(response *domain.StructureResponse) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write([]string{"file", "function", "node", "position", "depth"}); err != nil {
		return "", domain.NewOutputError("failed to write CSV", err)
	}

	for _, fn := range response.Functions {
		position := 0
		var walk func(node *domain.BlockNode, depth int) error
		walk = func(node *domain.BlockNode, depth int) error {
			if node == nil {
				return nil
			}
			switch node.Kind {
			case domain.BlockKindBasic:
				row := []string{
					fn.FilePath,
					fn.Name,
					node.NodeID,
					fmt.Sprintf("%d", position),
					fmt.Sprintf("%d", depth),
				}
				position++
				return w.Write(row)
			case domain.BlockKindScope:
				for _, child := range node.Children {
					if err := walk(child, depth+1); err != nil {
						return err
					}
				}
			case domain.BlockKindExceptionHandler:
				if err := walk(node.Protected, depth+1); err != nil {
					return err
				}
				for _, handler := range node.Handlers {
					if err := walk(handler, depth+1); err != nil {
						return err
					}
				}
			}
			return nil
		}
		if err := walk(fn.Root, -1); err != nil {
			return "", domain.NewOutputError("failed to write CSV", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", domain.NewOutputError("failed to write CSV", err)
	}
	return sb.String(), nil
}

// formatDOT renders the block trees as a DOT digraph
func (f *StructureFormatterImpl) formatDOT(response *domain.StructureResponse) (string, error) {
	var sb strings.Builder
	sb.WriteString("digraph blocks {\n")
	sb.WriteString("  node [shape=box];\n")

	id := 0
	next := func() int {
		id++
		return id
	}

	for fi, fn := range response.Functions {
		fmt.Fprintf(&sb, "  subgraph cluster_%d {\n", fi)
		fmt.Fprintf(&sb, "    label=%q;\n", fn.Name)
		writeBlockDOT(&sb, fn.Root, next, 0)
		sb.WriteString("  }\n")
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// writeBlockDOT renders one block tree node and its subtree, linking the
// node to the DOT id of its parent (0 for none)
func writeBlockDOT(sb *strings.Builder, node *domain.BlockNode, next func() int, parent int) {
	if node == nil {
		return
	}
	id := next()

	switch node.Kind {
	case domain.BlockKindBasic:
		fmt.Fprintf(sb, "    b%d [label=%q];\n", id, node.NodeID)
	case domain.BlockKindScope:
		fmt.Fprintf(sb, "    b%d [label=\"scope\" shape=folder];\n", id)
	case domain.BlockKindExceptionHandler:
		fmt.Fprintf(sb, "    b%d [label=\"try/catch\" shape=component];\n", id)
	}
	if parent != 0 {
		fmt.Fprintf(sb, "    b%d -> b%d;\n", parent, id)
	}

	switch node.Kind {
	case domain.BlockKindScope:
		for _, child := range node.Children {
			writeBlockDOT(sb, child, next, id)
		}
	case domain.BlockKindExceptionHandler:
		writeBlockDOT(sb, node.Protected, next, id)
		for _, handler := range node.Handlers {
			writeBlockDOT(sb, handler, next, id)
		}
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scopeflow/scopeflow/app"
	"github.com/scopeflow/scopeflow/domain"
	"github.com/scopeflow/scopeflow/service"
)

// StructureCommand represents the structure reconstruction command
type StructureCommand struct {
	// Output format flags (only one should be set)
	json bool
	yaml bool
	csv  bool
	dot  bool

	outputPath      string
	sortBy          string
	showUnreachable bool
	noCache         bool
	configFile      string
}

// NewStructureCommand creates a new structure command
func NewStructureCommand() *StructureCommand { return &StructureCommand{} }

// NewStructureCmd creates the cobra command for structure reconstruction
func NewStructureCmd() *cobra.Command {
	c := NewStructureCommand()

	cmd := &cobra.Command{
		Use:   "structure [paths...]",
		Short: "Reconstruct block structure from CFG documents",
		Long: `Reconstruct the nested scope/basic/exception-handler block tree for
every function CFG found in the given documents or directories.

Examples:
  scopeflow structure graphs/
  scopeflow structure --json graphs/main.cfg.yaml | jq .
  scopeflow structure --dot graphs/ > blocks.dot`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	cmd.Flags().BoolVar(&c.json, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Output as YAML")
	cmd.Flags().BoolVar(&c.csv, "csv", false, "Output as CSV (one row per basic block)")
	cmd.Flags().BoolVar(&c.dot, "dot", false, "Output as a DOT digraph")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write the report to a file")
	cmd.Flags().StringVar(&c.sortBy, "sort", "", "Sort results by: file, name, nodes")
	cmd.Flags().BoolVar(&c.showUnreachable, "show-unreachable", true, "List nodes omitted from the tree")
	cmd.Flags().BoolVar(&c.noCache, "no-cache", false, "Disable the parsed-document cache")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path (.scopeflow.toml)")
	return cmd
}

// run executes the structure command
func (c *StructureCommand) run(cmd *cobra.Command, args []string) error {
	formatCount := 0
	if c.json {
		formatCount++
	}
	if c.yaml {
		formatCount++
	}
	if c.csv {
		formatCount++
	}
	if c.dot {
		formatCount++
	}
	if formatCount > 1 {
		return fmt.Errorf("only one of --json, --yaml, --csv, --dot can be specified")
	}

	explicit := GetExplicitFlags(cmd)

	req := domain.StructureRequest{
		Paths:        args,
		OutputFormat: c.outputFormat(),
		OutputWriter: cmd.OutOrStdout(),
		OutputPath:   c.outputPath,
		SortBy:       domain.StructureSortCriteria(c.sortBy),
		Recursive:    true,
		ConfigPath:   c.configFile,
	}
	// Flags left at their defaults stay unset so config file values apply.
	if explicit["show-unreachable"] {
		req.ShowUnreachable = domain.BoolPtr(c.showUnreachable)
	}
	if c.noCache {
		req.UseCache = domain.BoolPtr(false)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	useCase := app.NewStructureUseCase(
		service.NewStructureService(),
		service.NewFileReader(),
		service.NewStructureFormatter(),
		service.NewStructureConfigurationLoader(),
		service.NewProgressReporter(),
	)
	useCase.SetReportWriter(service.NewReportWriter())

	return useCase.Execute(ctx, req)
}

// outputFormat resolves the mutually exclusive format flags
func (c *StructureCommand) outputFormat() domain.OutputFormat {
	switch {
	case c.json:
		return domain.OutputFormatJSON
	case c.yaml:
		return domain.OutputFormatYAML
	case c.csv:
		return domain.OutputFormatCSV
	case c.dot:
		return domain.OutputFormatDOT
	default:
		return domain.OutputFormatText
	}
}

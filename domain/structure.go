package domain

import (
	"context"
	"io"
	"time"
)

// StructureSortCriteria represents the criteria for sorting structure results
type StructureSortCriteria string

const (
	StructureSortByName  StructureSortCriteria = "name"
	StructureSortByFile  StructureSortCriteria = "file"
	StructureSortByNodes StructureSortCriteria = "nodes"
)

// BlockKind discriminates the variants of a serialized block tree node
type BlockKind string

const (
	BlockKindBasic            BlockKind = "basic"
	BlockKindScope            BlockKind = "scope"
	BlockKindExceptionHandler BlockKind = "exception_handler"
)

// BlockNode is the serializable form of one node of a reconstructed block
// tree. Exactly the fields of its kind are populated.
type BlockNode struct {
	Kind BlockKind `json:"kind" yaml:"kind"`

	// Basic blocks
	NodeID     string   `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	Statements []string `json:"statements,omitempty" yaml:"statements,omitempty"`

	// Scope blocks
	Children []*BlockNode `json:"children,omitempty" yaml:"children,omitempty"`

	// Exception-handler blocks
	Protected *BlockNode   `json:"protected,omitempty" yaml:"protected,omitempty"`
	Handlers  []*BlockNode `json:"handlers,omitempty" yaml:"handlers,omitempty"`
}

// StructureRequest represents a request for block-structure reconstruction
type StructureRequest struct {
	// Input files or directories containing CFG documents
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string

	// Filtering and sorting
	SortBy StructureSortCriteria

	// Analysis options
	ShowUnreachable *bool // nil = use default (true), non-nil = explicitly set
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Configuration
	ConfigPath string

	// Cache of parsed CFG documents
	UseCache *bool // nil = use default (true), non-nil = explicitly set
}

// FunctionStructure represents the reconstructed block structure of a
// single function CFG
type FunctionStructure struct {
	// Function identification
	Name     string `json:"name" yaml:"name"`
	FilePath string `json:"file_path" yaml:"file_path"`

	// Root is the reconstructed scope tree
	Root *BlockNode `json:"root" yaml:"root"`

	// NodeOrder is the deterministic linear ordering the tree was built
	// from
	NodeOrder []string `json:"node_order" yaml:"node_order"`

	// Metrics
	TotalNodes     int     `json:"total_nodes" yaml:"total_nodes"`
	ReachableNodes int     `json:"reachable_nodes" yaml:"reachable_nodes"`
	MaxDepth       int     `json:"max_depth" yaml:"max_depth"`
	ReachableRatio float64 `json:"reachable_ratio" yaml:"reachable_ratio"`

	// UnreachableNodes lists nodes omitted from the tree
	UnreachableNodes []string `json:"unreachable_nodes,omitempty" yaml:"unreachable_nodes,omitempty"`
}

// StructureSummary aggregates results across all analyzed documents
type StructureSummary struct {
	TotalFiles       int `json:"total_files" yaml:"total_files"`
	TotalFunctions   int `json:"total_functions" yaml:"total_functions"`
	TotalNodes       int `json:"total_nodes" yaml:"total_nodes"`
	UnreachableNodes int `json:"unreachable_nodes" yaml:"unreachable_nodes"`
	MaxDepth         int `json:"max_depth" yaml:"max_depth"`
}

// StructureResponse represents the complete result of a structure analysis
type StructureResponse struct {
	Functions []FunctionStructure `json:"functions" yaml:"functions"`
	Summary   StructureSummary    `json:"summary" yaml:"summary"`

	// Metadata
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Version     string    `json:"version" yaml:"version"`
}

// StructureService defines the interface for block-structure reconstruction
type StructureService interface {
	// Analyze reconstructs block structures for all CFG documents in the
	// request
	Analyze(ctx context.Context, req StructureRequest) (*StructureResponse, error)

	// AnalyzeFile reconstructs block structures for a single CFG document
	AnalyzeFile(ctx context.Context, filePath string, req StructureRequest) ([]FunctionStructure, error)
}

// FileReader defines the interface for reading and collecting CFG documents
type FileReader interface {
	// CollectCFGFiles finds all CFG documents in the given paths, descending
	// into subdirectories only when recursive is set
	CollectCFGFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// ReadFile reads the content of a file
	ReadFile(path string) ([]byte, error)

	// IsValidCFGFile checks if a file is a CFG document
	IsValidCFGFile(path string) bool
}

// StructureFormatter defines the interface for formatting structure results
type StructureFormatter interface {
	// Format formats the response according to the specified format
	Format(response *StructureResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *StructureResponse, format OutputFormat, writer io.Writer) error
}

// StructureConfigurationLoader defines the interface for loading structure
// configuration
type StructureConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*StructureRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *StructureRequest

	// MergeConfig merges a loaded configuration with request values;
	// request values win
	MergeConfig(config *StructureRequest, req StructureRequest) StructureRequest
}

// DefaultStructureRequest returns a request populated with defaults
func DefaultStructureRequest() *StructureRequest {
	return &StructureRequest{
		OutputFormat:    OutputFormatText,
		SortBy:          StructureSortByFile,
		ShowUnreachable: BoolPtr(true),
		Recursive:       true,
		IncludePatterns: []string{"**/*.cfg.yaml", "**/*.cfg.yml"},
		ExcludePatterns: []string{},
		UseCache:        BoolPtr(true),
	}
}

// Validate validates the structure request
func (req *StructureRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewInvalidInputError("at least one path must be specified", nil)
	}

	// Empty format and sort criteria mean "use the configured default";
	// they are resolved during config merging.
	validFormats := map[OutputFormat]bool{
		"":               true,
		OutputFormatText: true,
		OutputFormatJSON: true,
		OutputFormatYAML: true,
		OutputFormatCSV:  true,
		OutputFormatDOT:  true,
	}
	if !validFormats[req.OutputFormat] {
		return NewInvalidInputError("invalid output format", nil)
	}

	validSortBy := map[StructureSortCriteria]bool{
		"":                   true,
		StructureSortByName:  true,
		StructureSortByFile:  true,
		StructureSortByNodes: true,
	}
	if !validSortBy[req.SortBy] {
		return NewInvalidInputError("invalid sort criteria", nil)
	}

	return nil
}

// BoolPtr creates a pointer to a boolean value
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue safely dereferences a boolean pointer, returning defaultVal if nil
func BoolValue(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

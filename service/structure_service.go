package service

import (
	"context"
	"sort"
	"time"

	"github.com/scopeflow/scopeflow/domain"
	"github.com/scopeflow/scopeflow/internal/analyzer"
	"github.com/scopeflow/scopeflow/internal/version"
)

// StructureServiceImpl implements the StructureService interface
type StructureServiceImpl struct {
	fileReader domain.FileReader
	cache      *ParseCache
	executor   domain.ParallelExecutor
}

// NewStructureService creates a new structure service
func NewStructureService() *StructureServiceImpl {
	return &StructureServiceImpl{
		fileReader: NewFileReader(),
		cache:      NewParseCache(),
		executor:   NewParallelExecutor(),
	}
}

// NewStructureServiceWithCache creates a structure service sharing the
// given parse cache
func NewStructureServiceWithCache(cache *ParseCache) *StructureServiceImpl {
	return &StructureServiceImpl{
		fileReader: NewFileReader(),
		cache:      cache,
		executor:   NewParallelExecutor(),
	}
}

// SetMaxConcurrency limits how many documents are analyzed at once
func (s *StructureServiceImpl) SetMaxConcurrency(max int) {
	s.executor.SetMaxConcurrency(max)
}

// Analyze reconstructs block structures for all CFG documents in the
// request. Documents are analyzed in parallel; results are assembled in
// path order before sorting, so output stays deterministic.
func (s *StructureServiceImpl) Analyze(ctx context.Context, req domain.StructureRequest) (*domain.StructureResponse, error) {
	response := &domain.StructureResponse{
		Functions:   []domain.FunctionStructure{},
		GeneratedAt: time.Now(),
		Version:     version.Short(),
	}

	results := make([][]domain.FunctionStructure, len(req.Paths))
	tasks := make([]domain.ExecutableTask, 0, len(req.Paths))
	for i, path := range req.Paths {
		i, path := i, path
		tasks = append(tasks, NewSimpleTask(path, true, func(ctx context.Context) (interface{}, error) {
			functions, err := s.AnalyzeFile(ctx, path, req)
			if err != nil {
				return nil, err
			}
			results[i] = functions
			return functions, nil
		}))
	}

	if err := s.executor.Execute(ctx, tasks); err != nil {
		return nil, err
	}

	for _, functions := range results {
		response.Functions = append(response.Functions, functions...)
	}

	sortFunctions(response.Functions, req.SortBy)
	response.Summary = summarize(req.Paths, response.Functions)
	return response, nil
}

// AnalyzeFile reconstructs block structures for a single CFG document
func (s *StructureServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.StructureRequest) ([]domain.FunctionStructure, error) {
	doc, err := s.loadDocument(filePath, domain.BoolValue(req.UseCache, true))
	if err != nil {
		return nil, err
	}

	showUnreachable := domain.BoolValue(req.ShowUnreachable, true)

	var functions []domain.FunctionStructure
	for _, fn := range doc.Functions {
		cfg, err := BuildCFG(fn)
		if err != nil {
			return nil, domain.NewMalformedCFGError(filePath, err)
		}

		fs, err := reconstruct(cfg, filePath, showUnreachable)
		if err != nil {
			return nil, domain.NewMalformedCFGError(filePath, err)
		}
		functions = append(functions, fs)
	}

	return functions, nil
}

// loadDocument reads and parses a CFG document, going through the parse
// cache when enabled
func (s *StructureServiceImpl) loadDocument(filePath string, useCache bool) (*CFGDocument, error) {
	if useCache && s.cache != nil {
		if doc, ok := s.cache.Get(filePath); ok {
			return doc, nil
		}
	}

	data, err := s.fileReader.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	doc, err := ParseCFGDocument(data)
	if err != nil {
		return nil, domain.NewParseError(filePath, err)
	}

	if useCache && s.cache != nil {
		s.cache.Put(filePath, doc)
	}
	return doc, nil
}

// reconstruct runs the ordering and scope reconstruction for one CFG and
// converts the result to its serializable form
func reconstruct(cfg *analyzer.CFG, filePath string, showUnreachable bool) (domain.FunctionStructure, error) {
	root, err := analyzer.BuildBlocks(cfg)
	if err != nil {
		return domain.FunctionStructure{}, err
	}

	order := analyzer.ReversePostOrder(cfg.Entry)
	orderIDs := make([]string, 0, len(order))
	for _, n := range order {
		orderIDs = append(orderIDs, n.ID)
	}

	reach := analyzer.NewReachabilityAnalyzer(cfg).AnalyzeReachability()

	fs := domain.FunctionStructure{
		Name:           cfg.Name,
		FilePath:       filePath,
		Root:           blockToNode(root),
		NodeOrder:      orderIDs,
		TotalNodes:     reach.TotalNodes,
		ReachableNodes: reach.ReachableCount,
		MaxDepth:       blockDepth(root),
		ReachableRatio: reach.GetReachabilityRatio(),
	}

	if showUnreachable && reach.HasUnreachableNodes() {
		ids := make([]string, 0, reach.UnreachableCount)
		for id := range reach.UnreachableNodes {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fs.UnreachableNodes = ids
	}

	return fs, nil
}

// blockToNode converts an analyzer block tree to the domain DTO
func blockToNode(b analyzer.Block) *domain.BlockNode {
	switch blk := b.(type) {
	case *analyzer.BasicBlock:
		return &domain.BlockNode{
			Kind:       domain.BlockKindBasic,
			NodeID:     blk.NodeID,
			Statements: blk.Statements,
		}
	case *analyzer.ScopeBlock:
		node := &domain.BlockNode{Kind: domain.BlockKindScope}
		for _, child := range blk.Children {
			node.Children = append(node.Children, blockToNode(child))
		}
		return node
	case *analyzer.ExceptionHandlerBlock:
		node := &domain.BlockNode{
			Kind:      domain.BlockKindExceptionHandler,
			Protected: blockToNode(blk.Protected),
		}
		for _, h := range blk.Handlers {
			node.Handlers = append(node.Handlers, blockToNode(h))
		}
		return node
	default:
		return nil
	}
}

// blockDepth returns the deepest scope nesting of the tree
func blockDepth(b analyzer.Block) int {
	switch blk := b.(type) {
	case *analyzer.BasicBlock:
		return 0
	case *analyzer.ScopeBlock:
		max := 0
		for _, child := range blk.Children {
			if d := blockDepth(child); d > max {
				max = d
			}
		}
		return max + 1
	case *analyzer.ExceptionHandlerBlock:
		max := blockDepth(blk.Protected)
		for _, h := range blk.Handlers {
			if d := blockDepth(h); d > max {
				max = d
			}
		}
		return max + 1
	default:
		return 0
	}
}

// sortFunctions orders results by the requested criteria
func sortFunctions(functions []domain.FunctionStructure, sortBy domain.StructureSortCriteria) {
	switch sortBy {
	case domain.StructureSortByName:
		sort.SliceStable(functions, func(i, j int) bool {
			return functions[i].Name < functions[j].Name
		})
	case domain.StructureSortByNodes:
		sort.SliceStable(functions, func(i, j int) bool {
			return functions[i].TotalNodes > functions[j].TotalNodes
		})
	default:
		sort.SliceStable(functions, func(i, j int) bool {
			if functions[i].FilePath != functions[j].FilePath {
				return functions[i].FilePath < functions[j].FilePath
			}
			return functions[i].Name < functions[j].Name
		})
	}
}

// summarize aggregates per-function results
func summarize(paths []string, functions []domain.FunctionStructure) domain.StructureSummary {
	summary := domain.StructureSummary{
		TotalFiles:     len(paths),
		TotalFunctions: len(functions),
	}
	for _, fn := range functions {
		summary.TotalNodes += fn.TotalNodes
		summary.UnreachableNodes += fn.TotalNodes - fn.ReachableNodes
		if fn.MaxDepth > summary.MaxDepth {
			summary.MaxDepth = fn.MaxDepth
		}
	}
	return summary
}

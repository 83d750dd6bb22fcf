package analyzer

// ReachabilityResult contains the results of reachability analysis
type ReachabilityResult struct {
	// ReachableNodes contains nodes that can be reached from entry
	ReachableNodes map[string]*Node

	// UnreachableNodes contains nodes that cannot be reached from entry
	UnreachableNodes map[string]*Node

	// TotalNodes is the total number of nodes analyzed
	TotalNodes int

	// ReachableCount is the number of reachable nodes
	ReachableCount int

	// UnreachableCount is the number of unreachable nodes
	UnreachableCount int
}

// ReachabilityAnalyzer reports which nodes the block reconstruction will
// omit. Unreachable nodes are not an error; they are simply absent from
// the output tree.
type ReachabilityAnalyzer struct {
	cfg *CFG
}

// NewReachabilityAnalyzer creates a new reachability analyzer for the given CFG
func NewReachabilityAnalyzer(cfg *CFG) *ReachabilityAnalyzer {
	return &ReachabilityAnalyzer{cfg: cfg}
}

// AnalyzeReachability performs reachability analysis starting from the
// entry node, following the same successor fan-out the sorter uses so the
// two always agree on what is reachable.
func (ra *ReachabilityAnalyzer) AnalyzeReachability() *ReachabilityResult {
	result := &ReachabilityResult{
		ReachableNodes:   make(map[string]*Node),
		UnreachableNodes: make(map[string]*Node),
	}

	if ra.cfg == nil || ra.cfg.Entry == nil || ra.cfg.Nodes == nil {
		return result
	}

	result.TotalNodes = len(ra.cfg.Nodes)

	for _, node := range ReversePostOrder(ra.cfg.Entry) {
		result.ReachableNodes[node.ID] = node
	}

	for id, node := range ra.cfg.Nodes {
		if _, ok := result.ReachableNodes[id]; !ok {
			result.UnreachableNodes[id] = node
		}
	}

	result.ReachableCount = len(result.ReachableNodes)
	result.UnreachableCount = len(result.UnreachableNodes)
	return result
}

// GetReachabilityRatio returns the ratio of reachable nodes to total nodes
func (result *ReachabilityResult) GetReachabilityRatio() float64 {
	if result.TotalNodes == 0 {
		return 1.0
	}
	return float64(result.ReachableCount) / float64(result.TotalNodes)
}

// HasUnreachableNodes returns true if any node is unreachable from entry
func (result *ReachabilityResult) HasUnreachableNodes() bool {
	return result.UnreachableCount > 0
}

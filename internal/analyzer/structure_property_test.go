package analyzer

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomCFG builds a random region-annotated CFG whose flow is consistent
// with its region tree: nodes are laid out by a structured walk (a region's
// nodes surround its sub-regions, protected code precedes handlers), the
// fall-through chain follows that layout, and extra edges only branch
// within the source's own region or outward to an enclosing one. Real
// programs never jump into the middle of a foreign region past its entry.
func randomCFG(rng *rand.Rand) *CFG {
	cfg := NewCFG("random")

	// Grow a random region tree. Only plain scope regions hold nodes
	// directly; try/catch regions hold them through their sub-regions.
	children := make(map[*Region][]*Region)
	assignable := []*Region{cfg.RootRegion}
	regionCount := 1 + rng.Intn(6)
	for i := 0; i < regionCount; i++ {
		parent := assignable[rng.Intn(len(assignable))]
		if rng.Intn(3) == 0 {
			tc := NewTryCatchRegion(parent)
			children[parent] = append(children[parent], tc)
			assignable = append(assignable, tc.Protected)
			for h := 0; h < 1+rng.Intn(2); h++ {
				assignable = append(assignable, tc.AddHandler())
			}
		} else {
			scope := NewScopeRegion(parent)
			children[parent] = append(children[parent], scope)
			assignable = append(assignable, scope)
		}
	}

	var nodes []*Node
	newNode := func(region *Region) {
		n := cfg.CreateNode(fmt.Sprintf("n%d", len(nodes)))
		n.Region = region
		n.AddStatement(fmt.Sprintf("stmt_%s", n.ID))
		if region.Entry == nil {
			region.Entry = n
		}
		nodes = append(nodes, n)
	}

	// Structured layout: every scope region opens with a node, its
	// sub-regions follow in order, and it may resume with more nodes
	// between and after them.
	var layout func(region *Region)
	layout = func(region *Region) {
		if region.Kind == RegionTryCatch {
			layout(region.Protected)
			for _, handler := range region.Handlers {
				layout(handler)
			}
			return
		}
		newNode(region)
		for _, child := range children[region] {
			layout(child)
			if rng.Intn(2) == 0 {
				newNode(region)
			}
		}
		if rng.Intn(2) == 0 {
			newNode(region)
		}
	}
	layout(cfg.RootRegion)

	// Fall-through chain along the layout keeps everything reachable.
	for i := 0; i+1 < len(nodes); i++ {
		cfg.ConnectNodes(nodes[i], nodes[i+1], EdgeFallThrough)
	}

	// Random extra edges, cycles included. Targets stay in the source's
	// own region or an enclosing one: real programs never branch into the
	// middle of a foreign region past its entry, and region annotations
	// are only meaningful for flow that respects region boundaries.
	extra := rng.Intn(len(nodes) + 1)
	for i := 0; i < extra; i++ {
		from := nodes[rng.Intn(len(nodes))]
		var candidates []*Node
		for _, to := range nodes {
			if to.Region.ContainsNode(from) {
				candidates = append(candidates, to)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		to := candidates[rng.Intn(len(candidates))]
		if rng.Intn(2) == 0 {
			cfg.ConnectNodes(from, to, EdgeCondTrue)
		} else {
			cfg.ConnectNodes(from, to, EdgeException)
		}
	}

	cfg.Entry = nodes[0]
	return cfg
}

// pathKinds walks the block tree and records, for every basic block, the
// container path from the root as a kind string ("scope" / "eh").
func pathKinds(b Block, prefix string, out map[string]string) {
	switch blk := b.(type) {
	case *BasicBlock:
		out[blk.NodeID] = prefix
	case *ScopeBlock:
		for _, child := range blk.Children {
			pathKinds(child, prefix+"scope.", out)
		}
	case *ExceptionHandlerBlock:
		pathKinds(blk.Protected, prefix+"eh.", out)
		for _, h := range blk.Handlers {
			pathKinds(h, prefix+"eh.", out)
		}
	}
}

// expectedPath renders a node's region chain in the same kind notation.
// The innermost region is the scope the basic block sits in.
func expectedPath(n *Node) string {
	path := ""
	for _, r := range n.Region.Chain() {
		if r.Kind == RegionTryCatch {
			path += "eh."
		} else {
			path += "scope."
		}
	}
	return path
}

func TestBuildBlocksRandomizedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		cfg := randomCFG(rng)

		root, err := BuildBlocks(cfg)
		require.NoError(t, err, "trial %d", trial)

		order := ReversePostOrder(cfg.Entry)

		// Every reachable node appears exactly once, in sorter order.
		require.Equal(t, nodeIDs(order), basicBlockIDs(root), "trial %d", trial)

		// The container path of each basic block mirrors the node's
		// region chain, with try/catch regions materialized as
		// exception-handler blocks.
		got := make(map[string]string)
		pathKinds(root, "", got)
		for _, n := range order {
			assert.Equal(t, expectedPath(n), got[n.ID], "trial %d node %s", trial, n.ID)
		}

		// Equal input yields an equal tree.
		again, err := BuildBlocks(cfg)
		require.NoError(t, err, "trial %d", trial)
		assert.Equal(t, root, again, "trial %d", trial)
	}
}

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicBlockIDs(root Block) []string {
	var ids []string
	for _, bb := range BasicBlocks(root) {
		ids = append(ids, bb.NodeID)
	}
	return ids
}

func TestBuildBlocksLinear(t *testing.T) {
	cfg := NewCFG("f")
	a := cfg.CreateNode("A")
	b := cfg.CreateNode("B")
	c := cfg.CreateNode("C")
	cfg.ConnectNodes(a, b, EdgeFallThrough)
	cfg.ConnectNodes(b, c, EdgeFallThrough)

	root, err := BuildBlocks(cfg)
	require.NoError(t, err)

	require.Len(t, root.Children, 3)
	assert.Equal(t, []string{"A", "B", "C"}, basicBlockIDs(root))
	for _, child := range root.Children {
		assert.IsType(t, &BasicBlock{}, child)
	}
}

func TestBuildBlocksNestedScope(t *testing.T) {
	cfg := NewCFG("f")
	inner := NewScopeRegion(cfg.RootRegion)

	a := cfg.CreateNode("A")
	x := cfg.CreateNode("X")
	x.Region = inner
	b := cfg.CreateNode("B")
	cfg.ConnectNodes(a, x, EdgeFallThrough)
	cfg.ConnectNodes(x, b, EdgeFallThrough)

	root, err := BuildBlocks(cfg)
	require.NoError(t, err)

	require.Len(t, root.Children, 3)
	assert.IsType(t, &BasicBlock{}, root.Children[0])
	scope, ok := root.Children[1].(*ScopeBlock)
	require.True(t, ok, "middle child should be a nested scope block")
	require.Len(t, scope.Children, 1)
	assert.Equal(t, "X", scope.Children[0].(*BasicBlock).NodeID)
	assert.Equal(t, "B", root.Children[2].(*BasicBlock).NodeID)
}

func TestBuildBlocksTryCatch(t *testing.T) {
	cfg := NewCFG("f")
	tc := NewTryCatchRegion(cfg.RootRegion)

	t1 := cfg.CreateNode("T1")
	t1.Region = tc.Protected
	t2 := cfg.CreateNode("T2")
	t2.Region = tc.Protected
	cfg.ConnectNodes(t1, t2, EdgeFallThrough)

	h := tc.AddHandler()
	h1 := cfg.CreateNode("H1")
	h1.Region = h
	h.Entry = h1

	root, err := BuildBlocks(cfg)
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	eh, ok := root.Children[0].(*ExceptionHandlerBlock)
	require.True(t, ok, "root should contain an exception-handler block")

	assert.Equal(t, []string{"T1", "T2"}, basicBlockIDs(eh.Protected))
	require.Len(t, eh.Handlers, 1)
	assert.Equal(t, []string{"H1"}, basicBlockIDs(eh.Handlers[0]))
}

func TestBuildBlocksMultipleHandlers(t *testing.T) {
	// Multiple handlers of one try region, each with more than one node.
	// Frames pushed for handler sub-regions must remember the handler
	// region that was actually entered, or the second node of a handler
	// would reopen a duplicate handler scope.
	cfg := NewCFG("f")
	tc := NewTryCatchRegion(cfg.RootRegion)

	t1 := cfg.CreateNode("T1")
	t1.Region = tc.Protected

	h1 := tc.AddHandler()
	h1a := cfg.CreateNode("H1A")
	h1a.Region = h1
	h1.Entry = h1a
	h1b := cfg.CreateNode("H1B")
	h1b.Region = h1
	cfg.ConnectNodes(h1a, h1b, EdgeFallThrough)

	h2 := tc.AddHandler()
	h2a := cfg.CreateNode("H2A")
	h2a.Region = h2
	h2.Entry = h2a
	h2b := cfg.CreateNode("H2B")
	h2b.Region = h2
	cfg.ConnectNodes(h2a, h2b, EdgeFallThrough)

	root, err := BuildBlocks(cfg)
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	eh := root.Children[0].(*ExceptionHandlerBlock)

	assert.Equal(t, []string{"T1"}, basicBlockIDs(eh.Protected))
	require.Len(t, eh.Handlers, 2, "each handler region opens exactly one handler scope")
	assert.Equal(t, []string{"H1A", "H1B"}, basicBlockIDs(eh.Handlers[0]))
	assert.Equal(t, []string{"H2A", "H2B"}, basicBlockIDs(eh.Handlers[1]))
}

func TestBuildBlocksNestedTry(t *testing.T) {
	// An inner try/catch nested in the outer protected region nests an
	// exception-handler block inside the outer protected scope block.
	cfg := NewCFG("f")
	outer := NewTryCatchRegion(cfg.RootRegion)
	inner := NewTryCatchRegion(outer.Protected)

	t1 := cfg.CreateNode("T1")
	t1.Region = inner.Protected

	innerH := inner.AddHandler()
	ih := cfg.CreateNode("IH")
	ih.Region = innerH
	innerH.Entry = ih

	outerH := outer.AddHandler()
	oh := cfg.CreateNode("OH")
	oh.Region = outerH
	outerH.Entry = oh

	root, err := BuildBlocks(cfg)
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	outerEH := root.Children[0].(*ExceptionHandlerBlock)

	require.Len(t, outerEH.Protected.Children, 1)
	innerEH, ok := outerEH.Protected.Children[0].(*ExceptionHandlerBlock)
	require.True(t, ok, "outer protected scope should contain the inner exception-handler block")

	assert.Equal(t, []string{"T1"}, basicBlockIDs(innerEH.Protected))
	require.Len(t, innerEH.Handlers, 1)
	assert.Equal(t, []string{"IH"}, basicBlockIDs(innerEH.Handlers[0]))

	require.Len(t, outerEH.Handlers, 1)
	assert.Equal(t, []string{"OH"}, basicBlockIDs(outerEH.Handlers[0]))
}

func TestBuildBlocksLeavesMultipleRegionsAtOnce(t *testing.T) {
	cfg := NewCFG("f")
	mid := NewScopeRegion(cfg.RootRegion)
	deep := NewScopeRegion(mid)

	x := cfg.CreateNode("X")
	x.Region = deep
	y := cfg.CreateNode("Y")
	cfg.ConnectNodes(x, y, EdgeFallThrough)

	root, err := BuildBlocks(cfg)
	require.NoError(t, err)

	// X sits two scopes deep; Y is appended directly to the root scope.
	require.Len(t, root.Children, 2)
	midScope := root.Children[0].(*ScopeBlock)
	deepScope := midScope.Children[0].(*ScopeBlock)
	assert.Equal(t, "X", deepScope.Children[0].(*BasicBlock).NodeID)
	assert.Equal(t, "Y", root.Children[1].(*BasicBlock).NodeID)
}

func TestBuildBlocksOrderMatchesSorter(t *testing.T) {
	cfg := NewCFG("f")
	tc := NewTryCatchRegion(cfg.RootRegion)

	a := cfg.CreateNode("A")
	t1 := cfg.CreateNode("T1")
	t1.Region = tc.Protected
	cfg.ConnectNodes(a, t1, EdgeFallThrough)

	h := tc.AddHandler()
	h1 := cfg.CreateNode("H1")
	h1.Region = h
	h.Entry = h1

	after := cfg.CreateNode("AFTER")
	cfg.ConnectNodes(t1, after, EdgeFallThrough)
	cfg.ConnectNodes(h1, after, EdgeFallThrough)

	root, err := BuildBlocks(cfg)
	require.NoError(t, err)

	assert.Equal(t, nodeIDs(ReversePostOrder(cfg.Entry)), basicBlockIDs(root))
}

func TestBuildBlocksCycleTerminates(t *testing.T) {
	cfg := NewCFG("f")
	a := cfg.CreateNode("A")
	b := cfg.CreateNode("B")
	c := cfg.CreateNode("C")
	cfg.ConnectNodes(a, b, EdgeFallThrough)
	cfg.ConnectNodes(b, c, EdgeFallThrough)
	cfg.ConnectNodes(c, b, EdgeCondTrue)

	root, err := BuildBlocks(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, basicBlockIDs(root))
}

func TestBuildBlocksDeterministic(t *testing.T) {
	build := func() *CFG {
		cfg := NewCFG("f")
		tc := NewTryCatchRegion(cfg.RootRegion)

		a := cfg.CreateNode("A")
		t1 := cfg.CreateNode("T1")
		t1.Region = tc.Protected
		cfg.ConnectNodes(a, t1, EdgeFallThrough)

		h := tc.AddHandler()
		h1 := cfg.CreateNode("H1")
		h1.Region = h
		h.Entry = h1
		return cfg
	}

	first, err := BuildBlocks(build())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		next, err := BuildBlocks(build())
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}

func TestBuildBlocksErrors(t *testing.T) {
	t.Run("NilCFG", func(t *testing.T) {
		_, err := BuildBlocks(nil)
		assert.Error(t, err)
	})

	t.Run("EmptyCFG", func(t *testing.T) {
		_, err := BuildBlocks(NewCFG("f"))
		assert.Error(t, err)
	})

	t.Run("MissingRegion", func(t *testing.T) {
		cfg := NewCFG("f")
		a := cfg.CreateNode("A")
		a.Region = nil

		_, err := BuildBlocks(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no region")
	})

	t.Run("DetachedRegionChain", func(t *testing.T) {
		cfg := NewCFG("f")
		a := cfg.CreateNode("A")
		a.Region = NewScopeRegion(nil) // not rooted at cfg.RootRegion

		_, err := BuildBlocks(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root region")
	})

	t.Run("UnlistedHandlerRegion", func(t *testing.T) {
		cfg := NewCFG("f")
		tc := NewTryCatchRegion(cfg.RootRegion)

		// A child of the try/catch region that is neither its protected
		// sub-region nor in its handler list is malformed input.
		rogue := &Region{Kind: RegionScope, Parent: tc}
		a := cfg.CreateNode("A")
		a.Region = rogue

		_, err := BuildBlocks(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "neither the protected sub-region nor a listed handler")
	})

	t.Run("NodeInTryCatchRegionItself", func(t *testing.T) {
		cfg := NewCFG("f")
		tc := NewTryCatchRegion(cfg.RootRegion)

		a := cfg.CreateNode("A")
		a.Region = tc

		assert.Panics(t, func() {
			_, _ = BuildBlocks(cfg)
		})
	})
}

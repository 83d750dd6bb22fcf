package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReachabilityAnalyzer(t *testing.T) {
	t.Run("AllReachable", func(t *testing.T) {
		cfg := NewCFG("f")
		a := cfg.CreateNode("A")
		b := cfg.CreateNode("B")
		cfg.ConnectNodes(a, b, EdgeFallThrough)

		result := NewReachabilityAnalyzer(cfg).AnalyzeReachability()
		assert.Equal(t, 2, result.ReachableCount)
		assert.Equal(t, 0, result.UnreachableCount)
		assert.False(t, result.HasUnreachableNodes())
		assert.Equal(t, 1.0, result.GetReachabilityRatio())
	})

	t.Run("UnreachableIsland", func(t *testing.T) {
		cfg := NewCFG("f")
		a := cfg.CreateNode("A")
		b := cfg.CreateNode("B")
		cfg.CreateNode("island")
		cfg.ConnectNodes(a, b, EdgeFallThrough)

		result := NewReachabilityAnalyzer(cfg).AnalyzeReachability()
		assert.Equal(t, 2, result.ReachableCount)
		require.Equal(t, 1, result.UnreachableCount)
		assert.True(t, result.HasUnreachableNodes())
		_, ok := result.UnreachableNodes["island"]
		assert.True(t, ok)
	})

	t.Run("HandlerReachableThroughSyntheticEdge", func(t *testing.T) {
		// The handler entry has no explicit predecessor; it is reachable
		// only through the synthetic edges from the protected region.
		cfg := NewCFG("f")
		tc := NewTryCatchRegion(cfg.RootRegion)

		t1 := cfg.CreateNode("T1")
		t1.Region = tc.Protected

		h := tc.AddHandler()
		h1 := cfg.CreateNode("H1")
		h1.Region = h
		h.Entry = h1

		result := NewReachabilityAnalyzer(cfg).AnalyzeReachability()
		assert.Equal(t, 2, result.ReachableCount)
		assert.False(t, result.HasUnreachableNodes())
	})

	t.Run("NilCFG", func(t *testing.T) {
		result := NewReachabilityAnalyzer(nil).AnalyzeReachability()
		assert.Equal(t, 0, result.TotalNodes)
		assert.Equal(t, 1.0, result.GetReachabilityRatio())
	})
}

package analyzer

import (
	"fmt"
)

// RegionKind distinguishes the region variants
type RegionKind int

const (
	// RegionScope is an anonymous lexical scope
	RegionScope RegionKind = iota
	// RegionTryCatch is an exception-handler region with a protected
	// sub-region and ordered handler sub-regions
	RegionTryCatch
)

// String returns string representation of RegionKind
func (k RegionKind) String() string {
	switch k {
	case RegionScope:
		return "scope"
	case RegionTryCatch:
		return "trycatch"
	default:
		return "unknown"
	}
}

// Region is a node in the tree of lexical scopes annotating the CFG.
// Every region except the root has a parent. A try/catch region owns
// exactly one protected sub-region and zero or more handler sub-regions;
// those sub-regions are precisely its children in the region tree.
type Region struct {
	// Kind discriminates scope regions from try/catch regions
	Kind RegionKind

	// Parent is the enclosing region, nil only for the CFG root region
	Parent *Region

	// Entry is the entry-point node of this region
	Entry *Node

	// Protected is the protected sub-region (try/catch regions only)
	Protected *Region

	// Handlers are the handler sub-regions in declaration order
	// (try/catch regions only)
	Handlers []*Region
}

// NewScopeRegion creates a plain scope region under the given parent
func NewScopeRegion(parent *Region) *Region {
	return &Region{
		Kind:   RegionScope,
		Parent: parent,
	}
}

// NewTryCatchRegion creates a try/catch region under the given parent,
// together with its protected sub-region
func NewTryCatchRegion(parent *Region) *Region {
	r := &Region{
		Kind:   RegionTryCatch,
		Parent: parent,
	}
	r.Protected = NewScopeRegion(r)
	return r
}

// AddHandler creates a new handler sub-region and appends it to the
// handler list
func (r *Region) AddHandler() *Region {
	h := NewScopeRegion(r)
	r.Handlers = append(r.Handlers, h)
	return h
}

// Chain returns the region chain from the root region down to this region
func (r *Region) Chain() []*Region {
	var chain []*Region
	for cur := r; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	// Reverse to root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Depth returns the number of regions on the chain from the root to this
// region, inclusive
func (r *Region) Depth() int {
	depth := 0
	for cur := r; cur != nil; cur = cur.Parent {
		depth++
	}
	return depth
}

// ContainsNode reports whether the node's innermost region is this region
// or one of its descendants
func (r *Region) ContainsNode(n *Node) bool {
	if n == nil {
		return false
	}
	for cur := n.Region; cur != nil; cur = cur.Parent {
		if cur == r {
			return true
		}
	}
	return false
}

// IsHandlerOf reports whether this region is one of parent's handler
// sub-regions
func (r *Region) IsHandlerOf(parent *Region) bool {
	for _, h := range parent.Handlers {
		if h == r {
			return true
		}
	}
	return false
}

// enclosingTryCatch returns the nearest try/catch region that encloses the
// given region, starting the search at the region itself
func enclosingTryCatch(r *Region) *Region {
	for cur := r; cur != nil; cur = cur.Parent {
		if cur.Kind == RegionTryCatch {
			return cur
		}
	}
	return nil
}

// String returns a string representation of the region
func (r *Region) String() string {
	if r.Kind == RegionTryCatch {
		return fmt.Sprintf("region(trycatch, %d handlers)", len(r.Handlers))
	}
	return "region(scope)"
}

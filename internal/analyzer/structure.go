package analyzer

import (
	"fmt"
)

// scopeFrame is one entry of the reconstruction stack. It mirrors a region
// that is currently open. Exactly one of target/wrapper is set: a plain
// frame appends children to its target scope block, while a try/catch
// wrapper frame owns an exception-handler block whose sub-scopes are
// entered by the frames pushed above it.
type scopeFrame struct {
	region  *Region
	target  *ScopeBlock
	wrapper *ExceptionHandlerBlock
}

// appendChild appends a block to the frame's scope. Appending to a
// try/catch wrapper frame means the region annotations and the stack have
// diverged, which is unrecoverable.
func (f *scopeFrame) appendChild(b Block) {
	if f.wrapper != nil {
		panic("analyzer: append to exception-handler frame; scope stack is corrupt")
	}
	f.target.Append(b)
}

// BuildBlocks reconstructs the lexical block structure of the CFG. Nodes
// are laid out in deterministic reverse post-order and folded into a tree
// of scope blocks that mirrors each node's region chain, with try/catch
// regions materialized as exception-handler blocks. The returned tree is
// owned by the caller; unreachable nodes are omitted.
func BuildBlocks(cfg *CFG) (*ScopeBlock, error) {
	if cfg == nil || cfg.Entry == nil {
		return nil, fmt.Errorf("cannot build blocks from nil or empty CFG")
	}

	root := NewScopeBlock()
	stack := []*scopeFrame{{region: cfg.RootRegion, target: root}}

	for _, node := range ReversePostOrder(cfg.Entry) {
		if node.Region == nil {
			return nil, fmt.Errorf("node %s has no region", node.ID)
		}

		if node.Region != stack[len(stack)-1].region {
			var err error
			stack, err = reconcile(stack, node, cfg.RootRegion)
			if err != nil {
				return nil, err
			}
		}

		stack[len(stack)-1].appendChild(NewBasicBlock(node))
	}

	return root, nil
}

// reconcile pops and pushes frames until the stack matches the node's
// region chain. Any number of regions can be left and entered in one step.
func reconcile(stack []*scopeFrame, node *Node, rootRegion *Region) ([]*scopeFrame, error) {
	chain := node.Region.Chain()
	if chain[0] != rootRegion {
		return nil, fmt.Errorf("node %s: region chain does not reach the CFG root region", node.ID)
	}

	// Keep the longest prefix of frames whose regions agree with the
	// chain. The root always agrees.
	common := 1
	for common < len(stack) && common < len(chain) && stack[common].region == chain[common] {
		common++
	}
	stack = stack[:common]

	for len(stack) < len(chain) {
		entered := chain[len(stack)]
		top := stack[len(stack)-1]

		switch {
		case entered.Kind == RegionTryCatch:
			wrapper := NewExceptionHandlerBlock()
			top.appendChild(wrapper)
			stack = append(stack, &scopeFrame{region: entered, wrapper: wrapper})

		case entered.Parent != nil && entered.Parent.Kind == RegionTryCatch:
			// Entering a sub-region of the try/catch wrapper on top of
			// the stack: reuse the protected scope, or open a new
			// handler scope.
			if top.wrapper == nil {
				return nil, fmt.Errorf("node %s: try/catch sub-region entered without its wrapper open", node.ID)
			}
			var target *ScopeBlock
			switch {
			case entered == entered.Parent.Protected:
				target = top.wrapper.Protected
			case entered.IsHandlerOf(entered.Parent):
				target = top.wrapper.AppendHandler()
			default:
				return nil, fmt.Errorf("node %s: region is neither the protected sub-region nor a listed handler of its try/catch parent", node.ID)
			}
			stack = append(stack, &scopeFrame{region: entered, target: target})

		default:
			scope := NewScopeBlock()
			top.appendChild(scope)
			stack = append(stack, &scopeFrame{region: entered, target: scope})
		}
	}

	return stack, nil
}

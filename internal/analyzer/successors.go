package analyzer

// orderedSuccessors returns the duplicate-free traversal fan-out of a node,
// in fixed priority order:
//
//  1. The fall-through successor.
//  2. Conditional successors in declaration order.
//  3. Abnormal successors in declaration order.
//  4. Handler entry points of every try/catch region whose protected
//     sub-region contains the node, innermost first.
//
// Step 4 makes every node inside a protected region a predecessor of each
// handler entry, so ordering can never place a handler body before its
// protected code. Steps 1-3 keep fall-through runs contiguous.
func orderedSuccessors(n *Node) []*Node {
	var out []*Node
	seen := make(map[*Node]bool)

	emit := func(succ *Node) {
		if succ == nil || seen[succ] {
			return
		}
		seen[succ] = true
		out = append(out, succ)
	}

	emit(n.FallThrough())
	for _, succ := range n.CondSuccessors() {
		emit(succ)
	}
	for _, succ := range n.AbnormalSuccessors() {
		emit(succ)
	}

	for e := enclosingTryCatch(n.Region); e != nil; e = enclosingTryCatch(e.Parent) {
		if e.Protected == nil || !e.Protected.ContainsNode(n) {
			continue
		}
		for _, handler := range e.Handlers {
			emit(handler.Entry)
		}
	}

	return out
}

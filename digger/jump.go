package digger

import "github.com/shenwei356/dbgasm/dbgraph"

// path is one candidate sequence explored during jump-over: the node
// chain from the fork (exclusive) to its current tip, plus the summed
// abundance used to pick a winner when two paths converge on the same
// node.
type path struct {
	nodes     []dbgraph.Node
	abundance uint64
	ambiguous bool
}

// jumpOver implements §4.6.2: breadth-first exploration of up to
// maxExtent bases from a fork, keeping at most one current path per
// ending node (ties broken by summed abundance, the loser's node marked
// ambiguous). Returns the unique non-ambiguous winning path, or nil if
// none exists within maxExtent depth / maxBranch frontier size.
func (d *Digger) jumpOver(start dbgraph.Node, maxExtent int) []dbgraph.Node {
	frontier := map[dbgraph.Node]*path{start: {nodes: nil, abundance: 0}}
	ambiguousNodes := map[dbgraph.Node]bool{}

	for depth := 0; depth < maxExtent; depth++ {
		if len(frontier) == 0 {
			return nil
		}
		if len(frontier) > d.Opt.maxBranch() {
			return nil
		}
		next := map[dbgraph.Node]*path{}
		for tip, p := range frontier {
			for _, s := range d.filterSuccessors(d.G.Successors(tip)) {
				if !d.goodNode(s.Node) {
					continue
				}
				cand := &path{
					nodes:     append(append([]dbgraph.Node{}, p.nodes...), s.Node),
					abundance: p.abundance + uint64(d.G.Abundance(s.Node)),
				}
				if existing, ok := next[s.Node]; ok {
					if cand.abundance > existing.abundance {
						next[s.Node] = cand
					}
					ambiguousNodes[s.Node] = true
				} else {
					next[s.Node] = cand
				}
			}
		}
		frontier = next

		// A unique, non-ambiguous path remains iff exactly one frontier
		// tip exists and it was never a convergence point.
		if len(frontier) == 1 {
			for tip, p := range frontier {
				if !ambiguousNodes[tip] {
					return p.nodes
				}
			}
		}
	}
	return nil
}

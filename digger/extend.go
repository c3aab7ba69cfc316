package digger

import "github.com/shenwei356/dbgasm/dbgraph"

// Extension is the result of walking right (or, for the reverse-complement
// start node, left) from a node: the claimed path and the node denied to
// this walk because another worker already owned it (0 if the walk simply
// ran out of good successors).
type Extension struct {
	Nodes  []dbgraph.Node
	Denied dbgraph.Node
}

// RightExtend repeats filtered-successor steps (simple when unambiguous,
// jump-over when forked) from start, claiming each new node via
// set_visited(node,1,0), until no further good step exists or a claim
// fails. The reciprocity check of §4.6.3 step 3 is approximated by
// requiring the stepped-to node's predecessor walk to include the
// previous tip; an unreciprocated step halts extension without being
// claimed.
func (d *Digger) RightExtend(start dbgraph.Node) Extension {
	var ext Extension
	tip := start
	for {
		succ := d.filterSuccessors(d.G.Successors(tip))
		succ = keepGood(d.G, succ, d.goodNode)
		if len(succ) == 0 {
			return ext
		}

		var next dbgraph.Node
		if len(succ) == 1 {
			next = succ[0].Node
		} else {
			nodes := d.jumpOver(tip, d.Opt.Jump)
			if len(nodes) == 0 {
				return ext
			}
			next = nodes[0]
		}

		if !d.reciprocates(tip, next) {
			return ext
		}

		if !d.G.SetVisited(next, dbgraph.Permanent, dbgraph.Free) {
			ext.Denied = next
			return ext
		}
		ext.Nodes = append(ext.Nodes, next)
		tip = next
	}
}

// LeftExtend is RightExtend on the reverse-complement of start, with the
// resulting node chain reverse-complemented and reversed back into the
// original orientation.
func (d *Digger) LeftExtend(start dbgraph.Node) Extension {
	rcExt := d.RightExtend(start.RevComp())
	out := Extension{Denied: rcExt.Denied.RevComp()}
	out.Nodes = make([]dbgraph.Node, len(rcExt.Nodes))
	for i, n := range rcExt.Nodes {
		out.Nodes[len(rcExt.Nodes)-1-i] = n.RevComp()
	}
	return out
}

func keepGood(g *dbgraph.Graph, succ []dbgraph.Successor, good func(dbgraph.Node) bool) []dbgraph.Successor {
	out := succ[:0]
	for _, s := range succ {
		if good(s.Node) {
			out = append(out, s)
		}
	}
	return out
}

// reciprocates implements the simplified reciprocity check of §4.6.3 step
// 3/4: next's predecessors, filtered the same way, must include tip.
func (d *Digger) reciprocates(tip, next dbgraph.Node) bool {
	preds := d.filterSuccessors(d.G.Predecessors(next))
	for _, p := range preds {
		if p.Node == tip {
			return true
		}
	}
	return len(preds) == 0
}

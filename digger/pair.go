package digger

import "github.com/shenwei356/dbgasm/dbgraph"

// PairResult is the outcome of attempting to connect one mate pair through
// the graph, per §4.6.5.
type PairResult struct {
	Connected bool
	Ambiguous bool
	Nodes     []dbgraph.Node // a, the connecting path, then b: first_node(a) to last_node(b), inclusive; the longer trail on a long overlap
}

// ConnectPair attempts to connect last_node(a) to first_node(b) (b already
// reverse-complemented by the caller) via bounded bidirectional BFS of
// depth <= insertSize. It cross-checks by solving the reverse-complement
// problem and accepts only matching results; it also accepts the
// "long overlap" case where one read's node trail is a suffix of the
// other's.
func (d *Digger) ConnectPair(a, b []dbgraph.Node, insertSize int) PairResult {
	if overlap, ok := longOverlap(a, b); ok {
		return PairResult{Connected: true, Nodes: overlap}
	}
	if len(a) == 0 || len(b) == 0 {
		return PairResult{}
	}
	lastA := a[len(a)-1]
	firstB := b[0]

	forward := d.boundedBFS(lastA, firstB, insertSize)
	if forward.Ambiguous {
		return PairResult{Ambiguous: true}
	}
	if forward.path == nil {
		return PairResult{}
	}

	// Cross-check via the reverse-complement problem: connecting
	// rc(first_node(b)) to rc(last_node(a)) must yield the same path,
	// reversed and complemented.
	back := d.boundedBFS(firstB.RevComp(), lastA.RevComp(), insertSize)
	if back.Ambiguous || back.path == nil {
		return PairResult{}
	}
	if !samePathReversed(forward.path, back.path) {
		return PairResult{}
	}

	nodes := append(append([]dbgraph.Node{}, a...), forward.path[1:]...)
	nodes = append(nodes, b[1:]...)
	return PairResult{Connected: true, Nodes: nodes}
}

type bfsResult struct {
	path      []dbgraph.Node
	Ambiguous bool
}

// boundedBFS explores forward from src, returning the unique shortest
// node-to-node path reaching dst within maxDepth steps, or Ambiguous if
// more than one path reaches dst at that depth. A node reached again after
// its first visit is skipped, so paths converging on an intermediate node
// are not compared and do not make the result Ambiguous.
func (d *Digger) boundedBFS(src, dst dbgraph.Node, maxDepth int) bfsResult {
	type frontierEntry struct {
		node dbgraph.Node
		path []dbgraph.Node
	}
	frontier := []frontierEntry{{node: src, path: []dbgraph.Node{src}}}
	visited := map[dbgraph.Node]bool{src: true}

	var found [][]dbgraph.Node
	for depth := 0; depth < maxDepth && len(found) == 0; depth++ {
		if len(frontier) == 0 {
			break
		}
		var next []frontierEntry
		for _, fe := range frontier {
			for _, s := range d.filterSuccessors(d.G.Successors(fe.node)) {
				if s.Node == dst {
					p := append(append([]dbgraph.Node{}, fe.path...), s.Node)
					found = append(found, p)
					continue
				}
				if visited[s.Node] {
					continue
				}
				visited[s.Node] = true
				next = append(next, frontierEntry{node: s.Node, path: append(append([]dbgraph.Node{}, fe.path...), s.Node)})
			}
		}
		frontier = next
	}
	if len(found) == 0 {
		return bfsResult{}
	}
	if len(found) > 1 {
		return bfsResult{Ambiguous: true}
	}
	return bfsResult{path: found[0]}
}

// longOverlap accepts the case where one read's node trail is a suffix of
// the other's, letting the pair be concatenated by overlap without a
// graph walk.
func longOverlap(a, b []dbgraph.Node) ([]dbgraph.Node, bool) {
	if isSuffix(a, b) {
		return a, true
	}
	if isSuffix(b, a) {
		return b, true
	}
	return nil, false
}

func isSuffix(longer, shorter []dbgraph.Node) bool {
	if len(shorter) == 0 || len(shorter) > len(longer) {
		return false
	}
	offset := len(longer) - len(shorter)
	for i := range shorter {
		if longer[offset+i] != shorter[i] {
			return false
		}
	}
	return true
}

func samePathReversed(fwd, back []dbgraph.Node) bool {
	if len(fwd) != len(back) {
		return false
	}
	n := len(fwd)
	for i := 0; i < n; i++ {
		if fwd[i].RevComp() != back[n-1-i] {
			return false
		}
	}
	return true
}

package digger

import (
	"github.com/shenwei356/dbgasm/contigs"
	"github.com/shenwei356/dbgasm/dbgraph"
	"github.com/shenwei356/dbgasm/internal/jobqueue"
)

// GenerateSeeds implements §4.6.4: for every graph node not yet visited,
// if it clears the abundance gate and can be claimed, extend right and
// left; emit a contig unless both extensions are empty, both denied
// neighbors are 0, and the resulting length is below minLenForNewSeeds (in
// which case the claims are released to TemporaryHolding rather than
// emitted).
//
// Nodes are scanned in parallel over a bounded worker pool
// (internal/jobqueue.Pool), matching the "multithreaded per contig" scan
// described for the improvement iteration in §4.7.
func (d *Digger) GenerateSeeds(minLenForNewSeeds int, threads int) []*contigs.Contig {
	n := d.G.NumNodes()
	results := make([]*contigs.Contig, n)

	pool := jobqueue.New(threads)
	for i := 0; i < n; i++ {
		i := i
		pool.Go(func() error {
			results[i] = d.seedFrom(dbgraph.Node(2*(i+1)), minLenForNewSeeds)
			return nil
		})
	}
	pool.Wait()

	out := make([]*contigs.Contig, 0, n)
	for _, c := range results {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (d *Digger) seedFrom(start dbgraph.Node, minLenForNewSeeds int) *contigs.Contig {
	if d.G.VisitedState(start) != dbgraph.Free {
		return nil
	}
	if !d.goodNode(start) {
		return nil
	}
	if !d.G.SetVisited(start, dbgraph.Permanent, dbgraph.Free) {
		return nil
	}

	right := d.RightExtend(start)
	left := d.LeftExtend(start)

	if len(right.Nodes) == 0 && len(left.Nodes) == 0 && right.Denied == 0 && left.Denied == 0 {
		totalLen := d.G.K // just the seed node itself, no extension
		if totalLen < minLenForNewSeeds {
			// Release: demote the claim to temporary holding rather than
			// discard it outright, per §4.6.4.
			d.G.SetVisited(start, dbgraph.TemporaryHolding, dbgraph.Permanent)
			for _, node := range right.Nodes {
				d.G.SetVisited(node, dbgraph.TemporaryHolding, dbgraph.Permanent)
			}
			for _, node := range left.Nodes {
				d.G.SetVisited(node, dbgraph.TemporaryHolding, dbgraph.Permanent)
			}
			return nil
		}
	}

	nodes := make([]dbgraph.Node, 0, len(left.Nodes)+1+len(right.Nodes))
	nodes = append(nodes, left.Nodes...)
	nodes = append(nodes, start)
	nodes = append(nodes, right.Nodes...)

	seq := BuildSequence(d.G, nodes)
	c := contigs.New(seq, nodes)
	c.NextLeft = left.Denied
	c.NextRight = right.Denied
	c.LeftExtend = len(left.Nodes)
	c.RightExtend = len(right.Nodes)
	return c
}

// BuildSequence decodes a node trail into a base sequence: the first
// node's full k-mer, then one appended base per subsequent node (the base
// that reached it, recovered from its own k-mer's last base). Used both for
// seeded contigs here and for reconstructing a connected-pair insert from
// ConnectPair's node path.
func BuildSequence(g *dbgraph.Graph, nodes []dbgraph.Node) []byte {
	if len(nodes) == 0 {
		return nil
	}
	seq := append([]byte{}, g.Kmer(nodes[0]).Bytes()...)
	for _, n := range nodes[1:] {
		km := g.Kmer(n).Bytes()
		seq = append(seq, km[len(km)-1])
	}
	return seq
}

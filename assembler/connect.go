package assembler

import (
	"github.com/shenwei356/dbgasm/contigs"
	"github.com/shenwei356/dbgasm/dbgraph"
	"github.com/shenwei356/dbgasm/digger"
	"github.com/shenwei356/dbgasm/internal/jobqueue"
)

// connectAndExtend implements §4.7 step 4's extension: each old contig is
// extended right from its last k-mer and left from its first k-mer; no
// other flank k-mers are tried. When an extension stops at a denied node
// inside another contig's node trail, only this contig's RightLink or
// LeftLink is set to that contig; the other contig gets no link back and
// the two are not merged. Each contig is claimed via TryTake before
// being mutated, so two workers never extend the same contig at once.
func connectAndExtend(g *dbgraph.Graph, d *digger.Digger, cs []*contigs.Contig, opt Options) []*contigs.Contig {
	index := buildNodeIndex(cs)

	pool := jobqueue.New(opt.threads())
	for _, c := range cs {
		c := c
		pool.Go(func() error {
			extendOneContig(g, d, c, index, opt)
			return nil
		})
	}
	pool.Wait()

	return cs
}

// nodeLocation identifies one occurrence of a node within a contig's
// k-mer trail, used to detect when an extension walk has landed inside
// another contig (making it a connector rather than a bare extender).
type nodeLocation struct {
	contig *contigs.Contig
	pos    int
}

func buildNodeIndex(cs []*contigs.Contig) map[dbgraph.Node]nodeLocation {
	idx := make(map[dbgraph.Node]nodeLocation)
	for _, c := range cs {
		for i, n := range c.Kmers {
			if n != 0 {
				idx[n] = nodeLocation{contig: c, pos: i}
			}
		}
	}
	return idx
}

func extendOneContig(g *dbgraph.Graph, d *digger.Digger, c *contigs.Contig, index map[dbgraph.Node]nodeLocation, opt Options) {
	if !c.TryTake() {
		return
	}
	defer c.Release()

	window := opt.scanWindow()
	if window > len(c.Kmers) {
		window = len(c.Kmers)
	}

	if len(c.Kmers) > 0 {
		rightStart := c.Kmers[len(c.Kmers)-1]
		if rightStart != 0 {
			ext := d.RightExtend(rightStart)
			applyExtension(g, c, ext, index, true)
		}

		leftStart := c.Kmers[0]
		if leftStart != 0 {
			ext := d.LeftExtend(leftStart)
			applyExtension(g, c, ext, index, false)
		}
	}
	_ = window // unused: only the first and last k-mers are extended
}

// applyExtension appends (or prepends) a successful extension's nodes to
// c's trail and sequence, recording the denied neighbor when the walk
// stopped because another worker owned the next node (a connector, in
// spec terms, is the case where that denied node belongs to another
// contig already present in index; this minimal version records the
// link but does not yet splice the two contigs into one sequence).
func applyExtension(g *dbgraph.Graph, c *contigs.Contig, ext digger.Extension, index map[dbgraph.Node]nodeLocation, right bool) {
	if len(ext.Nodes) == 0 && ext.Denied == 0 {
		return
	}
	if right {
		c.NextRight = ext.Denied
		c.RightExtend += len(ext.Nodes)
		c.Kmers = append(c.Kmers, ext.Nodes...)
		for _, n := range ext.Nodes {
			km := g.Kmer(n).Bytes()
			c.Seq = append(c.Seq, km[len(km)-1])
		}
		if loc, ok := index[ext.Denied]; ok && loc.contig != c {
			c.RightLink = &contigs.Link{Parent: loc.contig, Shift: loc.pos}
		}
	} else {
		c.NextLeft = ext.Denied
		c.LeftExtend += len(ext.Nodes)
		prefixed := append([]dbgraph.Node{}, ext.Nodes...)
		c.Kmers = append(prefixed, c.Kmers...)
		newBases := make([]byte, len(ext.Nodes))
		for i, n := range ext.Nodes {
			newBases[i] = g.Kmer(n).Bytes()[0]
		}
		c.Seq = append(newBases, c.Seq...)
		if loc, ok := index[ext.Denied]; ok && loc.contig != c {
			c.LeftLink = &contigs.Link{Parent: loc.contig, Shift: -loc.pos}
		}
	}
}

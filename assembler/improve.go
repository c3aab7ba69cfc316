package assembler

import (
	"sort"

	"github.com/shenwei356/dbgasm/contigs"
	"github.com/shenwei356/dbgasm/dbgraph"
	"github.com/shenwei356/dbgasm/digger"
	"github.com/shenwei356/dbgasm/internal/jobqueue"
	"github.com/shenwei356/dbgasm/kmerval"
)

// minSeedLenFactor is the "length >= 3*K" new-seed floor of §4.7 step 2.
const minSeedLenFactor = 3

// markContigVisited walks every K-window of c's sequence, looks it up in
// g, and claims it Permanent, the "mark all k-mers of each contig as
// visited in the new graph" substep of the improvement iteration,
// parallelized per-contig per §4.7's "multithreaded per contig" note.
func markContigVisited(g *dbgraph.Graph, c *contigs.Contig) {
	seq := c.Seq
	k := g.K
	if len(seq) < k {
		return
	}
	for i := 0; i+k <= len(seq); i++ {
		km, err := kmerval.FromString(seq[i : i+k])
		if err != nil {
			continue
		}
		n := g.GetNodeKmer(km)
		if n != 0 {
			g.SetVisited(n, dbgraph.Permanent, dbgraph.Free)
		}
	}
}

// improve runs one "improvement iteration at K" (§4.7): port prior contigs
// into the new graph, generate new seeds, connect-and-extend, re-clip
// k-step seams, and re-canonicalize.
func improve(g *dbgraph.Graph, prior []*contigs.Contig, d *digger.Digger, opt Options) []*contigs.Contig {
	pool := jobqueue.New(opt.threads())
	for _, c := range prior {
		c := c
		pool.Go(func() error {
			markContigVisited(g, c)
			return nil
		})
	}
	pool.Wait()

	seeds := d.GenerateSeeds(minSeedLenFactor*g.K, opt.threads())

	merged := append([]*contigs.Contig{}, prior...)
	merged = append(merged, seeds...)

	connected := connectAndExtend(g, d, merged, opt)

	for _, c := range connected {
		reclip(c, g.K)
		c.LeftExtend, c.RightExtend = 0, 0
		c.Canonicalize()
	}

	sort.Slice(connected, func(i, j int) bool {
		return string(connected[i].Seq) < string(connected[j].Seq)
	})
	return connected
}

// reclip trims min(K, extend) bases from each end that was newly
// assembled this iteration but not yet double-checked across the
// k-step boundary, per §4.7 step 5.
func reclip(c *contigs.Contig, k int) {
	left := c.LeftExtend
	if left > k {
		left = k
	}
	right := c.RightExtend
	if right > k {
		right = k
	}
	if left+right >= len(c.Seq) {
		return
	}
	c.Seq = c.Seq[left : len(c.Seq)-right]
	kmerLeft := left
	kmerRight := right
	if kmerLeft+kmerRight < len(c.Kmers) {
		c.Kmers = c.Kmers[kmerLeft : len(c.Kmers)-kmerRight]
	}
}

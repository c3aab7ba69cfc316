package assembler

import (
	"github.com/shenwei356/dbgasm/contigs"
	"github.com/shenwei356/dbgasm/dbgraph"
	"github.com/shenwei356/dbgasm/digger"
	"github.com/shenwei356/dbgasm/kmercount"
	"github.com/shenwei356/dbgasm/logx"
	"github.com/shenwei356/dbgasm/reads"
)

// Result is everything Run produces: the final contig set and every graph
// built along the way (needed for the average-abundance annotation in the
// FASTA writer, which always reports against the first, smallest-K graph).
type Result struct {
	Contigs    []*contigs.Contig
	Graphs     []*dbgraph.Graph
	InsertSize int
}

// Run executes the §4.7 schedule end to end over store.
func Run(store *reads.Store, opt Options) (*Result, error) {
	res := &Result{}

	g0, err := buildGraph(store, opt.MinKmer, opt)
	if err != nil {
		return nil, err
	}
	if avgCount(g0) == 0 {
		return nil, ErrEmptyCoverage
	}
	res.Graphs = append(res.Graphs, g0)

	d0 := digger.New(g0, diggerOptions(opt))
	contigSet := improve(g0, nil, d0, opt)

	readLen := store.N50(50)
	maxKmer := estimateMaxKmer(store, opt, readLen, g0)

	// maxKmerPaired is the raw N50 of successful pair connections (§4.7
	// step 4's "estimate"), kept separate from insertSize (= 3 ·
	// maxKmerPaired) because step 6's trigger condition and its k schedule
	// both reference the unscaled value. It stays 0 - and so never trips
	// step 6 - whenever insert_size was given explicitly rather than
	// estimated, matching the original assembler's "computed only when
	// unknown" rule.
	var maxKmerPaired int
	insertSize := opt.InsertSize
	if opt.UsePairedEnds && insertSize == 0 {
		maxKmerPaired = estimateMaxKmerPaired(store, g0, opt)
		insertSize = 3 * maxKmerPaired
	}
	res.InsertSize = insertSize

	original := store

	if opt.Steps > 1 {
		for s := 1; s < opt.Steps; s++ {
			k := nearestOdd(float64(opt.MinKmer) + float64(s)*float64(maxKmer-opt.MinKmer)/float64(opt.Steps-1))
			g, err := buildGraph(store, k, opt)
			if err != nil {
				logx.Warnf("assembler: empty graph at k=%d, stopping further k increases", k)
				break
			}
			if avgCount(g) == 0 {
				logx.Warnf("assembler: average count 0 at k=%d, stopping further k increases", k)
				break
			}
			res.Graphs = append(res.Graphs, g)
			d := digger.New(g, diggerOptions(opt))
			contigSet = improve(g, contigSet, d, opt)
			store = cleanReads(store, contigSet, k, insertSize, opt.Jump, opt.scanWindow())
		}
	}

	if opt.UsePairedEnds && maxKmerPaired > 0 && float64(maxKmerPaired) > 1.5*float64(maxKmer) {
		contigSet = runLongKmerPairedSteps(original, res, contigSet, maxKmer, maxKmerPaired, insertSize, opt)
	}

	res.Contigs = contigSet
	return res, nil
}

// runLongKmerPairedSteps implements §4.7 step 6: reconnect pairs through
// every graph built so far, then run three more improvement iterations -
// at k = 1.25·maxKmer, the midpoint of that and maxKmerPaired, and
// maxKmerPaired itself (each rounded to the nearest odd) - over the reads recovered by
// reconnection rather than the original store, since only those inserts
// are long enough to be worth the extra k.
func runLongKmerPairedSteps(original *reads.Store, res *Result, contigSet []*contigs.Contig, maxKmer, maxKmerPaired, insertSize int, opt Options) []*contigs.Contig {
	connected := connectPairsIteratively(original, res.Graphs, opt, insertSize)
	if connected.ReadNum() == 0 {
		return contigSet
	}

	ks := []int{
		nearestOdd(1.25 * float64(maxKmer)),
		nearestOdd((1.25*float64(maxKmer) + float64(maxKmerPaired)) / 2),
		nearestOdd(float64(maxKmerPaired)),
	}
	for _, k := range ks {
		g, err := buildGraph(connected, k, opt)
		if err != nil {
			logx.Warnf("assembler: empty graph at k=%d during long-kmer paired steps, stopping", k)
			break
		}
		if avgCount(g) == 0 {
			logx.Warnf("assembler: average count 0 at k=%d during long-kmer paired steps, stopping", k)
			break
		}
		res.Graphs = append(res.Graphs, g)
		d := digger.New(g, diggerOptions(opt))
		contigSet = improve(g, contigSet, d, opt)
	}
	return contigSet
}

func buildGraph(store *reads.Store, k int, opt Options) (*dbgraph.Graph, error) {
	tab, err := kmercount.Count(store, kmercount.Options{
		K:           k,
		MinCount:    opt.MinCount,
		MemoryLimit: opt.MemoryLimit,
		Threads:     opt.threads(),
	})
	if err != nil {
		return nil, err
	}
	if len(tab.Entries) == 0 {
		return nil, ErrEmptyCoverage
	}
	return dbgraph.New(k, tab), nil
}

func avgCount(g *dbgraph.Graph) float64 {
	if len(g.Table.Entries) == 0 {
		return 0
	}
	var sum uint64
	for _, e := range g.Table.Entries {
		sum += uint64(e.Count())
	}
	return float64(sum) / float64(len(g.Table.Entries))
}

func diggerOptions(opt Options) digger.Options {
	low := opt.LowCount
	if low < opt.MinCount {
		low = opt.MinCount
	}
	return digger.Options{
		Fraction:   opt.Fraction,
		Jump:       opt.Jump,
		LowCount:   low,
		MaxBranch:  200,
		MaxExtent:  opt.Jump,
		ScanWindow: opt.scanWindow(),
	}
}

// estimateMaxKmer implements §4.7 step 3: starting from
// read_length+1-max_kmer_count/avg_count*(read_length-min_kmer+1), step
// down by 1 (keeping odd) until the counter at that K yields >= 100
// distinct k-mers and average count >= max_kmer_count, or min_kmer is
// reached.
func estimateMaxKmer(store *reads.Store, opt Options, readLen int, g0 *dbgraph.Graph) int {
	avg := avgCount(g0)
	if avg == 0 {
		return opt.MinKmer
	}
	start := float64(readLen+1) - float64(opt.MaxKmerCount)/avg*float64(readLen-opt.MinKmer+1)
	k := nearestOdd(start)
	if k > readLen {
		k = readLen
		if k%2 == 0 {
			k--
		}
	}
	for k > opt.MinKmer {
		tab, err := kmercount.Count(store, kmercount.Options{K: k, MinCount: opt.MinCount, MemoryLimit: opt.MemoryLimit, Threads: opt.threads()})
		if err == nil && len(tab.Entries) >= 100 {
			var sum uint64
			for _, e := range tab.Entries {
				sum += uint64(e.Count())
			}
			if float64(sum)/float64(len(tab.Entries)) >= float64(opt.MaxKmerCount) {
				return k
			}
		}
		k -= 2
	}
	return opt.MinKmer
}

// estimateMaxKmerPaired implements the estimation half of §4.7 step 4:
// sample up to 10,000 pairs, connect them through the min-K graph with
// upper bound 2000, and return the N50 of successful connection lengths
// (max_kmer_paired). The caller scales this by 3 for insert_size.
func estimateMaxKmerPaired(store *reads.Store, g *dbgraph.Graph, opt Options) int {
	d := digger.New(g, diggerOptions(opt))
	const sampleCap = 10000
	const upperBound = 2000

	var lens []int
	n := store.ReadNum()
	sampled := 0
	for i := 0; i+1 < n && sampled < sampleCap; i += 2 {
		mate, ok := store.Mate(i)
		if !ok || mate != i+1 {
			continue
		}
		sampled++
		a := readNodes(g, store.Read(i))
		b := readNodes(g, revCompSeq(store.Read(i+1)))
		if len(a) == 0 || len(b) == 0 {
			continue
		}
		res := d.ConnectPair(a, b, upperBound)
		if res.Connected && !res.Ambiguous {
			lens = append(lens, len(res.Nodes)+g.K-1)
		}
	}
	if len(lens) == 0 {
		return 0
	}
	return n50Ints(lens)
}

func readNodes(g *dbgraph.Graph, seq []byte) []dbgraph.Node {
	k := g.K
	if len(seq) < k {
		return nil
	}
	var nodes []dbgraph.Node
	for i := 0; i+k <= len(seq); i++ {
		n := g.GetNode(seq[i : i+k])
		if n != 0 {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func n50Ints(lens []int) int {
	cp := append([]int{}, lens...)
	for i := 1; i < len(cp); i++ {
		for j := i; j > 0 && cp[j-1] > cp[j]; j-- {
			cp[j-1], cp[j] = cp[j], cp[j-1]
		}
	}
	var total int
	for _, l := range cp {
		total += l
	}
	half := total / 2
	var running int
	for i := len(cp) - 1; i >= 0; i-- {
		running += cp[i]
		if running >= half {
			return cp[i]
		}
	}
	return 0
}

package digger

import (
	"testing"

	"github.com/shenwei356/dbgasm/dbgraph"
	"github.com/shenwei356/dbgasm/kmercount"
	"github.com/shenwei356/dbgasm/reads"
)

func buildDigger(t *testing.T, seqs []string, k int, minCount uint32) *Digger {
	t.Helper()
	s := reads.NewStore()
	for _, seq := range seqs {
		if _, err := s.Push([]byte(seq)); err != nil {
			t.Fatal(err)
		}
	}
	tab, err := kmercount.Count(s, kmercount.Options{K: k, MinCount: minCount})
	if err != nil {
		t.Fatal(err)
	}
	g := dbgraph.New(k, tab)
	return New(g, Options{Fraction: 0.1, Jump: 5, LowCount: 1, MaxBranch: 200, MaxExtent: 50})
}

func TestGoodNodeGatesOnLowCount(t *testing.T) {
	d := buildDigger(t, []string{"ACGTACGTACGT", "ACGTACGTACGT"}, 5, 1)
	n := d.G.GetNode([]byte("ACGTA"))
	if n == 0 {
		t.Fatal("expected node")
	}
	if !d.goodNode(n) {
		t.Errorf("expected repeated motif to be a good node")
	}
}

func TestFilterSuccessorsDropsLowAbundance(t *testing.T) {
	d := buildDigger(t, []string{"ACGTACGTACGT", "ACGTACGTACGT", "ACGTACGTACGT"}, 5, 1)
	n := d.G.GetNode([]byte("ACGTA"))
	succ := d.G.Successors(n)
	filtered := d.filterSuccessors(succ)
	if len(filtered) > len(succ) {
		t.Errorf("filtering must never grow the successor list")
	}
}

func TestRightExtendClaimsNodes(t *testing.T) {
	d := buildDigger(t, []string{"ACGTACGTACGTACGT"}, 5, 1)
	start := d.G.GetNode([]byte("ACGTA"))
	ext := d.RightExtend(start)
	for _, n := range ext.Nodes {
		if d.G.VisitedState(n) != dbgraph.Permanent {
			t.Errorf("expected claimed node to be Permanent")
		}
	}
}

func TestGenerateSeedsProducesContigs(t *testing.T) {
	d := buildDigger(t, []string{"ACGTTGCAACGTTGCAACGT"}, 5, 1)
	cs := d.GenerateSeeds(0, 2)
	if len(cs) == 0 {
		t.Fatal("expected at least one seed contig")
	}
	for _, c := range cs {
		for _, n := range c.Kmers {
			if n != 0 && d.G.Abundance(n) == 0 {
				t.Errorf("contig references a node absent from the graph")
			}
		}
	}
}

func TestLongOverlapAccepted(t *testing.T) {
	d := buildDigger(t, []string{"ACGTACGTACGT"}, 5, 1)
	n1 := d.G.GetNode([]byte("ACGTA"))
	n2 := d.G.GetNode([]byte("CGTAC"))
	a := []dbgraph.Node{n1, n2}
	b := []dbgraph.Node{n2}
	res := d.ConnectPair(a, b, 10)
	if !res.Connected {
		t.Errorf("expected long-overlap connection to succeed")
	}
}

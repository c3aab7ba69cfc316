package contigs

import (
	"bytes"
	"testing"

	"github.com/shenwei356/dbgasm/dbgraph"
	"github.com/shenwei356/dbgasm/kmercount"
	"github.com/shenwei356/dbgasm/reads"
)

func TestTryTakeRelease(t *testing.T) {
	c := &Contig{}
	if !c.TryTake() {
		t.Fatal("expected first TryTake to succeed")
	}
	if c.TryTake() {
		t.Fatal("expected second TryTake to fail")
	}
	c.Release()
	if !c.TryTake() {
		t.Fatal("expected TryTake to succeed after Release")
	}
}

func TestKAndInvariant(t *testing.T) {
	c := New([]byte("ACGTACG"), make([]dbgraph.Node, 3))
	if c.K() != 5 {
		t.Errorf("K() = %d, want 5", c.K())
	}
	if c.Len() != len(c.Kmers)+c.K()-1 {
		t.Errorf("seq length invariant violated")
	}
}

func TestCanonicalizePicksLexSmaller(t *testing.T) {
	c := New([]byte("TTTTT"), make([]dbgraph.Node, 1))
	c.Canonicalize()
	if string(c.Seq) != "AAAAA" {
		t.Errorf("expected canonicalized to AAAAA, got %s", c.Seq)
	}
}

func TestWriteFastaFiltersByMinLen(t *testing.T) {
	s := reads.NewStore()
	s.Push([]byte("ACGTACGTACGT"))
	tab, err := kmercount.Count(s, kmercount.Options{K: 5, MinCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	g := dbgraph.New(5, tab)

	short := New([]byte("ACGTA"), []dbgraph.Node{g.GetNode([]byte("ACGTA"))})
	long := New([]byte("ACGTACGTACGT"), make([]dbgraph.Node, 8))

	var buf bytes.Buffer
	if err := WriteFasta(&buf, []*Contig{short, long}, g, 10); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if bytes.Contains(buf.Bytes(), []byte("ACGTA\n")) {
		t.Errorf("short contig should have been filtered: %s", out)
	}
	if !bytes.Contains([]byte(out), []byte(">Contig_1_")) {
		t.Errorf("expected one contig record, got: %s", out)
	}
}

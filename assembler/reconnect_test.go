package assembler

import (
	"testing"

	"github.com/shenwei356/dbgasm/dbgraph"
	"github.com/shenwei356/dbgasm/kmercount"
	"github.com/shenwei356/dbgasm/reads"
)

func TestRevCompSeq(t *testing.T) {
	got := string(revCompSeq([]byte("ACGT")))
	if got != "ACGT" {
		t.Errorf("revCompSeq(ACGT) = %s, want ACGT", got)
	}
	got = string(revCompSeq([]byte("AACCGGTT")))
	if got != "AACCGGTT" {
		t.Errorf("revCompSeq(AACCGGTT) = %s, want AACCGGTT", got)
	}
	got = string(revCompSeq([]byte("ACGTACGTA")))
	if got != "TACGTACGT" {
		t.Errorf("revCompSeq(ACGTACGTA) = %s, want TACGTACGT", got)
	}
}

func TestConnectPairsIteratively(t *testing.T) {
	seq := "ACGTTGCATGCATCGATCGTAGCTAGCATCGATCGATGCATCGATG"
	mate := string(revCompSeq([]byte(seq[len(seq)-20:])))

	store := reads.NewStore()
	for i := 0; i < 5; i++ {
		if _, _, err := store.PushPaired([]byte(seq[:20]), []byte(mate)); err != nil {
			t.Fatal(err)
		}
	}

	// The graph is counted from the whole insert, so the k-mers between
	// the two mates exist for the pair walk to cross.
	full := reads.NewStore()
	for i := 0; i < 5; i++ {
		if _, err := full.Push([]byte(seq)); err != nil {
			t.Fatal(err)
		}
	}

	opt := Options{MinKmer: 9, MinCount: 1, LowCount: 1, Fraction: 0.1, Jump: 3, Threads: 1}
	tab, err := kmercount.Count(full, kmercount.Options{K: 9, MinCount: 1, Threads: 1})
	if err != nil {
		t.Fatal(err)
	}
	g := dbgraph.New(9, tab)

	connected := connectPairsIteratively(store, []*dbgraph.Graph{g}, opt, 100)
	if connected.ReadNum() == 0 {
		t.Fatal("expected at least one reconnected pair")
	}
}

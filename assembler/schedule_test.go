package assembler

import (
	"testing"

	"github.com/shenwei356/dbgasm/reads"
)

func buildStore(t *testing.T, seqs []string) *reads.Store {
	t.Helper()
	s := reads.NewStore()
	for _, seq := range seqs {
		if _, err := s.Push([]byte(seq)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestRunProducesContigs(t *testing.T) {
	seq := "ACGTTGCATGCATCGATCGTAGCTAGCATCGATCGATGCATCGATG"
	var seqs []string
	for i := 0; i < 5; i++ {
		seqs = append(seqs, seq)
	}
	s := buildStore(t, seqs)

	res, err := Run(s, Options{
		MinKmer:      9,
		Steps:        2,
		MinCount:     1,
		LowCount:     1,
		Fraction:     0.1,
		Jump:         3,
		MaxKmerCount: 3,
		Threads:      2,
		MinContig:    0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Graphs) == 0 {
		t.Fatal("expected at least one graph")
	}
	if len(res.Contigs) == 0 {
		t.Fatal("expected at least one contig")
	}
}

func TestRunEmptyCoverage(t *testing.T) {
	s := buildStore(t, []string{"ACGT"})
	_, err := Run(s, Options{MinKmer: 21, Steps: 1, MinCount: 1})
	if err != ErrEmptyCoverage {
		t.Errorf("expected ErrEmptyCoverage for a read shorter than K, got %v", err)
	}
}

func TestNearestOdd(t *testing.T) {
	cases := map[float64]int{20.0: 21, 21.4: 21, 22.6: 23}
	for in, want := range cases {
		if got := nearestOdd(in); got != want {
			t.Errorf("nearestOdd(%v) = %d, want %d", in, got, want)
		}
	}
}

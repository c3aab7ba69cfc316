package kmerval

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []string{"A", "ACGT", "ACGTACGTACGTACGTACGTACGTACGTACGT", "TTTTTTTTTTTTTTTTTTTTTTTTTTTTTTTTT"}
	for _, s := range cases {
		km, err := FromString([]byte(s))
		if err != nil {
			t.Fatalf("FromString(%q): %v", s, err)
		}
		if got := km.String(); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	seqs := []string{"ACGTA", "TTTTT", "AAAACCCCGGGGTTTT", "ACGTACGTACGTACGTACGTACGTACGTACGTA"}
	for _, s := range seqs {
		km, err := FromString([]byte(s))
		if err != nil {
			t.Fatal(err)
		}
		c1 := km.Canonical()
		c2 := c1.Canonical()
		if !c1.Equal(c2) {
			t.Errorf("canonicalize not idempotent for %q", s)
		}
		rc := km.RevComp()
		if !rc.Canonical().Equal(c1) {
			t.Errorf("canonicalize(rc(x)) != canonicalize(x) for %q", s)
		}
	}
}

func TestRevCompInvolution(t *testing.T) {
	seqs := []string{"ACGTA", "GATTACA", "ACGTACGTACGTACGTACGTACGTACGTACGTACGT"}
	for _, s := range seqs {
		km, _ := FromString([]byte(s))
		rc := km.RevComp()
		if !rc.RevComp().Equal(km) {
			t.Errorf("rc(rc(%q)) != original", s)
		}
	}
}

func TestShiftLeftBase(t *testing.T) {
	km, _ := FromString([]byte("ACGTA"))
	shifted, err := ShiftLeftBase(km, 'C')
	if err != nil {
		t.Fatal(err)
	}
	if shifted.String() != "CGTAC" {
		t.Errorf("ShiftLeftBase got %q, want CGTAC", shifted.String())
	}
}

func TestCompareTotalOrder(t *testing.T) {
	a, _ := FromString([]byte("AAAA"))
	c, _ := FromString([]byte("CCCC"))
	g, _ := FromString([]byte("GGGG"))
	if !a.Less(c) || !c.Less(g) {
		t.Errorf("expected A < C < G ordering")
	}
	if a.Compare(a) != 0 {
		t.Errorf("expected self-compare == 0")
	}
}

func TestWideKmer(t *testing.T) {
	// 40 bases: exercises the 2-word category.
	s := "ACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT"
	km, err := FromString([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	if km.nwords != 2 {
		t.Fatalf("expected 2-word category for K=%d, got %d", len(s), km.nwords)
	}
	if km.String() != s {
		t.Errorf("round trip got %q", km.String())
	}
	if !km.RevComp().RevComp().Equal(km) {
		t.Errorf("rc(rc(x)) != x for wide kmer")
	}
}

func TestHashStable(t *testing.T) {
	km, _ := FromString([]byte("ACGTACGT"))
	h1 := km.Hash()
	h2 := km.Hash()
	if h1 != h2 {
		t.Errorf("hash not stable across calls")
	}
	other, _ := FromString([]byte("ACGTACGA"))
	if km.Hash() == other.Hash() {
		t.Logf("hash collision between distinct kmers (rare but allowed)")
	}
}

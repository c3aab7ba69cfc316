package reads

import "testing"

func TestKmerIterOrderAndContent(t *testing.T) {
	s := NewStore()
	s.Push([]byte("ACGTACGT"))

	k := 5
	it := NewKmerIter(s, k)
	var got []string
	for {
		km, readIdx, ok := it.Next()
		if !ok {
			break
		}
		if readIdx != 0 {
			t.Errorf("unexpected read index %d", readIdx)
		}
		got = append(got, km.String())
	}

	// Forward windows of "ACGTACGT" (len 8, k=5): start 0..3 -> ACGTA,
	// CGTAC, GTACG, TACGT - iterated last-to-first per §4.2.
	want := []string{"TACGT", "GTACG", "CGTAC", "ACGTA"}
	if len(got) != len(want) {
		t.Fatalf("got %d kmers %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestKmerIterSkipsShortReads(t *testing.T) {
	s := NewStore()
	s.Push([]byte("ACG"))
	s.Push([]byte("ACGTACGT"))
	it := NewKmerIter(s, 5)
	count := 0
	for {
		_, readIdx, ok := it.Next()
		if !ok {
			break
		}
		if readIdx != 1 {
			t.Errorf("expected all kmers from read 1, got read %d", readIdx)
		}
		count++
	}
	if count != 4 {
		t.Errorf("expected 4 kmers, got %d", count)
	}
}

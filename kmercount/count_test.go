package kmercount

import (
	"testing"

	"github.com/shenwei356/dbgasm/kmerval"
	"github.com/shenwei356/dbgasm/reads"
)

func mustKmerFromString(t *testing.T, s string) kmerval.Kmer {
	t.Helper()
	km, err := kmerval.FromString([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return km
}

func mustPushRead(t *testing.T, s *reads.Store, seq string) {
	t.Helper()
	if _, err := s.Push([]byte(seq)); err != nil {
		t.Fatal(err)
	}
}

func TestCountBasic(t *testing.T) {
	s := reads.NewStore()
	// "ACGTACGTACGT" repeated across several reads so every 5-mer is seen
	// at least twice and survives MinCount=2.
	for i := 0; i < 4; i++ {
		mustPushRead(t, s, "ACGTACGTACGT")
	}

	tab, err := Count(s, Options{K: 5, MinCount: 2, Threads: 2, ChunkSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Entries) == 0 {
		t.Fatal("expected at least one entry")
	}
	for i := 1; i < len(tab.Entries); i++ {
		if !tab.Entries[i-1].Kmer.Less(tab.Entries[i].Kmer) && !tab.Entries[i-1].Kmer.Equal(tab.Entries[i].Kmer) {
			t.Errorf("table not sorted at index %d", i)
		}
	}
	for _, e := range tab.Entries {
		if e.Count() < 2 {
			t.Errorf("entry %s has count %d < MinCount", e.Kmer.String(), e.Count())
		}
	}
}

func TestCountMinCountFilters(t *testing.T) {
	s := reads.NewStore()
	mustPushRead(t, s, "ACGTACGTA")

	tab, err := Count(s, Options{K: 9, MinCount: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Entries) != 0 {
		t.Errorf("expected no entries to survive MinCount=5, got %d", len(tab.Entries))
	}
}

func TestCountInsufficientMemory(t *testing.T) {
	s := reads.NewStore()
	for i := 0; i < 50; i++ {
		mustPushRead(t, s, "ACGTACGTACGTACGTACGTACGTACGT")
	}
	_, err := Count(s, Options{K: 11, MinCount: 1, MemoryLimit: safetyMargin + 1})
	if err != ErrInsufficientMemory {
		t.Errorf("expected ErrInsufficientMemory, got %v", err)
	}
}

func TestCountBranching(t *testing.T) {
	s := reads.NewStore()
	for i := 0; i < 3; i++ {
		mustPushRead(t, s, "AAAACAAAAG")
	}
	tab, err := Count(s, Options{K: 4, MinCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	idx := tab.Find(mustKmerFromString(t, "AAAA"))
	if idx < 0 {
		t.Fatal("expected AAAA in table")
	}
	if tab.Entries[idx].BranchMask() == 0 {
		t.Errorf("expected AAAA to have at least one branch bit set")
	}
}

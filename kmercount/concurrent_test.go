package kmercount

import (
	"testing"

	"github.com/shenwei356/dbgasm/reads"
)

func TestCountConcurrentBasic(t *testing.T) {
	s := reads.NewStore()
	for i := 0; i < 4; i++ {
		mustPushRead(t, s, "ACGTACGTACGT")
	}

	tab, err := CountConcurrent(s, Options{K: 5, MinCount: 2, Threads: 2, ChunkSize: 2})
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

func TestCountConcurrentMatchesCount(t *testing.T) {
	s := reads.NewStore()
	for i := 0; i < 5; i++ {
		mustPushRead(t, s, "AAAACAAAAGAAAAT")
	}

	viaC3, err := Count(s, Options{K: 4, MinCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	viaC4, err := CountConcurrent(s, Options{K: 4, MinCount: 1})
	if err != nil {
		t.Fatal(err)
	}

	if len(viaC3.Entries) != len(viaC4.Entries) {
		t.Fatalf("entry count mismatch: C3=%d C4=%d", len(viaC3.Entries), len(viaC4.Entries))
	}
	for i, e := range viaC3.Entries {
		if !e.Kmer.Equal(viaC4.Entries[i].Kmer) {
			t.Errorf("entry %d kmer mismatch: C3=%s C4=%s", i, e.Kmer.String(), viaC4.Entries[i].Kmer.String())
			continue
		}
		if e.Count() != viaC4.Entries[i].Count() {
			t.Errorf("entry %d (%s) count mismatch: C3=%d C4=%d", i, e.Kmer.String(), e.Count(), viaC4.Entries[i].Count())
		}
		if e.BranchMask() != viaC4.Entries[i].BranchMask() {
			t.Errorf("entry %d (%s) branch mask mismatch: C3=%08b C4=%08b", i, e.Kmer.String(), e.BranchMask(), viaC4.Entries[i].BranchMask())
		}
	}
}

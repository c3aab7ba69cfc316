package chash

import (
	"sync"
	"testing"

	"github.com/shenwei356/dbgasm/kmerval"
)

func mustKmer(t *testing.T, s string) kmerval.Kmer {
	t.Helper()
	km, err := kmerval.FromString([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return km
}

func TestTableInsertAndLoad(t *testing.T) {
	tb := New(8)
	km := mustKmer(t, "ACGTA")

	if total := tb.Insert(km, true); total != 1 {
		t.Errorf("first Insert() = %d, want 1", total)
	}
	if total := tb.Insert(km, false); total != 2 {
		t.Errorf("second Insert() = %d, want 2", total)
	}

	count, ok := tb.Load(km)
	if !ok || count != 2 {
		t.Errorf("Load() = (%d, %v), want (2, true)", count, ok)
	}
	if got := tb.Entries(); got != 1 {
		t.Errorf("Entries() = %d, want 1 distinct k-mer", got)
	}
}

func TestTableOverflowPastInlineSlots(t *testing.T) {
	tb := New(1) // one bucket, forcing every distinct k-mer into it
	kmers := []string{"AAAAA", "CCCCC", "GGGGG", "TTTTT", "ACGTA", "TGCAT"}
	for _, s := range kmers {
		tb.Insert(mustKmer(t, s), true)
	}
	if got := tb.Entries(); int(got) != len(kmers) {
		t.Fatalf("Entries() = %d, want %d", got, len(kmers))
	}
	for _, s := range kmers {
		if count, ok := tb.Load(mustKmer(t, s)); !ok || count != 1 {
			t.Errorf("Load(%s) = (%d, %v), want (1, true)", s, count, ok)
		}
	}
}

func TestTableConcurrentInsertsAreConsistent(t *testing.T) {
	tb := New(4)
	km := mustKmer(t, "ACGTACGTA")

	const workers = 16
	const insertsPerWorker = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < insertsPerWorker; j++ {
				tb.Insert(km, true)
			}
		}()
	}
	wg.Wait()

	count, ok := tb.Load(km)
	if !ok || count != workers*insertsPerWorker {
		t.Errorf("Load() = (%d, %v), want (%d, true)", count, ok, workers*insertsPerWorker)
	}
}

func TestTableGrowsAndPreservesEntries(t *testing.T) {
	tb := New(2)
	const n = 500
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		s := syntheticKmer(i)
		seen[s] = true
		tb.Insert(mustKmer(t, s), true)
	}
	if got := tb.Entries(); int(got) != len(seen) {
		t.Fatalf("Entries() = %d, want %d distinct k-mers", got, len(seen))
	}
	for s := range seen {
		if _, ok := tb.Load(mustKmer(t, s)); !ok {
			t.Errorf("Load(%s) missing after growth", s)
		}
	}
}

func TestTableEachFiltersByMinCount(t *testing.T) {
	tb := New(8)
	rare := mustKmer(t, "AAAAA")
	common := mustKmer(t, "CCCCC")
	tb.Insert(rare, true)
	tb.Insert(common, true)
	tb.Insert(common, true)
	tb.Insert(common, false)

	var kept []Entry
	tb.Each(2, func(e Entry) { kept = append(kept, e) })
	if len(kept) != 1 {
		t.Fatalf("Each(minCount=2) returned %d entries, want 1", len(kept))
	}
	if !kept[0].Kmer.Equal(common) {
		t.Errorf("Each(minCount=2) kept %s, want CCCCC", kept[0].Kmer.String())
	}
	if kept[0].Total != 3 || kept[0].Plus != 2 {
		t.Errorf("kept entry = {Total:%d Plus:%d}, want {Total:3 Plus:2}", kept[0].Total, kept[0].Plus)
	}
}

// syntheticKmer maps i to a distinct 6-base string over {A,C,G,T}.
func syntheticKmer(i int) string {
	bases := [4]byte{'A', 'C', 'G', 'T'}
	buf := make([]byte, 6)
	for pos := range buf {
		buf[pos] = bases[i%4]
		i /= 4
	}
	return string(buf)
}

package kmercount

import (
	"github.com/shenwei356/dbgasm/internal/jobqueue"
	"github.com/twotwotwo/sorts"
)

// rawEntrySlice adapts []rawEntry to sort.Interface for
// github.com/twotwotwo/sorts, the parallel sort the teacher's own CLI
// selects via sorts.MaxProcs (unikmer/cmd/common.go) for exactly this kind
// of large in-memory sort.
type rawEntrySlice []rawEntry

func (s rawEntrySlice) Len() int      { return len(s) }
func (s rawEntrySlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s rawEntrySlice) Less(i, j int) bool {
	return s[i].kmer.Less(s[j].kmer)
}

// sortAndMergeBucket implements step 5: concatenate all per-chunk
// contributions for one bucket, sort, and scan-aggregate runs of equal
// k-mers, keeping only entries whose total count is at least minCount.
func sortAndMergeBucket(parts [][]rawEntry, minCount uint32) []rawEntry {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	all := make(rawEntrySlice, 0, n)
	for _, p := range parts {
		all = append(all, p...)
	}
	if len(all) == 0 {
		return nil
	}
	sorts.Quicksort(all)

	out := make([]rawEntry, 0, len(all))
	cur := all[0]
	for _, e := range all[1:] {
		if e.kmer.Equal(cur.kmer) {
			cur.total += e.total
			cur.plus += e.plus
			continue
		}
		if cur.total >= minCount {
			out = append(out, cur)
		}
		cur = e
	}
	if cur.total >= minCount {
		out = append(out, cur)
	}
	return out
}

// orderedRawEntry adapts rawEntry to jobqueue.Ordered for the final
// two-way/k-way merge tree (step 6), the generalization of
// unikmer/cmd/util-sort.go's codeEntryHeap merge from raw k-mer codes to
// rawEntry records.
type orderedRawEntry struct{ rawEntry }

func (o orderedRawEntry) Less(other interface{}) bool {
	return o.kmer.Less(other.(orderedRawEntry).kmer)
}

// mergeBuckets merges already-sorted per-bucket outputs into one globally
// sorted slice.
func mergeBuckets(buckets [][]rawEntry) []rawEntry {
	idx := make([]int, len(buckets))
	next := func(i int) (jobqueue.Ordered, bool) {
		if idx[i] >= len(buckets[i]) {
			return nil, false
		}
		e := buckets[i][idx[i]]
		idx[i]++
		return orderedRawEntry{e}, true
	}
	var out []rawEntry
	jobqueue.KWayMerge(len(buckets), next, func(o jobqueue.Ordered) {
		out = append(out, o.(orderedRawEntry).rawEntry)
	})
	return out
}

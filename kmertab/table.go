// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package kmertab implements the sorted k-mer table of component C3/C5: a
// canonical k-mer paired with a packed 64-bit counter word, and the
// abundance histogram derived from it.
package kmertab

import (
	"math"
	"sort"

	"github.com/shenwei356/dbgasm/kmerval"
)

// Packed counter word layout (§3):
//
//	bits  0..31  total count, clamped at 2^32-1
//	bits 32..39  8-bit branching mask (low nibble = forward, high = reverse)
//	bits 40..47  reserved
//	bits 48..63  16-bit quantized plus-strand fraction
const (
	countMask    = uint64(0xFFFFFFFF)
	branchShift  = 32
	branchMask   = uint64(0xFF) << branchShift
	fracShift    = 48
	fracMaxValue = uint64(65535)
)

// Entry is one row of the table: a canonical k-mer and its packed counters.
type Entry struct {
	Kmer    kmerval.Kmer
	Counter uint64
}

// Count returns the clamped 32-bit total count.
func (e Entry) Count() uint32 { return uint32(e.Counter & countMask) }

// BranchMask returns the 8-bit neighbor-existence mask (low nibble forward,
// high nibble reverse extensions).
func (e Entry) BranchMask() uint8 { return uint8((e.Counter & branchMask) >> branchShift) }

// PlusFraction returns the quantized plus-strand fraction as a float in
// [0,1].
func (e Entry) PlusFraction() float64 {
	q := (e.Counter >> fracShift) & fracMaxValue
	return float64(q) / float64(fracMaxValue)
}

// QuantizePlusFraction rounds frac (count_on_plus/total) to the nearest of
// 65536 buckets, matching round(frac*65535) (see Open Questions, §9): at
// frac=1.0 this yields exactly 65535, the maximum representable value, never
// overflowing into a 17th bit.
func QuantizePlusFraction(frac float64) uint16 {
	if frac <= 0 {
		return 0
	}
	if frac >= 1 {
		return uint16(fracMaxValue)
	}
	return uint16(math.Round(frac * float64(fracMaxValue)))
}

// PackCounter assembles a counter word from its three observable fields.
func PackCounter(count uint32, branch uint8, plusFrac uint16) uint64 {
	var w uint64
	if uint64(count) > countMask {
		w = countMask
	} else {
		w = uint64(count)
	}
	w |= uint64(branch) << branchShift
	w |= uint64(plusFrac) << fracShift
	return w
}

// SetBranchMask returns a counter word with its branch-mask field replaced.
func SetBranchMask(counter uint64, branch uint8) uint64 {
	return (counter &^ branchMask) | (uint64(branch) << branchShift)
}

// Table is the sorted, immutable-during-assembly array of Entry described in
// §3. It is built once per k by kmercount/chash and consumed read-only by
// dbgraph for the duration of one k's assembly.
type Table struct {
	Entries   []Entry
	Bins      []HistBin // abundance histogram, sorted by Count ascending
	Stranded  bool
}

// HistBin is one (count_value, number_of_kmers_with_that_count) pair.
type HistBin struct {
	Count int32
	Size  int64
}

// Len, Less and Swap make Table.Entries sortable by canonical k-mer value,
// the ordering the k-way merge in kmercount and binary search in dbgraph
// both rely on.
func (t *Table) Len() int      { return len(t.Entries) }
func (t *Table) Swap(i, j int) { t.Entries[i], t.Entries[j] = t.Entries[j], t.Entries[i] }
func (t *Table) Less(i, j int) bool {
	return t.Entries[i].Kmer.Less(t.Entries[j].Kmer)
}

// Sort orders Entries by canonical k-mer value.
func (t *Table) Sort() { sort.Sort(t) }

// Find returns the index of km in the sorted table, or -1 if absent.
func (t *Table) Find(km kmerval.Kmer) int {
	n := len(t.Entries)
	i := sort.Search(n, func(i int) bool { return !t.Entries[i].Kmer.Less(km) })
	if i < n && t.Entries[i].Kmer.Equal(km) {
		return i
	}
	return -1
}

// BuildHistogram recomputes Bins from Entries' total counts.
func (t *Table) BuildHistogram() {
	counts := make(map[int32]int64)
	for _, e := range t.Entries {
		c := int32(e.Count())
		counts[c]++
	}
	bins := make([]HistBin, 0, len(counts))
	for c, n := range counts {
		bins = append(bins, HistBin{Count: c, Size: n})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Count < bins[j].Count })
	t.Bins = bins
}

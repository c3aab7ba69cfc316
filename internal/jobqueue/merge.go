package jobqueue

import "container/heap"

// Ordered is any item that knows how to compare itself to another of the
// same type, the contract kmertab.Entry/kmerval.Kmer satisfy via Less.
type Ordered interface {
	Less(other interface{}) bool
}

type mergeEntry struct {
	src  int
	item Ordered
}

type mergeHeap []*mergeEntry

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool  { return h[i].item.Less(h[j].item) }
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(*mergeEntry)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// KWayMerge drains len(next) sorted sources in increasing order, calling
// emit for every item, the bounded-fan-in merge-tree shape of
// unikmer/cmd/util-sort.go's codeEntryHeap adapted from k-mer codes to any
// Ordered item (kmertab entries, in kmercount's case).
//
// next(i) returns the next item from source i, or (nil, false) when that
// source is exhausted.
func KWayMerge(nsources int, next func(i int) (Ordered, bool), emit func(Ordered)) {
	h := &mergeHeap{}
	heap.Init(h)
	for i := 0; i < nsources; i++ {
		if item, ok := next(i); ok {
			heap.Push(h, &mergeEntry{src: i, item: item})
		}
	}
	for h.Len() > 0 {
		top := heap.Pop(h).(*mergeEntry)
		emit(top.item)
		if item, ok := next(top.src); ok {
			heap.Push(h, &mergeEntry{src: top.src, item: item})
		}
	}
}

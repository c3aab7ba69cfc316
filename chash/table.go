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

package chash

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/shenwei356/dbgasm/kmerval"
)

// Slot status values, per §4.4's "per-slot atomic status byte (states
// {empty, reserved, key-written})".
const (
	slotEmpty uint32 = iota
	slotReserved
	slotWritten
)

// counters packs total and plus-strand observation counts into one 64-bit
// word (32 bits each) so both can be CAS-updated together; kmertab's own
// packed layout (count/branch/plus-fraction) is assembled later by ToTable,
// once every count is final and the plus fraction can be quantized.
type counters uint64

func newCounters(plusStrand bool) counters {
	if plusStrand {
		return 1<<32 | 1
	}
	return 1
}

func (c counters) total() uint32 { return uint32(c) }
func (c counters) plus() uint32  { return uint32(c >> 32) }

func (c counters) bump(plusStrand bool) counters {
	next := c + 1
	if plusStrand {
		next += 1 << 32
	}
	return next
}

type slot struct {
	status  uint32 // atomic
	kmer    kmerval.Kmer
	counter counters
}

type overflowNode struct {
	kmer    kmerval.Kmer
	counter counters
	next    unsafe.Pointer // *overflowNode, atomic
}

type bucket struct {
	slots    []slot
	overflow unsafe.Pointer // *overflowNode, atomic head
}

// Table is the open-addressed lock-free concurrent hash map of §4.4: a
// contiguous bucket array with inline per-slot CAS reservation and an
// atomic-head overflow forward list per bucket.
//
// Simplification from the source's design (recorded in DESIGN.md): rather
// than a fully lock-free cursor-based cooperative rehash where workers save
// a per-chunk cursor and the orchestrator reinserts all entries in parallel
// bucket-range jobs, growth here is a stop-the-world resize guarded by
// resizeMu: Insert/Load take its read lock (so inline-slot CAS and overflow
// CAS prepend stay lock-free against each other), and the one worker whose
// entry count crosses maxLoadFactor takes the write lock to double the
// bucket count and reinsert every entry single-threaded. Correct and far
// simpler to reason about; loses only the fully-concurrent-during-resize
// property the source's design targets.
type Table struct {
	resizeMu sync.RWMutex
	buckets  []bucket
	slotsPer int
	entries  int64 // atomic
	maxLoad  float64
}

const defaultSlotsPerBucket = 4
const defaultMaxLoadFactor = 0.75

// New allocates a Table sized for roughly numBuckets buckets.
func New(numBuckets int) *Table {
	if numBuckets < 1 {
		numBuckets = 1
	}
	t := &Table{
		buckets:  make([]bucket, numBuckets),
		slotsPer: defaultSlotsPerBucket,
		maxLoad:  defaultMaxLoadFactor,
	}
	for i := range t.buckets {
		t.buckets[i].slots = make([]slot, t.slotsPer)
	}
	return t
}

// Entries returns the number of distinct k-mers currently stored.
func (t *Table) Entries() int64 { return atomic.LoadInt64(&t.entries) }

// Insert records one occurrence of km (already canonicalized by the
// caller) and reports the post-increment total. plusStrand marks whether
// the raw k-mer matched its canonical form directly, the same convention
// kmercount's rawEntry.plus uses; ToTable quantizes the final plus/total
// ratio into kmertab's packed counter once counting is done.
func (t *Table) Insert(km kmerval.Kmer, plusStrand bool) (total uint32) {
	t.resizeMu.RLock()
	total = t.insertLocked(km, plusStrand)
	t.resizeMu.RUnlock()

	if float64(atomic.LoadInt64(&t.entries)) > float64(len(t.buckets)*t.slotsPer)*t.maxLoad {
		t.maybeGrow()
	}
	return total
}

func (t *Table) insertLocked(km kmerval.Kmer, plusStrand bool) uint32 {
	h := km.Hash()
	idx := h % uint64(len(t.buckets))
	b := &t.buckets[idx]

	for i := range b.slots {
		s := &b.slots[i]
		for {
			status := atomic.LoadUint32(&s.status)
			switch status {
			case slotEmpty:
				if atomic.CompareAndSwapUint32(&s.status, slotEmpty, slotReserved) {
					s.kmer = km
					s.counter = newCounters(plusStrand)
					atomic.StoreUint32(&s.status, slotWritten)
					atomic.AddInt64(&t.entries, 1)
					return s.counter.total()
				}
				continue // lost the CAS race, re-read status
			case slotReserved:
				continue // spin: another worker is writing this slot
			case slotWritten:
				if s.kmer.Equal(km) {
					return casIncrement(&s.counter, plusStrand)
				}
			}
			break // slotWritten with a different key: try next inline slot
		}
	}

	return t.insertOverflow(b, km, plusStrand)
}

// insertOverflow prepends to (or updates an existing node in) b's overflow
// forward list via atomic CAS, per §4.4 step 2.
func (t *Table) insertOverflow(b *bucket, km kmerval.Kmer, plusStrand bool) uint32 {
	for node := (*overflowNode)(atomic.LoadPointer(&b.overflow)); node != nil; node = (*overflowNode)(atomic.LoadPointer(&node.next)) {
		if node.kmer.Equal(km) {
			return casIncrement(&node.counter, plusStrand)
		}
	}

	newNode := &overflowNode{kmer: km, counter: newCounters(plusStrand)}
	for {
		head := atomic.LoadPointer(&b.overflow)
		newNode.next = head
		if atomic.CompareAndSwapPointer(&b.overflow, head, unsafe.Pointer(newNode)) {
			atomic.AddInt64(&t.entries, 1)
			return newNode.counter.total()
		}
		// lost the race: another insert may have just added km itself
		if existing := (*overflowNode)(head); existing != nil && existing.kmer.Equal(km) {
			return casIncrement(&existing.counter, plusStrand)
		}
	}
}

// casIncrement atomically increments *counter's total (and, if plusStrand,
// its plus-observation tally), returning the new total.
func casIncrement(counter *counters, plusStrand bool) uint32 {
	addr := (*uint64)(unsafe.Pointer(counter))
	for {
		old := counters(atomic.LoadUint64(addr))
		next := old.bump(plusStrand)
		if atomic.CompareAndSwapUint64(addr, uint64(old), uint64(next)) {
			return next.total()
		}
	}
}

// maybeGrow is the cooperative-rehash entry point: the caller already
// observed the load factor exceeded and races every other such caller to
// perform the resize under resizeMu's write lock; all but the winner's
// call becomes a no-op once they observe the table has already grown.
func (t *Table) maybeGrow() {
	t.resizeMu.Lock()
	defer t.resizeMu.Unlock()

	if float64(atomic.LoadInt64(&t.entries)) <= float64(len(t.buckets)*t.slotsPer)*t.maxLoad {
		return // another writer already grew the table
	}

	grown := New(len(t.buckets) * 2)
	grown.slotsPer = t.slotsPer
	grown.maxLoad = t.maxLoad

	t.eachEntry(func(km kmerval.Kmer, counter counters) {
		idx := km.Hash() % uint64(len(grown.buckets))
		b := &grown.buckets[idx]
		for i := range b.slots {
			if b.slots[i].status == slotEmpty {
				b.slots[i] = slot{status: slotWritten, kmer: km, counter: counter}
				grown.entries++
				return
			}
		}
		b.overflow = unsafe.Pointer(&overflowNode{kmer: km, counter: counter, next: b.overflow})
		grown.entries++
	})

	t.buckets = grown.buckets
}

// eachEntry visits every (kmer, counter) pair currently stored. Callers
// must already hold resizeMu (for write) or accept a racy snapshot.
func (t *Table) eachEntry(fn func(kmerval.Kmer, counters)) {
	for i := range t.buckets {
		b := &t.buckets[i]
		for j := range b.slots {
			s := &b.slots[j]
			if atomic.LoadUint32(&s.status) == slotWritten {
				fn(s.kmer, s.counter)
			}
		}
		for node := (*overflowNode)(atomic.LoadPointer(&b.overflow)); node != nil; node = (*overflowNode)(atomic.LoadPointer(&node.next)) {
			fn(node.kmer, node.counter)
		}
	}
}

// Load returns km's current count and whether it is present.
func (t *Table) Load(km kmerval.Kmer) (uint32, bool) {
	t.resizeMu.RLock()
	defer t.resizeMu.RUnlock()

	idx := km.Hash() % uint64(len(t.buckets))
	b := &t.buckets[idx]
	for i := range b.slots {
		s := &b.slots[i]
		if atomic.LoadUint32(&s.status) == slotWritten && s.kmer.Equal(km) {
			return s.counter.total(), true
		}
	}
	for node := (*overflowNode)(atomic.LoadPointer(&b.overflow)); node != nil; node = (*overflowNode)(atomic.LoadPointer(&node.next)) {
		if node.kmer.Equal(km) {
			return node.counter.total(), true
		}
	}
	return 0, false
}

// Entry is one (k-mer, total, plus-strand-observations) tuple as returned
// by Each, mirroring kmercount's internal rawEntry shape.
type Entry struct {
	Kmer  kmerval.Kmer
	Total uint32
	Plus  uint32
}

// Each visits every entry currently stored, filtering out any whose total
// falls below minCount (the spec's "on read, if every probe counter is
// already >= min_count commit the key" filter, applied here at drain time
// rather than per-insert since the hash table's own slots already give an
// exact count instead of a Bloom estimate).
func (t *Table) Each(minCount uint32, fn func(Entry)) {
	t.resizeMu.RLock()
	defer t.resizeMu.RUnlock()

	t.eachEntry(func(km kmerval.Kmer, c counters) {
		if c.total() < minCount {
			return
		}
		fn(Entry{Kmer: km, Total: c.total(), Plus: c.plus()})
	})
}

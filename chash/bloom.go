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

// Package chash implements C4, the alternative one-pass counting path of
// §4.4: a blocked counting Bloom pre-filter feeding an open-addressed
// lock-free concurrent hash map. Unlike kmercount's bucket-sort-merge
// counter (C3), every read is scanned exactly once by any number of
// concurrent workers sharing one table.
package chash

import "sync/atomic"

// counterBits is c, the width of one saturating counter packed into a
// block word; counterMax is its saturation value 2^c-1. Grounded on
// dgraph-io/ristretto's CBF (CBF_BITS=4, CBF_MAX=16), generalized from its
// fixed 3-row sketch to the spec's two-hash (h+, h-) double-probe scheme.
const (
	counterBits        = 4
	countersPerBlock    = 64 / counterBits
	counterMax   uint64 = 1<<counterBits - 1
)

// BloomFilter is the §4.4 blocked counting Bloom pre-filter: a vector of
// 64-bit blocks, each holding countersPerBlock saturating c-bit counters.
type BloomFilter struct {
	blocks    []uint64
	numBlocks uint64
	probes    int // k+1 probes per insert, per §4.4
}

// NewBloomFilter allocates a filter with numBlocks blocks and probes probes
// per insert (typically k+1, where k is the graph's k-mer length, so every
// probe threads through a position-dependent offset of the k-mer).
func NewBloomFilter(numBlocks uint64, probes int) *BloomFilter {
	if numBlocks == 0 {
		numBlocks = 1
	}
	if probes < 1 {
		probes = 1
	}
	return &BloomFilter{
		blocks:    make([]uint64, numBlocks),
		numBlocks: numBlocks,
		probes:    probes,
	}
}

// splitHash derives h+ and h- from the two halves of a 64-bit k-mer hash,
// per §4.4's "two hash functions ... derived from the two endian halves".
func splitHash(h uint64) (hiPlus, loMinus uint64) {
	return h >> 32, h & 0xffffffff
}

// probeLocation returns the block and in-block counter index of probe i.
func (b *BloomFilter) probeLocation(hPlus, hMinus uint64, i int) (block uint64, counter uint64) {
	block = hPlus % b.numBlocks
	counter = (hMinus + uint64(i)*hPlus) % countersPerBlock
	return
}

// incrementCounter performs one CAS-saturating increment of the counter at
// (block, counter) and returns its value before the increment.
func (b *BloomFilter) incrementCounter(block, counter uint64) uint64 {
	shift := counter * counterBits
	mask := counterMax << shift
	addr := &b.blocks[block]
	for {
		old := atomic.LoadUint64(addr)
		val := (old & mask) >> shift
		if val == counterMax {
			return val // saturated: no-op, per §4.4's "saturation at 2^c-1"
		}
		next := (old &^ mask) | ((val + 1) << shift)
		if atomic.CompareAndSwapUint64(addr, old, next) {
			return val
		}
	}
}

// readCounter loads the current value of the counter at (block, counter)
// without mutating it.
func (b *BloomFilter) readCounter(block, counter uint64) uint64 {
	shift := counter * counterBits
	old := atomic.LoadUint64(&b.blocks[block])
	return (old & (counterMax << shift)) >> shift
}

// Insert records one occurrence of the k-mer whose avalanche hash is h, and
// reports {new, aboveThreshold, existing} per §4.4's insert contract:
// new is true the first time this hash's estimate rises off zero; existing
// is its complement; aboveThreshold is true once every probe's counter has
// reached minCount (the filter's best estimate of a true >= minCount count,
// with the usual Bloom false-positive risk documented in §7).
func (b *BloomFilter) Insert(h uint64, minCount uint32) (isNew, aboveThreshold, existing bool) {
	hPlus, hMinus := splitHash(h)
	minBefore := counterMax
	minAfter := counterMax
	for i := 0; i < b.probes; i++ {
		block, counter := b.probeLocation(hPlus, hMinus, i)
		before := b.incrementCounter(block, counter)
		after := before
		if after < counterMax {
			after++
		}
		if before < minBefore {
			minBefore = before
		}
		if after < minAfter {
			minAfter = after
		}
	}
	isNew = minBefore == 0
	existing = !isNew
	aboveThreshold = minAfter >= uint64(minCount)
	return
}

// Estimate returns the filter's current minimum-counter estimate for h,
// without mutating any counter.
func (b *BloomFilter) Estimate(h uint64) uint64 {
	hPlus, hMinus := splitHash(h)
	min := counterMax
	for i := 0; i < b.probes; i++ {
		block, counter := b.probeLocation(hPlus, hMinus, i)
		v := b.readCounter(block, counter)
		if v < min {
			min = v
		}
	}
	return min
}

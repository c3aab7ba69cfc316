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

package reads

import "github.com/shenwei356/dbgasm/kmerval"

// KmerIter walks every length-k window of every read in a Store, in the
// deterministic order required by §4.2: reads in insertion order, windows
// inside a read from last to first (the natural order of the reversed
// on-disk layout - consumers must not assume forward order). It is a
// struct-based "coroutine-like" iterator in the teacher's idiom
// (unikmer.Iterator in iterator.go): a plain Next() method, no channels.
type KmerIter struct {
	s *Store
	k int

	readIdx  int
	winIdx   int // window start, in buffer-offset units, counting down
	readLen  int
	readBase int64 // bit offset of the start of the current read
	winMax   int   // last valid window index (readLen-k) for current read
}

// NewKmerIter returns an iterator over every k-window in s. Reads shorter
// than k are skipped, per contract.
func NewKmerIter(s *Store, k int) *KmerIter {
	it := &KmerIter{s: s, k: k, readIdx: -1}
	it.advanceRead()
	return it
}

// advanceRead moves to the next read long enough for k, positioning winIdx
// at its last (rightmost-in-buffer) window.
func (it *KmerIter) advanceRead() {
	for {
		it.readIdx++
		if it.readIdx >= it.s.ReadNum() {
			return
		}
		l := it.s.Len(it.readIdx)
		if l < it.k {
			continue
		}
		it.readLen = l
		it.readBase = it.s.offsets[it.readIdx]
		it.winMax = l - it.k
		// winIdx=0 corresponds to the read's rightmost (last) window in
		// original coordinates; increasing winIdx walks toward the first
		// window, matching the "last to first" order required by §4.2.
		it.winIdx = 0
		return
	}
}

// Next returns the next k-mer, its originating read index, and whether
// iteration is not yet finished.
func (it *KmerIter) Next() (km kmerval.Kmer, readIdx int, ok bool) {
	for it.readIdx < it.s.ReadNum() {
		if it.winIdx > it.winMax {
			it.advanceRead()
			continue
		}
		codes := make([]byte, it.k)
		for i := 0; i < it.k; i++ {
			bufPos := it.winIdx + i
			bitpos := it.readBase + int64(bufPos)*2
			byteIdx := bitpos / 8
			bitOff := uint(bitpos % 8)
			code := (it.s.bits[byteIdx] >> (6 - bitOff)) & 3
			// Buffer index (readLen-1-bufPos) is the original forward
			// position; reading i=0..k-1 at increasing bufPos means
			// decreasing original position, so place codes back to front
			// to recover left-to-right (5'->3') order.
			codes[it.k-1-i] = code
		}
		km, err := kmerval.FromCodes(codes)
		readIdx = it.readIdx
		it.winIdx++
		if err != nil {
			continue // unreachable: codes are always in 0..3
		}
		return km, readIdx, true
	}
	return kmerval.Kmer{}, -1, false
}

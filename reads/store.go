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

// Package reads implements a compact 2-bit read store (component C2 of the
// assembler): a monotonically grown bit buffer plus per-read lengths, with
// iterators over reads, k-mers and mate pairs.
package reads

import "errors"

// ErrIllegalBase is returned by Push when a byte is outside ACGTU (N and
// other IUPAC codes are rejected here, unlike kmerval.FromString, since
// reads are stored losslessly and degenerate calls should be filtered by
// the caller before ingestion).
var ErrIllegalBase = errors.New("reads: illegal base")

func baseCode(b byte) (byte, bool) {
	switch b {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't', 'U', 'u':
		return 3, true
	default:
		return 0, false
	}
}

var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// Store is a 2-bit-per-base buffer holding every ingested read back to
// back, plus the length of each read. Reads are stored with their bases in
// reverse order (last base first) so that iterating k-mers of a read walks
// forward through memory - the same layout tradeoff the teacher's Reader/
// Writer make for KmerCode packing, generalized to whole reads.
type Store struct {
	bits    []byte // 2 bits per base, packed MSB-first within each byte
	nbits   int64  // number of valid bits appended so far
	offsets []int64 // bit offset of the start of read i
	lengths []int32 // length in bases of read i

	pairs []pairRange // paired_push ranges, in push order
}

type pairRange struct {
	start int // index of the first read (a) of the pair; mate is start+1
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) growBits(nbases int) {
	need := s.nbits + int64(nbases)*2
	needBytes := (need + 7) / 8
	if int64(len(s.bits)) < needBytes {
		grown := make([]byte, needBytes*2+64)
		copy(grown, s.bits)
		s.bits = grown
	}
}

func (s *Store) appendBase(code byte) {
	bitpos := s.nbits
	byteIdx := bitpos / 8
	bitOff := uint(bitpos % 8)
	// Bits are packed MSB-first within a byte: the first base written into
	// a fresh byte occupies bits 7-6, matching the fixed-width packing used
	// by kmerval.Kmer so debugging the two encodings side by side lines up.
	s.bits[byteIdx] |= code << (6 - bitOff)
	s.nbits += 2
}

// Push appends one read, storing its bases in reverse order. Returns the
// 0-based index of the new read. Push only fails on illegal bases.
func (s *Store) Push(seq []byte) (int, error) {
	for _, b := range seq {
		if _, ok := baseCode(b); !ok {
			return -1, ErrIllegalBase
		}
	}
	s.growBits(len(seq))
	idx := len(s.offsets)
	s.offsets = append(s.offsets, s.nbits)
	s.lengths = append(s.lengths, int32(len(seq)))
	for i := len(seq) - 1; i >= 0; i-- {
		code, _ := baseCode(seq[i])
		s.appendBase(code)
	}
	return idx, nil
}

// PushPaired appends two mate reads (a, b) back to back and records that
// they are mates: the mate of read 2i is read 2i+1. b is stored exactly as
// given (interleaved); callers wanting b reverse-complemented for pairing
// should do so before calling PushPaired, matching the spec's contract that
// pairing-specific orientation is a digger/assembler concern, not a storage
// concern.
func (s *Store) PushPaired(a, b []byte) (int, int, error) {
	ia, err := s.Push(a)
	if err != nil {
		return -1, -1, err
	}
	ib, err := s.Push(b)
	if err != nil {
		return -1, -1, err
	}
	s.pairs = append(s.pairs, pairRange{start: ia})
	return ia, ib, nil
}

// ReadNum returns the number of reads stored.
func (s *Store) ReadNum() int { return len(s.offsets) }

// TotalSeq returns the total number of bases across all reads.
func (s *Store) TotalSeq() int64 {
	var total int64
	for _, l := range s.lengths {
		total += int64(l)
	}
	return total
}

// Len returns the length in bases of read i.
func (s *Store) Len(i int) int { return int(s.lengths[i]) }

// Mate returns the index of the mate of read i, and whether i is part of a
// pair. Mate of read at even index 2i is at 2i+1 and vice versa.
func (s *Store) Mate(i int) (int, bool) {
	if i >= len(s.pairs)*2 {
		return -1, false
	}
	if i%2 == 0 {
		return i + 1, true
	}
	return i - 1, true
}

// Read decodes read i back into forward-order bases.
func (s *Store) Read(i int) []byte {
	n := int(s.lengths[i])
	out := make([]byte, n)
	start := s.offsets[i]
	for j := 0; j < n; j++ {
		// base j (reverse order in storage) is the (n-1-j)'th base forward
		bitpos := start + int64(j)*2
		byteIdx := bitpos / 8
		bitOff := uint(bitpos % 8)
		code := (s.bits[byteIdx] >> (6 - bitOff)) & 3
		out[n-1-j] = bit2base[code]
	}
	return out
}

// MemoryFootprint is a conservative byte estimate of the store's resident
// memory, used by kmercount to decide whether to multi-pass.
func (s *Store) MemoryFootprint() int64 {
	return int64(len(s.bits)) +
		int64(len(s.offsets))*8 +
		int64(len(s.lengths))*4 +
		int64(len(s.pairs))*8
}

// KmerNum returns the number of length-k windows across all reads (reads
// shorter than k contribute 0), used by kmercount to estimate raw_kmers.
func (s *Store) KmerNum(k int) int64 {
	var n int64
	for _, l := range s.lengths {
		if int(l) >= k {
			n += int64(int(l) - k + 1)
		}
	}
	return n
}

// CopyBitRange copies the packed bit range [bitStart, bitStart+nbits) of src
// into dst, appending it as the tail of dst's buffer. This underlies
// connect-and-extend's need to splice a substring of one contig's k-mer
// encoding into another without re-decoding bases.
func CopyBitRange(dst *Store, src *Store, bitStart, nbits int64) {
	need := dst.nbits + nbits
	needBytes := (need + 7) / 8
	if int64(len(dst.bits)) < needBytes {
		grown := make([]byte, needBytes*2+64)
		copy(grown, dst.bits)
		dst.bits = grown
	}
	for i := int64(0); i < nbits; i += 2 {
		srcPos := bitStart + i
		srcByte := src.bits[srcPos/8]
		srcOff := uint(srcPos % 8)
		code := (srcByte >> (6 - srcOff)) & 3

		dstPos := dst.nbits + i
		dstByte := dstPos / 8
		dstOff := uint(dstPos % 8)
		dst.bits[dstByte] |= code << (6 - dstOff)
	}
	dst.nbits += nbits
}

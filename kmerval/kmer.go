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

// Package kmerval implements fixed-width 2-bit-per-base DNA k-mer values.
//
// A Kmer is a tagged union over word-count categories {1,2,4,8,16} of
// uint64 words (see Design Notes, §9 of the specification this package
// implements): K up to MaxK fits in 16 words. Hot paths dispatch on the
// nwords tag so small, common K (<=32, one word) never pay for the wider
// categories.
package kmerval

import (
	"errors"
)

// MaxWords is the largest word-count category supported.
const MaxWords = 16

// MaxK is the largest k-mer length representable (16 words * 64 bits / 2 bits-per-base).
const MaxK = MaxWords * 32

// ErrIllegalBase means a byte outside the IUPAC alphabet was seen.
var ErrIllegalBase = errors.New("kmerval: illegal base")

// ErrKOverflow means K is not in [1, MaxK].
var ErrKOverflow = errors.New("kmerval: K overflow")

// ErrKMismatch means two Kmers of different K were compared or combined.
var ErrKMismatch = errors.New("kmerval: K mismatch")

// Kmer is a fixed-width, 2-bit-per-base encoded DNA sequence of length K.
// The zero value is not a valid Kmer; use FromString or ShiftLeftBase.
//
// Encoding: base i (0-indexed from the left/5' end) occupies bit position
// (k-1-i)*2 of the big number formed by treating words[nwords-1] as the
// most-significant limb and words[0] as the least-significant limb - i.e.
// the first base of the k-mer is the most significant bits of the value.
// This lets whole-Kmer comparison be plain big-number comparison and makes
// ShiftLeftBase (drop the oldest base, append a new one) a single 2-bit
// shift-with-carry across limbs.
type Kmer struct {
	words  [MaxWords]uint64
	k      int16
	nwords int8
}

// wordsFor returns the minimal word-count category covering k bases.
func wordsFor(k int) int8 {
	bits := k * 2
	switch {
	case bits <= 64:
		return 1
	case bits <= 128:
		return 2
	case bits <= 256:
		return 4
	case bits <= 512:
		return 8
	default:
		return 16
	}
}

// K returns the k-mer length.
func (km Kmer) K() int { return int(km.k) }

// topLimbMask masks the valid bits of the most significant limb, clearing
// any bits above k*2 - (nwords-1)*64 that are not part of the encoding.
func (km Kmer) topLimbMask() uint64 {
	validBits := int(km.k)*2 - (int(km.nwords)-1)*64
	if validBits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(validBits)) - 1
}

func baseCode(b byte) (uint64, error) {
	switch b {
	case 'A', 'a', 'N', 'n', 'M', 'm', 'V', 'v', 'H', 'h', 'R', 'r', 'D', 'd', 'W', 'w':
		return 0, nil
	case 'C', 'c', 'S', 's', 'B', 'b', 'Y', 'y':
		return 1, nil
	case 'G', 'g', 'K', 'k':
		return 2, nil
	case 'T', 't', 'U', 'u':
		return 3, nil
	default:
		return 0, ErrIllegalBase
	}
}

var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// FromString encodes s (length 1..MaxK) into a Kmer. Degenerate IUPAC bases
// are resolved to their first listed base, matching the teacher's Encode.
func FromString(s []byte) (Kmer, error) {
	k := len(s)
	if k == 0 || k > MaxK {
		return Kmer{}, ErrKOverflow
	}
	var km Kmer
	km.k = int16(k)
	km.nwords = wordsFor(k)
	for i := 0; i < k; i++ {
		code, err := baseCode(s[i])
		if err != nil {
			return Kmer{}, err
		}
		shiftLeft2(&km)
		km.words[0] |= code
	}
	return km, nil
}

// shiftLeft2 shifts the whole multi-limb value left by 2 bits (dropping the
// overflow out of the top limb) and masks the top limb back to k*2 bits.
func shiftLeft2(km *Kmer) {
	n := int(km.nwords)
	var carry uint64
	for i := 0; i < n; i++ {
		next := km.words[i] >> 62
		km.words[i] = (km.words[i] << 2) | carry
		carry = next
	}
	km.words[n-1] &= km.topLimbMask()
}

// ShiftLeftBase drops the highest (leftmost) base of km and appends base on
// the right, producing the k-mer for the next sliding window.
func ShiftLeftBase(km Kmer, base byte) (Kmer, error) {
	code, err := baseCode(base)
	if err != nil {
		return Kmer{}, err
	}
	out := km
	shiftLeft2(&out)
	out.words[0] |= code
	return out, nil
}

// shiftRight2 shifts the whole multi-limb value right by 2 bits, carrying
// the low 2 bits of each limb into the top of the limb below it.
func shiftRight2(km *Kmer) {
	n := int(km.nwords)
	var carry uint64
	for i := n - 1; i >= 0; i-- {
		next := km.words[i] & 3
		km.words[i] = (km.words[i] >> 2) | (carry << 62)
		carry = next
	}
	km.words[n-1] &= km.topLimbMask()
}

// ShiftRightBase drops the lowest (rightmost) base of km and prepends base
// on the left, the predecessor operation mirroring ShiftLeftBase.
func ShiftRightBase(km Kmer, base byte) (Kmer, error) {
	code, err := baseCode(base)
	if err != nil {
		return Kmer{}, err
	}
	out := km
	shiftRight2(&out)
	shift := uint((int(km.k) - 1) * 2 % 64)
	limb := (int(km.k) - 1) * 2 / 64
	out.words[limb] |= code << shift
	return out, nil
}

// FromCodes builds a Kmer directly from a slice of 2-bit base codes (0=A,
// 1=C, 2=G, 3=T) given in left-to-right (5'->3') order, skipping the ASCII
// encode/decode round trip entirely. This is the path used by
// reads.KmerIter, which already holds bases packed as 2-bit codes.
func FromCodes(codes []byte) (Kmer, error) {
	k := len(codes)
	if k == 0 || k > MaxK {
		return Kmer{}, ErrKOverflow
	}
	var km Kmer
	km.k = int16(k)
	km.nwords = wordsFor(k)
	for _, code := range codes {
		if code > 3 {
			return Kmer{}, ErrIllegalBase
		}
		shiftLeft2(&km)
		km.words[0] |= uint64(code)
	}
	return km, nil
}

// Bytes decodes km back to its base sequence.
func (km Kmer) Bytes() []byte {
	k := int(km.k)
	out := make([]byte, k)
	for i := 0; i < k; i++ {
		pos := (k - 1 - i) * 2
		limb := pos / 64
		off := uint(pos % 64)
		code := (km.words[limb] >> off) & 3
		out[i] = bit2base[code]
	}
	return out
}

// String decodes km to a string.
func (km Kmer) String() string { return string(km.Bytes()) }

// Equal reports whether two Kmers encode the same sequence (same K, same bits).
func (km Kmer) Equal(other Kmer) bool {
	if km.k != other.k {
		return false
	}
	for i := int(km.nwords) - 1; i >= 0; i-- {
		if km.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// Compare returns -1, 0 or 1 comparing km and other lexicographically over
// the bit vector (equivalently, as fixed-width big numbers of the same K).
func (km Kmer) Compare(other Kmer) int {
	for i := int(km.nwords) - 1; i >= 0; i-- {
		if km.words[i] < other.words[i] {
			return -1
		}
		if km.words[i] > other.words[i] {
			return 1
		}
	}
	return 0
}

// Less reports km < other under Compare's ordering.
func (km Kmer) Less(other Kmer) bool { return km.Compare(other) < 0 }

// complementWord complements every 2-bit base in a 64-bit limb without
// regard to how many bases it actually holds; callers mask afterward.
func complementWord(w uint64) uint64 { return ^w }

// reverseBasesWord reverses the order of 2-bit bases within a single 64-bit
// limb (32 bases).
func reverseBasesWord(w uint64) uint64 {
	var r uint64
	for i := 0; i < 32; i++ {
		r = (r << 2) | (w & 3)
		w >>= 2
	}
	return r
}

// Complement returns the base-wise complement of km (A<->T, C<->G), keeping
// base order (not reversed).
func (km Kmer) Complement() Kmer {
	out := km
	n := int(km.nwords)
	for i := 0; i < n; i++ {
		out.words[i] = complementWord(km.words[i])
	}
	// Shift the whole value so the complemented bits occupy exactly the
	// same "from the left" positions: complementing leaves alignment
	// unchanged since every base slot flips independently.
	out.words[n-1] &= km.topLimbMask()
	return out
}

// Reverse returns km with its base order reversed (not complemented).
func (km Kmer) Reverse() Kmer {
	k := int(km.k)
	n := int(km.nwords)
	// Reverse at the base level: base i of the output is base (k-1-i) of
	// the input. Decode/encode is simplest and clear; k is bounded by
	// MaxK so this is cheap relative to I/O costs elsewhere.
	src := km.Bytes()
	for i, j := 0, k-1; i < j; i, j = i+1, j-1 {
		src[i], src[j] = src[j], src[i]
	}
	out, _ := FromString(src) // src bytes are already validated bases
	_ = n
	return out
}

// RevComp returns the reverse complement of km.
func (km Kmer) RevComp() Kmer {
	return km.Reverse().Complement()
}

// Canonical returns the lexicographically smaller of km and its reverse
// complement, i.e. the canonical form stored in the de Bruijn graph.
func (km Kmer) Canonical() Kmer {
	rc := km.RevComp()
	if rc.Less(km) {
		return rc
	}
	return km
}

// IsCanonical reports whether km is already in canonical form.
func (km Kmer) IsCanonical() bool {
	rc := km.RevComp()
	return !rc.Less(km)
}

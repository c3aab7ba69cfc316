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

package kmerval

import (
	"encoding/binary"

	"blainsmith.com/go/seahash"
	"github.com/will-rowe/nthash"
)

// Hash returns an avalanche hash of km's bit vector. Equal canonical values
// hash equal, and distinct K values do not collide into the same bucket
// space assumptions (K is folded into the digest).
func (km Kmer) Hash() uint64 {
	buf := make([]byte, 8*int(km.nwords)+2)
	for i := 0; i < int(km.nwords); i++ {
		binary.LittleEndian.PutUint64(buf[i*8:], km.words[i])
	}
	binary.LittleEndian.PutUint16(buf[len(buf)-2:], uint16(km.k))
	return seahash.Sum64(buf)
}

// NTHash returns the ntHash of seq (canonical when canonical is true) using
// will-rowe/nthash's rolling hash, valid only for K <= nthash.MAXIMUM_K_SIZE
// (31). No package in this module calls it: reads.KmerIter decodes each
// window into a Kmer, and Hash serves every K.
func NTHash(seq []byte, canonical bool) (uint64, error) {
	h, err := nthash.NewHasher(&seq, uint(len(seq)))
	if err != nil {
		return 0, err
	}
	v, _ := h.Next(canonical)
	return v, nil
}

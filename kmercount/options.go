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

// Package kmercount implements the bucketed, multi-pass, multi-threaded
// k-mer counter of component C3 (spec §4.3): reads go in, a sorted
// kmertab.Table with branch bits comes out.
package kmercount

import "github.com/pkg/errors"

// entrySize is the per-bucket-record footprint used for the memory
// estimate of step 1: one kmerval.Kmer plus one counter word, rounded up
// for bucket bookkeeping overhead.
const entrySize = 40

// safetyMargin is subtracted from MemoryLimit before sizing cycles, giving
// headroom for the read store and graph that coexist with the counter.
const safetyMargin = 64 * 1024 * 1024

// maxCycles is the hard failure threshold of step 2.
const maxCycles = 10

// Options configures one counting run, the parameter set named in §4.3's
// contract (K, min_count, is_stranded, memory_limit, threads).
type Options struct {
	K           int
	MinCount    uint32
	Stranded    bool
	MemoryLimit int64
	Threads     int
	ChunkSize   int // reads per chunk handed to one Spawn job
}

// ErrInsufficientMemory is the hard failure of step 2.
var ErrInsufficientMemory = errors.New("kmercount: insufficient memory")

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return 4096
}

func (o Options) threads() int {
	if o.Threads > 0 {
		return o.Threads
	}
	return 1
}

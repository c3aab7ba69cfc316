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

package kmercount

import (
	"github.com/shenwei356/dbgasm/chash"
	"github.com/shenwei356/dbgasm/internal/jobqueue"
	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/dbgasm/logx"
	"github.com/shenwei356/dbgasm/reads"
)

// defaultHashBuckets is the chash.Table starting size for CountConcurrent;
// chosen small since Table grows itself once load exceeds maxLoadFactor.
const defaultHashBuckets = 1 << 16

// CountConcurrent runs C4 (§4.4) over store instead of C3: every read is
// scanned exactly once by opt.Threads workers sharing one chash.Table,
// rather than bucket-sorted and merged in cycles. It trades C3's bounded,
// predictable memory footprint for a single pass with no cycle/bucket
// bookkeeping, at the cost of the hash table's own per-entry overhead
// being harder to bound up front (CountConcurrent ignores opt.MemoryLimit;
// opt.ChunkSize, via Options.chunkSize, still governs job granularity).
func CountConcurrent(store *reads.Store, opt Options) (*kmertab.Table, error) {
	table := chash.New(defaultHashBuckets)

	chunks := chunkReads(store, opt.chunkSize())
	logx.Infof("kmercount: concurrent count K=%d chunks=%d threads=%d",
		opt.K, len(chunks), opt.threads())

	pool := jobqueue.New(opt.threads())
	for _, ch := range chunks {
		ch := ch
		pool.Go(func() error {
			scanChunkConcurrent(ch, opt.K, table)
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}

	result := &kmertab.Table{Stranded: opt.Stranded}
	table.Each(opt.MinCount, func(e chash.Entry) {
		var plusFrac uint16
		if opt.Stranded && e.Total > 0 {
			plusFrac = kmertab.QuantizePlusFraction(float64(e.Plus) / float64(e.Total))
		}
		result.Entries = append(result.Entries, kmertab.Entry{
			Kmer:    e.Kmer,
			Counter: kmertab.PackCounter(e.Total, 0, plusFrac),
		})
	})
	result.Sort()

	computeBranching(result)
	result.BuildHistogram()

	return result, nil
}

// scanChunkConcurrent canonicalizes every k-mer in ch's read range and
// inserts it into table, the concurrent-hash analogue of spawnChunk.
func scanChunkConcurrent(ch readChunk, k int, table *chash.Table) {
	it := reads.NewKmerIter(ch.store, k)
	for {
		km, readIdx, ok := it.Next()
		if !ok {
			break
		}
		if readIdx < ch.firstRead {
			continue
		}
		if readIdx >= ch.lastRead {
			break
		}
		canon := km.Canonical()
		table.Insert(canon, km.Equal(canon))
	}
}

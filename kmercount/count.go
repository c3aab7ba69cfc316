package kmercount

import (
	"math"

	"github.com/shenwei356/dbgasm/internal/jobqueue"
	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/dbgasm/logx"
	"github.com/shenwei356/dbgasm/reads"

	humanize "github.com/dustin/go-humanize"
)

// Count runs the §4.3 algorithm over store and returns the resulting sorted
// kmertab.Table with branch bits and quantized plus-fractions already
// packed into each entry's counter word.
func Count(store *reads.Store, opt Options) (*kmertab.Table, error) {
	rawKmers := store.KmerNum(opt.K)
	neededMemory := int64(math.Ceil(1.2 * float64(rawKmers) * entrySize))

	cycles := 1
	if opt.MemoryLimit > 0 {
		budget := opt.MemoryLimit - safetyMargin
		if budget <= 0 {
			return nil, ErrInsufficientMemory
		}
		cycles = int(math.Ceil(float64(neededMemory) / float64(budget)))
		if cycles < 1 {
			cycles = 1
		}
	}
	if cycles > maxCycles {
		return nil, ErrInsufficientMemory
	}

	chunks := chunkReads(store, opt.chunkSize())
	njobs := 8 * len(chunks)
	if njobs < 1 {
		njobs = 1
	}
	kmerBuckets := cycles * njobs

	logx.Infof("kmercount: K=%d raw_kmers=%s cycles=%d njobs=%d buckets=%d",
		opt.K, humanize.Comma(rawKmers), cycles, njobs, kmerBuckets)

	var merged []rawEntry

	for cycle := 0; cycle < cycles; cycle++ {
		lo := cycle * njobs
		hi := lo + njobs

		// Spawn: one worker per read-chunk, bounded by opt.Threads.
		perChunk := make([][][]rawEntry, len(chunks))
		pool := jobqueue.New(opt.threads())
		for ci, ch := range chunks {
			ci, ch := ci, ch
			perChunk[ci] = make([][]rawEntry, njobs)
			pool.Go(func() error {
				spawnChunk(ch, opt.K, kmerBuckets, lo, hi, perChunk[ci])
				return nil
			})
		}
		if err := pool.Wait(); err != nil {
			return nil, err
		}

		// Sort-and-merge: one worker per bucket in this cycle's range.
		bucketOut := make([][]rawEntry, njobs)
		mergePool := jobqueue.New(opt.threads())
		for b := 0; b < njobs; b++ {
			b := b
			mergePool.Go(func() error {
				parts := make([][]rawEntry, len(chunks))
				for ci := range chunks {
					parts[ci] = perChunk[ci][b]
				}
				bucketOut[b] = sortAndMergeBucket(parts, opt.MinCount)
				return nil
			})
		}
		if err := mergePool.Wait(); err != nil {
			return nil, err
		}

		// Two-way merge tree across this cycle's bucket outputs.
		cycleEntries := mergeBuckets(bucketOut)
		merged = append(merged, cycleEntries...)
	}

	table := &kmertab.Table{Stranded: opt.Stranded}
	table.Entries = make([]kmertab.Entry, len(merged))
	for i, e := range merged {
		var plusFrac uint16
		if opt.Stranded && e.total > 0 {
			plusFrac = kmertab.QuantizePlusFraction(float64(e.plus) / float64(e.total))
		}
		table.Entries[i] = kmertab.Entry{Kmer: e.kmer, Counter: kmertab.PackCounter(e.total, 0, plusFrac)}
	}
	// merged is already in sorted order from the cycle-ordered k-way
	// merges, but cycles themselves aren't globally ordered relative to
	// each other, so a final sort is required before branching lookups
	// (which rely on Table.Find's binary search).
	table.Sort()

	computeBranching(table)
	table.BuildHistogram()

	return table, nil
}

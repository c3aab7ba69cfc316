package kmercount

import (
	"github.com/shenwei356/dbgasm/kmerval"
	"github.com/shenwei356/dbgasm/reads"
)

// rawEntry is one canonicalized k-mer observation before cross-bucket
// merging, still carrying separate total/plus counts rather than the final
// packed kmertab counter word.
type rawEntry struct {
	kmer  kmerval.Kmer
	total uint32
	plus  uint32 // count of observations that matched the canonical form directly
}

// readChunk is a contiguous run of read indices assigned to one Spawn job
// (step 4 of §4.3).
type readChunk struct {
	store      *reads.Store
	firstRead  int
	lastRead   int // exclusive
}

func chunkReads(store *reads.Store, chunkSize int) []readChunk {
	n := store.ReadNum()
	var chunks []readChunk
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, readChunk{store: store, firstRead: start, lastRead: end})
	}
	if len(chunks) == 0 {
		chunks = []readChunk{{store: store, firstRead: 0, lastRead: 0}}
	}
	return chunks
}

// spawnChunk canonicalizes every k-mer in the reads [first,last) of the
// chunk's store, buckets it by hash(kmer) mod kmerBuckets, and appends each
// observation falling inside [cycleLo,cycleHi) to the matching entry of
// into (drop everything outside this cycle's bucket range, per step 4).
func spawnChunk(ch readChunk, k int, kmerBuckets int, cycleLo, cycleHi int, into [][]rawEntry) {
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
		bucket := int(canon.Hash() % uint64(kmerBuckets))
		if bucket < cycleLo || bucket >= cycleHi {
			continue
		}
		var plus uint32
		if km.Equal(canon) {
			plus = 1
		}
		into[bucket-cycleLo] = append(into[bucket-cycleLo], rawEntry{kmer: canon, total: 1, plus: plus})
	}
}

package assembler

import (
	"github.com/shenwei356/dbgasm/contigs"
	"github.com/shenwei356/dbgasm/kmerval"
	"github.com/shenwei356/dbgasm/reads"
)

// cleanReads implements §4.7's "Clean reads": for every contig at least
// max(insert,K)+2*scanWindow long, any read whose k-mers match the contig
// interior by >= jump+scanWindow on both sides is dropped from further
// consideration. Reads that match a contig only near its ends are kept
// unchanged; no synthetic connected read is built from them.
//
// Returns a new Store containing only reads that were not cleaned.
func cleanReads(store *reads.Store, cs []*contigs.Contig, k, insertSize, jump, scanWindow int) *reads.Store {
	minContigLen := insertSize
	if k > minContigLen {
		minContigLen = k
	}
	minContigLen += 2 * scanWindow

	interior := make(map[uint64]bool)
	threshold := jump + scanWindow
	for _, c := range cs {
		if len(c.Seq) < minContigLen {
			continue
		}
		markInterior(c.Seq, k, threshold, interior)
	}

	out := reads.NewStore()
	n := store.ReadNum()
	for i := 0; i < n; i++ {
		if matchesInterior(store, i, k, interior) {
			continue
		}
		out.Push(store.Read(i))
	}
	return out
}

// markInterior records the hash of every k-mer strictly inside the
// contig's [threshold, len-threshold) interior band.
func markInterior(seq []byte, k, threshold int, interior map[uint64]bool) {
	lo := threshold
	hi := len(seq) - k - threshold
	for i := lo; i <= hi; i++ {
		km, err := kmerval.FromString(seq[i : i+k])
		if err != nil {
			continue
		}
		interior[km.Canonical().Hash()] = true
	}
}

// matchesInterior reports whether read i has k-mers and every one of them
// lands in the interior set, an approximation of the ">= jump+scanWindow on
// both sides" contract that avoids re-deriving exact contig offsets for
// every read.
func matchesInterior(store *reads.Store, i, k int, interior map[uint64]bool) bool {
	if store.Len(i) < k {
		return false
	}
	seq := store.Read(i)
	hits := 0
	for j := 0; j+k <= len(seq); j++ {
		km, err := kmerval.FromString(seq[j : j+k])
		if err != nil {
			continue
		}
		if interior[km.Canonical().Hash()] {
			hits++
		}
	}
	return hits > 0 && hits == len(seq)-k+1
}

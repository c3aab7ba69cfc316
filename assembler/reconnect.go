package assembler

import (
	"github.com/shenwei356/dbgasm/dbgraph"
	"github.com/shenwei356/dbgasm/digger"
	"github.com/shenwei356/dbgasm/reads"
)

var rcComplement = map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A'}

// revCompSeq reverse-complements a raw base sequence, the byte-level
// counterpart of kmerval.Kmer.RevComp used where a read's full length
// (not just one k-mer) needs flipping.
func revCompSeq(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = rcComplement[b]
	}
	return out
}

// connectPairsIteratively implements the "iteratively reconnect pairs
// through all built graphs" half of §4.7 step 6: every mate pair of
// original is attempted against each graph built so far, in increasing-K
// order: the mate sequence b is reverse-complemented before its nodes are
// looked up, matching §4.6.5's "b reverse-complemented" contract. A pair
// that connects is removed from further consideration and its reconstructed
// insert is pushed to the returned store; pairs that never connect are
// dropped (not returned), since only the newly connected reads feed the
// following long-kmer improvement iterations.
func connectPairsIteratively(original *reads.Store, graphs []*dbgraph.Graph, opt Options, insertSize int) *reads.Store {
	remaining := make([]int, 0, original.ReadNum()/2)
	n := original.ReadNum()
	for i := 0; i+1 < n; i += 2 {
		if mate, ok := original.Mate(i); ok && mate == i+1 {
			remaining = append(remaining, i)
		}
	}

	connected := reads.NewStore()
	for _, g := range graphs {
		if len(remaining) == 0 {
			break
		}
		d := digger.New(g, diggerOptions(opt))
		var stillRemaining []int
		for _, i := range remaining {
			a := readNodes(g, original.Read(i))
			b := readNodes(g, revCompSeq(original.Read(i+1)))
			if len(a) == 0 || len(b) == 0 {
				stillRemaining = append(stillRemaining, i)
				continue
			}
			res := d.ConnectPair(a, b, insertSize)
			if res.Connected && !res.Ambiguous {
				connected.Push(digger.BuildSequence(g, res.Nodes))
				continue
			}
			stillRemaining = append(stillRemaining, i)
		}
		remaining = stillRemaining
	}
	return connected
}

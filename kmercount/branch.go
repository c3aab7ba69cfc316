package kmercount

import (
	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/dbgasm/kmerval"
)

// extensionBases are the four possible one-base extensions tried at each
// end of a k-mer for step 7's branching computation: an extension is
// "forward" when appended to the right end (ShiftLeftBase), "reverse" when
// prepended to the left end (ShiftRightBase).
var extensionBases = [4]byte{'A', 'C', 'G', 'T'}

// computeBranching fills the branch-mask nibbles of every entry in t: bit i
// (i<4) of the low nibble is set when extensionBases[i] appended to the
// k-mer's right end yields a k-mer present in t; bit i of the high nibble
// mirrors that for the left end. Self-loops (the neighbor canonicalizing
// to the entry's own k-mer) never set a bit, per §4.3 step 7.
func computeBranching(t *kmertab.Table) {
	for i, e := range t.Entries {
		var mask uint8
		for bit, b := range extensionBases {
			if right, err := kmerval.ShiftLeftBase(e.Kmer, b); err == nil {
				canon := right.Canonical()
				if !canon.Equal(e.Kmer) && t.Find(canon) >= 0 {
					mask |= 1 << uint(bit)
				}
			}
		}
		for bit, b := range extensionBases {
			if left, err := kmerval.ShiftRightBase(e.Kmer, b); err == nil {
				canon := left.Canonical()
				if !canon.Equal(e.Kmer) && t.Find(canon) >= 0 {
					mask |= 1 << uint(bit+4)
				}
			}
		}
		total := e.Count()
		plus := uint16(e.Counter>>48) & 0xFFFF
		t.Entries[i].Counter = kmertab.PackCounter(total, mask, plus)
	}
}

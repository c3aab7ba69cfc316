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

// Package contigs implements the Contig structure of §3/C7: an assembled
// sequence, its node-id trail, denied-neighbor metadata, and links back to
// the previous k-iteration's parent contigs, plus the FASTA writer of §6.
package contigs

import (
	"sync/atomic"

	"github.com/shenwei356/dbgasm/dbgraph"
)

// Link points at a parent contig from the previous k-iteration, with Shift
// giving the position of the takeoff k-mer within the parent: positive
// from the right end, negative from the left end.
type Link struct {
	Parent *Contig
	Shift  int
}

// Contig is one assembled sequence plus its bookkeeping, per §3.
type Contig struct {
	Seq   []byte
	Kmers []dbgraph.Node // length len(Seq)-K+1; 0 entries mark unknown seams

	NextLeft  dbgraph.Node // denied left neighbor, 0 if none
	NextRight dbgraph.Node // denied right neighbor, 0 if none

	LeftLink  *Link
	RightLink *Link

	LeftExtend  int // newly-assembled bases at the left end this iteration
	RightExtend int // newly-assembled bases at the right end this iteration

	isTaken uint32
}

// TryTake attempts to claim exclusive ownership of c for
// connect-and-extend, via CAS on IsTaken. Only the owning worker may
// mutate c afterward.
func (c *Contig) TryTake() bool {
	return atomic.CompareAndSwapUint32(&c.isTaken, 0, 1)
}

// Release gives up ownership, allowing a later pass to claim c again.
func (c *Contig) Release() {
	atomic.StoreUint32(&c.isTaken, 0)
}

// IsTaken reports whether c is currently claimed.
func (c *Contig) IsTaken() bool {
	return atomic.LoadUint32(&c.isTaken) == 1
}

// Len returns the base length of the contig.
func (c *Contig) Len() int { return len(c.Seq) }

// K returns the k-mer width implied by Seq and Kmers (Seq.length ==
// Kmers.length + K - 1, per the §3 invariant).
func (c *Contig) K() int {
	if len(c.Kmers) == 0 {
		return 0
	}
	return len(c.Seq) - len(c.Kmers) + 1
}

// AverageAbundance returns the mean abundance(node) over the contig's
// k-mer trail, evaluated against g (the first, smallest-K graph per §6's
// contig FASTA contract). Zero/unknown-seam entries are skipped.
func (c *Contig) AverageAbundance(g *dbgraph.Graph) float64 {
	if len(c.Kmers) == 0 {
		return 0
	}
	var sum uint64
	var n int
	for _, node := range c.Kmers {
		if node == 0 {
			continue
		}
		sum += uint64(g.Abundance(node))
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// New builds a Contig from a node-id trail and its decoded base sequence.
func New(seq []byte, kmers []dbgraph.Node) *Contig {
	return &Contig{Seq: seq, Kmers: kmers}
}

// Canonicalize reorients the contig to its lexicographically smaller
// direction (sequence vs. its reverse complement), the "re-canonicalize
// orientation (min-direction)" step of §4.7.
func (c *Contig) Canonicalize() {
	rc := revCompSeq(c.Seq)
	if lessBytes(rc, c.Seq) {
		c.Seq = rc
		n := len(c.Kmers)
		newKmers := make([]dbgraph.Node, n)
		for i, node := range c.Kmers {
			newKmers[n-1-i] = node.RevComp()
		}
		c.Kmers = newKmers
		c.NextLeft, c.NextRight = c.NextRight.RevComp(), c.NextLeft.RevComp()
		c.LeftExtend, c.RightExtend = c.RightExtend, c.LeftExtend
		c.LeftLink, c.RightLink = c.RightLink, c.LeftLink
	}
}

func lessBytes(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

var complement = map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A'}

func revCompSeq(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complement[b]
	}
	return out
}

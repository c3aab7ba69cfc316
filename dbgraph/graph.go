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

// Package dbgraph implements the de Bruijn graph of component C5: node and
// successor semantics over a kmertab.Table, plus the concurrent
// visited-flag and histogram-derived good-node thresholds that package
// digger traverses.
//
// Node/orientation semantics are grounded on
// original_source/tools/skesa/DBGraph.hpp; the atomic visited vector is
// grounded on the CAS claim/release idiom documented in spec §5 and on the
// per-slot status byte of muscato's bucket insertion
// (kshedden-muscato/muscato_screen.go).
package dbgraph

import (
	"sync/atomic"

	"github.com/shenwei356/dbgasm/kmertab"
	"github.com/shenwei356/dbgasm/kmerval"
)

// Node id: 0 = "no such node". Even 2(i+1) = canonical orientation of
// table entry i; odd 2(i+1)+1 = reverse-complement orientation.
type Node uint64

// RevComp returns the opposite-orientation node of the same k-mer.
func (n Node) RevComp() Node {
	if n == 0 {
		return 0
	}
	return n ^ 1
}

// Index returns the underlying table entry index for n (valid for n!=0).
func (n Node) Index() int { return int(n/2 - 1) }

// IsCanonicalOrientation reports whether n refers to the table's stored
// (canonical) orientation rather than its reverse complement.
func (n Node) IsCanonicalOrientation() bool { return n%2 == 0 }

func nodeFor(idx int, canonicalOrientation bool) Node {
	n := Node(2 * (idx + 1))
	if !canonicalOrientation {
		n |= 1
	}
	return n
}

// Visited states.
const (
	Free uint32 = iota
	Permanent
	TemporaryHolding
)

// Graph wraps a sorted kmertab.Table with node semantics and the
// concurrent visited-flag vector used by the digger's traversal workers.
//
// visited is []uint32 rather than the spec's literal "atomic byte"
// because sync/atomic has no 1-byte CAS primitive in Go; one uint32 per
// table entry realizes the same {0,1,2} state machine (documented Open
// Question decision, see DESIGN.md).
type Graph struct {
	K         int
	Table     *kmertab.Table
	Stranded  bool
	visited   []uint32
	valley    int
	peak      int
	rlimit    int
}

// New builds a Graph over an already-sorted, already-branched table.
func New(k int, t *kmertab.Table) *Graph {
	g := &Graph{K: k, Table: t, Stranded: t.Stranded, visited: make([]uint32, len(t.Entries))}
	g.valley, g.peak, g.rlimit = findValleyPeak(t.Bins)
	return g
}

// GetNode returns the node id for s in its as-given orientation, or 0 if s
// contains invalid bases or is absent from the graph.
func (g *Graph) GetNode(s []byte) Node {
	km, err := kmerval.FromString(s)
	if err != nil {
		return 0
	}
	return g.GetNodeKmer(km)
}

// GetNodeKmer is GetNode for an already-parsed Kmer.
func (g *Graph) GetNodeKmer(km kmerval.Kmer) Node {
	canon := km.Canonical()
	idx := g.Table.Find(canon)
	if idx < 0 {
		return 0
	}
	return nodeFor(idx, km.Equal(canon))
}

// Kmer returns the node's k-mer in its own orientation.
func (g *Graph) Kmer(n Node) kmerval.Kmer {
	if n == 0 {
		return kmerval.Kmer{}
	}
	km := g.Table.Entries[n.Index()].Kmer
	if !n.IsCanonicalOrientation() {
		km = km.RevComp()
	}
	return km
}

// Abundance returns the node's total count; 0 for node 0.
func (g *Graph) Abundance(n Node) uint32 {
	if n == 0 {
		return 0
	}
	return g.Table.Entries[n.Index()].Count()
}

// PlusFraction returns the plus-strand fraction adjusted for n's
// orientation: canonical orientation returns the stored fraction directly,
// reverse-complement orientation returns 1-fraction.
func (g *Graph) PlusFraction(n Node) float64 {
	if n == 0 {
		return 0
	}
	pf := g.Table.Entries[n.Index()].PlusFraction()
	if !n.IsCanonicalOrientation() {
		return 1 - pf
	}
	return pf
}

// MinusFraction returns min(plus_fraction, 1-plus_fraction).
func (g *Graph) MinusFraction(n Node) float64 {
	pf := g.PlusFraction(n)
	if pf < 1-pf {
		return pf
	}
	return 1 - pf
}

// Successor is one (neighbor, extension base) pair synthesized from the
// branch nibble.
type Successor struct {
	Node Node
	Base byte
}

var extBases = [4]byte{'A', 'C', 'G', 'T'}

// Successors returns up to 4 neighbors reached by appending a base flagged
// in n's orientation-adjusted branch nibble, per §4.5.
//
// The high nibble (kmercount.computeBranching) flags bit i when
// extBases[i] *prepended* to the canonical k-mer is present - a
// left-extension test. Appending base b to RC(canonical) is the same
// k-mer as prepending complement(b) to canonical, so on an RC-oriented
// node the base actually appended is the complement of the flagged base,
// extBases[3-bit] (extBases is the complementary pairing A/T, C/G in
// index order 0..3).
func (g *Graph) Successors(n Node) []Successor {
	if n == 0 {
		return nil
	}
	e := g.Table.Entries[n.Index()]
	mask := e.BranchMask()
	canonicalOrientation := n.IsCanonicalOrientation()
	var nibble uint8
	if canonicalOrientation {
		nibble = mask & 0x0F
	} else {
		nibble = (mask >> 4) & 0x0F
	}
	km := g.Kmer(n)
	var out []Successor
	for bit := 0; bit < 4; bit++ {
		if nibble&(1<<uint(bit)) == 0 {
			continue
		}
		b := extBases[bit]
		if !canonicalOrientation {
			b = extBases[3-bit]
		}
		next, err := kmerval.ShiftLeftBase(km, b)
		if err != nil {
			continue
		}
		nn := g.GetNodeKmer(next)
		if nn == 0 {
			continue
		}
		out = append(out, Successor{Node: nn, Base: b})
	}
	return out
}

// Predecessors returns successors of the reverse complement, each
// translated back into n's own orientation's predecessor view: it is
// successors(rc(n)) with node ids reverse-complemented back.
func (g *Graph) Predecessors(n Node) []Successor {
	if n == 0 {
		return nil
	}
	succ := g.Successors(n.RevComp())
	out := make([]Successor, len(succ))
	for i, s := range succ {
		out[i] = Successor{Node: s.Node.RevComp(), Base: s.Base}
	}
	return out
}

// SetVisited CASes the visited state of n from expected to newState,
// returning true iff the transition succeeded.
func (g *Graph) SetVisited(n Node, newState, expected uint32) bool {
	if n == 0 {
		return false
	}
	return atomic.CompareAndSwapUint32(&g.visited[n.Index()], expected, newState)
}

// ClearVisited resets n's visited state to Free unconditionally.
func (g *Graph) ClearVisited(n Node) {
	if n == 0 {
		return
	}
	atomic.StoreUint32(&g.visited[n.Index()], Free)
}

// VisitedState returns n's current visited state.
func (g *Graph) VisitedState(n Node) uint32 {
	if n == 0 {
		return Free
	}
	return atomic.LoadUint32(&g.visited[n.Index()])
}

// NumNodes returns the number of table entries (canonical-orientation node
// count; total addressable nodes including both orientations is 2x).
func (g *Graph) NumNodes() int { return len(g.Table.Entries) }

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

// Package digger implements the graph digger of component C6: neighbor
// filtering, dead-end jump-over, left/right extension, seed generation and
// paired-read connection, all over one dbgraph.Graph.
//
// Algorithm shapes are grounded on
// original_source/tools/skesa/graphdigger.hpp; parallel seed/pair
// processing is scheduled through internal/jobqueue, mirroring the
// bounded-concurrency worker model of spec §5.
package digger

import "github.com/shenwei356/dbgasm/dbgraph"

// strandBiasFactor is the constant coefficient in the strand-aware noise
// reduction step of §4.6.1 (kept as a named constant rather than a runtime
// parameter, per the Open Question decision recorded in DESIGN.md).
const strandBiasFactor = 0.1

// Options holds the digger's shared parameters (§4.6's "fraction, jump,
// low_count, max_branch").
type Options struct {
	Fraction   float64
	Jump       int
	LowCount   uint32
	MaxBranch  int
	MaxExtent  int
	ScanWindow int
}

func (o Options) maxBranch() int {
	if o.MaxBranch > 0 {
		return o.MaxBranch
	}
	return 200
}

func (o Options) maxExtent() int {
	if o.MaxExtent > 0 {
		return o.MaxExtent
	}
	return 1000
}

// Digger bundles a graph with the options that parameterize traversal.
type Digger struct {
	G   *dbgraph.Graph
	Opt Options
}

// New returns a Digger over g with the given options.
func New(g *dbgraph.Graph, opt Options) *Digger {
	return &Digger{G: g, Opt: opt}
}

// goodNode reports whether node n's abundance clears both the histogram
// valley and the low_count floor (§4.6.2's "good_node" predicate). When
// the histogram has no valley (HistogramMinimum()==0, the Open Question
// case), low_count alone gates admission so a missing valley never
// disables filtering entirely.
func (d *Digger) goodNode(n dbgraph.Node) bool {
	ab := d.G.Abundance(n)
	min := d.G.HistogramMinimum()
	if min > d.Opt.LowCount {
		return ab >= min
	}
	return ab >= d.Opt.LowCount
}

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

// Package assembler implements the C7 orchestrator: the iterative k
// schedule, improvement iteration, connect-and-extend across k increases,
// and read cleaning.
//
// Grounded on original_source/tools/skesa/assembler.hpp for the schedule
// shape; read ingestion's adapter-clipping supplement is grounded on
// grailbio-bio's encoding/fastq trim helpers (see DESIGN.md).
package assembler

import "github.com/pkg/errors"

// Options holds every parameter of the §4.7 orchestrator table.
type Options struct {
	MinKmer       int // first K, odd, >=21
	Steps         int
	MinCount      uint32
	LowCount      uint32
	Fraction      float64
	Jump          int
	UsePairedEnds bool
	InsertSize    int // 0 = unknown, estimate it
	MaxKmerCount  uint32
	MemoryLimit   int64
	Threads       int

	ScanWindow int // flank window width for connect-and-extend
	MinContig  int
}

// ErrEmptyCoverage is raised when the initial graph at MinKmer contains no
// k-mers at MinCount (§7, "Insufficient coverage").
var ErrEmptyCoverage = errors.New("assembler: insufficient coverage at min_kmer")

func (o Options) scanWindow() int {
	if o.ScanWindow > 0 {
		return o.ScanWindow
	}
	return 20
}

func (o Options) threads() int {
	if o.Threads > 0 {
		return o.Threads
	}
	return 1
}

// nearestOdd rounds f to the nearest odd integer, per §4.7's k-schedule
// rounding rule.
func nearestOdd(f float64) int {
	k := int(f + 0.5)
	if k%2 == 0 {
		if float64(k) > f {
			k--
		} else {
			k++
		}
	}
	return k
}

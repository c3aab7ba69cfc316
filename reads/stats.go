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

package reads

import "sort"

// N50 returns the N_xx statistic (xx in (0,100]) of the read lengths: the
// length L such that reads of length >= L cover at least xx% of TotalSeq.
func (s *Store) N50(xx int) int {
	if len(s.lengths) == 0 {
		return 0
	}
	lens := make([]int, len(s.lengths))
	var total int64
	for i, l := range s.lengths {
		lens[i] = int(l)
		total += int64(l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lens)))

	threshold := total * int64(xx) / 100
	var cum int64
	for _, l := range lens {
		cum += int64(l)
		if cum >= threshold {
			return l
		}
	}
	return lens[len(lens)-1]
}

package dbgraph

import "github.com/shenwei356/dbgasm/kmertab"

// findValleyPeak implements the §4.5 valley/peak heuristic over bins
// sorted by count ascending: a peak is a bin that none of its up-to-5
// neighbors on each side exceeds (ties allowed; the first and last bins
// are never peaks, see findPeak), found by scanning right-to-left within rlimit;
// the valley is the minimum bin between index 0 and the peak, accepted
// only if it is below 0.7 of the peak. The search re-anchors at the last
// accepted valley and repeats, keeping the (valley,rlimit) pair with the
// largest integral area, or the first improvement exceeding 10x the prior
// area.
func findValleyPeak(bins []kmertab.HistBin) (valley, peak, rlimit int) {
	n := len(bins)
	if n == 0 {
		return -1, -1, 0
	}
	valley = -1
	peak = -1
	rlimit = n - 1
	bestArea := int64(-1)

	start := rlimit
	for {
		p := findPeak(bins, start)
		if p < 0 {
			break
		}
		v := findValleyBetween(bins, 0, p)
		if v < 0 || bins[v].Size >= int64(0.7*float64(bins[p].Size)) {
			break
		}
		area := areaBetween(bins, v, p)
		if bestArea < 0 || area > 10*bestArea || area > bestArea {
			bestArea = area
			valley = v
			peak = p
			rlimit = start
		}
		if v >= start {
			break
		}
		start = v
	}
	return valley, peak, rlimit
}

// findPeak scans right-to-left from limit, returning the first index whose
// bin size is not exceeded by any of its up-to-5 neighbors on each side.
// A tie with a neighbor doesn't disqualify a candidate - only a strictly
// larger neighbor does - since requiring a strict inequality against every
// neighbor rejects genuine peaks sitting on a plateau. An index missing a
// neighbor on either side (the two array ends) is never accepted even
// though its truncated window would otherwise pass vacuously: a peak with
// nothing to one side can't have the valley this heuristic depends on, and
// without this exclusion the monotonically decaying head of an
// error-dominated histogram (index 0, no left neighbors at all) always
// qualifies as a "peak".
func findPeak(bins []kmertab.HistBin, limit int) int {
	n := len(bins)
	if limit >= n {
		limit = n - 1
	}
	for i := limit; i >= 1; i-- {
		if i == n-1 {
			continue
		}
		isPeak := true
		for d := 1; d <= 5 && isPeak; d++ {
			if i-d >= 0 && bins[i-d].Size > bins[i].Size {
				isPeak = false
			}
			if i+d < n && bins[i+d].Size > bins[i].Size {
				isPeak = false
			}
		}
		if isPeak {
			return i
		}
	}
	return -1
}

func findValleyBetween(bins []kmertab.HistBin, lo, hi int) int {
	if hi <= lo {
		return -1
	}
	minIdx := lo
	for i := lo + 1; i < hi; i++ {
		if bins[i].Size < bins[minIdx].Size {
			minIdx = i
		}
	}
	return minIdx
}

func areaBetween(bins []kmertab.HistBin, lo, hi int) int64 {
	var area int64
	for i := lo; i <= hi && i < len(bins); i++ {
		area += int64(bins[i].Count) * bins[i].Size
	}
	return area
}

// HistogramMinimum returns the abundance value at the valley separating
// sequencing-error k-mers from genomic k-mers, or 0 if no valley was
// found.
func (g *Graph) HistogramMinimum() uint32 {
	if g.valley < 0 || g.valley >= len(g.Table.Bins) {
		return 0
	}
	return uint32(g.Table.Bins[g.valley].Count)
}

// GenomeSize estimates genome size as total bases covered by bins at or
// above the valley, divided by the peak abundance (approximating coverage
// depth).
func (g *Graph) GenomeSize() int64 {
	if g.peak < 0 || g.peak >= len(g.Table.Bins) {
		return 0
	}
	peakCount := int64(g.Table.Bins[g.peak].Count)
	if peakCount == 0 {
		return 0
	}
	lo := g.valley
	if lo < 0 {
		lo = 0
	}
	var totalBases int64
	for i := lo; i < len(g.Table.Bins); i++ {
		totalBases += int64(g.Table.Bins[i].Count) * g.Table.Bins[i].Size
	}
	return totalBases / peakCount
}

package dbgraph

import (
	"testing"

	"github.com/shenwei356/dbgasm/kmertab"
)

// TestFindValleyPeakS5 is §8's S5 valley-detection scenario: a histogram
// with a large sequencing-error spike at count 1, decaying monotonically
// through a genuine valley around count 5-6, then rising to a genomic peak
// around count 8-9 that happens to tie the error-decay tail at distance 5.
func TestFindValleyPeakS5(t *testing.T) {
	bins := []kmertab.HistBin{
		{Count: 1, Size: 10000},
		{Count: 2, Size: 5000},
		{Count: 3, Size: 2000},
		{Count: 4, Size: 800},
		{Count: 5, Size: 500},
		{Count: 6, Size: 400},
		{Count: 7, Size: 500},
		{Count: 8, Size: 700},
		{Count: 9, Size: 800},
		{Count: 10, Size: 600},
	}
	valley, peak, _ := findValleyPeak(bins)
	if valley != 5 && valley != 6 {
		t.Errorf("expected valley near index 5 or 6, got %d", valley)
	}
	if peak != 8 && peak != 9 {
		t.Errorf("expected peak near index 8 or 9, got %d", peak)
	}
}

func TestFindPeakRejectsMonotonicDecay(t *testing.T) {
	bins := []kmertab.HistBin{
		{Count: 1, Size: 1000},
		{Count: 2, Size: 500},
		{Count: 3, Size: 250},
		{Count: 4, Size: 125},
		{Count: 5, Size: 60},
		{Count: 6, Size: 30},
		{Count: 7, Size: 15},
		{Count: 8, Size: 8},
		{Count: 9, Size: 4},
		{Count: 10, Size: 2},
	}
	if p := findPeak(bins, len(bins)-1); p != -1 {
		t.Errorf("expected no peak in a purely error-decaying histogram, got index %d", p)
	}
}

func TestFindPeakAllowsTie(t *testing.T) {
	// A plateau of equal sizes at the far distance-5 neighbor must not
	// disqualify an otherwise-genuine peak.
	bins := []kmertab.HistBin{
		{Count: 1, Size: 10000},
		{Count: 2, Size: 5000},
		{Count: 3, Size: 2000},
		{Count: 4, Size: 800},
		{Count: 5, Size: 500},
		{Count: 6, Size: 400},
		{Count: 7, Size: 500},
		{Count: 8, Size: 700},
		{Count: 9, Size: 800},
		{Count: 10, Size: 600},
	}
	if p := findPeak(bins, len(bins)-1); p != 8 {
		t.Errorf("expected tie at distance 5 to not disqualify index 8, got %d", p)
	}
}
